package app

import (
	"github.com/gorilla/mux"

	"github.com/gonglijing/shellydash/internal/handlers"
)

func registerAPIRoutes(r *mux.Router, h *handlers.Handler) {
	api := r.PathPrefix("/api").Subrouter()

	registerDeviceRoutes(api, h)
	registerDiscoveryRoutes(api, h)
	registerSystemRoutes(api, h)
}

func registerDeviceRoutes(api *mux.Router, h *handlers.Handler) {
	api.HandleFunc("/devices", h.ListDevices).Methods("GET")
	api.HandleFunc("/devices/{id}", h.DeleteDevice).Methods("DELETE")
	api.HandleFunc("/devices/{id}/records", h.DeviceRecords).Methods("GET")
	api.HandleFunc("/devices/{id}/config", h.GetViewConfig).Methods("GET")
	api.HandleFunc("/devices/{id}/config", h.SaveViewConfig).Methods("POST")
	api.HandleFunc("/devices/{id}/dashboard", h.Dashboard).Methods("GET")
	api.HandleFunc("/subscribe", h.Subscribe).Methods("POST")
}

func registerDiscoveryRoutes(api *mux.Router, h *handlers.Handler) {
	api.HandleFunc("/discover", h.Discover).Methods("GET")
	api.HandleFunc("/configure", h.ConfigureDevice).Methods("POST")
}

func registerSystemRoutes(api *mux.Router, h *handlers.Handler) {
	api.HandleFunc("/system-info", h.SystemInfo).Methods("GET")
	api.HandleFunc("/system-info", h.SetSystemInfo).Methods("POST")
	api.HandleFunc("/health", h.Health).Methods("GET")
}
