package handlers

import (
	"fmt"
	"net/http"

	"github.com/gonglijing/shellydash/internal/logger"
	"github.com/gonglijing/shellydash/internal/models"
)

// Discover GET /api/discover?ip=192.168.1.20
// 探测目标设备的 MQTT 配置并给出可订阅的主题建议。
func (h *Handler) Discover(w http.ResponseWriter, r *http.Request) {
	ip := r.URL.Query().Get("ip")
	if ip == "" {
		WriteBadRequest(w, "missing 'ip' query parameter")
		return
	}

	result, err := h.discovery.Probe(ip)
	if err != nil {
		logger.Warn("Device probe failed", "ip", ip, "error", err.Error())
		WriteAppError(w, err)
		return
	}
	WriteSuccess(w, result)
}

// ConfigureDevice POST /api/configure
// 把设备的 MQTT 上报指向本服务所用的 broker 并重启设备。
func (h *Handler) ConfigureDevice(w http.ResponseWriter, r *http.Request) {
	var req models.ConfigureRequest
	if err := ParseRequest(r, &req); err != nil {
		WriteBadRequest(w, "invalid request body")
		return
	}
	if req.DeviceIP == "" {
		WriteBadRequest(w, "device_ip is required")
		return
	}

	brokerAddr := fmt.Sprintf("%s:%d", h.brokerIP(), h.cfg.MQTTPort)
	result, err := h.discovery.Configure(req.DeviceIP, brokerAddr, req.Interval)
	if err != nil {
		logger.Warn("Device configure failed", "ip", req.DeviceIP, "error", err.Error())
		WriteAppError(w, err)
		return
	}

	logger.Info("Device configured", "ip", req.DeviceIP, "broker", brokerAddr, "type", result.Type)
	WriteSuccess(w, result)
}
