package handlers

import (
	"net/http"
	"strconv"

	"github.com/gonglijing/shellydash/internal/database"
	"github.com/gonglijing/shellydash/internal/logger"
)

// ListDevices GET /api/devices
func (h *Handler) ListDevices(w http.ResponseWriter, r *http.Request) {
	devices, err := database.GetAllDevices()
	if err != nil {
		logger.Error("Failed to list devices", err)
		WriteServerError(w, "failed to list devices")
		return
	}
	WriteSuccess(w, devices)
}

// DeleteDevice DELETE /api/devices/{id}
// 连带删除订阅、历史记录和视图配置，并退订其 MQTT 主题。
func (h *Handler) DeleteDevice(w http.ResponseWriter, r *http.Request) {
	deviceID := DeviceIDVar(r)
	if deviceID == "" {
		WriteBadRequest(w, "missing device id")
		return
	}

	topics, err := database.DeleteDevice(deviceID)
	if err != nil {
		logger.Error("Failed to delete device", err, "device_id", deviceID)
		WriteServerError(w, "failed to delete device")
		return
	}

	if len(topics) > 0 {
		if err := h.mqtt.Unsubscribe(topics...); err != nil {
			// 设备已删，退订失败只记日志
			logger.Warn("Failed to unsubscribe topics for deleted device", "device_id", deviceID, "error", err.Error())
		}
	}

	logger.Info("Device removed", "device_id", deviceID, "topics", len(topics))
	WriteMessage(w, "device removed")
}

// DeviceRecords GET /api/devices/{id}/records?limit=N
// 返回最新在前的历史记录。
func (h *Handler) DeviceRecords(w http.ResponseWriter, r *http.Request) {
	deviceID := DeviceIDVar(r)
	if deviceID == "" {
		WriteBadRequest(w, "missing device id")
		return
	}

	limit := h.cfg.HistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			WriteBadRequest(w, "limit must be a positive integer")
			return
		}
		if n < limit {
			limit = n
		}
	}

	records, err := database.GetRecentRecords(deviceID, limit)
	if err != nil {
		logger.Error("Failed to fetch records", err, "device_id", deviceID)
		WriteServerError(w, "failed to fetch records")
		return
	}
	WriteSuccess(w, records)
}
