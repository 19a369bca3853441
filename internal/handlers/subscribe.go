package handlers

import (
	"net/http"
	"strings"

	"github.com/gonglijing/shellydash/internal/database"
	"github.com/gonglijing/shellydash/internal/logger"
	"github.com/gonglijing/shellydash/internal/models"
)

// Subscribe POST /api/subscribe
// 登记设备与主题的绑定并立即开始订阅。设备 ID 由名称哈希得出，
// 同名设备多次订阅只追加主题。
func (h *Handler) Subscribe(w http.ResponseWriter, r *http.Request) {
	var req models.SubscribeRequest
	if err := ParseRequest(r, &req); err != nil {
		WriteBadRequest(w, "invalid request body")
		return
	}

	req.Topic = strings.TrimSpace(req.Topic)
	req.DeviceName = strings.TrimSpace(req.DeviceName)
	if req.Topic == "" {
		WriteBadRequest(w, "topic is required")
		return
	}
	if req.DeviceName == "" {
		WriteBadRequest(w, "device_name is required")
		return
	}

	deviceID := database.DeviceIDForName(req.DeviceName)
	if err := database.UpsertDevice(deviceID, req.DeviceName, req.DeviceIP); err != nil {
		logger.Error("Failed to upsert device", err, "device", req.DeviceName)
		WriteServerError(w, "failed to register device")
		return
	}
	if err := database.AddSubscription(deviceID, req.Topic); err != nil {
		logger.Error("Failed to add subscription", err, "device_id", deviceID, "topic", req.Topic)
		WriteServerError(w, "failed to register subscription")
		return
	}

	if err := h.mqtt.Subscribe(req.Topic); err != nil {
		// 绑定已入库，连接恢复后会自动补订
		logger.Warn("Topic registered but subscribe failed", "topic", req.Topic, "error", err.Error())
	}

	logger.Info("Subscription added", "device_id", deviceID, "device", req.DeviceName, "topic", req.Topic)
	WriteSuccess(w, map[string]string{
		"device_id": deviceID,
		"topic":     req.Topic,
	})
}
