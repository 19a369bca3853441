package handlers

import (
	"net"
	"net/http"

	"github.com/gonglijing/shellydash/internal/database"
	"github.com/gonglijing/shellydash/internal/logger"
	"github.com/gonglijing/shellydash/internal/models"
)

// outboundIP 本机默认路由的出口地址
// 不真正发包，只向公共地址拨一个 UDP "连接"读本地端。
func outboundIP() string {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		return "127.0.0.1"
	}
	defer conn.Close()
	return conn.LocalAddr().(*net.UDPAddr).IP.String()
}

// brokerIP 对设备下发的 broker 地址：settings 覆盖优先，否则取出口地址
func (h *Handler) brokerIP() string {
	override, err := database.GetSetting(database.SettingBrokerIP)
	if err == nil && override != "" {
		return override
	}
	return outboundIP()
}

// SystemInfo GET /api/system-info
func (h *Handler) SystemInfo(w http.ResponseWriter, r *http.Request) {
	override, _ := database.GetSetting(database.SettingBrokerIP)
	WriteSuccess(w, models.SystemInfo{
		IP:       h.brokerIP(),
		Detected: outboundIP(),
		Override: override,
		Port:     h.cfg.MQTTPort,
	})
}

// SetSystemInfo POST /api/system-info
// 空 IP 表示清除覆盖，回到自动探测。
func (h *Handler) SetSystemInfo(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IP string `json:"ip"`
	}
	if err := ParseRequest(r, &req); err != nil {
		WriteBadRequest(w, "invalid request body")
		return
	}

	if err := database.SetSetting(database.SettingBrokerIP, req.IP); err != nil {
		logger.Error("Failed to save broker override", err)
		WriteServerError(w, "failed to save setting")
		return
	}

	logger.Info("Broker IP override updated", "ip", req.IP)
	WriteMessage(w, "saved")
}

// Health GET /api/health
// 数据库不可用视为不健康；MQTT 断线只降级上报，不改变状态码。
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	status := map[string]interface{}{
		"status":         "ok",
		"database":       "ok",
		"mqtt_connected": h.mqtt.IsConnected(),
	}

	if err := database.Ping(); err != nil {
		status["status"] = "degraded"
		status["database"] = "unavailable"
		WriteJSON(w, http.StatusServiceUnavailable, APIResponse{Success: false, Data: status})
		return
	}

	WriteSuccess(w, status)
}
