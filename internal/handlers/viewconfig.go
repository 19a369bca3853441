package handlers

import (
	"net/http"

	"github.com/gonglijing/shellydash/internal/dashboard"
	"github.com/gonglijing/shellydash/internal/database"
	"github.com/gonglijing/shellydash/internal/logger"
	"github.com/gonglijing/shellydash/internal/models"
)

// GetViewConfig GET /api/devices/{id}/config
// 未配置的设备返回空列表。
func (h *Handler) GetViewConfig(w http.ResponseWriter, r *http.Request) {
	deviceID := DeviceIDVar(r)
	if deviceID == "" {
		WriteBadRequest(w, "missing device id")
		return
	}

	fields, err := database.GetViewConfig(deviceID)
	if err != nil {
		logger.Error("Failed to load view config", err, "device_id", deviceID)
		WriteServerError(w, "failed to load view config")
		return
	}
	WriteSuccess(w, models.ViewConfig{DeviceID: deviceID, VisibleFields: fields})
}

// SaveViewConfig POST /api/devices/{id}/config
// 整体替换该设备的字段列表，后写覆盖先写。
func (h *Handler) SaveViewConfig(w http.ResponseWriter, r *http.Request) {
	deviceID := DeviceIDVar(r)
	if deviceID == "" {
		WriteBadRequest(w, "missing device id")
		return
	}

	var req struct {
		VisibleFields []string `json:"visible_fields"`
	}
	if err := ParseRequest(r, &req); err != nil {
		WriteBadRequest(w, "invalid request body")
		return
	}

	// 请求体省略字段时按空列表处理，回显与存储保持一致
	fields := req.VisibleFields
	if fields == nil {
		fields = []string{}
	}

	if err := database.SaveViewConfig(deviceID, fields); err != nil {
		logger.Error("Failed to save view config", err, "device_id", deviceID)
		WriteServerError(w, "failed to save view config")
		return
	}

	logger.Info("View config saved", "device_id", deviceID, "fields", len(fields))
	WriteSuccess(w, models.ViewConfig{DeviceID: deviceID, VisibleFields: fields})
}

// fieldValue 单个字段的当前取值
// 路径缺失时 value 整体省略，kind 标记为 absent。
type fieldValue struct {
	Path  string      `json:"path"`
	Kind  string      `json:"kind"`
	Value interface{} `json:"value,omitempty"`
}

// dashboardView 仪表盘聚合视图
type dashboardView struct {
	DeviceID   string                  `json:"device_id"`
	Discovered []string                `json:"discovered"`
	Fields     []string                `json:"fields"`
	Configured bool                    `json:"configured"`
	Current    []fieldValue            `json:"current"`
	Series     []dashboard.SeriesPoint `json:"series"`
}

// Dashboard GET /api/devices/{id}/dashboard
// 一次请求返回渲染仪表盘需要的全部数据：最新报文里发现的字段、
// 生效的展示字段、各字段当前值和升序时序。
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	deviceID := DeviceIDVar(r)
	if deviceID == "" {
		WriteBadRequest(w, "missing device id")
		return
	}

	if _, err := database.GetDeviceByID(deviceID); err != nil {
		WriteNotFound(w, "device not found")
		return
	}

	// 历史读不出来时退化为空仪表盘，配置和字段发现仍可用
	records, err := database.GetRecentRecords(deviceID, h.cfg.HistoryLimit)
	if err != nil {
		logger.Warn("Records unavailable for dashboard", "device_id", deviceID, "error", err.Error())
		records = nil
	}

	// 配置读取失败时退回默认字段展示，不让仪表盘整体失败
	stored, err := database.GetViewConfig(deviceID)
	if err != nil {
		logger.Warn("View config unavailable, using defaults", "device_id", deviceID, "error", err.Error())
		stored = nil
	}

	// 记录最新在前，第一条即当前报文
	var latest *models.PayloadRecord
	if len(records) > 0 {
		latest = &records[0]
	}

	vm := dashboard.NewViewModel(deviceID, dashboard.ConfigStoreFunc(database.SaveViewConfig))
	vm.SetDefaultFieldCount(h.cfg.DefaultFields)
	vm.Initialize(latest, records, stored)

	fields := vm.VisibleFields()
	current := make([]fieldValue, 0, len(fields))
	for _, path := range fields {
		v := vm.CurrentValue(path)
		fv := fieldValue{Path: path, Kind: v.Kind().String()}
		if !v.IsAbsent() {
			fv.Value = v.Interface()
		}
		current = append(current, fv)
	}

	WriteSuccess(w, dashboardView{
		DeviceID:   deviceID,
		Discovered: vm.DiscoveredFields(),
		Fields:     fields,
		Configured: len(stored) > 0,
		Current:    current,
		Series:     vm.Series(),
	})
}
