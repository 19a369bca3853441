// Package handlers HTTP API 处理器
package handlers

import (
	"github.com/gonglijing/shellydash/internal/config"
	"github.com/gonglijing/shellydash/internal/discovery"
	"github.com/gonglijing/shellydash/internal/ingest"
)

// Handler 聚合各处理器依赖的运行时组件
// 数据库通过 database 包级连接访问，与其余包一致。
type Handler struct {
	cfg       *config.Config
	mqtt      *ingest.Manager
	discovery *discovery.Client
}

// New 创建处理器
func New(cfg *config.Config, mqtt *ingest.Manager, disc *discovery.Client) *Handler {
	return &Handler{
		cfg:       cfg,
		mqtt:      mqtt,
		discovery: disc,
	}
}
