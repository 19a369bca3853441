// Package app 应用装配：初始化数据库、MQTT 订阅和 HTTP 服务，
// 并负责优雅退出。
package app

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/crypto/acme/autocert"

	"github.com/gonglijing/shellydash/internal/config"
	"github.com/gonglijing/shellydash/internal/database"
	"github.com/gonglijing/shellydash/internal/discovery"
	"github.com/gonglijing/shellydash/internal/graceful"
	"github.com/gonglijing/shellydash/internal/handlers"
	"github.com/gonglijing/shellydash/internal/ingest"
	"github.com/gonglijing/shellydash/internal/logger"
)

// Run boots the application and blocks until shutdown completes.
func Run(cfg *config.Config) error {
	if err := initDatabase(cfg); err != nil {
		return err
	}
	defer database.Close()

	logger.Info("Starting retention cleanup task...")
	database.SetRetentionDays(cfg.RetentionDays)
	database.StartRetentionCleanup(cfg.RetentionCleanupInterval)

	mqtt := ingest.NewManager(cfg.MQTTBroker, cfg.MQTTUsername, cfg.MQTTPassword, cfg.MQTTReconnectInterval)
	if err := mqtt.Connect(); err != nil {
		// broker 暂时不可达不阻止启动，paho 会持续重试
		logger.Warn("MQTT broker unavailable at startup", "broker", cfg.MQTTBroker, "error", err.Error())
	}
	restoreSubscriptions(mqtt)

	disc := discovery.NewClient(cfg.ProbeTimeout, cfg.ConfigureTimeout)
	h := handlers.New(cfg, mqtt, disc)

	router := buildRouter(h)
	finalHandler := buildHandlerChain(cfg, router)

	gracefulMgr := graceful.NewManager(30 * time.Second)
	registerShutdown(gracefulMgr, mqtt)
	gracefulMgr.Start()

	server := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      finalHandler,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	gracefulMgr.SetHTTPServer(server)

	// TLS 优先级：1) 自动证书 2) 指定证书 3) HTTP
	switch {
	case cfg.TLSAuto && cfg.TLSDomain != "":
		m := &autocert.Manager{
			Cache:      autocert.DirCache(cfg.TLSCacheDir),
			Prompt:     autocert.AcceptTOS,
			HostPolicy: autocert.HostWhitelist(cfg.TLSDomain),
		}
		server.TLSConfig = &tls.Config{
			GetCertificate: m.GetCertificate,
			MinVersion:     tls.VersionTLS12,
		}
		go func() {
			_ = http.ListenAndServe(":80", m.HTTPHandler(nil))
		}()
		logger.Info("Starting HTTPS (auto-cert)", "addr", cfg.ListenAddr, "domain", cfg.TLSDomain)
		if err := server.ListenAndServeTLS("", ""); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
	case cfg.TLSCertFile != "" && cfg.TLSKeyFile != "":
		logger.Info("Starting HTTPS", "addr", cfg.ListenAddr, "cert", cfg.TLSCertFile)
		if err := server.ListenAndServeTLS(cfg.TLSCertFile, cfg.TLSKeyFile); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
	default:
		logger.Info("Starting HTTP", "addr", cfg.ListenAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
	}

	gracefulMgr.Wait()
	return nil
}

// restoreSubscriptions 启动时恢复库里登记的全部主题订阅
func restoreSubscriptions(mqtt *ingest.Manager) {
	topics, err := database.GetAllTopics()
	if err != nil {
		logger.Warn("Failed to load stored subscriptions", "error", err.Error())
		return
	}

	restored := 0
	for _, topic := range topics {
		if err := mqtt.Subscribe(topic); err != nil {
			logger.Warn("Failed to restore subscription", "topic", topic, "error", err.Error())
			continue
		}
		restored++
	}
	logger.Info("Subscriptions restored", "count", restored, "total", len(topics))
}

func registerShutdown(gracefulMgr *graceful.Manager, mqtt *ingest.Manager) {
	gracefulMgr.Register("mqtt", func(ctx context.Context) error {
		mqtt.Disconnect()
		return nil
	})

	gracefulMgr.Register("retention-cleanup", func(ctx context.Context) error {
		database.StopRetentionCleanup()
		return nil
	})
}
