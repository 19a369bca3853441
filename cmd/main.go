package main

import (
	"flag"
	"os"

	"github.com/gonglijing/shellydash/internal/app"
	"github.com/gonglijing/shellydash/internal/config"
	"github.com/gonglijing/shellydash/internal/logger"
)

func main() {
	configPath := flag.String("config", "", "配置文件路径（默认按 config/config.yaml 搜索）")
	flag.Parse()

	cfg, err := config.LoadWithPath(*configPath)
	if err != nil {
		logger.Fatal("Failed to load config", err)
	}

	logger.SetLevel(logger.ParseLevel(cfg.LogLevel))
	logger.SetJSONOutput(cfg.LogJSON)
	if cfg.LogFile != "" {
		if _, err := logger.InitFileOutput(cfg.LogFile, 0); err != nil {
			logger.Error("Failed to open log file, using default output", err, "path", cfg.LogFile)
		}
	}

	logger.Info("Starting shellydash", "listen_addr", cfg.ListenAddr, "broker", cfg.MQTTBroker, "db", cfg.DBPath)

	if err := app.Run(cfg); err != nil {
		logger.Error("Server exited with error", err)
		os.Exit(1)
	}
}
