package app

import (
	"fmt"

	"github.com/gonglijing/shellydash/internal/config"
	"github.com/gonglijing/shellydash/internal/database"
	"github.com/gonglijing/shellydash/internal/logger"
)

// initDatabase 打开数据库并建表
func initDatabase(cfg *config.Config) error {
	if err := database.InitDBWithPath(cfg.DBPath); err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	if err := database.InitSchema(); err != nil {
		return fmt.Errorf("failed to init schema: %w", err)
	}
	logger.Info("Database ready", "path", cfg.DBPath)
	return nil
}
