package database

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "github.com/glebarez/go-sqlite"
)

// Configuration
const (
	DefaultDBFile       = "shellydash.db" // 数据库文件名
	DefaultHistoryLimit = 50              // 每设备历史记录查询窗口
	DefaultRetentionDays = 30             // 默认历史保留天数

	// 连接池配置（可调整）
	DefaultMaxOpenConns = 25        // 默认最大打开连接数
	DefaultMaxIdleConns = 10        // 默认最大空闲连接数
	ConnMaxLifetime     = time.Hour // 连接最大生命周期
)

// DB 数据库连接，进程启动时初始化一次，各包共享
var DB *sql.DB

var dbFile = DefaultDBFile

// InitDB 初始化数据库
func InitDB() error {
	return InitDBWithPath(DefaultDBFile)
}

// InitDBWithPath 初始化数据库并指定路径
func InitDBWithPath(path string) error {
	if path == "" {
		path = DefaultDBFile
	}
	dbFile = path

	// 配置连接池
	maxOpen := getEnvInt("DB_MAX_OPEN_CONNS", DefaultMaxOpenConns)
	maxIdle := getEnvInt("DB_MAX_IDLE_CONNS", DefaultMaxIdleConns)
	var err error
	DB, err = openSQLite(path, maxOpen, maxIdle)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	log.Printf("Database initialized (path=%s, max_open=%d, max_idle=%d)", path, maxOpen, maxIdle)
	return nil
}

// Close 关闭数据库连接
func Close() error {
	if DB == nil {
		return nil
	}
	return DB.Close()
}

// Ping 数据库健康检查
func Ping() error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}
	return DB.Ping()
}
