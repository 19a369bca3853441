package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config 应用配置
type Config struct {
	// 服务器配置
	ListenAddr string `json:"listen_addr"`
	// TLS/证书配置
	TLSCertFile string `json:"tls_cert_file"`
	TLSKeyFile  string `json:"tls_key_file"`
	TLSAuto     bool   `json:"tls_auto"`      // 是否启用自动申请（Let's Encrypt）
	TLSDomain   string `json:"tls_domain"`    // 自动证书域名
	TLSCacheDir string `json:"tls_cache_dir"` // 自动证书缓存目录

	// HTTP超时配置
	HTTPReadTimeout  time.Duration `json:"http_read_timeout"`
	HTTPWriteTimeout time.Duration `json:"http_write_timeout"`
	HTTPIdleTimeout  time.Duration `json:"http_idle_timeout"`

	// 数据库配置
	DBPath string `json:"db_path"`

	// MQTT配置
	MQTTBroker            string        `json:"mqtt_broker"`
	MQTTUsername          string        `json:"mqtt_username"`
	MQTTPassword          string        `json:"mqtt_password"`
	MQTTPort              int           `json:"mqtt_port"` // 设备自动配置时下发的broker端口
	MQTTReconnectInterval time.Duration `json:"mqtt_reconnect_interval"`

	// 仪表盘配置
	HistoryLimit  int `json:"history_limit"`  // 每设备历史查询窗口
	DefaultFields int `json:"default_fields"` // 无配置时默认展示的字段数

	// 数据保留配置
	RetentionDays            int           `json:"retention_days"`
	RetentionCleanupInterval time.Duration `json:"retention_cleanup_interval"`

	// 设备探测配置
	ProbeTimeout     time.Duration `json:"probe_timeout"`
	ConfigureTimeout time.Duration `json:"configure_timeout"`

	// CORS配置
	AllowedOrigins string `json:"allowed_origins"`

	// 日志配置
	LogLevel string `json:"log_level"`
	LogJSON  bool   `json:"log_json"`
	LogFile  string `json:"log_file"`
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		ListenAddr:               ":8080",
		TLSCertFile:              "",
		TLSKeyFile:               "",
		TLSAuto:                  false,
		TLSDomain:                "",
		TLSCacheDir:              "cert-cache",
		HTTPReadTimeout:          30 * time.Second,
		HTTPWriteTimeout:         30 * time.Second,
		HTTPIdleTimeout:          60 * time.Second,
		DBPath:                   "shellydash.db",
		MQTTBroker:               "tcp://localhost:1883",
		MQTTUsername:             "",
		MQTTPassword:             "",
		MQTTPort:                 1883,
		MQTTReconnectInterval:    5 * time.Second,
		HistoryLimit:             50,
		DefaultFields:            3,
		RetentionDays:            30,
		RetentionCleanupInterval: 6 * time.Hour,
		ProbeTimeout:             3 * time.Second,
		ConfigureTimeout:         5 * time.Second,
		AllowedOrigins:           "*",
		LogLevel:                 "info",
		LogJSON:                  false,
		LogFile:                  "",
	}
}

// fileConfig YAML 配置文件结构
type fileConfig struct {
	Server struct {
		Addr         string `yaml:"addr"`
		ReadTimeout  string `yaml:"read_timeout"`
		WriteTimeout string `yaml:"write_timeout"`
		IdleTimeout  string `yaml:"idle_timeout"`
		TLSCertFile  string `yaml:"tls_cert_file"`
		TLSKeyFile   string `yaml:"tls_key_file"`
		TLSAuto      *bool  `yaml:"tls_auto"`
		TLSDomain    string `yaml:"tls_domain"`
		TLSCacheDir  string `yaml:"tls_cache_dir"`
	} `yaml:"server"`
	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`
	MQTT struct {
		Broker            string `yaml:"broker"`
		Username          string `yaml:"username"`
		Password          string `yaml:"password"`
		Port              int    `yaml:"port"`
		ReconnectInterval string `yaml:"reconnect_interval"`
	} `yaml:"mqtt"`
	Dashboard struct {
		HistoryLimit  int `yaml:"history_limit"`
		DefaultFields int `yaml:"default_fields"`
	} `yaml:"dashboard"`
	Retention struct {
		Days            int    `yaml:"days"`
		CleanupInterval string `yaml:"cleanup_interval"`
	} `yaml:"retention"`
	Discovery struct {
		ProbeTimeout     string `yaml:"probe_timeout"`
		ConfigureTimeout string `yaml:"configure_timeout"`
	} `yaml:"discovery"`
	CORS struct {
		AllowedOrigins string `yaml:"allowed_origins"`
	} `yaml:"cors"`
	Log struct {
		Level string `yaml:"level"`
		JSON  *bool  `yaml:"json"`
		File  string `yaml:"file"`
	} `yaml:"log"`
}

// Load 从配置文件和环境变量加载配置
func Load() (*Config, error) {
	return LoadWithPath("")
}

// LoadWithPath 加载配置，path 为空时按默认路径查找
func LoadWithPath(path string) (*Config, error) {
	cfg := DefaultConfig()

	// 1. 先从 YAML 文件加载配置（文件不存在时静默使用默认值）
	if err := loadFromFile(cfg, path); err != nil && path != "" {
		return nil, err
	}

	// 2. 环境变量覆盖配置
	loadFromEnv(cfg)

	return cfg, nil
}

// loadFromFile 从 YAML 文件加载配置
func loadFromFile(cfg *Config, path string) error {
	configPaths := []string{
		"config/config.yaml",
		"../config/config.yaml",
		"./config.yaml",
	}
	if path != "" {
		configPaths = []string{path}
	}

	var configFile string
	for _, candidate := range configPaths {
		if _, err := os.Stat(candidate); err == nil {
			configFile = candidate
			break
		}
	}

	if configFile == "" {
		return fmt.Errorf("config file not found")
	}

	data, err := os.ReadFile(configFile)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	return applyYAML(cfg, data)
}

// applyYAML 将 YAML 内容应用到配置
func applyYAML(cfg *Config, data []byte) error {
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	setStringIfNotEmpty(&cfg.ListenAddr, fc.Server.Addr)
	setDurationFromText(&cfg.HTTPReadTimeout, fc.Server.ReadTimeout)
	setDurationFromText(&cfg.HTTPWriteTimeout, fc.Server.WriteTimeout)
	setDurationFromText(&cfg.HTTPIdleTimeout, fc.Server.IdleTimeout)
	setStringIfNotEmpty(&cfg.TLSCertFile, fc.Server.TLSCertFile)
	setStringIfNotEmpty(&cfg.TLSKeyFile, fc.Server.TLSKeyFile)
	if fc.Server.TLSAuto != nil {
		cfg.TLSAuto = *fc.Server.TLSAuto
	}
	setStringIfNotEmpty(&cfg.TLSDomain, fc.Server.TLSDomain)
	setStringIfNotEmpty(&cfg.TLSCacheDir, fc.Server.TLSCacheDir)

	setStringIfNotEmpty(&cfg.DBPath, fc.Database.Path)

	setStringIfNotEmpty(&cfg.MQTTBroker, fc.MQTT.Broker)
	setStringIfNotEmpty(&cfg.MQTTUsername, fc.MQTT.Username)
	setStringIfNotEmpty(&cfg.MQTTPassword, fc.MQTT.Password)
	setPositiveInt(&cfg.MQTTPort, fc.MQTT.Port)
	setDurationFromText(&cfg.MQTTReconnectInterval, fc.MQTT.ReconnectInterval)

	setPositiveInt(&cfg.HistoryLimit, fc.Dashboard.HistoryLimit)
	setPositiveInt(&cfg.DefaultFields, fc.Dashboard.DefaultFields)

	setPositiveInt(&cfg.RetentionDays, fc.Retention.Days)
	setDurationFromText(&cfg.RetentionCleanupInterval, fc.Retention.CleanupInterval)

	setDurationFromText(&cfg.ProbeTimeout, fc.Discovery.ProbeTimeout)
	setDurationFromText(&cfg.ConfigureTimeout, fc.Discovery.ConfigureTimeout)

	setStringIfNotEmpty(&cfg.AllowedOrigins, fc.CORS.AllowedOrigins)

	setStringIfNotEmpty(&cfg.LogLevel, fc.Log.Level)
	if fc.Log.JSON != nil {
		cfg.LogJSON = *fc.Log.JSON
	}
	setStringIfNotEmpty(&cfg.LogFile, fc.Log.File)

	return nil
}

// loadFromEnv 从环境变量加载配置（会覆盖文件配置）
func loadFromEnv(cfg *Config) {
	if cfg == nil {
		return
	}

	setStringFromEnv(&cfg.ListenAddr, "LISTEN_ADDR")
	setDurationFromEnv(&cfg.HTTPReadTimeout, "HTTP_READ_TIMEOUT")
	setDurationFromEnv(&cfg.HTTPWriteTimeout, "HTTP_WRITE_TIMEOUT")
	setDurationFromEnv(&cfg.HTTPIdleTimeout, "HTTP_IDLE_TIMEOUT")

	setStringFromEnv(&cfg.DBPath, "DB_PATH")

	setStringFromEnv(&cfg.MQTTBroker, "MQTT_BROKER")
	setStringFromEnv(&cfg.MQTTUsername, "MQTT_USERNAME")
	setStringFromEnv(&cfg.MQTTPassword, "MQTT_PASSWORD")
	setIntFromEnv(&cfg.MQTTPort, "MQTT_PORT")
	setDurationFromEnv(&cfg.MQTTReconnectInterval, "MQTT_RECONNECT_INTERVAL")

	setIntFromEnv(&cfg.HistoryLimit, "HISTORY_LIMIT")
	setIntFromEnv(&cfg.DefaultFields, "DEFAULT_FIELDS")
	setIntFromEnv(&cfg.RetentionDays, "RETENTION_DAYS")
	setDurationFromEnv(&cfg.RetentionCleanupInterval, "RETENTION_CLEANUP_INTERVAL")

	setDurationFromEnv(&cfg.ProbeTimeout, "PROBE_TIMEOUT")
	setDurationFromEnv(&cfg.ConfigureTimeout, "CONFIGURE_TIMEOUT")

	setStringFromEnv(&cfg.AllowedOrigins, "ALLOWED_ORIGINS")

	setStringFromEnv(&cfg.LogLevel, "LOG_LEVEL")
	if value := os.Getenv("LOG_JSON"); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			cfg.LogJSON = parsed
		}
	}
	setStringFromEnv(&cfg.LogFile, "LOG_FILE")
}

func setStringIfNotEmpty(dst *string, value string) {
	if dst == nil || value == "" {
		return
	}
	*dst = value
}

func setDurationFromText(dst *time.Duration, value string) {
	if dst == nil || value == "" {
		return
	}
	if parsed, err := time.ParseDuration(value); err == nil {
		*dst = parsed
	}
}

func setPositiveInt(dst *int, value int) {
	if dst == nil || value <= 0 {
		return
	}
	*dst = value
}

func setStringFromEnv(dst *string, key string) {
	if value := os.Getenv(key); value != "" {
		*dst = value
	}
}

func setIntFromEnv(dst *int, key string) {
	value := os.Getenv(key)
	if value == "" {
		return
	}
	if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
		*dst = parsed
	}
}

func setDurationFromEnv(dst *time.Duration, key string) {
	setDurationFromText(dst, os.Getenv(key))
}
