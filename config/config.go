package config

import (
	"fmt"
	"os"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"
)

var (
	globalConfig Config
	once         sync.Once
)

const bytesPerMB int64 = 1024 * 1024

// Config 扁平化配置结构体
type Config struct {
	// 服务器配置
	ServerHost         string        `mapstructure:"server_host"`
	ServerPort         int           `mapstructure:"server_port"`
	ServerReadTimeout  time.Duration `mapstructure:"server_read_timeout"`
	ServerWriteTimeout time.Duration `mapstructure:"server_write_timeout"`
	ServerIdleTimeout  time.Duration `mapstructure:"server_idle_timeout"`
	CORSAllowedOrigins []string      `mapstructure:"cors_allowed_origins"`

	// 数据库配置
	DBType            string `mapstructure:"db_type"`
	DBHost            string `mapstructure:"db_host"`
	DBPort            int    `mapstructure:"db_port"`
	DBUsername        string `mapstructure:"db_username"`
	DBPassword        string `mapstructure:"db_password"`
	DBName            string `mapstructure:"db_name"`
	DBFilePath        string `mapstructure:"db_file_path"`
	DBMaxOpenConns    int    `mapstructure:"db_max_open_conns"`
	DBMaxIdleConns    int    `mapstructure:"db_max_idle_conns"`
	DBConnMaxLifetime int    `mapstructure:"db_conn_max_lifetime"`

	// 日志配置
	LogDir   string `mapstructure:"log_dir"`
	LogLevel string `mapstructure:"log_level"`

	// 认证
	JWTSecret    string        `mapstructure:"jwt_secret"`
	JWTExpiresIn time.Duration `mapstructure:"jwt_expires_in"`

	// 缓存提供者配置
	CacheType          string        `mapstructure:"cache_type"`
	CacheRedisAddr     string        `mapstructure:"cache_redis_addr"`
	CacheRedisPassword string        `mapstructure:"cache_redis_password"`
	CacheRedisDB       int           `mapstructure:"cache_redis_db"`
	SettingsCacheTTL   time.Duration `mapstructure:"settings_cache_ttl"`

	// 存储配置
	StorageType           string `mapstructure:"storage_type"`
	UploadRoot            string `mapstructure:"upload_root"`
	UploadPublicPrefix    string `mapstructure:"upload_public_prefix"`
	StorageMinioEndpoint  string `mapstructure:"storage_minio_endpoint"`
	StorageMinioAccessKey string `mapstructure:"storage_minio_access_key"`
	StorageMinioSecretKey string `mapstructure:"storage_minio_secret_key"`
	StorageMinioBucket    string `mapstructure:"storage_minio_bucket"`
	StorageMinioUseSSL    bool   `mapstructure:"storage_minio_use_ssl"`
	StorageWebDAVURL      string `mapstructure:"storage_webdav_url"`
	StorageWebDAVUsername string `mapstructure:"storage_webdav_username"`
	StorageWebDAVPassword string `mapstructure:"storage_webdav_password"`
	StorageWebDAVRootPath string `mapstructure:"storage_webdav_root_path"`

	// 限流配置
	RateLimitApiRPS      float64       `mapstructure:"rate_limit_api_rps"`
	RateLimitApiBurst    int           `mapstructure:"rate_limit_api_burst"`
	RateLimitUploadRPS   float64       `mapstructure:"rate_limit_upload_rps"`
	RateLimitUploadBurst int           `mapstructure:"rate_limit_upload_burst"`
	RateLimitExpireTime  time.Duration `mapstructure:"rate_limit_expire_time"`

	// 平台上限：单文件上限与整个请求体上限
	UploadMaxSizeMB  int `mapstructure:"upload_max_size_mb"`
	RequestMaxSizeMB int `mapstructure:"request_max_size_mb"`

	// Worker 配置
	WorkerCount int `mapstructure:"worker_count"`
}

// InitConfig Initialize configuration
func InitConfig() {
	once.Do(func() {
		loadConfig()
	})
}

func Get() *Config {
	return &globalConfig
}

// loadConfig Core configuration loading
func loadConfig() {
	setDefaults()

	viper.SetConfigFile(".env")
	viper.SetConfigType("env")

	if err := viper.ReadInConfig(); err != nil {
		fmt.Fprintln(os.Stderr, "Info: .env file not found, using defaults and environment variables")
	} else {
		fmt.Fprintln(os.Stderr, "Info: Loaded configuration from .env file")
	}

	viper.AutomaticEnv()
	for _, key := range viper.AllKeys() {
		_ = viper.BindEnv(key)
	}

	if err := viper.Unmarshal(&globalConfig); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: Unable to unmarshal config, %v\n", err)
		os.Exit(1)
	}

	globalConfig.normalize()
}

// normalize 修正不合法的配置值
func (c *Config) normalize() {
	// WorkerCount: -1 = 使用 CPU 线程数, 0 = 使用默认值
	switch {
	case c.WorkerCount < 0:
		c.WorkerCount = runtime.GOMAXPROCS(0)
	case c.WorkerCount == 0:
		c.WorkerCount = getCpus()
	}

	c.StorageType = strings.ToLower(strings.TrimSpace(c.StorageType))
	c.CacheType = strings.ToLower(strings.TrimSpace(c.CacheType))
	c.UploadPublicPrefix = "/" + strings.Trim(c.UploadPublicPrefix, "/")

	// .env 中的列表以逗号分隔
	if len(c.CORSAllowedOrigins) == 1 && strings.Contains(c.CORSAllowedOrigins[0], ",") {
		parts := strings.Split(c.CORSAllowedOrigins[0], ",")
		c.CORSAllowedOrigins = c.CORSAllowedOrigins[:0]
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				c.CORSAllowedOrigins = append(c.CORSAllowedOrigins, p)
			}
		}
	}
}

// setDefaults 设置默认值
func setDefaults() {
	viper.SetDefault("server_host", "127.0.0.1")
	viper.SetDefault("server_port", 8080)
	viper.SetDefault("server_read_timeout", "30s")
	viper.SetDefault("server_write_timeout", "60s")
	viper.SetDefault("server_idle_timeout", "120s")
	viper.SetDefault("cors_allowed_origins", []string{"*"})

	viper.SetDefault("db_type", "sqlite")
	viper.SetDefault("db_host", "localhost")
	viper.SetDefault("db_port", 5432)
	viper.SetDefault("db_username", "postgres")
	viper.SetDefault("db_password", "")
	viper.SetDefault("db_name", "taskboard")
	viper.SetDefault("db_file_path", "./data/taskboard.db")
	viper.SetDefault("db_max_open_conns", 50)
	viper.SetDefault("db_max_idle_conns", 10)
	viper.SetDefault("db_conn_max_lifetime", 3600)

	viper.SetDefault("log_dir", "./data/logs")
	viper.SetDefault("log_level", "info")

	viper.SetDefault("jwt_secret", "")
	viper.SetDefault("jwt_expires_in", "24h")

	viper.SetDefault("cache_type", "memory")
	viper.SetDefault("cache_redis_addr", "localhost:6379")
	viper.SetDefault("cache_redis_password", "")
	viper.SetDefault("cache_redis_db", 0)
	viper.SetDefault("settings_cache_ttl", "1m")

	viper.SetDefault("storage_type", "local")
	viper.SetDefault("upload_root", "./data/uploads")
	viper.SetDefault("upload_public_prefix", "/uploads")
	viper.SetDefault("storage_minio_endpoint", "")
	viper.SetDefault("storage_minio_access_key", "")
	viper.SetDefault("storage_minio_secret_key", "")
	viper.SetDefault("storage_minio_bucket", "taskboard")
	viper.SetDefault("storage_minio_use_ssl", false)
	viper.SetDefault("storage_webdav_url", "")
	viper.SetDefault("storage_webdav_username", "")
	viper.SetDefault("storage_webdav_password", "")
	viper.SetDefault("storage_webdav_root_path", "/taskboard")

	viper.SetDefault("rate_limit_api_rps", 30.0)
	viper.SetDefault("rate_limit_api_burst", 60)
	viper.SetDefault("rate_limit_upload_rps", 2.0)
	viper.SetDefault("rate_limit_upload_burst", 10)
	viper.SetDefault("rate_limit_expire_time", "10m")

	viper.SetDefault("upload_max_size_mb", 50)
	viper.SetDefault("request_max_size_mb", 64)

	viper.SetDefault("worker_count", 0)
}

// Addr 返回监听地址，格式为 "host:port"
func (c *Config) Addr() string {
	host := c.ServerHost
	if host == "" {
		host = "0.0.0.0"
	}
	port := c.ServerPort
	if port == 0 {
		port = 8080
	}
	return fmt.Sprintf("%s:%d", host, port)
}

// UploadMaxBytes 单个上传文件的平台上限（字节），0 表示不限制
func (c *Config) UploadMaxBytes() int64 {
	if c.UploadMaxSizeMB <= 0 {
		return 0
	}
	return int64(c.UploadMaxSizeMB) * bytesPerMB
}

// RequestMaxBytes 请求体的平台上限（字节），0 表示不限制
func (c *Config) RequestMaxBytes() int64 {
	if c.RequestMaxSizeMB <= 0 {
		return 0
	}
	return int64(c.RequestMaxSizeMB) * bytesPerMB
}

// GetWorkerCount 返回 worker 数量
func (c *Config) GetWorkerCount() int {
	if c.WorkerCount <= 0 {
		return getCpus()
	}
	return c.WorkerCount
}

// getCpus 获取默认线程数量
func getCpus() int {
	n := runtime.GOMAXPROCS(0)
	if n < 2 {
		return 2
	}
	return n
}
