package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Cfg 全局可访问的配置实例
var Cfg *Config

// LoadConfig 从文件加载配置并填充到 Cfg
func LoadConfig() error {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")

	// HALAL_DATABASE_DSN 覆盖 database.dsn
	v.SetEnvPrefix("halal")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.Security.JWTSecret == "" {
		return errors.New("security.jwt_secret must be set")
	}

	Cfg = &cfg

	return nil
}

// Default 返回只包含默认值的配置，测试使用
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	_ = v.Unmarshal(&cfg)
	return &cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.shutdown_timeout", 5)

	v.SetDefault("database.max_idle", 10)
	v.SetDefault("database.max_open", 50)
	v.SetDefault("database.max_lifetime", 30)
	v.SetDefault("database.auto_migrate", true)

	v.SetDefault("redis.addr", "127.0.0.1:6379")
	v.SetDefault("redis.pool_size", 20)

	v.SetDefault("minio.main_bucket", "halal-calendar")
	v.SetDefault("minio.external_use_ssl", true)

	v.SetDefault("logstash.index", "logstash-halal-calendar")

	v.SetDefault("security.jwt_issuer", "HalalCalendar")
	v.SetDefault("security.jwt_expire_hours", 24)

	v.SetDefault("post.page_size", 4)
	v.SetDefault("post.max_page_size", 50)
	v.SetDefault("post.max_image_width", 1600)
	v.SetDefault("post.max_upload_size", 10<<20)

	v.SetDefault("nominatim.base_url", "https://nominatim.openstreetmap.org")
	v.SetDefault("nominatim.user_agent", "HalalCalendar/1.0")
	v.SetDefault("nominatim.timeout_millis", 5000)
	v.SetDefault("nominatim.debounce_millis", 300)
	v.SetDefault("nominatim.min_query_length", 3)
	v.SetDefault("nominatim.limit", 8)
}
