package config

// Config 配置主体
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	DB        DBConfig        `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	MinIO     MinIOConfig     `mapstructure:"minio"`
	Logstash  LogstashConfig  `mapstructure:"logstash"`
	Security  SecurityConfig  `mapstructure:"security"`
	Post      PostConfig      `mapstructure:"post"`
	Nominatim NominatimConfig `mapstructure:"nominatim"`
}

// ServerConfig Server配置
type ServerConfig struct {
	Port            int    `mapstructure:"port"`
	Mode            string `mapstructure:"mode"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout"`
}

// DBConfig 数据库配置
type DBConfig struct {
	DSN         string `mapstructure:"dsn"`
	MaxIdle     int    `mapstructure:"max_idle"`
	MaxOpen     int    `mapstructure:"max_open"`
	MaxLifetime int    `mapstructure:"max_lifetime"`
	AutoMigrate bool   `mapstructure:"auto_migrate"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

// MinIOConfig MinIO配置
type MinIOConfig struct {
	InternalEndpoint string `mapstructure:"internal_endpoint"`
	ExternalEndpoint string `mapstructure:"external_endpoint"`
	AccessKey        string `mapstructure:"access_key"`
	SecretKey        string `mapstructure:"secret_key"`
	MainBucket       string `mapstructure:"main_bucket"`
	InternalUseSSL   bool   `mapstructure:"internal_use_ssl"`
	ExternalUseSSL   bool   `mapstructure:"external_use_ssl"`
}

// LogstashConfig 远程日志
type LogstashConfig struct {
	Address string `mapstructure:"address"`
	Index   string `mapstructure:"index"`
	Token   string `mapstructure:"token"`
}

// SecurityConfig 令牌配置
type SecurityConfig struct {
	JWTSecret      string `mapstructure:"jwt_secret"`
	JWTIssuer      string `mapstructure:"jwt_issuer"`
	JWTExpireHours int    `mapstructure:"jwt_expire_hours"`
}

// PostConfig 帖子相关配置
type PostConfig struct {
	PageSize      int   `mapstructure:"page_size"`
	MaxPageSize   int   `mapstructure:"max_page_size"`
	MaxImageWidth int   `mapstructure:"max_image_width"`
	MaxUploadSize int64 `mapstructure:"max_upload_size"`
}

// NominatimConfig 地点搜索
type NominatimConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	UserAgent      string `mapstructure:"user_agent"`
	TimeoutMillis  int    `mapstructure:"timeout_millis"`
	DebounceMillis int    `mapstructure:"debounce_millis"`
	MinQueryLength int    `mapstructure:"min_query_length"`
	Limit          int    `mapstructure:"limit"`
}
