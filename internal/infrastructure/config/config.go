package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 全局配置
// 使用Viper读取YAML,环境变量覆盖（LOGITRAX_DATABASE_PASSWORD → database.password）
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Inventory InventoryConfig `mapstructure:"inventory"`
	Order     OrderConfig     `mapstructure:"order"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	Log       LogConfig       `mapstructure:"log"`
	MQ        MQConfig        `mapstructure:"mq"`
	Tracing   TracingConfig   `mapstructure:"tracing"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"` // debug | release | test
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"` // mysql | postgres | sqlite
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	Charset         string        `mapstructure:"charset"`
	ParseTime       bool          `mapstructure:"parse_time"`
	Loc             string        `mapstructure:"loc"`
	SSLMode         string        `mapstructure:"sslmode"`
	Path            string        `mapstructure:"path"` // sqlite文件路径,":memory:"为内存库
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// DSN 按驱动生成连接字符串
// mysql: user:password@tcp(host:port)/dbname?charset=utf8mb4&parseTime=True&loc=Asia%2FShanghai
// postgres: host=... user=... dbname=... sslmode=disable
func (d DatabaseConfig) DSN() string {
	switch d.Driver {
	case "postgres":
		sslmode := d.SSLMode
		if sslmode == "" {
			sslmode = "disable"
		}
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			d.Host, d.Port, d.User, d.Password, d.DBName, sslmode)
	case "sqlite":
		if d.Path == "" {
			return ":memory:"
		}
		return d.Path
	default:
		loc := url.QueryEscape(d.Loc)
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=%s",
			d.User, d.Password, d.Host, d.Port, d.DBName, d.Charset, d.ParseTime, loc)
	}
}

type RedisConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// Addr 返回Redis地址
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// CacheConfig 读缓存
// driver=memory 为进程内缓存,driver=redis 多实例共享
type CacheConfig struct {
	Driver       string        `mapstructure:"driver"`
	KeyPrefix    string        `mapstructure:"key_prefix"`
	InventoryTTL time.Duration `mapstructure:"inventory_ttl"`
	OrdersTTL    time.Duration `mapstructure:"orders_ttl"`
}

// SeedItem 库存为空时写入的初始数据
type SeedItem struct {
	Name     string `mapstructure:"name"`
	Location string `mapstructure:"location"`
	Quantity int    `mapstructure:"quantity"`
}

type InventoryConfig struct {
	AllowedLocations []string   `mapstructure:"allowed_locations"`
	Seed             []SeedItem `mapstructure:"seed"`
}

type OrderConfig struct {
	MaxReserveAttempts int           `mapstructure:"max_reserve_attempts"`
	ReserveTimeout     time.Duration `mapstructure:"reserve_timeout"`
	DefaultPageSize    int           `mapstructure:"default_page_size"`
	MaxPageSize        int           `mapstructure:"max_page_size"`
}

type JWTConfig struct {
	Secret      string        `mapstructure:"secret"`
	Issuer      string        `mapstructure:"issuer"`
	Audience    string        `mapstructure:"audience"`
	TokenExpire time.Duration `mapstructure:"token_expire"`
}

type LogConfig struct {
	Level        string `mapstructure:"level"`  // debug | info | warn | error
	Format       string `mapstructure:"format"` // console | json
	Output       string `mapstructure:"output"` // stdout | stderr | /path/to/file
	EnableCaller bool   `mapstructure:"enable_caller"`
}

type MQConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	URL          string        `mapstructure:"url"`
	Exchange     string        `mapstructure:"exchange"`
	ExchangeType string        `mapstructure:"exchange_type"`
	BreakerOpen  time.Duration `mapstructure:"breaker_open"` // 熔断后多久再尝试
}

type TracingConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	ServiceName string  `mapstructure:"service_name"`
	Endpoint    string  `mapstructure:"endpoint"`
	Insecure    bool    `mapstructure:"insecure"`
	SampleRatio float64 `mapstructure:"sample_ratio"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// Load 加载配置文件
// 1. 默认读取 ./config/config.yaml
// 2. LOGITRAX_ENV=prod 时读取 config.prod.yaml
// 3. LOGITRAX_CONFIG 指定配置目录
// 4. 环境变量覆盖,如 LOGITRAX_DATABASE_PASSWORD
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if dir := os.Getenv("LOGITRAX_CONFIG"); dir != "" {
		v.AddConfigPath(dir)
	}
	v.AddConfigPath("./config")
	v.AddConfigPath(".")

	if env := os.Getenv("LOGITRAX_ENV"); env != "" {
		v.SetConfigName("config." + env)
	}

	v.SetEnvPrefix("LOGITRAX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 10*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("database.driver", "mysql")
	v.SetDefault("database.charset", "utf8mb4")
	v.SetDefault("database.parse_time", true)
	v.SetDefault("database.loc", "Local")
	v.SetDefault("database.max_open_conns", 20)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", time.Hour)

	v.SetDefault("cache.driver", "memory")
	v.SetDefault("cache.key_prefix", "logitrax:")
	v.SetDefault("cache.inventory_ttl", 30*time.Second)
	v.SetDefault("cache.orders_ttl", 30*time.Second)

	v.SetDefault("order.max_reserve_attempts", 3)
	v.SetDefault("order.reserve_timeout", 5*time.Second)
	v.SetDefault("order.default_page_size", 10)
	v.SetDefault("order.max_page_size", 100)

	v.SetDefault("jwt.token_expire", 2*time.Hour)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.output", "stdout")

	v.SetDefault("mq.exchange", "logitrax.events")
	v.SetDefault("mq.exchange_type", "topic")
	v.SetDefault("mq.breaker_open", 30*time.Second)

	v.SetDefault("tracing.service_name", "logitrax")
	v.SetDefault("tracing.insecure", true)
	v.SetDefault("tracing.sample_ratio", 1.0)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
}

// validate 配置校验
func validate(cfg *Config) error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("无效的服务端口: %d", cfg.Server.Port)
	}

	switch cfg.Database.Driver {
	case "mysql", "postgres", "sqlite":
	default:
		return fmt.Errorf("不支持的数据库驱动: %s", cfg.Database.Driver)
	}

	switch cfg.Cache.Driver {
	case "memory", "redis":
	default:
		return fmt.Errorf("不支持的缓存驱动: %s", cfg.Cache.Driver)
	}

	if len(cfg.Inventory.AllowedLocations) == 0 {
		return fmt.Errorf("inventory.allowed_locations 至少需要一个仓库位置")
	}
	for _, item := range cfg.Inventory.Seed {
		if item.Quantity <= 0 || item.Name == "" {
			return fmt.Errorf("无效的初始库存: %+v", item)
		}
	}

	if cfg.Order.MaxReserveAttempts < 1 {
		return fmt.Errorf("order.max_reserve_attempts 必须大于0")
	}
	if cfg.Order.DefaultPageSize < 1 || cfg.Order.MaxPageSize < cfg.Order.DefaultPageSize {
		return fmt.Errorf("无效的分页配置: default=%d max=%d", cfg.Order.DefaultPageSize, cfg.Order.MaxPageSize)
	}

	if cfg.JWT.Secret == "" {
		return fmt.Errorf("jwt.secret 不能为空")
	}
	if cfg.JWT.Secret == "change-me-in-production" && cfg.Server.Mode == "release" {
		return fmt.Errorf("生产环境必须修改JWT密钥")
	}

	if cfg.MQ.Enabled && cfg.MQ.URL == "" {
		return fmt.Errorf("启用mq时必须配置 mq.url")
	}
	if cfg.Tracing.Enabled && cfg.Tracing.Endpoint == "" {
		return fmt.Errorf("启用tracing时必须配置 tracing.endpoint")
	}

	return nil
}
