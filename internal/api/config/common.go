package config

import "time"

// Config 配置主体
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	DB       DBConfig       `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
	HotScore HotScoreConfig `mapstructure:"hot_score"`
	TopJob   TopJobConfig   `mapstructure:"top_job"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

type DBConfig struct {
	Driver      string `mapstructure:"driver"` // mysql | sqlite
	DSN         string `mapstructure:"dsn"`
	MaxIdle     int    `mapstructure:"max_idle"`
	MaxOpen     int    `mapstructure:"max_open"`
	MaxLifetime int    `mapstructure:"max_lifetime"` // 分钟
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

// CacheConfig 计数缓存的过期窗口与单次操作超时
type CacheConfig struct {
	TTLFloorSeconds int `mapstructure:"ttl_floor_seconds"`
	TTLCeilSeconds  int `mapstructure:"ttl_ceil_seconds"`
	OpTimeoutMillis int `mapstructure:"op_timeout_millis"`
}

// WithDefaults 返回补齐默认值后的配置（480~600 秒随机过期，200ms 超时）。
// 上界必须严格大于下界，配置不满足时从下界推导，保证抖动区间永远非空。
func (c CacheConfig) WithDefaults() CacheConfig {
	if c.TTLFloorSeconds <= 0 {
		c.TTLFloorSeconds = 480
	}
	if c.TTLCeilSeconds <= c.TTLFloorSeconds {
		c.TTLCeilSeconds = c.TTLFloorSeconds + 120
	}
	if c.OpTimeoutMillis <= 0 {
		c.OpTimeoutMillis = 200
	}
	return c
}

func (c CacheConfig) TTLFloor() time.Duration {
	return time.Duration(c.TTLFloorSeconds) * time.Second
}

func (c CacheConfig) TTLCeil() time.Duration {
	return time.Duration(c.TTLCeilSeconds) * time.Second
}

func (c CacheConfig) OpTimeout() time.Duration {
	return time.Duration(c.OpTimeoutMillis) * time.Millisecond
}

type KafkaConfig struct {
	Brokers []string        `mapstructure:"brokers"`
	Topic   string          `mapstructure:"topic"`
	Sasl    KafkaSaslConfig `mapstructure:"sasl"`
}

type KafkaSaslConfig struct {
	Enable   bool   `mapstructure:"enable"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// HotScoreConfig 热度分数任务的窗口、批量与权重配置
type HotScoreConfig struct {
	Cron          string  `mapstructure:"cron"`
	WindowDays    int     `mapstructure:"window_days"`
	BatchSize     int     `mapstructure:"batch_size"`
	WeightThumb   float64 `mapstructure:"weight_thumb"`
	WeightFavour  float64 `mapstructure:"weight_favour"`
	WeightComment float64 `mapstructure:"weight_comment"`
	WeightView    float64 `mapstructure:"weight_view"`
	AgeOffset     float64 `mapstructure:"age_offset"` // 分母中的小时偏移量
}

// WithDefaults 返回补齐默认值后的配置，权重沿用 3/4/5/0.5，偏移 2 小时
func (c HotScoreConfig) WithDefaults() HotScoreConfig {
	if c.Cron == "" {
		c.Cron = "@every 30m"
	}
	if c.WindowDays <= 0 {
		c.WindowDays = 7
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 500
	}
	if c.WeightThumb == 0 {
		c.WeightThumb = 3
	}
	if c.WeightFavour == 0 {
		c.WeightFavour = 4
	}
	if c.WeightComment == 0 {
		c.WeightComment = 5
	}
	if c.WeightView == 0 {
		c.WeightView = 0.5
	}
	if c.AgeOffset == 0 {
		c.AgeOffset = 2
	}
	return c
}

type TopJobConfig struct {
	Cron string `mapstructure:"cron"`
}

func (c TopJobConfig) WithDefaults() TopJobConfig {
	if c.Cron == "" {
		c.Cron = "@every 1m"
	}
	return c
}
