package configs

import (
	"fmt"
	"time"

	"github.com/hilthontt/breakout/internal/infrastructure/env"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	HTTP        HTTPConfig        `koanf:"http"`
	RateLimiter RateLimiterConfig `koanf:"rateLimiter"`
	Breakout    BreakoutConfig    `koanf:"breakout"`
	Transfer    TransferConfig    `koanf:"transfer"`
	Join        JoinConfig        `koanf:"join"`
	AudioBridge AudioBridgeConfig `koanf:"audio_bridge"`
	Redis       RedisConfig       `koanf:"redis"`
	Mongo       MongoConfig       `koanf:"mongodb"`
	Events      EventsConfig      `koanf:"events"`
}

type HTTPConfig struct {
	Host           string        `koanf:"host"`
	Port           uint16        `koanf:"port"`
	AllowedOrigins []string      `koanf:"allowed_origins"`
	ReadTimeout    time.Duration `koanf:"read_timeout"`
	WriteTimeout   time.Duration `koanf:"write_timeout"`
}

type RateLimiterConfig struct {
	MaxRatePerSecond int           `koanf:"maxRatePerSecond"`
	MaxBurst         int           `koanf:"maxBurst"`
	CacheTTL         time.Duration `koanf:"cacheTTL"`
	SourceHeaderKey  string        `koanf:"sourceHeaderKey"`
}

type BreakoutConfig struct {
	MaxRooms      int           `koanf:"max_rooms"`
	SweepInterval time.Duration `koanf:"sweep_interval"`
}

type TransferConfig struct {
	ConfirmTimeout time.Duration `koanf:"confirm_timeout"`
}

type JoinConfig struct {
	BaseURL  string        `koanf:"base_url"`
	Secret   string        `koanf:"secret"`
	GrantTTL time.Duration `koanf:"grant_ttl"`
	// Store is "memory" or "redis".
	Store string `koanf:"store"`
}

type AudioBridgeConfig struct {
	// AutoConfirm > 0 makes the built-in bridge confirm prepared legs by itself.
	AutoConfirm time.Duration `koanf:"auto_confirm"`
	// CallbackSecret authenticates an external bridge on the confirm route.
	// Empty disables the route.
	CallbackSecret string `koanf:"callback_secret"`
}

type RedisConfig struct {
	Addr     string `koanf:"addr"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db"`
}

// MongoConfig backs the audit log. A zero max pool size keeps the driver default.
type MongoConfig struct {
	URI            string        `koanf:"uri"`
	Database       string        `koanf:"database"`
	ConnectTimeout time.Duration `koanf:"connect_timeout"`
	MaxPoolSize    uint64        `koanf:"max_pool_size"`
	MinPoolSize    uint64        `koanf:"min_pool_size"`
}

type EventsConfig struct {
	RabbitMQEnabled bool `koanf:"rabbitmq_enabled"`
	AuditEnabled    bool `koanf:"audit_enabled"`
}

func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	applyDefaults(k)
	applyEnvOverrides(k)

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Breakout.MaxRooms <= 0 {
		return fmt.Errorf("breakout.max_rooms must be positive, got %d", c.Breakout.MaxRooms)
	}
	if c.Transfer.ConfirmTimeout <= 0 {
		return fmt.Errorf("transfer.confirm_timeout must be positive, got %s", c.Transfer.ConfirmTimeout)
	}
	if c.Join.GrantTTL <= 0 {
		return fmt.Errorf("join.grant_ttl must be positive, got %s", c.Join.GrantTTL)
	}
	if c.Join.Store != "memory" && c.Join.Store != "redis" {
		return fmt.Errorf("join.store must be memory or redis, got %q", c.Join.Store)
	}
	if c.Events.AuditEnabled && (c.Mongo.URI == "" || c.Mongo.Database == "") {
		return fmt.Errorf("mongodb.uri and mongodb.database are required when events.audit_enabled is set")
	}
	return nil
}

func applyDefaults(k *koanf.Koanf) {
	setDefault(k, "http.host", "0.0.0.0")
	setDefault(k, "http.port", 8080)
	setDefault(k, "http.read_timeout", 10*time.Second)
	setDefault(k, "http.write_timeout", 30*time.Second)
	setDefault(k, "http.allowed_origins", []string{"*"})

	setDefault(k, "rateLimiter.maxRatePerSecond", 10)
	setDefault(k, "rateLimiter.maxBurst", 20)
	setDefault(k, "rateLimiter.cacheTTL", 5*time.Minute)
	setDefault(k, "rateLimiter.sourceHeaderKey", "X-Forwarded-For")

	setDefault(k, "breakout.max_rooms", 16)
	setDefault(k, "breakout.sweep_interval", time.Second)

	setDefault(k, "transfer.confirm_timeout", 10*time.Second)

	setDefault(k, "join.base_url", "http://localhost:8080")
	setDefault(k, "join.secret", "change-me")
	setDefault(k, "join.grant_ttl", 2*time.Minute)
	setDefault(k, "join.store", "memory")

	setDefault(k, "audio_bridge.auto_confirm", 0)

	setDefault(k, "redis.addr", "localhost:6379")
	setDefault(k, "redis.db", 0)

	setDefault(k, "mongodb.uri", "mongodb://localhost:27017")
	setDefault(k, "mongodb.database", "breakout")
	setDefault(k, "mongodb.connect_timeout", 20*time.Second)
	setDefault(k, "mongodb.max_pool_size", 20)
	setDefault(k, "mongodb.min_pool_size", 0)

	setDefault(k, "events.rabbitmq_enabled", false)
	setDefault(k, "events.audit_enabled", false)
}

func applyEnvOverrides(k *koanf.Koanf) {
	if host := env.GetString("HTTP_HOST", ""); host != "" {
		k.Set("http.host", host)
	}
	if port := env.GetInt("HTTP_PORT", 0); port > 0 {
		k.Set("http.port", port)
	}
	if readTimeout := env.GetInt("HTTP_READ_TIMEOUT_SECONDS", 0); readTimeout > 0 {
		k.Set("http.read_timeout", time.Duration(readTimeout)*time.Second)
	}
	if writeTimeout := env.GetInt("HTTP_WRITE_TIMEOUT_SECONDS", 0); writeTimeout > 0 {
		k.Set("http.write_timeout", time.Duration(writeTimeout)*time.Second)
	}

	if maxRate := env.GetInt("RATE_LIMIT_MAX_RATE_PER_SECOND", 0); maxRate > 0 {
		k.Set("rateLimiter.maxRatePerSecond", maxRate)
	}
	if maxBurst := env.GetInt("RATE_LIMIT_MAX_BURST", 0); maxBurst > 0 {
		k.Set("rateLimiter.maxBurst", maxBurst)
	}
	if sourceKey := env.GetString("RATE_LIMIT_SOURCE_HEADER_KEY", ""); sourceKey != "" {
		k.Set("rateLimiter.sourceHeaderKey", sourceKey)
	}

	if maxRooms := env.GetInt("BREAKOUT_MAX_ROOMS", 0); maxRooms > 0 {
		k.Set("breakout.max_rooms", maxRooms)
	}
	if timeout := env.GetDuration("TRANSFER_CONFIRM_TIMEOUT", 0); timeout > 0 {
		k.Set("transfer.confirm_timeout", timeout)
	}

	if baseURL := env.GetString("JOIN_BASE_URL", ""); baseURL != "" {
		k.Set("join.base_url", baseURL)
	}
	if secret := env.GetString("JOIN_SECRET", ""); secret != "" {
		k.Set("join.secret", secret)
	}
	if ttl := env.GetDuration("JOIN_GRANT_TTL", 0); ttl > 0 {
		k.Set("join.grant_ttl", ttl)
	}
	if store := env.GetString("JOIN_STORE", ""); store != "" {
		k.Set("join.store", store)
	}

	if secret := env.GetString("AUDIO_BRIDGE_CALLBACK_SECRET", ""); secret != "" {
		k.Set("audio_bridge.callback_secret", secret)
	}

	if addr := env.GetString("REDIS_ADDR", ""); addr != "" {
		k.Set("redis.addr", addr)
	}
	if password := env.GetString("REDIS_PASSWORD", ""); password != "" {
		k.Set("redis.password", password)
	}

	if uri := env.GetString("MONGODB_URI", ""); uri != "" {
		k.Set("mongodb.uri", uri)
	}
	if database := env.GetString("MONGODB_DATABASE", ""); database != "" {
		k.Set("mongodb.database", database)
	}
	if timeout := env.GetDuration("MONGODB_CONNECT_TIMEOUT", 0); timeout > 0 {
		k.Set("mongodb.connect_timeout", timeout)
	}
}

// setDefault only sets the value if the key doesn't already exist
func setDefault(k *koanf.Koanf, key string, value interface{}) {
	if !k.Exists(key) {
		k.Set(key, value)
	}
}
