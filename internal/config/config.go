package config

import (
	"fmt"
	"os"
	"time"
	_ "time/tzdata"

	"github.com/go-yaml/yaml"

	"github.com/NEO-KLIZZERX/Anon-Messages-Bot/internal/domain"
)

type Config struct {
	Relay  Relay  `yaml:"relay"`
	Server Server `yaml:"server"`
	Auth   Auth   `yaml:"auth"`
}

type Relay struct {
	AdminID           int64    `yaml:"adminId"`
	Cooldown          string   `yaml:"cooldown"`
	DailyLimitPerPair int      `yaml:"dailyLimitPerPair"`
	DefaultBlockLinks *bool    `yaml:"defaultBlockLinks"`
	InboxLimit        int      `yaml:"inboxLimit"`
	LinkMarkers       []string `yaml:"linkMarkers"`
	Timezone          string   `yaml:"timezone"`
	BotUsername       string   `yaml:"botUsername"`
}

type Server struct {
	Listen          string `yaml:"listen"`
	DBDriver        string `yaml:"dbDriver"` // postgres, sqlite
	DSN             string `yaml:"dsn"`
	MaxOpenConns    int    `yaml:"maxOpenConns"`
	MaxIdleConns    int    `yaml:"maxIdleConns"`
	DebugSQL        bool   `yaml:"debugSQL"`
	RedisAddr       string `yaml:"redisAddr"`
	RedisPassword   string `yaml:"redisPassword"`
	RedisDB         int    `yaml:"redisDB"`
	PendingStore    string `yaml:"pendingStore"` // database, redis
	PendingTTL      string `yaml:"pendingTTL"`
	MemcachedAddr   string `yaml:"memcachedAddr"`
	CodeCacheTTL    string `yaml:"codeCacheTTL"`
	EnableTrace     bool   `yaml:"enableTrace"`
	TraceEndpoint   string `yaml:"traceEndpoint"`
	EventsChannel   string `yaml:"eventsChannel"`
	ShutdownTimeout string `yaml:"shutdownTimeout"`
	LogLevel        string `yaml:"logLevel"` // debug, info, warn, error
}

type Auth struct {
	Secret   string `yaml:"secret"`
	Audience string `yaml:"audience"`
}

func Load(path string) (Config, error) {

	file, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer file.Close()

	var config Config
	err = yaml.NewDecoder(file).Decode(&config)
	if err != nil {
		return Config{}, err
	}

	config.applyDefaults()
	if _, err := config.Domain(); err != nil {
		return Config{}, err
	}

	return config, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Listen == "" {
		c.Server.Listen = ":8000"
	}
	if c.Server.DBDriver == "" {
		c.Server.DBDriver = "sqlite"
	}
	if c.Server.DSN == "" && c.Server.DBDriver == "sqlite" {
		c.Server.DSN = "anonrelay.db"
	}
	if c.Server.PendingStore == "" {
		c.Server.PendingStore = "database"
	}
	if c.Server.CodeCacheTTL == "" {
		c.Server.CodeCacheTTL = "10m"
	}
	if c.Server.EventsChannel == "" {
		c.Server.EventsChannel = "anonrelay:events"
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = "info"
	}
	if c.Server.ShutdownTimeout == "" {
		c.Server.ShutdownTimeout = "10s"
	}
}

// Domain builds the relay thresholds, falling back to the defaults for unset values.
func (c Config) Domain() (domain.Config, error) {
	result := domain.DefaultConfig()
	result.AdminID = c.Relay.AdminID
	result.BotUsername = c.Relay.BotUsername

	if c.Relay.Cooldown != "" {
		d, err := time.ParseDuration(c.Relay.Cooldown)
		if err != nil {
			return domain.Config{}, fmt.Errorf("invalid relay.cooldown: %w", err)
		}
		if d < 0 {
			return domain.Config{}, fmt.Errorf("relay.cooldown must not be negative")
		}
		result.Cooldown = d
	}
	if c.Relay.DailyLimitPerPair < 0 {
		return domain.Config{}, fmt.Errorf("relay.dailyLimitPerPair must not be negative")
	}
	if c.Relay.DailyLimitPerPair > 0 {
		result.DailyLimitPerPair = c.Relay.DailyLimitPerPair
	}
	if c.Relay.DefaultBlockLinks != nil {
		result.DefaultBlockLinks = *c.Relay.DefaultBlockLinks
	}
	if c.Relay.InboxLimit > 0 {
		result.InboxLimit = c.Relay.InboxLimit
	}
	if len(c.Relay.LinkMarkers) > 0 {
		result.LinkMarkers = c.Relay.LinkMarkers
	}
	if c.Relay.Timezone != "" {
		loc, err := time.LoadLocation(c.Relay.Timezone)
		if err != nil {
			return domain.Config{}, fmt.Errorf("invalid relay.timezone: %w", err)
		}
		result.Location = loc
	}

	return result, nil
}

// Duration parses one of the server duration settings. Empty means zero.
func Duration(value string) (time.Duration, error) {
	if value == "" {
		return 0, nil
	}
	return time.ParseDuration(value)
}
