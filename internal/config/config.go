package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

//go:embed defaults.yaml
var defaults []byte

// ---- Root ----

type Config struct {
	LogLevel   string           `mapstructure:"log_level"`
	Owner      OwnerConfig      `mapstructure:"owner"`
	Store      StoreConfig      `mapstructure:"store"`
	Sender     SenderConfig     `mapstructure:"sender"`
	Dispatcher DispatcherConfig `mapstructure:"dispatcher"`
	Providers  []ProviderConfig `mapstructure:"providers"`
	Kafka      KafkaConfig      `mapstructure:"kafka"`
	Worker     WorkerConfig     `mapstructure:"worker"`
	HTTP       HTTPConfig       `mapstructure:"http"`
	Redis      RedisConfig      `mapstructure:"redis"`
	RateLimit  RateLimitConfig  `mapstructure:"rate_limit"`
	Sink       DatabaseConfig   `mapstructure:"sink"`
}

// ---- Leaf structs ----

type OwnerConfig struct {
	Name         string `mapstructure:"name"`
	Phone        string `mapstructure:"phone"`
	CountryCode  string `mapstructure:"country_code"`
	BusinessName string `mapstructure:"business_name"`
}

type StoreConfig struct {
	Dir            string `mapstructure:"dir"`
	ContactsFormat string `mapstructure:"contacts_format"`
}

type SenderConfig struct {
	Transport       string        `mapstructure:"transport"`
	Delay           time.Duration `mapstructure:"delay"`
	AttachmentTypes []string      `mapstructure:"attachment_types"`
}

type DispatcherConfig struct {
	MaxAttempts int `mapstructure:"max_attempts"`
}

type BreakerConfig struct {
	FailThreshold int `mapstructure:"fail_threshold" yaml:"fail_threshold"`
	OpenForMs     int `mapstructure:"open_for_ms"    yaml:"open_for_ms"`
}

type ProviderConfig struct {
	Name      string        `mapstructure:"name"`
	Enabled   bool          `mapstructure:"enabled"`
	BaseURL   string        `mapstructure:"base_url"`
	SendPath  string        `mapstructure:"send_path"`
	Token     string        `mapstructure:"token"`
	TimeoutMs int           `mapstructure:"timeout_ms"`
	Breaker   BreakerConfig `mapstructure:"breaker"`
}

type KafkaConfig struct {
	Brokers        []string `mapstructure:"brokers"`
	Topic          string   `mapstructure:"topic"`
	GroupID        string   `mapstructure:"group_id"`
	MinBytes       int      `mapstructure:"min_bytes"`
	MaxBytes       int      `mapstructure:"max_bytes"`
	CommitInterval int      `mapstructure:"commit_interval_ms"`
}

// WorkerConfig tunes `worker sender`. Transport must not be kafka, which would
// re-publish to the topic being consumed.
type WorkerConfig struct {
	Transport    string        `mapstructure:"transport"`
	Count        int           `mapstructure:"count"`
	Delay        time.Duration `mapstructure:"delay"`
	MirrorToSink bool          `mapstructure:"mirror_to_sink"`
	BatchSize    int           `mapstructure:"batch_size"`
	BatchWait    time.Duration `mapstructure:"batch_wait"`
}

type HTTPConfig struct {
	Addr    string   `mapstructure:"addr"`
	APIKeys []string `mapstructure:"api_keys"`
}

type RedisConfig struct {
	Addr        string        `mapstructure:"addr"`
	Password    string        `mapstructure:"password"`
	DB          int           `mapstructure:"db"`
	DialTimeout time.Duration `mapstructure:"dial_timeout"`
}

type RateLimitConfig struct {
	RPS int `mapstructure:"rps"`
}

type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"`
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idletime"`
	PingTimeout     time.Duration `mapstructure:"ping_timeout"`
}

// Load reads embedded defaults, merges user YAML (if provided), and applies env overrides (WAA_*).
// A .env file in the working directory is loaded into the environment first, when present.
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	v := viper.New()

	// embedded defaults
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewReader(defaults)); err != nil {
		return Config{}, err
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.MergeInConfig(); err != nil && !isNotFound(err) {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	// env override (WAA_*), nested keys use "_": WAA_STORE_DIR
	v.SetEnvPrefix("WAA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// isNotFound reports whether err means the optional config file is absent.
func isNotFound(err error) bool {
	var nf viper.ConfigFileNotFoundError
	return errors.As(err, &nf) || errors.Is(err, fs.ErrNotExist)
}
