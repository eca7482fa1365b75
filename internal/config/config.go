package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/adhocore/gronx"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server       ServerConfig       `mapstructure:"server" json:"server"`
	Database     DatabaseConfig     `mapstructure:"database" json:"database"`
	MongoDB      MongoDBConfig      `mapstructure:"mongodb" json:"mongodb"`
	Storage      StorageConfig      `mapstructure:"storage" json:"storage"`
	Redis        RedisConfig        `mapstructure:"redis" json:"redis"`
	Kafka        KafkaConfig        `mapstructure:"kafka" json:"kafka"`
	Auth         AuthConfig         `mapstructure:"auth" json:"auth"`
	Realtime     RealtimeConfig     `mapstructure:"realtime" json:"realtime"`
	Notification NotificationConfig `mapstructure:"notification" json:"notification"`
	Verification VerificationConfig `mapstructure:"verification" json:"verification"`
	RateLimit    RateLimitConfig    `mapstructure:"rate_limit" json:"rate_limit"`
	Stories      StoriesConfig      `mapstructure:"stories" json:"stories"`
	Logging      LoggingConfig      `mapstructure:"logging" json:"logging"`
}

type ServerConfig struct {
	Host         string `mapstructure:"host" json:"host"`
	APIPort      string `mapstructure:"api_port" json:"api_port"`
	RealtimePort string `mapstructure:"realtime_port" json:"realtime_port"`
	MediaPort    string `mapstructure:"media_port" json:"media_port"`
	ReadTimeout  int    `mapstructure:"read_timeout" json:"read_timeout"`   // seconds
	WriteTimeout int    `mapstructure:"write_timeout" json:"write_timeout"` // seconds
	Environment  string `mapstructure:"environment" json:"environment"`     // development, staging, production
}

type DatabaseConfig struct {
	Driver       string `mapstructure:"driver" json:"driver"` // mysql, sqlite
	Host         string `mapstructure:"host" json:"host"`
	Port         string `mapstructure:"port" json:"port"`
	Username     string `mapstructure:"username" json:"username"`
	Password     string `mapstructure:"password" json:"-"`
	DatabaseName string `mapstructure:"database_name" json:"database_name"`
	SQLitePath   string `mapstructure:"sqlite_path" json:"sqlite_path"`
	MaxOpenConns int    `mapstructure:"max_open_conns" json:"max_open_conns"`
	MaxIdleConns int    `mapstructure:"max_idle_conns" json:"max_idle_conns"`
}

type MongoDBConfig struct {
	Host     string `mapstructure:"host" json:"host"`
	Port     string `mapstructure:"port" json:"port"`
	Username string `mapstructure:"username" json:"username"`
	Password string `mapstructure:"password" json:"-"`
	Database string `mapstructure:"database" json:"database"`
}

// StorageConfig selects where chat attachments and media live.
type StorageConfig struct {
	Backend           string `mapstructure:"backend" json:"backend"` // gridfs, s3
	AttachmentsBucket string `mapstructure:"attachments_bucket" json:"attachments_bucket"`
	PublicBaseURL     string `mapstructure:"public_base_url" json:"public_base_url"`
	S3Region          string `mapstructure:"s3_region" json:"s3_region"`
	S3Endpoint        string `mapstructure:"s3_endpoint" json:"s3_endpoint"` // MinIO or other S3-compatible store
	S3PublicRead      bool   `mapstructure:"s3_public_read" json:"s3_public_read"`
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled" json:"enabled"`
	Addr     string `mapstructure:"addr" json:"addr"`
	Password string `mapstructure:"password" json:"-"`
	DB       int    `mapstructure:"db" json:"db"`
	Channel  string `mapstructure:"channel" json:"channel"`
}

type KafkaConfig struct {
	Enabled bool     `mapstructure:"enabled" json:"enabled"`
	Brokers []string `mapstructure:"brokers" json:"brokers"`
	Topic   string   `mapstructure:"topic" json:"topic"`
}

type AuthConfig struct {
	JWTSecret     string `mapstructure:"jwt_secret" json:"-"`
	Issuer        string `mapstructure:"issuer" json:"issuer"`
	TokenTTLHours int    `mapstructure:"token_ttl_hours" json:"token_ttl_hours"`
}

type RealtimeConfig struct {
	Workers    int `mapstructure:"workers" json:"workers"`
	BufferSize int `mapstructure:"buffer_size" json:"buffer_size"`
}

type NotificationConfig struct {
	Workers           int  `mapstructure:"workers" json:"workers"`
	ChannelBufferSize int  `mapstructure:"channel_buffer_size" json:"channel_buffer_size"`
	Enabled           bool `mapstructure:"enabled" json:"enabled"`
}

// VerificationConfig points at the document verification function.
type VerificationConfig struct {
	Endpoint           string `mapstructure:"endpoint" json:"endpoint"`
	APIKey             string `mapstructure:"api_key" json:"-"`
	TimeoutSeconds     int    `mapstructure:"timeout_seconds" json:"timeout_seconds"`
	MaxFailures        int    `mapstructure:"max_failures" json:"max_failures"`
	OpenTimeoutSeconds int    `mapstructure:"open_timeout_seconds" json:"open_timeout_seconds"`
}

type RateLimitConfig struct {
	MessagesPerMinute int `mapstructure:"messages_per_minute" json:"messages_per_minute"`
	Burst             int `mapstructure:"burst" json:"burst"`
}

type StoriesConfig struct {
	SweepCron string `mapstructure:"sweep_cron" json:"sweep_cron"`
	TTLHours  int    `mapstructure:"ttl_hours" json:"ttl_hours"`
}

type LoggingConfig struct {
	Level      string `mapstructure:"level" json:"level"`             // debug, info, warn, error
	Format     string `mapstructure:"format" json:"format"`           // json, console
	OutputPath string `mapstructure:"output_path" json:"output_path"` // stdout, stderr, or file path
}

// key, env var, default
var bindings = []struct {
	key string
	env string
	def interface{}
}{
	{"server.host", "SERVER_HOST", "0.0.0.0"},
	{"server.api_port", "API_PORT", "8080"},
	{"server.realtime_port", "REALTIME_PORT", "7005"},
	{"server.media_port", "MEDIA_PORT", "8081"},
	{"server.read_timeout", "SERVER_READ_TIMEOUT", 15},
	{"server.write_timeout", "SERVER_WRITE_TIMEOUT", 15},
	{"server.environment", "ENVIRONMENT", "development"},

	{"database.driver", "DB_DRIVER", "mysql"},
	{"database.host", "MYSQL_HOST", "localhost"},
	{"database.port", "MYSQL_PORT", "3306"},
	{"database.username", "MYSQL_USER", "campusnet"},
	{"database.password", "MYSQL_PASSWORD", "campusnet123"},
	{"database.database_name", "MYSQL_DATABASE", "campusnet"},
	{"database.sqlite_path", "SQLITE_PATH", "campusnet.db"},
	{"database.max_open_conns", "DB_MAX_OPEN_CONNS", 25},
	{"database.max_idle_conns", "DB_MAX_IDLE_CONNS", 5},

	{"mongodb.host", "MONGO_HOST", "localhost"},
	{"mongodb.port", "MONGO_PORT", "27017"},
	{"mongodb.username", "MONGO_USER", "admin"},
	{"mongodb.password", "MONGO_PASSWORD", "admin123"},
	{"mongodb.database", "MONGO_DATABASE", "campusnet"},

	{"storage.backend", "STORAGE_BACKEND", "gridfs"},
	{"storage.attachments_bucket", "ATTACHMENTS_BUCKET", "chat-attachments"},
	{"storage.public_base_url", "STORAGE_PUBLIC_URL", "http://localhost:8081/media"},
	{"storage.s3_region", "S3_REGION", "us-east-1"},
	{"storage.s3_endpoint", "S3_ENDPOINT", ""},
	{"storage.s3_public_read", "S3_PUBLIC_READ", true},

	{"redis.enabled", "REDIS_ENABLED", false},
	{"redis.addr", "REDIS_ADDR", "localhost:6379"},
	{"redis.password", "REDIS_PASSWORD", ""},
	{"redis.db", "REDIS_DB", 0},
	{"redis.channel", "REDIS_CHANNEL", "campusnet:changes"},

	{"kafka.enabled", "KAFKA_ENABLED", false},
	{"kafka.brokers", "KAFKA_BROKERS", []string{"localhost:9092"}},
	{"kafka.topic", "KAFKA_TOPIC", "campusnet.notifications"},

	{"auth.jwt_secret", "JWT_SECRET", ""},
	{"auth.issuer", "JWT_ISSUER", "campusnet"},
	{"auth.token_ttl_hours", "JWT_TTL_HOURS", 24},

	{"realtime.workers", "REALTIME_WORKERS", 4},
	{"realtime.buffer_size", "REALTIME_BUFFER_SIZE", 1024},

	{"notification.workers", "NOTIFICATION_WORKERS", 5},
	{"notification.channel_buffer_size", "NOTIFICATION_BUFFER_SIZE", 1000},
	{"notification.enabled", "NOTIFICATION_ENABLED", true},

	{"verification.endpoint", "VERIFY_ENDPOINT", ""},
	{"verification.api_key", "VERIFY_API_KEY", ""},
	{"verification.timeout_seconds", "VERIFY_TIMEOUT_SECONDS", 30},
	{"verification.max_failures", "VERIFY_MAX_FAILURES", 5},
	{"verification.open_timeout_seconds", "VERIFY_OPEN_TIMEOUT_SECONDS", 60},

	{"rate_limit.messages_per_minute", "RATE_LIMIT_MESSAGES_PER_MINUTE", 60},
	{"rate_limit.burst", "RATE_LIMIT_BURST", 10},

	{"stories.sweep_cron", "STORIES_SWEEP_CRON", "*/10 * * * *"},
	{"stories.ttl_hours", "STORIES_TTL_HOURS", 24},

	{"logging.level", "LOG_LEVEL", "info"},
	{"logging.format", "LOG_FORMAT", "json"},
	{"logging.output_path", "LOG_OUTPUT", "stdout"},
}

// LoadConfig reads .env, an optional CONFIG_FILE and the environment.
// It falls back to defaults and logs when the sources cannot be read.
func LoadConfig() *Config {
	cfg, err := Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Printf("config: %v, using defaults and environment only", err)
		cfg, _ = Load("")
	}
	return cfg
}

// Load builds a Config from defaults, the environment and, when path is set, a config file.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("config: .env not loaded: %v", err)
	}

	v := viper.New()
	for _, b := range bindings {
		v.SetDefault(b.key, b.def)
		_ = v.BindEnv(b.key, b.env)
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var readErr error
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			readErr = fmt.Errorf("read config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if readErr != nil {
		return nil, readErr
	}
	return &cfg, nil
}

func (cfg *Config) Validate() error {
	var errs []error

	switch cfg.Database.Driver {
	case "mysql", "sqlite":
	default:
		errs = append(errs, fmt.Errorf("database.driver must be mysql or sqlite, got %q", cfg.Database.Driver))
	}
	switch cfg.Storage.Backend {
	case "gridfs", "s3":
	default:
		errs = append(errs, fmt.Errorf("storage.backend must be gridfs or s3, got %q", cfg.Storage.Backend))
	}
	if cfg.IsProduction() && cfg.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("auth.jwt_secret is required in production"))
	}
	if cfg.Stories.SweepCron != "" && !gronx.IsValid(cfg.Stories.SweepCron) {
		errs = append(errs, fmt.Errorf("stories.sweep_cron is not a valid cron expression: %q", cfg.Stories.SweepCron))
	}
	if cfg.Realtime.Workers < 1 {
		errs = append(errs, errors.New("realtime.workers must be at least 1"))
	}
	if cfg.Kafka.Enabled && len(cfg.Kafka.Brokers) == 0 {
		errs = append(errs, errors.New("kafka.brokers is required when kafka is enabled"))
	}

	return errors.Join(errs...)
}

func (cfg *Config) IsProduction() bool {
	return cfg.Server.Environment == "production"
}

func (cfg *Config) DSN() string {
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == "" {
		cfg.Database.Port = "3306"
	}

	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		cfg.Database.Username,
		cfg.Database.Password,
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.DatabaseName,
	)
}

func (cfg *Config) GetMongoURI() string {
	if cfg.MongoDB.Username == "" {
		return fmt.Sprintf("mongodb://%s:%s", cfg.MongoDB.Host, cfg.MongoDB.Port)
	}
	return fmt.Sprintf("mongodb://%s:%s@%s:%s",
		cfg.MongoDB.Username,
		cfg.MongoDB.Password,
		cfg.MongoDB.Host,
		cfg.MongoDB.Port,
	)
}

func (cfg *Config) ReadTimeout() time.Duration {
	return time.Duration(cfg.Server.ReadTimeout) * time.Second
}

func (cfg *Config) WriteTimeout() time.Duration {
	return time.Duration(cfg.Server.WriteTimeout) * time.Second
}

func (cfg *Config) TokenTTL() time.Duration {
	return time.Duration(cfg.Auth.TokenTTLHours) * time.Hour
}
