package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Server struct {
	Addr        string   `yaml:"addr"`
	CORSOrigins []string `yaml:"cors_origins"`
}

type Database struct {
	Driver          string        `yaml:"driver"` // mysql / postgres / sqlite
	DSN             string        `yaml:"dsn"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	AutoMigrate     bool          `yaml:"auto_migrate"`
}

type Redis struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type JWT struct {
	AccessSecret  string        `yaml:"access_secret"`
	RefreshSecret string        `yaml:"refresh_secret"`
	AccessTTL     time.Duration `yaml:"access_ttl"`
	RefreshTTL    time.Duration `yaml:"refresh_ttl"`
}

type Kafka struct {
	Brokers      []string      `yaml:"brokers"`
	Topic        string        `yaml:"topic"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

type SMTP struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
}

type MinIO struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	UseSSL    bool   `yaml:"use_ssl"`
	PublicURL string `yaml:"public_url"`
}

// Worker 后台任务（outbox 投递、计数对账）的节奏
type Worker struct {
	Interval  time.Duration `yaml:"interval"`
	BatchSize int           `yaml:"batch_size"`
}

type Config struct {
	Mode     string   `yaml:"mode"`
	Server   Server   `yaml:"server"`
	Database Database `yaml:"database"`
	Redis    Redis    `yaml:"redis"`
	JWT      JWT      `yaml:"jwt"`
	Kafka    Kafka    `yaml:"kafka"`
	SMTP     SMTP     `yaml:"smtp"`
	MinIO    MinIO    `yaml:"minio"`
	Outbox   Worker   `yaml:"outbox"`
	Audit    Worker   `yaml:"audit"`
}

func Default() *Config {
	return &Config{
		Mode:   "dev",
		Server: Server{Addr: ":8080"},
		Database: Database{
			Driver:          "mysql",
			DSN:             "user:password@tcp(127.0.0.1:3306)/fandom?charset=utf8mb4&parseTime=True&loc=Local",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 30 * time.Minute,
			AutoMigrate:     true,
		},
		Redis: Redis{Addr: "127.0.0.1:6379"},
		JWT: JWT{
			AccessSecret:  "secret-key",
			RefreshSecret: "refresh-key",
			AccessTTL:     30 * time.Minute,
			RefreshTTL:    24 * time.Hour,
		},
		Kafka:  Kafka{Topic: "fandom.events", WriteTimeout: 10 * time.Second},
		SMTP:   SMTP{Port: 587},
		MinIO:  MinIO{Bucket: "covers"},
		Outbox: Worker{Interval: time.Second, BatchSize: 200},
		Audit:  Worker{Interval: 5 * time.Minute, BatchSize: 500},
	}
}

// Load 按 默认值 -> YAML 文件 -> .env -> FANDOM_* 环境变量 的顺序叠加
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(raw, cfg); err != nil {
				return nil, fmt.Errorf("config: parse %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	// .env 不存在时直接使用进程环境变量
	_ = godotenv.Load()

	applyEnv(cfg)
	return cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "mysql", "postgres", "sqlite":
	default:
		return fmt.Errorf("config: unsupported database driver %q", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return errors.New("config: database dsn is required")
	}
	if c.JWT.AccessSecret == "" || c.JWT.RefreshSecret == "" {
		return errors.New("config: jwt secrets are required")
	}
	return nil
}

func applyEnv(c *Config) {
	setString(&c.Mode, "FANDOM_MODE")
	setString(&c.Server.Addr, "FANDOM_SERVER_ADDR")
	if v, ok := lookup("FANDOM_CORS_ORIGINS"); ok {
		c.Server.CORSOrigins = splitList(v)
	}

	setString(&c.Database.Driver, "FANDOM_DB_DRIVER")
	setString(&c.Database.DSN, "FANDOM_DB_DSN")
	setInt(&c.Database.MaxOpenConns, "FANDOM_DB_MAX_OPEN_CONNS")
	setInt(&c.Database.MaxIdleConns, "FANDOM_DB_MAX_IDLE_CONNS")
	setDuration(&c.Database.ConnMaxLifetime, "FANDOM_DB_CONN_MAX_LIFETIME")
	setBool(&c.Database.AutoMigrate, "FANDOM_DB_AUTO_MIGRATE")

	setString(&c.Redis.Addr, "FANDOM_REDIS_ADDR")
	setString(&c.Redis.Password, "FANDOM_REDIS_PASSWORD")
	setInt(&c.Redis.DB, "FANDOM_REDIS_DB")

	setString(&c.JWT.AccessSecret, "FANDOM_JWT_ACCESS_SECRET")
	setString(&c.JWT.RefreshSecret, "FANDOM_JWT_REFRESH_SECRET")
	setDuration(&c.JWT.AccessTTL, "FANDOM_JWT_ACCESS_TTL")
	setDuration(&c.JWT.RefreshTTL, "FANDOM_JWT_REFRESH_TTL")

	if v, ok := lookup("FANDOM_KAFKA_BROKERS"); ok {
		c.Kafka.Brokers = splitList(v)
	}
	setString(&c.Kafka.Topic, "FANDOM_KAFKA_TOPIC")
	setDuration(&c.Kafka.WriteTimeout, "FANDOM_KAFKA_WRITE_TIMEOUT")

	setString(&c.SMTP.Host, "FANDOM_SMTP_HOST")
	setInt(&c.SMTP.Port, "FANDOM_SMTP_PORT")
	setString(&c.SMTP.Username, "FANDOM_SMTP_USERNAME")
	setString(&c.SMTP.Password, "FANDOM_SMTP_PASSWORD")
	setString(&c.SMTP.From, "FANDOM_SMTP_FROM")

	setString(&c.MinIO.Endpoint, "FANDOM_MINIO_ENDPOINT")
	setString(&c.MinIO.AccessKey, "FANDOM_MINIO_ACCESS_KEY")
	setString(&c.MinIO.SecretKey, "FANDOM_MINIO_SECRET_KEY")
	setString(&c.MinIO.Bucket, "FANDOM_MINIO_BUCKET")
	setBool(&c.MinIO.UseSSL, "FANDOM_MINIO_USE_SSL")
	setString(&c.MinIO.PublicURL, "FANDOM_MINIO_PUBLIC_URL")

	setDuration(&c.Outbox.Interval, "FANDOM_OUTBOX_INTERVAL")
	setInt(&c.Outbox.BatchSize, "FANDOM_OUTBOX_BATCH_SIZE")
	setDuration(&c.Audit.Interval, "FANDOM_AUDIT_INTERVAL")
	setInt(&c.Audit.BatchSize, "FANDOM_AUDIT_BATCH_SIZE")
}

func lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

func setString(dst *string, key string) {
	if v, ok := lookup(key); ok {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v, ok := lookup(key); ok {
		if i, err := strconv.Atoi(v); err == nil {
			*dst = i
		}
	}
}

func setBool(dst *bool, key string) {
	if v, ok := lookup(key); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v, ok := lookup(key); ok {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
