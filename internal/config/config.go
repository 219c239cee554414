package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Karlitosantana/reima-resale/internal/entity"

	"github.com/go-playground/validator/v10"
	"github.com/ilyakaznacheev/cleanenv"
)

type (
	Config struct {
		App      App      `env-prefix:"APP_"`
		Logger   Logger   `env-prefix:"LOGGER_"`
		Postgres Postgres `env-prefix:"DB_"`
		Redis    Redis    `env-prefix:"REDIS_"`
		HTTP     HTTP     `env-prefix:"HTTP_"`
		Cache    Cache    `env-prefix:"CACHE_"`
		Kafka    Kafka    `env-prefix:"KAFKA_"`
		Auth     Auth     `env-prefix:"AUTH_"`
		Metrics  Metrics  `env-prefix:"METRICS_"`
		Env      string   `                      env:"ENV" env-default:"local" validate:"oneof=local dev staging prod"`
	}

	App struct {
		Name     string `env:"NAME"      validate:"required"`
		Version  string `env:"VERSION"   validate:"required"`
		DemoSeed bool   `env:"DEMO_SEED" env-default:"true"`
	}

	// Postgres is the remote store. Enabled=false means the service runs
	// purely against the local cache (offline mode).
	Postgres struct {
		Enabled        bool          `env:"ENABLED"          env-default:"false"`
		Host           string        `env:"HOST"             env-default:"localhost"`
		Port           string        `env:"PORT"             env-default:"5432"`
		Name           string        `env:"NAME"             env-default:"resale"`
		User           string        `env:"USER"             env-default:"resale"`
		Password       string        `env:"PASSWORD"         env-default:""`
		SSLMode        string        `env:"SSL_MODE"         env-default:"disable"`
		ListLimit      uint64        `env:"LIST_LIMIT"       validate:"min=1,max=100000"                          env-default:"1000"`
		PoolMax        int32         `env:"POOL_MAX"         validate:"min=1,max=100"                             env-default:"20"`
		ConnAttempts   int           `env:"CONN_ATTEMPTS"    validate:"min=1,max=10"                              env-default:"5"`
		BaseRetryDelay time.Duration `env:"BASE_RETRY_DELAY" validate:"gte=10ms,lte=10s"                          env-default:"100ms"`
		MaxRetryDelay  time.Duration `env:"MAX_RETRY_DELAY"  validate:"gte=100ms,lte=30s,gtefield=BaseRetryDelay" env-default:"5s"`
	}

	// Redis backs the local cache blob, one fixed key for the whole
	// collection.
	Redis struct {
		Addr         string        `env:"ADDR"          validate:"required,hostname_port" env-default:"localhost:6379"`
		Password     string        `env:"PASSWORD"      env-default:""`
		DB           int           `env:"DB"            validate:"gte=0,lte=15"           env-default:"0"`
		Key          string        `env:"KEY"           validate:"required"               env-default:"resale_tracker_items"`
		DialTimeout  time.Duration `env:"DIAL_TIMEOUT"  validate:"gte=10ms,lte=30s"       env-default:"2s"`
		ConnAttempts int           `env:"CONN_ATTEMPTS" validate:"min=1,max=10"           env-default:"5"`
	}

	HTTP struct {
		Host              string        `env:"HOST"                validate:"required"                 env-default:"0.0.0.0"`
		Port              string        `env:"PORT"                validate:"required,gte=1,lte=65535" env-default:"8080"`
		ReadTimeout       time.Duration `env:"READ_TIMEOUT"        validate:"gte=10ms,lte=30s"         env-default:"5s"`
		WriteTimeout      time.Duration `env:"WRITE_TIMEOUT"       validate:"gte=10ms,lte=30s"         env-default:"5s"`
		IdleTimeout       time.Duration `env:"IDLE_TIMEOUT"        validate:"gte=10ms,lte=30s"         env-default:"60s"`
		ShutdownTimeout   time.Duration `env:"SHUTDOWN_TIMEOUT"    validate:"gte=10ms,lte=30s"         env-default:"10s"`
		ReadHeaderTimeout time.Duration `env:"READ_HEADER_TIMEOUT" validate:"gte=10ms,lte=30s"         env-default:"5s"`
	}

	Cache struct {
		Capacity        int           `env:"CAPACITY"         validate:"required,min=1,max=1000000" env-default:"1024"`
		TTL             time.Duration `env:"TTL"              validate:"required,gt=0s,lte=24h"     env-default:"5m"`
		CleanupInterval time.Duration `env:"CLEANUP_INTERVAL" validate:"gt=0s,lte=24h"              env-default:"10s"`
	}

	// Kafka fans the change notification out to other instances. Disabled
	// means the in-process broadcaster alone carries the signal.
	Kafka struct {
		Enabled bool     `env:"ENABLED"  env-default:"false"`
		GroupID string   `env:"GROUP_ID" env-default:"resale-service"`
		Brokers []string `env:"BROKERS"  validate:"omitempty,min=1,dive,hostname_port" env-separator:","`
		Topic   string   `env:"TOPIC"    env-default:"items-changed"`
	}

	Auth struct {
		// AdminEmail feeds the default authorization policy; destructive
		// operations against the remote store require this identity.
		AdminEmail string `env:"ADMIN_EMAIL" env-default:""`
	}

	Metrics struct {
		Host              string        `env:"HOST"                validate:"required"                 env-default:"0.0.0.0"`
		Port              string        `env:"PORT"                validate:"required,gte=1,lte=65535" env-default:"9090"`
		ReadTimeout       time.Duration `env:"READ_TIMEOUT"        validate:"gte=10ms,lte=30s"         env-default:"5s"`
		WriteTimeout      time.Duration `env:"WRITE_TIMEOUT"       validate:"gte=10ms,lte=30s"         env-default:"5s"`
		ReadHeaderTimeout time.Duration `env:"READ_HEADER_TIMEOUT" validate:"gte=10ms,lte=30s"         env-default:"5s"`
	}

	Logger struct {
		Level      string `env:"LEVEL"       env-default:"info"                      validate:"oneof=debug info warn error"`
		Filename   string `env:"FILENAME"    env-default:"./logs/resale-service.log"`
		MaxSize    int    `env:"MAX_SIZE"    env-default:"100"                       validate:"min=1,max=1000"`
		MaxBackups int    `env:"MAX_BACKUPS" env-default:"3"                         validate:"min=0,max=20"`
		MaxAge     int    `env:"MAX_AGE"     env-default:"28"                        validate:"min=1,max=365"`
	}
)

func Load() (*Config, error) {
	path := fetchConfigPath()
	if path == "" {
		return nil, entity.ErrConfigPathNotSet
	}
	return LoadPath(path)
}

func LoadPath(configPath string) (*Config, error) {
	const op = "config.LoadPath"

	validate := validator.New()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s: config file does not exist: %s", op, configPath)
	} else if err != nil {
		return nil, fmt.Errorf("%s: checking config file: %w", op, err)
	}

	var cfg Config
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, fmt.Errorf("%s: read config: %w", op, err)
	}

	if err := validateConfig(validate, &cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if cfg.Kafka.Enabled && len(cfg.Kafka.Brokers) == 0 {
		return nil, fmt.Errorf("%s: kafka enabled but no brokers configured", op)
	}
	if cfg.Postgres.Enabled && (cfg.Postgres.User == "" || cfg.Postgres.Name == "") {
		return nil, fmt.Errorf("%s: postgres enabled but user/name not configured", op)
	}

	return &cfg, nil
}

func validateConfig(validate *validator.Validate, cfg *Config) error {
	var validationErrors []string

	if err := validate.Struct(cfg); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			for _, ve := range validationErrs {
				validationErrors = append(validationErrors,
					fmt.Sprintf("%s=%v must satisfy '%s'", ve.Field(), ve.Value(), ve.Tag()))
			}
			return fmt.Errorf(
				"config validation: %v",
				strings.Join(validationErrors, "; "),
			)
		}
		return fmt.Errorf("config validation: %w", err)
	}
	return nil
}

func fetchConfigPath() string {
	var path string
	flag.StringVar(&path, "config", "", "Path to config file")
	flag.Parse()

	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	return path
}
