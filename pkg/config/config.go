package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Password     PasswordConfig
	Esewa        EsewaConfig
	FeatureFlags FeatureFlagsConfig
	Outbox       OutboxConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"SKILLBAZAAR_APP_ENV" required:"true"`
	Port         string `envconfig:"SKILLBAZAAR_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"SKILLBAZAAR_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SKILLBAZAAR_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"SKILLBAZAAR_DB_DSN"`
	Driver string `envconfig:"SKILLBAZAAR_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"SKILLBAZAAR_DB_HOST"`
	Port     int    `envconfig:"SKILLBAZAAR_DB_PORT" default:"5432"`
	User     string `envconfig:"SKILLBAZAAR_DB_USER"`
	Password string `envconfig:"SKILLBAZAAR_DB_PASSWORD"`
	Name     string `envconfig:"SKILLBAZAAR_DB_NAME"`
	SSLMode  string `envconfig:"SKILLBAZAAR_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"SKILLBAZAAR_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SKILLBAZAAR_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SKILLBAZAAR_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SKILLBAZAAR_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"SKILLBAZAAR_REDIS_URL" required:"true"`
	Address      string        `envconfig:"SKILLBAZAAR_REDIS_ADDR"`
	Password     string        `envconfig:"SKILLBAZAAR_REDIS_PASSWORD"`
	DB           int           `envconfig:"SKILLBAZAAR_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SKILLBAZAAR_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SKILLBAZAAR_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SKILLBAZAAR_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SKILLBAZAAR_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SKILLBAZAAR_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"SKILLBAZAAR_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"SKILLBAZAAR_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"SKILLBAZAAR_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"SKILLBAZAAR_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"SKILLBAZAAR_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"SKILLBAZAAR_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"SKILLBAZAAR_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"SKILLBAZAAR_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"SKILLBAZAAR_ARGON_KEY_LEN" default:"32"`
}

type EsewaConfig struct {
	ProductCode string `envconfig:"SKILLBAZAAR_ESEWA_PRODUCT_CODE" default:"EPAYTEST"`
	SecretKey   string `envconfig:"SKILLBAZAAR_ESEWA_SECRET_KEY" required:"true"`
	Env         string `envconfig:"SKILLBAZAAR_ESEWA_ENV" default:"test"`
	SuccessURL  string `envconfig:"SKILLBAZAAR_ESEWA_SUCCESS_URL"`
	FailureURL  string `envconfig:"SKILLBAZAAR_ESEWA_FAILURE_URL"`
}

// Environment returns the normalized eSewa environment (test/production).
func (e EsewaConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(e.Env))
	if env == "" {
		return "test"
	}
	return env
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"SKILLBAZAAR_AUTO_MIGRATE" default:"false"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"SKILLBAZAAR_OUTBOX_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"SKILLBAZAAR_OUTBOX_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"SKILLBAZAAR_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	values := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range fallbackDBEnvVars {
		if values[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}

	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
