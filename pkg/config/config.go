package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = ""

	AppEnvDev  = "development"
	AppEnvProd = "production"

	EnvDBDSN  = "SHOPEASE_DB_DSN"
	EnvDBHost = "SHOPEASE_DB_HOST"
	EnvDBUser = "SHOPEASE_DB_USER"
	EnvDBName = "SHOPEASE_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Razorpay      RazorpayConfig
	Checkout      CheckoutConfig
	CORS          CORSConfig
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
	Env          string `envconfig:"SHOPEASE_APP_ENV" required:"true"`
	Port         string `envconfig:"SHOPEASE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"SHOPEASE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SHOPEASE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"SHOPEASE_DB_DSN"`
	Driver string `envconfig:"SHOPEASE_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"SHOPEASE_DB_HOST"`
	LegacyPort     int    `envconfig:"SHOPEASE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"SHOPEASE_DB_USER"`
	LegacyPassword string `envconfig:"SHOPEASE_DB_PASSWORD"`
	LegacyName     string `envconfig:"SHOPEASE_DB_NAME"`
	LegacySSLMode  string `envconfig:"SHOPEASE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"SHOPEASE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SHOPEASE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SHOPEASE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SHOPEASE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"SHOPEASE_REDIS_URL" required:"true"`
	Address      string        `envconfig:"SHOPEASE_REDIS_ADDR"`
	Password     string        `envconfig:"SHOPEASE_REDIS_PASSWORD"`
	DB           int           `envconfig:"SHOPEASE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SHOPEASE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SHOPEASE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SHOPEASE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SHOPEASE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SHOPEASE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"SHOPEASE_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"SHOPEASE_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"SHOPEASE_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"SHOPEASE_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"SHOPEASE_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"SHOPEASE_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"SHOPEASE_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"SHOPEASE_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"SHOPEASE_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"SHOPEASE_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"SHOPEASE_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"SHOPEASE_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"SHOPEASE_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"SHOPEASE_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"SHOPEASE_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"SHOPEASE_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"SHOPEASE_AUTO_MIGRATE" default:"false"`
}

type RazorpayConfig struct {
	KeyID     string `envconfig:"SHOPEASE_RAZORPAY_KEY_ID" required:"true"`
	KeySecret string `envconfig:"SHOPEASE_RAZORPAY_KEY_SECRET" required:"true"`
	BaseURL   string `envconfig:"SHOPEASE_RAZORPAY_BASE_URL" default:"https://api.razorpay.com"`

	RequestTimeout time.Duration `envconfig:"SHOPEASE_RAZORPAY_REQUEST_TIMEOUT" default:"10s"`
	MaxAttempts    int           `envconfig:"SHOPEASE_RAZORPAY_MAX_ATTEMPTS" default:"3"`
	RetryBackoff   time.Duration `envconfig:"SHOPEASE_RAZORPAY_RETRY_BACKOFF" default:"500ms"`
}

type CheckoutConfig struct {
	SessionTTL time.Duration `envconfig:"SHOPEASE_CHECKOUT_SESSION_TTL" default:"30m"`
	CartTTL    time.Duration `envconfig:"SHOPEASE_CART_TTL" default:"720h"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"SHOPEASE_CORS_ALLOWED_ORIGINS" default:"http://localhost:5173"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
