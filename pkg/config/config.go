package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "FOODBANK"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv            = "FOODBANK_APP_ENV"
	EnvLogLevel          = "FOODBANK_LOG_LEVEL"
	EnvAPIBaseURL        = "FOODBANK_API_BASE_URL"
	EnvAPITimeout        = "FOODBANK_API_TIMEOUT"
	EnvTokenBackend      = "FOODBANK_TOKEN_BACKEND"
	EnvTokenProfile      = "FOODBANK_TOKEN_PROFILE"
	EnvTokenSQLitePath   = "FOODBANK_TOKEN_SQLITE_PATH"
	EnvDBDSN             = "FOODBANK_DB_DSN"
	EnvDBDriver          = "FOODBANK_DB_DRIVER"
	EnvDBHost            = "FOODBANK_DB_HOST"
	EnvDBPort            = "FOODBANK_DB_PORT"
	EnvDBUser            = "FOODBANK_DB_USER"
	EnvDBPassword        = "FOODBANK_DB_PASSWORD"
	EnvDBName            = "FOODBANK_DB_NAME"
	EnvRedisURL          = "FOODBANK_REDIS_URL"
	EnvRedisAddr         = "FOODBANK_REDIS_ADDR"
	EnvTracingEnabled    = "FOODBANK_TRACING_ENABLED"
	EnvFakeAPIPort       = "FOODBANK_FAKEAPI_PORT"
	EnvFakeAPIJWTSecret  = "FOODBANK_FAKEAPI_JWT_SECRET"
	EnvFakeAPIJWTIssuer  = "FOODBANK_FAKEAPI_JWT_ISSUER"
	EnvFakeAPIJWTExpMins = "FOODBANK_FAKEAPI_JWT_EXPIRATION_MINUTES"
)

const (
	TokenBackendMemory   = "memory"
	TokenBackendSQLite   = "sqlite"
	TokenBackendPostgres = "postgres"
	TokenBackendRedis    = "redis"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App        AppConfig
	API        APIConfig
	TokenStore TokenStoreConfig
	DB         DBConfig
	Redis      RedisConfig
	Telemetry  TelemetryConfig
	FakeAPI    FakeAPIConfig
	Password   PasswordConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.TokenStore.Backend = strings.ToLower(strings.TrimSpace(cfg.TokenStore.Backend))
	if err := cfg.TokenStore.validate(); err != nil {
		return nil, err
	}
	if cfg.TokenStore.UsesDB() {
		cfg.DB.Driver = cfg.TokenStore.Backend
		if err := cfg.DB.ensureDSN(cfg.TokenStore.SQLitePath); err != nil {
			return nil, err
		}
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"FOODBANK_APP_ENV" default:"dev"`
	LogLevel     string `envconfig:"FOODBANK_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"FOODBANK_LOG_WARN_STACK" default:"false"`
	LogFormat    string `envconfig:"FOODBANK_LOG_FORMAT"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// APIConfig points the client at the remote REST API. A zero Timeout leaves
// deadlines to the transport and the caller's context.
type APIConfig struct {
	BaseURL string        `envconfig:"FOODBANK_API_BASE_URL" default:"http://localhost:3001/api"`
	Timeout time.Duration `envconfig:"FOODBANK_API_TIMEOUT" default:"0s"`
}

type TokenStoreConfig struct {
	Backend    string `envconfig:"FOODBANK_TOKEN_BACKEND" default:"sqlite"`
	Profile    string `envconfig:"FOODBANK_TOKEN_PROFILE" default:"default"`
	SQLitePath string `envconfig:"FOODBANK_TOKEN_SQLITE_PATH" default:"foodbank.db"`
}

// UsesDB reports whether the durable token scope lives in a SQL database.
func (t TokenStoreConfig) UsesDB() bool {
	return t.Backend == TokenBackendSQLite || t.Backend == TokenBackendPostgres
}

func (t TokenStoreConfig) validate() error {
	switch t.Backend {
	case TokenBackendMemory, TokenBackendSQLite, TokenBackendPostgres, TokenBackendRedis:
		return nil
	default:
		return fmt.Errorf("unsupported token backend %q", t.Backend)
	}
}

type DBConfig struct {
	DSN    string `envconfig:"FOODBANK_DB_DSN"`
	Driver string `envconfig:"FOODBANK_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"FOODBANK_DB_HOST"`
	LegacyPort     int    `envconfig:"FOODBANK_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"FOODBANK_DB_USER"`
	LegacyPassword string `envconfig:"FOODBANK_DB_PASSWORD"`
	LegacyName     string `envconfig:"FOODBANK_DB_NAME"`
	LegacySSLMode  string `envconfig:"FOODBANK_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"FOODBANK_DB_MAX_OPEN_CONNS" default:"4"`
	MaxIdleConns    int           `envconfig:"FOODBANK_DB_MAX_IDLE_CONNS" default:"2"`
	ConnMaxLifetime time.Duration `envconfig:"FOODBANK_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"FOODBANK_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"FOODBANK_REDIS_URL"`
	Address      string        `envconfig:"FOODBANK_REDIS_ADDR"`
	Password     string        `envconfig:"FOODBANK_REDIS_PASSWORD"`
	DB           int           `envconfig:"FOODBANK_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"FOODBANK_REDIS_POOL_SIZE" default:"4"`
	MinIdleConns int           `envconfig:"FOODBANK_REDIS_MIN_IDLE_CONNS" default:"1"`
	DialTimeout  time.Duration `envconfig:"FOODBANK_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"FOODBANK_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"FOODBANK_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type TelemetryConfig struct {
	TracingEnabled bool `envconfig:"FOODBANK_TRACING_ENABLED" default:"false"`
}

type FakeAPIConfig struct {
	Port                 string `envconfig:"FOODBANK_FAKEAPI_PORT" default:"3001"`
	JWTSecret            string `envconfig:"FOODBANK_FAKEAPI_JWT_SECRET" default:"local-dev-secret"`
	JWTIssuer            string `envconfig:"FOODBANK_FAKEAPI_JWT_ISSUER" default:"foodbank-fakeapi"`
	JWTExpirationMinutes int    `envconfig:"FOODBANK_FAKEAPI_JWT_EXPIRATION_MINUTES" default:"60"`
	SeedInventory        bool   `envconfig:"FOODBANK_FAKEAPI_SEED_INVENTORY" default:"true"`
}

// TokenTTL returns the lifetime of tokens minted by the fake backend.
func (f FakeAPIConfig) TokenTTL() time.Duration {
	if f.JWTExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(f.JWTExpirationMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"FOODBANK_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"FOODBANK_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"FOODBANK_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"FOODBANK_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"FOODBANK_ARGON_KEY_LEN" default:"32"`
}

func (db *DBConfig) ensureDSN(sqlitePath string) error {
	if db.DSN != "" {
		return nil
	}

	if strings.EqualFold(db.Driver, TokenBackendSQLite) {
		if strings.TrimSpace(sqlitePath) == "" {
			return fmt.Errorf("%s is required for the sqlite token backend", EnvTokenSQLitePath)
		}
		db.DSN = sqlitePath
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
