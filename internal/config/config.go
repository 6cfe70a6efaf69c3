package config

import "time"

// Config is the root configuration for the usher terminal daemon.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Ledger     LedgerConfig     `yaml:"ledger"`
	LocalStore LocalStoreConfig `yaml:"local_store"`
	Token      TokenConfig      `yaml:"token"`
	Auth       AuthConfig       `yaml:"auth"`
	Sync       SyncConfig       `yaml:"sync"`
	Log        LogConfig        `yaml:"log"`
	CORS       CORSConfig       `yaml:"cors"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host"             env:"SERVER_HOST"             env-default:"0.0.0.0"`
	Port            int           `yaml:"port"             env:"SERVER_PORT"             env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"SERVER_READ_TIMEOUT"     env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"SERVER_WRITE_TIMEOUT"    env-default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"SERVER_IDLE_TIMEOUT"     env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// LedgerConfig holds remote ledger (PostgreSQL) connection settings.
// The ledger is the system of record for invitations and scan history; the
// terminal keeps working without it and mirrors the backlog later.
type LedgerConfig struct {
	DSN             string        `yaml:"dsn"                env:"LEDGER_DSN"                env-required:"true"`
	MaxConns        int32         `yaml:"max_conns"          env:"LEDGER_MAX_CONNS"          env-default:"10"`
	MinConns        int32         `yaml:"min_conns"          env:"LEDGER_MIN_CONNS"          env-default:"1"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"  env:"LEDGER_MAX_CONN_LIFETIME"  env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"LEDGER_MAX_CONN_IDLE_TIME" env-default:"30m"`
	CallTimeout     time.Duration `yaml:"call_timeout"       env:"LEDGER_CALL_TIMEOUT"       env-default:"5s"`
}

// LocalStoreConfig holds the embedded SQLite store settings. The local store
// is the sole source of truth for offline-made decisions until they are
// mirrored, so the path must live on durable storage.
type LocalStoreConfig struct {
	Path string `yaml:"path" env:"LOCAL_STORE_PATH" env-default:"./usher.db"`
}

// TokenConfig holds the QR token pre-shared key.
//
// The key has no rotation or versioning scheme: changing it invalidates all
// previously issued, unscanned QR codes. Known limitation: rotate only
// between events.
type TokenConfig struct {
	Key string `yaml:"key" env:"TOKEN_KEY" env-required:"true"`
}

// AuthConfig holds operator session settings.
type AuthConfig struct {
	JWTSecret      string        `yaml:"jwt_secret"       env:"AUTH_JWT_SECRET"       env-required:"true"`
	JWTIssuer      string        `yaml:"jwt_issuer"       env:"AUTH_JWT_ISSUER"       env-default:"btpass-usher"`
	AccessTokenTTL time.Duration `yaml:"access_token_ttl" env:"AUTH_ACCESS_TOKEN_TTL" env-default:"12h"`
}

// SyncConfig holds backlog drain settings.
type SyncConfig struct {
	// StartupTrigger drains any backlog left over from a previous run as
	// soon as the daemon starts and the ledger is reachable.
	StartupTrigger bool `yaml:"startup_trigger" env:"SYNC_STARTUP_TRIGGER" env-default:"true"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}

// CORSConfig holds CORS settings for the terminal web shell.
type CORSConfig struct {
	AllowedOrigins   string `yaml:"allowed_origins"   env:"CORS_ALLOWED_ORIGINS"   env-default:"*"`
	AllowedMethods   string `yaml:"allowed_methods"   env:"CORS_ALLOWED_METHODS"   env-default:"GET,POST,DELETE,OPTIONS"`
	AllowedHeaders   string `yaml:"allowed_headers"   env:"CORS_ALLOWED_HEADERS"   env-default:"Authorization,Content-Type"`
	AllowCredentials bool   `yaml:"allow_credentials" env:"CORS_ALLOW_CREDENTIALS" env-default:"true"`
	MaxAge           int    `yaml:"max_age"           env:"CORS_MAX_AGE"           env-default:"86400"`
}
