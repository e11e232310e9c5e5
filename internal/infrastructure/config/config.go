package config

import (
	"context"
	"log/slog"

	"github.com/sethvargo/go-envconfig"
)

// Storage drivers. The localstore driver keeps everything in a single JSON
// file and exists for single-workstation installations without MongoDB.
const (
	StorageMongo      = "mongo"
	StorageLocalstore = "localstore"
)

type Config struct {
	Port      string `env:"PORT,       default=8080"`
	Env       string `env:"ENV,        default=development"`
	JWTSecret string `env:"JWT_SECRET"`
	LogLevel  string `env:"LOG_LEVEL,  default=info"`

	// Storage selects the persistence driver: mongo or localstore.
	Storage string `env:"STORAGE,    default=mongo"`
	// DataDir holds the localstore JSON file when STORAGE=localstore.
	DataDir string `env:"DATA_DIR,   default=./data"`

	Mongo  MongoConfig
	Redis  RedisConfig
	ViaCEP ViaCEPConfig
	Admin  AdminConfig
}

// AdminConfig feeds the bootstrap administrator created on first boot, when
// no users exist yet. ADMIN_PASSWORD has no default on purpose: without it
// the seed step is skipped with a warning.
type AdminConfig struct {
	Name     string `env:"ADMIN_NAME,     default=Admin Principal"`
	Email    string `env:"ADMIN_EMAIL,    default=admin@prevencar.com.br"`
	Password string `env:"ADMIN_PASSWORD"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=prevencar"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
	// Enabled toggles the closure-lock cache. When false the services
	// query the store directly.
	Enabled bool `env:"REDIS_ENABLED, default=true"`
}

type ViaCEPConfig struct {
	BaseURL string `env:"VIACEP_BASE_URL, default=https://viacep.com.br/ws"`
	// TimeoutSeconds bounds each lookup; address lookup is best-effort
	// and must never hold up fiche intake.
	TimeoutSeconds int `env:"VIACEP_TIMEOUT_SECONDS, default=5"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(logger *slog.Logger) *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		logger.Error("Failed to load configuration", "error", err)
		panic(err)
	}
	return &cfg
}
