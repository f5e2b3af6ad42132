package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store backends selectable with STORE_BACKEND.
const (
	BackendKV        = "kv"
	BackendFirestore = "firestore"
	BackendPostgres  = "postgres"
)

// KV drivers selectable with KV_DRIVER.
const (
	KVDriverFile  = "file"
	KVDriverRedis = "redis"
)

// Synthesis strategies selectable with SYNTHESIS_STRATEGY.
const (
	SynthesisHeuristic = "heuristic"
	SynthesisGemini    = "gemini"
)

type Config struct {
	Server    ServerConfig
	Store     StoreConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Firebase  FirebaseConfig
	Auth      AuthConfig
	Synthesis SynthesisConfig
	Mirror    MirrorConfig
	App       AppConfig
}

type ServerConfig struct {
	Port        string
	CORSOrigins []string
}

type StoreConfig struct {
	Backend  string
	KVDriver string
	DataDir  string
	Watch    bool
}

type DatabaseConfig struct {
	URL      string
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type FirebaseConfig struct {
	CredentialsPath string
	ProjectID       string
	WebAPIKey       string
}

type AuthConfig struct {
	AdminCollection   string
	AdminDocID        string
	AdminEmail        string
	AdminPasswordHash string
	SessionTTL        time.Duration
	LoginRatePerMin   int
	SecureCookies     bool
}

type SynthesisConfig struct {
	Strategy     string
	GeminiURL    string
	GeminiAPIKey string
	GeminiModel  string
	RatePerMin   int
}

type MirrorConfig struct {
	Enabled  bool
	Schedule string
}

type AppConfig struct {
	Environment string
	LogLevel    string
	Version     string
}

func Load() (*Config, error) {
	// Load .env file if it exists (ignore error in production)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:        getEnv("PORT", "8080"),
			CORSOrigins: getEnvAsList("CORS_ORIGINS", []string{"http://localhost:5173"}),
		},
		Store: StoreConfig{
			Backend:  getEnv("STORE_BACKEND", BackendKV),
			KVDriver: getEnv("KV_DRIVER", KVDriverFile),
			DataDir:  getEnv("DATA_DIR", "data"),
			Watch:    getEnvAsBool("KV_WATCH", true),
		},
		Database: DatabaseConfig{
			URL:      getEnv("DATABASE_URL", ""),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "portfolio"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Firebase: FirebaseConfig{
			CredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", ""),
			ProjectID:       getEnv("FIREBASE_PROJECT_ID", ""),
			WebAPIKey:       getEnv("FIREBASE_API_KEY", ""),
		},
		Auth: AuthConfig{
			AdminCollection:   getEnv("ADMIN_COLLECTION", "Admin_login"),
			AdminDocID:        getEnv("ADMIN_DOC_ID", "Sankalp-Dawada"),
			AdminEmail:        getEnv("ADMIN_EMAIL", ""),
			AdminPasswordHash: getEnv("ADMIN_PASSWORD_HASH", ""),
			SessionTTL:        getEnvAsDuration("SESSION_TTL", 12*time.Hour),
			LoginRatePerMin:   getEnvAsInt("LOGIN_RATE_PER_MIN", 10),
			SecureCookies:     getEnvAsBool("SECURE_COOKIES", false),
		},
		Synthesis: SynthesisConfig{
			Strategy:     getEnv("SYNTHESIS_STRATEGY", SynthesisHeuristic),
			GeminiURL:    getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com"),
			GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
			GeminiModel:  getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
			RatePerMin:   getEnvAsInt("GEMINI_RATE_PER_MIN", 30),
		},
		Mirror: MirrorConfig{
			Enabled:  getEnvAsBool("MIRROR_ENABLED", false),
			Schedule: getEnv("MIRROR_SCHEDULE", "0 0 0 * * *"),
		},
		App: AppConfig{
			Environment: getEnv("APP_ENV", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	switch c.Store.Backend {
	case BackendKV:
		switch c.Store.KVDriver {
		case KVDriverFile:
			if c.Store.DataDir == "" {
				return fmt.Errorf("DATA_DIR is required for the file kv driver")
			}
		case KVDriverRedis:
			if c.Redis.Addr == "" {
				return fmt.Errorf("REDIS_ADDR is required for the redis kv driver")
			}
		default:
			return fmt.Errorf("unknown KV_DRIVER %q", c.Store.KVDriver)
		}
	case BackendFirestore:
		if c.Firebase.ProjectID == "" && c.Firebase.CredentialsPath == "" {
			return fmt.Errorf("FIREBASE_PROJECT_ID or FIREBASE_CREDENTIALS_PATH is required for the firestore backend")
		}
	case BackendPostgres:
		if c.Database.URL == "" && c.Database.Host == "" {
			return fmt.Errorf("DATABASE_URL or DB_HOST is required")
		}
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.Store.Backend)
	}

	switch c.Synthesis.Strategy {
	case SynthesisHeuristic:
	case SynthesisGemini:
		if c.Synthesis.GeminiAPIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required for the gemini synthesis strategy")
		}
	default:
		return fmt.Errorf("unknown SYNTHESIS_STRATEGY %q", c.Synthesis.Strategy)
	}

	if c.Auth.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}

	return nil
}

// UsesFirebase reports whether any component needs a Firebase app.
func (c *Config) UsesFirebase() bool {
	return c.Store.Backend == BackendFirestore ||
		c.Firebase.ProjectID != "" ||
		c.Firebase.CredentialsPath != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer for %s, using default: %d", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid boolean for %s, using default: %t", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid duration for %s, using default: %s", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
