package config

import (
	"crypto/rand"
	"encoding/hex"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port          int
	DataPath      string
	DBPath        string
	UploadPath    string
	JWTSecret     string
	AdminUsername string
	AdminPassword string
	CORSOrigins   []string

	// Translation engine keys, environment-only; never persisted
	OpenAIKey      string
	AnthropicKey   string
	OpenAIModel    string
	AnthropicModel string

	// Pipeline defaults, overridable per request
	BatchLimit     int           // serialized chars per model batch
	RetryBudget    int           // attempts per batch
	PacingDelay    time.Duration // delay between batches
	CorrectWorkers int           // concurrent per-cue correction calls
}

func Load() *Config {
	port, _ := strconv.Atoi(getEnv("PORT", "8080"))
	dataPath := getEnv("DATA_PATH", "/data")

	// JWT secret: require explicit setting or generate random
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		b := make([]byte, 32)
		if _, err := rand.Read(b); err != nil {
			log.Fatalf("Failed to generate random JWT secret: %v", err)
		}
		jwtSecret = hex.EncodeToString(b)
		log.Println("WARNING: JWT_SECRET not set, using random secret. Sessions will not survive restarts. Set JWT_SECRET env var for persistent sessions.")
	}

	// CORS origins: comma-separated list or "*" (default)
	corsOrigins := []string{"*"}
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		origins := strings.Split(v, ",")
		corsOrigins = make([]string, 0, len(origins))
		for _, o := range origins {
			o = strings.TrimSpace(o)
			if o != "" {
				corsOrigins = append(corsOrigins, o)
			}
		}
	}

	batchLimit, _ := strconv.Atoi(getEnv("BATCH_LIMIT", "1024"))
	retryBudget, _ := strconv.Atoi(getEnv("RETRY_BUDGET", "3"))
	pacingMs, _ := strconv.Atoi(getEnv("PACING_DELAY_MS", "1000"))
	correctWorkers, _ := strconv.Atoi(getEnv("CORRECT_WORKERS", "5"))

	return &Config{
		Port:          port,
		DataPath:      dataPath,
		DBPath:        getEnv("DB_PATH", dataPath+"/subtitleforge.db"),
		UploadPath:    getEnv("UPLOAD_PATH", dataPath+"/uploads"),
		JWTSecret:     jwtSecret,
		AdminUsername: getEnv("ADMIN_USERNAME", "admin"),
		AdminPassword: getEnv("ADMIN_PASSWORD", "admin"),
		CORSOrigins:   corsOrigins,

		OpenAIKey:      os.Getenv("OPENAI_API_KEY"),
		AnthropicKey:   os.Getenv("ANTHROPIC_API_KEY"),
		OpenAIModel:    getEnv("OPENAI_MODEL", "gpt-4o"),
		AnthropicModel: getEnv("ANTHROPIC_MODEL", "claude-3-5-sonnet-20240620"),

		BatchLimit:     batchLimit,
		RetryBudget:    retryBudget,
		PacingDelay:    time.Duration(pacingMs) * time.Millisecond,
		CorrectWorkers: correctWorkers,
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
