package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds the process-level settings read from the environment. Engine
// behavior knobs live on pipeline.Options and are built per run from flags;
// nothing here is mutated after Load.
type Config struct {
	DBPath    string
	OutputDir string
	LogLevel  string

	SheetName          string
	IdentifierDelims   string
	EligibilityColumn  string
	FallbackURL        string
	DedupeWarnFraction float64
}

// Load reads .env (when present) and the environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	cwd, err := os.Getwd()
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		DBPath:    getEnv("RP_DB_PATH", filepath.Join(cwd, "data", "runs.db")),
		OutputDir: getEnv("RP_OUTPUT_DIR", filepath.Join(cwd, "out")),
		LogLevel:  getEnv("RP_LOG_LEVEL", "info"),

		SheetName:          getEnv("RP_SHEET_NAME", ""),
		IdentifierDelims:   getEnv("RP_IDENTIFIER_DELIMS", ",;/"),
		EligibilityColumn:  getEnv("RP_ELIGIBILITY_COLUMN", "La Trobe University"),
		FallbackURL:        getEnv("RP_FALLBACK_URL", ""),
		DedupeWarnFraction: getEnvFloat("RP_DEDUPE_WARN_FRACTION", 0.2),
	}

	return cfg, nil
}

// Require fails when a needed setting is empty.
func (c Config) Require(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("missing required env var: %s", name)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}
