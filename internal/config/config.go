package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	DBPath    string
	OutputDir string
	LogoPath  string
	LogoScale float64

	// Column matcher policy. Threshold is the aggregate-similarity cutoff in
	// [0,100]; MatchMaxColumns and MatchScanRows bound the scan window.
	MatchThreshold   float64
	MatchMaxColumns  int
	MatchScanRows    int

	// Column copier resource valves.
	CopyMaxRows        int
	CopyProbeRows      int
	CopyEmptyRunLimit  int
	CopyHiddenRunLimit int

	// Whole-sheet copy bounds.
	SheetMaxColumns     int
	SheetHiddenRunLimit int

	// Summarizer wiring.
	SummarizerBaseURL      string
	SummarizerToken        string
	SummarizerTimeoutMs    int
	SummarizerRateLimitRPS int
	SummarySentences       int
	SummaryMinWords        int
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cwd, err := os.Getwd()
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		DBPath:    getEnv("DB_PATH", filepath.Join(cwd, "data", "app.db")),
		OutputDir: getEnv("OUTPUT_DIR", filepath.Join(cwd, "out")),
		LogoPath:  getEnv("LOGO_PATH", ""),
		LogoScale: getEnvFloat("LOGO_SCALE", 0.8),

		MatchThreshold:  getEnvFloat("MATCH_THRESHOLD", 80),
		MatchMaxColumns: getEnvInt("MATCH_MAX_COLUMNS", 100),
		MatchScanRows:   getEnvInt("MATCH_SCAN_ROWS", 300),

		CopyMaxRows:        getEnvInt("COPY_MAX_ROWS", 500),
		CopyProbeRows:      getEnvInt("COPY_PROBE_ROWS", 60),
		CopyEmptyRunLimit:  getEnvInt("COPY_EMPTY_RUN_LIMIT", 80),
		CopyHiddenRunLimit: getEnvInt("COPY_HIDDEN_RUN_LIMIT", 60),

		SheetMaxColumns:     getEnvInt("SHEET_MAX_COLUMNS", 100),
		SheetHiddenRunLimit: getEnvInt("SHEET_HIDDEN_RUN_LIMIT", 60),

		SummarizerBaseURL:      getEnv("SUMMARIZER_BASE_URL", ""),
		SummarizerToken:        getEnv("SUMMARIZER_TOKEN", ""),
		SummarizerTimeoutMs:    getEnvInt("SUMMARIZER_TIMEOUT_MS", 15000),
		SummarizerRateLimitRPS: getEnvInt("SUMMARIZER_RATE_LIMIT_RPS", 2),
		SummarySentences:       getEnvInt("SUMMARY_SENTENCES", 3),
		SummaryMinWords:        getEnvInt("SUMMARY_MIN_WORDS", 5),
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvFloat(key string, fallback float64) float64 {
	value := strings.TrimSpace(getEnv(key, ""))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}
