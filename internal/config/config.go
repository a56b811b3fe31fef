package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"budgetwise/internal/engine"
)

// Config holds application configuration
type Config struct {
	// Server
	Port string
	Env  string

	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// CORS
	CORSAllowedOrigins []string

	// Calendar boundaries and quiet hours are evaluated in this zone
	Location *time.Location

	// Optional engine tuning file (toml, yaml or json)
	EngineConfigPath string
	Engine           engine.Settings
}

var appConfig *Config

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if not already loaded
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	config := &Config{
		// Server
		Port: getEnv("PORT", "8080"),
		Env:  getEnv("ENV", "development"),

		// Database
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "budgetwise"),
		DBPassword: getEnv("DB_PASSWORD", "budgetwise"),
		DBName:     getEnv("DB_NAME", "budgetwise"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),
		EngineConfigPath:   getEnv("ENGINE_CONFIG", ""),
	}

	tz := getEnv("TIMEZONE", "UTC")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("Warning: invalid TIMEZONE value '%s', falling back to UTC\n", tz)
		loc = time.UTC
	}
	config.Location = loc

	settings, err := LoadEngineSettings(config.EngineConfigPath)
	if err != nil {
		return nil, err
	}
	config.Engine = settings

	appConfig = config
	return config, nil
}

// Get returns the application configuration
func Get() *Config {
	if appConfig == nil {
		var err error
		appConfig, err = Load()
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
	}
	return appConfig
}

// LoadEngineSettings reads engine tuning from path (when set) and BUDGET_
// prefixed environment variables, e.g. BUDGET_THRESHOLDS_WARNING=75.
// Missing values come from engine.DefaultSettings.
func LoadEngineSettings(path string) (engine.Settings, error) {
	v := viper.New()
	d := engine.DefaultSettings()

	v.SetDefault("thresholds.warning", d.Thresholds.Warning)
	v.SetDefault("thresholds.over", d.Thresholds.Over)
	v.SetDefault("thresholds.critical", d.Thresholds.Critical)
	v.SetDefault("week_start", d.WeekStart)
	v.SetDefault("history_months", d.HistoryMonths)
	v.SetDefault("suggestion_months", d.SuggestionMonths)
	v.SetDefault("suggestion_buffer", d.SuggestionBuffer)
	v.SetDefault("pattern_window_days", d.PatternWindowDays)
	v.SetDefault("top_categories", d.TopCategories)
	v.SetDefault("spike_multiplier", d.SpikeMultiplier)
	v.SetDefault("tight_percentage", d.TightPercentage)
	v.SetDefault("anomaly_multiplier", d.AnomalyMultiplier)
	v.SetDefault("anomaly_lookback_days", d.AnomalyLookbackDays)
	v.SetDefault("overspending_threshold", d.OverspendingThreshold)
	v.SetDefault("low_savings_rate", d.LowSavingsRate)
	v.SetDefault("trend_months", d.TrendMonths)

	v.SetEnvPrefix("BUDGET")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return engine.Settings{}, fmt.Errorf("read engine config %s: %w", path, err)
		}
	}

	var s engine.Settings
	if err := v.Unmarshal(&s); err != nil {
		return engine.Settings{}, fmt.Errorf("unmarshal engine config: %w", err)
	}
	return s.Normalize(), nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
