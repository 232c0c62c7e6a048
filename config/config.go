package config

import (
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	Server       Server
	Database     Database
	GeminiApiKey string
	GeminiModel  string
	LogLevel     string
	Attempts     Attempts
}

type Server struct {
	Port               string
	GinMode            string
	CORSAllowedOrigins []string
}

type Database struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// Attempts configures the background sweep that abandons stale attempts.
type Attempts struct {
	AbandonAfter  time.Duration
	SweepSchedule string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("GIN_MODE", "debug")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("DATABASE_HOST", "localhost")
	v.SetDefault("DATABASE_PORT", "5432")
	v.SetDefault("DATABASE_SSLMODE", "disable")
	v.SetDefault("GEMINI_MODEL", "gemini-1.5-flash")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("ATTEMPT_ABANDON_AFTER", "24h")
	v.SetDefault("ATTEMPT_SWEEP_SCHEDULE", "@every 15m")
}

func NewConfig() (*Config, error) {
	v := viper.New()
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	setDefaults(v)

	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		log.Warn().Err(err).Msg("Error reading config file")
	}

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	var config Config

	config.Server.Port = v.GetString("SERVER_PORT")
	config.Server.GinMode = v.GetString("GIN_MODE")
	config.Server.CORSAllowedOrigins = splitList(v.GetString("CORS_ALLOWED_ORIGINS"))

	config.Database.Host = v.GetString("DATABASE_HOST")
	config.Database.Port = v.GetString("DATABASE_PORT")
	config.Database.User = v.GetString("DATABASE_USER")
	config.Database.Password = v.GetString("DATABASE_PASSWORD")
	config.Database.Name = v.GetString("DATABASE_NAME")
	config.Database.SSLMode = v.GetString("DATABASE_SSLMODE")

	config.GeminiApiKey = v.GetString("GEMINI_API_KEY")
	config.GeminiModel = v.GetString("GEMINI_MODEL")
	config.LogLevel = v.GetString("LOG_LEVEL")

	config.Attempts.AbandonAfter = v.GetDuration("ATTEMPT_ABANDON_AFTER")
	config.Attempts.SweepSchedule = v.GetString("ATTEMPT_SWEEP_SCHEDULE")

	log.Info().
		Str("port", config.Server.Port).
		Str("db_host", config.Database.Host).
		Str("db_name", config.Database.Name).
		Bool("gemini", config.GeminiApiKey != "").
		Dur("abandon_after", config.Attempts.AbandonAfter).
		Msg("Config loaded")
	return &config
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// DSN is the postgres connection string for the configured database.
func (d Database) DSN() string {
	return "host=" + d.Host +
		" user=" + d.User +
		" password=" + d.Password +
		" dbname=" + d.Name +
		" port=" + d.Port +
		" sslmode=" + d.SSLMode +
		" TimeZone=UTC"
}
