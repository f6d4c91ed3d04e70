package config

import (
	"errors"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Port     string `mapstructure:"PORT"`
	Env      string `mapstructure:"ENV"`
	LogLevel string `mapstructure:"LOG_LEVEL"`

	DatabaseDriver string `mapstructure:"DATABASE_DRIVER"`
	DatabasePath   string `mapstructure:"DATABASE_PATH"`
	DatabaseURL    string `mapstructure:"DATABASE_URL"`
	MongoDatabase  string `mapstructure:"MONGO_DATABASE"`

	DiscordClientID               string `mapstructure:"DISCORD_CLIENT_ID"`
	DiscordClientSecret           string `mapstructure:"DISCORD_CLIENT_SECRET"`
	DiscordRedirectURL            string `mapstructure:"DISCORD_REDIRECT_URL"`
	DiscordGuildID                string `mapstructure:"DISCORD_GUILD_ID"`
	DiscordBotToken               string `mapstructure:"DISCORD_BOT_TOKEN"`
	DiscordNotificationsChannelID string `mapstructure:"DISCORD_NOTIFICATIONS_CHANNEL_ID"`
	JWTSecret                     string `mapstructure:"JWT_SECRET"`
	FrontendURL                   string `mapstructure:"FRONTEND_URL"`
	EnableCORS                    bool   `mapstructure:"ENABLE_CORS"`
	TrustProxy                    bool   `mapstructure:"TRUST_PROXY"`

	RateLimitPerMinute int           `mapstructure:"RATE_LIMIT_PER_MINUTE"`
	RateLimitBurst     int           `mapstructure:"RATE_LIMIT_BURST"`
	UpcomingDays       int           `mapstructure:"UPCOMING_DAYS"`
	ShutdownTimeout    time.Duration `mapstructure:"SHUTDOWN_TIMEOUT"`
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Validate rejects settings the server must not start with.
func (c *Config) Validate() error {
	if c.IsProduction() && c.JWTSecret == "" {
		return errors.New("JWT_SECRET must be set in production")
	}
	return nil
}

func LoadConfig() *Config {
	// .env is optional; real environment variables win.
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	viper.SetDefault("PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("DATABASE_DRIVER", "sqlite")
	viper.SetDefault("DATABASE_PATH", "retreat.db")
	viper.SetDefault("MONGO_DATABASE", "retreat")
	viper.SetDefault("DISCORD_REDIRECT_URL", "http://127.0.0.1:8080/auth/discord/callback")
	viper.SetDefault("FRONTEND_URL", "http://127.0.0.1:4000/admin")
	viper.SetDefault("RATE_LIMIT_PER_MINUTE", 100)
	viper.SetDefault("RATE_LIMIT_BURST", 20)
	viper.SetDefault("UPCOMING_DAYS", 7)
	viper.SetDefault("SHUTDOWN_TIMEOUT", "10s")

	viper.BindEnv("DATABASE_URL")
	viper.BindEnv("DISCORD_CLIENT_ID")
	viper.BindEnv("DISCORD_CLIENT_SECRET")
	viper.BindEnv("DISCORD_GUILD_ID")
	viper.BindEnv("DISCORD_BOT_TOKEN")
	viper.BindEnv("DISCORD_NOTIFICATIONS_CHANNEL_ID")
	viper.BindEnv("JWT_SECRET")
	viper.BindEnv("ENABLE_CORS")
	viper.BindEnv("TRUST_PROXY")

	viper.AutomaticEnv()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		log.Fatalf("Unable to decode into struct, %v", err)
	}

	return &config
}
