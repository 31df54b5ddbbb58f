package config

import (
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	MongoDB  MongoDBConfig
	JWT      JWTConfig
	Quota    QuotaConfig
	OTP      OTPConfig
	AI       AIConfig
	SMS      SMSConfig
	CDN      CDNConfig
	LogLevel string
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port         string
	AllowedHosts []string
}

// MongoDBConfig holds MongoDB-specific configuration
type MongoDBConfig struct {
	URI      string
	Database string
}

// JWTConfig holds JWT-specific configuration
type JWTConfig struct {
	Secret    string
	ExpiresIn int // seconds
}

// QuotaConfig holds daily doubt quota configuration
type QuotaConfig struct {
	DemoDaily    int
	BasicDaily   int
	PremiumDaily int
	// Timezone defines the day boundary for quota and streak accounting.
	// "Local" uses the server clock's zone.
	Timezone string
}

// OTPConfig holds one-time login code configuration
type OTPConfig struct {
	TTLSeconds int
	Length     int
}

// AIConfig holds AI provider configuration
type AIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	MockAI  bool
}

// SMSConfig holds SMS gateway configuration
type SMSConfig struct {
	BaseURL        string
	APIKey         string
	MockSMSGateway bool
}

// CDNConfig holds content delivery configuration
type CDNConfig struct {
	BaseURL string
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		// It's okay if config file is not found, we'll use environment variables
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// setDefaults sets default values for configuration
func setDefaults() {
	viper.SetDefault("Server.Port", "4000")
	viper.SetDefault("Server.AllowedHosts", []string{"localhost:3000"})
	viper.SetDefault("MongoDB.URI", "mongodb://localhost:27017")
	viper.SetDefault("MongoDB.Database", "padhai")
	viper.SetDefault("JWT.ExpiresIn", 7*24*60*60) // 7 days
	viper.SetDefault("Quota.DemoDaily", 2)
	viper.SetDefault("Quota.BasicDaily", 5)
	viper.SetDefault("Quota.PremiumDaily", 10)
	viper.SetDefault("Quota.Timezone", "Local")
	viper.SetDefault("OTP.TTLSeconds", 300)
	viper.SetDefault("OTP.Length", 6)
	viper.SetDefault("AI.Model", "gpt-4o-mini")
	viper.SetDefault("AI.MockAI", false)
	viper.SetDefault("SMS.MockSMSGateway", true)
	viper.SetDefault("CDN.BaseURL", "https://cdn.padhai.app")
	viper.SetDefault("LogLevel", "info")
}
