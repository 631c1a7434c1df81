package config

import (
	"crypto/rand"
	"encoding/base64"
	"os"

	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
)

type Config struct {
	Admin         AdminConfig `mapstructure:"admin"`
	DatabasePath  string      `mapstructure:"database_path"`
	SessionSecret string      `mapstructure:"session_secret"`
	// TLSInsecure disables certificate validation on every appliance
	// connection. Most controllers ship self-signed certificates, so it
	// defaults to true.
	TLSInsecure   bool `mapstructure:"tls_insecure"`
	SetupComplete bool `mapstructure:"setup_complete"`
}

type AdminConfig struct {
	Username     string `mapstructure:"username"`
	PasswordHash string `mapstructure:"password_hash"`
}

func LoadOrInitialize(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")

	// Set defaults
	viper.SetDefault("database_path", "portal.db")
	viper.SetDefault("tls_insecure", true)
	viper.SetDefault("setup_complete", false)

	// Check if config file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		// Create new config with defaults
		cfg := &Config{
			DatabasePath:  viper.GetString("database_path"),
			SessionSecret: generateSessionSecret(),
			TLSInsecure:   viper.GetBool("tls_insecure"),
			SetupComplete: false,
		}

		// Save initial config
		if err := SaveConfig(configPath, cfg); err != nil {
			return nil, err
		}

		return cfg, nil
	}

	// Read existing config
	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// Ensure session secret exists
	if cfg.SessionSecret == "" {
		cfg.SessionSecret = generateSessionSecret()
		if err := SaveConfig(configPath, &cfg); err != nil {
			return nil, err
		}
	}

	return &cfg, nil
}

func SaveConfig(configPath string, cfg *Config) error {
	viper.Set("admin.username", cfg.Admin.Username)
	viper.Set("admin.password_hash", cfg.Admin.PasswordHash)

	viper.Set("database_path", cfg.DatabasePath)
	viper.Set("session_secret", cfg.SessionSecret)
	viper.Set("tls_insecure", cfg.TLSInsecure)
	viper.Set("setup_complete", cfg.SetupComplete)

	return viper.WriteConfigAs(configPath)
}

func (c *Config) IsConfigured() bool {
	return c.SetupComplete && c.Admin.Username != ""
}

func (c *Config) SetAdminPassword(password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	c.Admin.PasswordHash = string(hash)
	return nil
}

func (c *Config) VerifyAdminPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(c.Admin.PasswordHash), []byte(password))
	return err == nil
}

func generateSessionSecret() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		// This should never happen with crypto/rand
		panic(err)
	}
	return base64.URLEncoding.EncodeToString(b)
}
