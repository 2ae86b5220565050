// This file defines the configuration structure for the application.
package config

import (
	// use Viper for loading the config.yml file.
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration settings for the application.
// It maps directly to the structure of config.yml. It is constructed once
// at startup and passed by reference; business logic never reads the
// environment directly.
type Config struct {
	Port     int `mapstructure:"port"`
	Database struct {
		Path string `mapstructure:"path"`
	} `mapstructure:"database"`
	Images struct {
		// Strategy selects how bare storage keys are turned into delivery
		// URLs: "cdn" for CDN-domain URLs, "signed" for presigned URLs.
		Strategy   string `mapstructure:"strategy"`
		CDNDomain  string `mapstructure:"cdn_domain"`
		Bucket     string `mapstructure:"bucket"`
		URLTTLMins int    `mapstructure:"url_ttl_minutes"`
	} `mapstructure:"images"`
	NATS struct {
		URL     string `mapstructure:"url"`
		Stream  string `mapstructure:"stream"`
		Durable string `mapstructure:"durable"`
	} `mapstructure:"nats"`
	Events struct {
		Topic string `mapstructure:"topic"`
	} `mapstructure:"events"`
	Revalidate struct {
		URL            string `mapstructure:"url"`
		Secret         string `mapstructure:"secret"`
		TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	} `mapstructure:"revalidate"`
	CDN struct {
		DistributionID string `mapstructure:"distribution_id"`
	} `mapstructure:"cdn"`
	PopularLimit int `mapstructure:"popular_limit"`
	LatestLimit  int `mapstructure:"latest_limit"`
}

// Load reads configuration from a file named "config.yml" in the
// current directory and unmarshals it into a Config struct.
func Load() (*Config, error) {
	viper.SetConfigName("config") // name of config file (without extension)
	viper.SetConfigType("yml")    // or "yaml"
	viper.AddConfigPath(".")      // looking for config in the current directory

	// --- Environment Variable Overrides ---
	// This tells Viper to look for environment variables with a "KYOMU_" prefix.
	// e.g., KYOMU_DATABASE_PATH will override the `database.path` key.
	viper.SetEnvPrefix("KYOMU")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Set default values
	viper.SetDefault("port", 8080)
	viper.SetDefault("database.path", "./kyomu.db")
	viper.SetDefault("images.strategy", "cdn")
	viper.SetDefault("images.cdn_domain", "")
	viper.SetDefault("images.bucket", "")
	viper.SetDefault("images.url_ttl_minutes", 60)
	viper.SetDefault("nats.url", "nats://localhost:4222")
	viper.SetDefault("nats.stream", "KYOMU_EVENTS")
	viper.SetDefault("nats.durable", "kyomu-invalidation")
	viper.SetDefault("events.topic", "kyomu.content")
	viper.SetDefault("revalidate.url", "")
	viper.SetDefault("revalidate.secret", "")
	viper.SetDefault("revalidate.timeout_seconds", 30)
	viper.SetDefault("cdn.distribution_id", "")
	viper.SetDefault("popular_limit", 10)
	viper.SetDefault("latest_limit", 20)

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found; ignore error and use defaults
		} else {
			// Config file was found but another error was produced
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}
