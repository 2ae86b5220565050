// Verifies the configuration loading logic using Viper.

package config

import (
	"os"
	"testing"
)

func TestLoadConfig(t *testing.T) {
	t.Run("Defaults when no config file", func(t *testing.T) {
		// Ensure no config file exists for this test
		os.Remove("config.yml")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() returned an error: %v", err)
		}

		// Check if default values are set
		if cfg.Port != 8080 {
			t.Errorf("Expected default port 8080, got %d", cfg.Port)
		}
		if cfg.Database.Path != "./kyomu.db" {
			t.Errorf("Expected default db path './kyomu.db', got '%s'", cfg.Database.Path)
		}
		if cfg.Images.Strategy != "cdn" {
			t.Errorf("Expected default images strategy 'cdn', got '%s'", cfg.Images.Strategy)
		}
		if cfg.Revalidate.TimeoutSeconds != 30 {
			t.Errorf("Expected default revalidation timeout of 30s, got %d", cfg.Revalidate.TimeoutSeconds)
		}
	})

	t.Run("Loads from config file", func(t *testing.T) {
		// Create a temporary config file for this test
		configContent := `
port: 9999
database:
  path: "/tmp/test.db"
images:
  strategy: "signed"
  bucket: "test-bucket"
revalidate:
  url: "https://frontend.example.com"
unknown_setting: "should be ignored"
`
		// Create the config file in the current directory so Viper can find it.
		// Note: `t.TempDir()` is not used here because Viper looks in the CWD.
		configPath := "config.yml"
		if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
			t.Fatalf("Failed to write test config file: %v", err)
		}
		// Clean up the file after the test
		defer os.Remove(configPath)

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() returned an error: %v", err)
		}

		// Check if values from the file were loaded
		if cfg.Port != 9999 {
			t.Errorf("Expected port 9999, got %d", cfg.Port)
		}
		if cfg.Images.Strategy != "signed" {
			t.Errorf("Expected images strategy 'signed', got '%s'", cfg.Images.Strategy)
		}
		if cfg.Images.Bucket != "test-bucket" {
			t.Errorf("Expected bucket 'test-bucket', got '%s'", cfg.Images.Bucket)
		}
		if cfg.Revalidate.URL != "https://frontend.example.com" {
			t.Errorf("Expected revalidate url, got '%s'", cfg.Revalidate.URL)
		}
		// Values absent from the file keep their defaults.
		if cfg.LatestLimit != 20 {
			t.Errorf("Expected default latest limit of 20, got %d", cfg.LatestLimit)
		}
	})
}
