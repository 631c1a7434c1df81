package config

import (
	"os"
	"testing"
)

func TestLoadOrInitialize(t *testing.T) {
	testFile := "test_config_load.yaml"
	defer os.Remove(testFile)

	t.Run("Create new config", func(t *testing.T) {
		cfg, err := LoadOrInitialize(testFile)
		if err != nil {
			t.Fatalf("Failed to create new config: %v", err)
		}

		if cfg.SetupComplete {
			t.Error("New config should not be setup complete")
		}

		if cfg.SessionSecret == "" {
			t.Error("Session secret should be generated")
		}

		if len(cfg.SessionSecret) != 44 { // 32 bytes base64 encoded = 44 chars
			t.Errorf("Session secret should be 44 chars (32 bytes base64 encoded), got %d", len(cfg.SessionSecret))
		}

		if !cfg.TLSInsecure {
			t.Error("TLS verification should default to off for self-signed appliances")
		}
	})

	t.Run("Load existing config", func(t *testing.T) {
		// Create initial config
		cfg1, err := LoadOrInitialize(testFile)
		if err != nil {
			t.Fatalf("Failed to create config: %v", err)
		}
		originalSecret := cfg1.SessionSecret

		// Save it
		if err := SaveConfig(testFile, cfg1); err != nil {
			t.Fatalf("Failed to save config: %v", err)
		}

		// Load it again
		cfg2, err := LoadOrInitialize(testFile)
		if err != nil {
			t.Fatalf("Failed to load existing config: %v", err)
		}

		if cfg2.SessionSecret != originalSecret {
			t.Error("Session secret should be preserved when loading existing config")
		}
	})
}

func TestIsConfigured(t *testing.T) {
	tests := []struct {
		name   string
		config *Config
		want   bool
	}{
		{
			name:   "Empty config",
			config: &Config{},
			want:   false,
		},
		{
			name: "Setup complete but no admin",
			config: &Config{
				SetupComplete: true,
			},
			want: false,
		},
		{
			name: "Fully configured",
			config: &Config{
				SetupComplete: true,
				Admin: AdminConfig{
					Username: "admin",
				},
			},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.config.IsConfigured(); got != tt.want {
				t.Errorf("IsConfigured() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSetAdminPassword(t *testing.T) {
	cfg := &Config{}

	password := "testpassword123"
	err := cfg.SetAdminPassword(password)
	if err != nil {
		t.Fatalf("Failed to set admin password: %v", err)
	}

	if cfg.Admin.PasswordHash == "" {
		t.Error("Password hash should be set")
	}

	if cfg.Admin.PasswordHash == password {
		t.Error("Password should be hashed, not stored in plaintext")
	}
}

func TestVerifyAdminPassword(t *testing.T) {
	cfg := &Config{}
	password := "testpassword123"

	// Set password
	err := cfg.SetAdminPassword(password)
	if err != nil {
		t.Fatalf("Failed to set admin password: %v", err)
	}

	// Test correct password
	if !cfg.VerifyAdminPassword(password) {
		t.Error("Should verify correct password")
	}

	// Test incorrect password
	if cfg.VerifyAdminPassword("wrongpassword") {
		t.Error("Should not verify incorrect password")
	}
}

func TestConfigEdgeCases(t *testing.T) {
	t.Run("LoadOrInitialize with invalid file path", func(t *testing.T) {
		// Try to load from a directory that doesn't exist
		_, err := LoadOrInitialize("/nonexistent/directory/config.yaml")
		if err == nil {
			t.Error("Should fail to load from non-existent directory")
		}
	})

	t.Run("SaveConfig with invalid file path", func(t *testing.T) {
		cfg := &Config{}
		err := SaveConfig("/nonexistent/directory/config.yaml", cfg)
		if err == nil {
			t.Error("Should fail to save to non-existent directory")
		}
	})

	t.Run("VerifyAdminPassword with no hash set", func(t *testing.T) {
		cfg := &Config{}
		if cfg.VerifyAdminPassword("anypassword") {
			t.Error("Should not verify when no hash is set")
		}
	})
}
