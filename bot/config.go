package bot

import (
	"fmt"
	"os"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	coreconfig "github.com/kagace/melobot/core/config"
	coredatabase "github.com/kagace/melobot/core/database"
)

// SpotifyCredentials authorize track and album search.
type SpotifyCredentials struct {
	ClientID     string `yaml:"client_id" envconfig:"SPOTIFY_CLIENT_ID"`
	ClientSecret string `yaml:"client_secret" envconfig:"SPOTIFY_CLIENT_SECRET"`
}

// YouTubeCredentials authorize video search.
type YouTubeCredentials struct {
	APIKey string `yaml:"api_key" envconfig:"YOUTUBE_API_KEY"`
}

// GeniusCredentials authorize lyrics search.
type GeniusCredentials struct {
	AccessToken string `yaml:"access_token" envconfig:"GENIUS_ACCESS_TOKEN"`
}

// ProvidersConfig aggregates upstream API credentials.
type ProvidersConfig struct {
	Spotify SpotifyCredentials `yaml:"spotify"`
	YouTube YouTubeCredentials `yaml:"youtube"`
	Genius  GeniusCredentials  `yaml:"genius"`
}

const (
	AuditBackendCSV      = "csv"
	AuditBackendPostgres = "postgres"
)

// AuditConfig selects where the audit trail is written.
type AuditConfig struct {
	Backend string `yaml:"backend" envconfig:"AUDIT_BACKEND"`
	Dir     string `yaml:"dir" envconfig:"AUDIT_DIR"`
	File    string `yaml:"file" envconfig:"AUDIT_FILE"`
}

// Config is the full bot configuration.
type Config struct {
	Core      coreconfig.Config   `yaml:",inline"`
	Providers ProvidersConfig     `yaml:"providers"`
	Audit     AuditConfig         `yaml:"audit"`
	Database  coredatabase.Config `yaml:"database"`
}

// CoreConfig exposes the embedded core configuration.
func (c *Config) CoreConfig() *coreconfig.Config {
	return &c.Core
}

// LoadConfig reads YAML configuration, overlays environment variables, and
// validates the result.
func LoadConfig(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env: %w", err)
	}

	if err := coreconfig.Normalize(&cfg.Core); err != nil {
		return nil, err
	}
	if err := normalize(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func normalize(cfg *Config) error {
	if cfg.Providers.Spotify.ClientID == "" || cfg.Providers.Spotify.ClientSecret == "" {
		return fmt.Errorf("spotify client_id and client_secret are required")
	}
	if cfg.Providers.YouTube.APIKey == "" {
		return fmt.Errorf("youtube api_key is required")
	}
	if cfg.Providers.Genius.AccessToken == "" {
		return fmt.Errorf("genius access_token is required")
	}

	backend := strings.ToLower(strings.TrimSpace(cfg.Audit.Backend))
	if backend == "" {
		backend = AuditBackendCSV
	}
	switch backend {
	case AuditBackendCSV:
		if cfg.Audit.Dir == "" {
			cfg.Audit.Dir = "logs"
		}
		if cfg.Audit.File == "" {
			cfg.Audit.File = "bot_logs.csv"
		}
	case AuditBackendPostgres:
		if cfg.Database.Host == "" || cfg.Database.Name == "" {
			return fmt.Errorf("database.host and database.name are required when audit.backend is 'postgres'")
		}
	default:
		return fmt.Errorf("invalid audit.backend %q; allowed: csv, postgres", cfg.Audit.Backend)
	}
	cfg.Audit.Backend = backend

	return nil
}
