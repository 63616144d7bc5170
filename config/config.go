package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/maqibg/BaYin-sub000/domain"
)

// Config represents the complete application configuration
type Config struct {
	Servers []Server      `mapstructure:"servers"`
	Library LibraryConfig `mapstructure:"library"`
	Storage StorageConfig `mapstructure:"storage"`
	Player  PlayerConfig  `mapstructure:"player"`
	Client  ClientConfig  `mapstructure:"client"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// Server describes one remote streaming server account
type Server struct {
	ID       string `mapstructure:"id"`
	Name     string `mapstructure:"name"`
	Type     string `mapstructure:"type"`
	URL      string `mapstructure:"url"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Token    string `mapstructure:"token"`
	UserID   string `mapstructure:"user_id"`
}

// LibraryConfig contains catalog refresh settings
type LibraryConfig struct {
	// RefreshSchedule is a cron spec ("@every 15m" style) for periodic
	// catalog refreshes; empty disables them.
	RefreshSchedule string `mapstructure:"refresh_schedule"`
}

// StorageConfig contains durable store settings
type StorageConfig struct {
	Path string `mapstructure:"path"`
}

// PlayerConfig contains playback and HTTP client settings
type PlayerConfig struct {
	HTTPTimeout int `mapstructure:"http_timeout"` // in seconds
}

// ClientConfig contains streaming API client settings
type ClientConfig struct {
	ID         string `mapstructure:"id"`
	APIVersion string `mapstructure:"api_version"`
}

// LoggingConfig contains log output settings
type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

// GetHTTPTimeout returns the HTTP timeout as a time.Duration
func (p *PlayerConfig) GetHTTPTimeout() time.Duration {
	return time.Duration(p.HTTPTimeout) * time.Second
}

// Validate checks if all required configuration values are set
func (c *Config) Validate() error {
	if len(c.Servers) == 0 {
		return fmt.Errorf("no servers configured")
	}
	for i, server := range c.Servers {
		if strings.TrimSpace(server.URL) == "" {
			return fmt.Errorf("server %d: missing url", i)
		}
		serverType, err := domain.ParseServerType(server.Type)
		if err != nil {
			return fmt.Errorf("server %d: %w", i, err)
		}
		switch serverType {
		case domain.ServerSubsonic:
			if server.Username == "" || server.Password == "" {
				return fmt.Errorf("server %d: subsonic servers need username and password", i)
			}
		case domain.ServerJellyfin:
			if server.Token == "" {
				return fmt.Errorf("server %d: jellyfin servers need an access token", i)
			}
		}
	}
	return nil
}

// ServerConfigs converts the configured servers to their domain form.
// Servers without an explicit id get a generated one, stable for the
// lifetime of the process.
func (c *Config) ServerConfigs() ([]domain.ServerConfig, error) {
	servers := make([]domain.ServerConfig, 0, len(c.Servers))
	for i, server := range c.Servers {
		serverType, err := domain.ParseServerType(server.Type)
		if err != nil {
			return nil, fmt.Errorf("server %d: %w", i, err)
		}
		id := server.ID
		if id == "" {
			id = uuid.New().String()
		}
		name := server.Name
		if name == "" {
			name = server.URL
		}
		servers = append(servers, domain.ServerConfig{
			ID:       id,
			Name:     name,
			Type:     serverType,
			BaseURL:  strings.TrimRight(server.URL, "/"),
			Username: server.Username,
			Password: server.Password,
			Token:    server.Token,
			UserID:   server.UserID,
		})
	}
	return servers, nil
}

// DefaultConfig returns a Config with sensible default values
func DefaultConfig() *Config {
	return &Config{
		Library: LibraryConfig{
			RefreshSchedule: "@every 15m",
		},
		Storage: StorageConfig{
			Path: "bayin.db",
		},
		Player: PlayerConfig{
			HTTPTimeout: 30,
		},
		Client: ClientConfig{
			ID:         "bayin",
			APIVersion: "1.16.1",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Registry resolves server configurations by id. It satisfies the lookup
// interfaces of the resolver and the lyric fetcher.
type Registry struct {
	servers map[string]*domain.ServerConfig
	order   []string
}

// NewRegistry builds a Registry from domain server configurations.
func NewRegistry(servers []domain.ServerConfig) *Registry {
	r := &Registry{servers: make(map[string]*domain.ServerConfig, len(servers))}
	for i := range servers {
		server := servers[i]
		if _, exists := r.servers[server.ID]; exists {
			continue
		}
		r.servers[server.ID] = &server
		r.order = append(r.order, server.ID)
	}
	return r
}

// ServerByID returns the configuration for a server id.
func (r *Registry) ServerByID(id string) (*domain.ServerConfig, bool) {
	server, ok := r.servers[id]
	return server, ok
}

// Servers returns all configurations in their configured order.
func (r *Registry) Servers() []*domain.ServerConfig {
	out := make([]*domain.ServerConfig, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.servers[id])
	}
	return out
}
