package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	// Service information
	Service struct {
		Name        string `yaml:"name"`
		Version     string `yaml:"version"`
		Environment string `yaml:"environment"`
	} `yaml:"service"`

	HTTP      HTTPConfig      `yaml:"http"`
	WebSocket WebSocketConfig `yaml:"websocket"`
	Auth      AuthConfig      `yaml:"auth"`
	Chat      ChatConfig      `yaml:"chat"`
	GeoIP     GeoIPConfig     `yaml:"geoip"`
	ICE       ICEConfig       `yaml:"ice"`
	Log       LogConfig       `yaml:"log"`
}

// HTTPConfig represents HTTP server configuration
type HTTPConfig struct {
	Address         string        `yaml:"address"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	AllowedOrigins  []string      `yaml:"allowed_origins"`
}

// WebSocketConfig represents WebSocket connection configuration
type WebSocketConfig struct {
	Path           string        `yaml:"path"`
	MaxMessageSize int64         `yaml:"max_message_size"`
	WriteWait      time.Duration `yaml:"write_wait"`
	PongWait       time.Duration `yaml:"pong_wait"`
	PingPeriod     time.Duration `yaml:"ping_period"`
	SendBuffer     int           `yaml:"send_buffer"`
}

// AuthConfig represents admin authentication configuration
type AuthConfig struct {
	AdminUsername  string        `yaml:"admin_username"`
	AdminPassword  string        `yaml:"admin_password"`
	JWTSecret      string        `yaml:"jwt_secret"`
	JWTExpiration  time.Duration `yaml:"jwt_expiration"`
	LoginPerMinute int           `yaml:"login_per_minute"`
	LoginBurst     int           `yaml:"login_burst"`
}

// ChatConfig represents chat log and bot configuration
type ChatConfig struct {
	HistorySize int       `yaml:"history_size"`
	Bot         BotConfig `yaml:"bot"`
}

// BotConfig represents the filler-comment generator configuration
type BotConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Author   string        `yaml:"author"`
	MinDelay time.Duration `yaml:"min_delay"`
	MaxDelay time.Duration `yaml:"max_delay"`
}

// GeoIPConfig represents the GeoIP database configuration
type GeoIPConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// ICEConfig represents the ICE server set handed to clients
type ICEConfig struct {
	Servers []ICEServer `yaml:"servers"`
}

// ICEServer is one STUN/TURN entry
type ICEServer struct {
	URLs       []string `yaml:"urls" json:"urls"`
	Username   string   `yaml:"username,omitempty" json:"username,omitempty"`
	Credential string   `yaml:"credential,omitempty" json:"credential,omitempty"`
}

// LogConfig represents logging configuration
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load loads the configuration. An empty path applies defaults and
// environment overrides only.
func Load(path string) (*Config, error) {
	// Set default configuration
	config := &Config{
		HTTP: HTTPConfig{
			Address:         ":3001",
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 15 * time.Second,
			AllowedOrigins:  []string{"*"},
		},
		WebSocket: WebSocketConfig{
			Path:           "/ws",
			MaxMessageSize: 64 * 1024,
			WriteWait:      10 * time.Second,
			PongWait:       60 * time.Second,
			PingPeriod:     54 * time.Second,
			SendBuffer:     256,
		},
		Auth: AuthConfig{
			AdminUsername:  "admin",
			JWTExpiration:  12 * time.Hour,
			LoginPerMinute: 10,
			LoginBurst:     5,
		},
		Chat: ChatConfig{
			HistorySize: 100,
			Bot: BotConfig{
				Enabled:  true,
				Author:   "Bot",
				MinDelay: 3 * time.Second,
				MaxDelay: 10 * time.Second,
			},
		},
		ICE: ICEConfig{
			Servers: []ICEServer{
				{URLs: []string{
					"stun:stun.l.google.com:19302",
					"stun:stun1.l.google.com:19302",
				}},
			},
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
	config.Service.Name = "livelizzy-signaling"
	config.Service.Version = "1.0.0"
	config.Service.Environment = "development"

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	// Apply environment overrides
	applyEnvironmentOverrides(config)

	if err := config.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) validate() error {
	if c.Chat.HistorySize <= 0 {
		return fmt.Errorf("chat.history_size must be positive, got %d", c.Chat.HistorySize)
	}
	if c.Chat.Bot.MinDelay > c.Chat.Bot.MaxDelay {
		return fmt.Errorf("chat.bot.min_delay exceeds max_delay")
	}
	if c.WebSocket.PingPeriod >= c.WebSocket.PongWait {
		return fmt.Errorf("websocket.ping_period must be less than pong_wait")
	}
	return nil
}

// applyEnvironmentOverrides applies environment overrides
func applyEnvironmentOverrides(config *Config) {
	if addr := os.Getenv("HTTP_ADDRESS"); addr != "" {
		config.HTTP.Address = addr
	}

	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		config.HTTP.AllowedOrigins = strings.Split(origins, ",")
	}

	if user := os.Getenv("ADMIN_USERNAME"); user != "" {
		config.Auth.AdminUsername = user
	}

	if pass := os.Getenv("ADMIN_PASSWORD"); pass != "" {
		config.Auth.AdminPassword = pass
	}

	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		config.Auth.JWTSecret = secret
	}

	if path := os.Getenv("GEOIP_DATABASE"); path != "" {
		config.GeoIP.DatabasePath = path
	}

	if env := os.Getenv("ENVIRONMENT"); env != "" {
		config.Service.Environment = env
	}

	if level := os.Getenv("LOG_LEVEL"); level != "" {
		config.Log.Level = level
	}
}
