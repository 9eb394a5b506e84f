package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file looked up when none is given.
const DefaultPath = "teamboard.yml"

// DateLayout is the calendar-date format used for seed campaign dates.
const DateLayout = "2006-01-02"

// Config models teamboard.yml.
type Config struct {
	Server struct {
		Addr        string   `yaml:"addr"`
		CORSOrigins []string `yaml:"cors_origins"`
	} `yaml:"server"`
	Auth struct {
		JWTSecret string `yaml:"jwt_secret"`
	} `yaml:"auth"`
	Seed     Seed            `yaml:"seed"`
	Webhooks []WebhookConfig `yaml:"webhooks"`
	Snapshot struct {
		Path string `yaml:"path"`
	} `yaml:"snapshot"`
}

// Seed is the data loaded into an empty store at startup.
type Seed struct {
	Roles     []SeedRole     `yaml:"roles"`
	Admin     *SeedUser      `yaml:"admin"`
	Campaigns []SeedCampaign `yaml:"campaigns"`
}

type SeedRole struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Permissions []string `yaml:"permissions"`
}

type SeedUser struct {
	Name     string `yaml:"name"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
	Role     string `yaml:"role"`
	Avatar   string `yaml:"avatar"`
}

type SeedCampaign struct {
	Name      string `yaml:"name"`
	Progress  int    `yaml:"progress"`
	StartDate string `yaml:"start_date"`
	EndDate   string `yaml:"end_date"`
	Status    string `yaml:"status"`
}

// Dates parses the campaign's start and optional end date.
func (c SeedCampaign) Dates() (time.Time, *time.Time, error) {
	start, err := time.Parse(DateLayout, c.StartDate)
	if err != nil {
		return time.Time{}, nil, fmt.Errorf("campaign %s start_date: %w", c.Name, err)
	}
	if c.EndDate == "" {
		return start, nil, nil
	}
	end, err := time.Parse(DateLayout, c.EndDate)
	if err != nil {
		return time.Time{}, nil, fmt.Errorf("campaign %s end_date: %w", c.Name, err)
	}
	return start, &end, nil
}

// WebhookConfig describes one activity webhook target.
type WebhookConfig struct {
	URL            string   `yaml:"url"`
	Secret         string   `yaml:"secret"`
	Events         []string `yaml:"events"`
	Enabled        *bool    `yaml:"enabled"`
	TimeoutSeconds int      `yaml:"timeout_seconds"`
}

// Active reports whether the hook should receive deliveries.
func (w WebhookConfig) Active() bool {
	if w.Enabled != nil && !*w.Enabled {
		return false
	}
	return strings.TrimSpace(w.URL) != ""
}

// Validate ensures the config meets required structure.
func (c *Config) Validate() error {
	seen := map[string]bool{}
	for i, role := range c.Seed.Roles {
		if role.Name == "" {
			return fmt.Errorf("config.seed.roles[%d].name is required", i)
		}
		if seen[role.Name] {
			return fmt.Errorf("config.seed.roles has duplicate role %s", role.Name)
		}
		seen[role.Name] = true
		for _, perm := range role.Permissions {
			if perm == "" {
				return fmt.Errorf("role %s has empty permission", role.Name)
			}
		}
	}
	if a := c.Seed.Admin; a != nil {
		if a.Email == "" || a.Password == "" {
			return fmt.Errorf("config.seed.admin requires email and password")
		}
		if a.Name == "" {
			return fmt.Errorf("config.seed.admin.name is required")
		}
	}
	for i, camp := range c.Seed.Campaigns {
		if camp.Name == "" {
			return fmt.Errorf("config.seed.campaigns[%d].name is required", i)
		}
		if _, _, err := camp.Dates(); err != nil {
			return err
		}
	}
	for i, hook := range c.Webhooks {
		if strings.TrimSpace(hook.URL) == "" {
			return fmt.Errorf("config.webhooks[%d].url is required", i)
		}
		if hook.TimeoutSeconds < 0 {
			return fmt.Errorf("config.webhooks[%d].timeout_seconds must not be negative", i)
		}
		for _, evt := range hook.Events {
			if strings.TrimSpace(evt) == "" {
				return fmt.Errorf("config.webhooks[%d] has empty event filter", i)
			}
		}
	}
	return nil
}

// GenerateDefault returns default config YAML.
func GenerateDefault() string {
	return defaultTemplate
}

// Default returns the built-in configuration.
func Default() *Config {
	var cfg Config
	_ = yaml.NewDecoder(bytes.NewBufferString(defaultTemplate)).Decode(&cfg)
	return &cfg
}

// Load reads the config at path, falling back to Default when the file does
// not exist.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}
	return FromYAML(data)
}

// FromYAML parses and validates config from raw YAML bytes.
func FromYAML(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("invalid config yaml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// FromFile reads YAML config from the given path.
func FromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return FromYAML(data)
}

// YAML renders cfg back to YAML with the jwt secret masked.
func (c *Config) YAML() (string, error) {
	masked := *c
	if masked.Auth.JWTSecret != "" {
		masked.Auth.JWTSecret = "********"
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&masked); err != nil {
		return "", err
	}
	return buf.String(), nil
}

const defaultTemplate = `server:
  addr: ":5000"
  cors_origins: []

auth:
  # Set here or through TEAMBOARD_JWT_SECRET.
  jwt_secret: ""

seed:
  roles:
    - name: Administrator
      description: Full access to all features
      permissions: [dashboard, tasks, team, reports, settings]
    - name: Marketing Manager
      description: Can manage campaigns and view reports
      permissions: [dashboard, tasks, team, reports]
    - name: Content Creator
      description: Creates and edits content for campaigns
      permissions: [dashboard, tasks]

  admin:
    name: Alex Morgan
    email: admin@example.com
    password: admin123
    role: admin
    avatar: AM

  campaigns:
    - name: Summer Promotion
      progress: 87
      start_date: "2023-06-01"
      end_date: "2023-09-30"
      status: active
    - name: Product Launch
      progress: 65
      start_date: "2023-08-15"
      end_date: "2023-10-15"
      status: active
    - name: Q3 Newsletter
      progress: 32
      start_date: "2023-07-01"
      end_date: "2023-09-30"
      status: active
    - name: Social Media
      progress: 94
      start_date: "2023-01-01"
      end_date: "2023-12-31"
      status: active

webhooks: []

snapshot:
  # SQLite file restored at startup and written on shutdown; empty disables it.
  path: ""
`
