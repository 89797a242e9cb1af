package uploadengine

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds every configured user profile plus the name of the one
// currently selected as the default for uploads.
type Config struct {
	CurrentUser string                `yaml:"current_user,omitempty"`
	Users       map[string]UserConfig `yaml:"users"`
}

// UserConfig is one named server/API-key pair.
type UserConfig struct {
	Server string `yaml:"server"`
	APIKey string `yaml:"api_key"`
}

// Credentials is a fully resolved server/key pair, ready to build a Client.
type Credentials struct {
	Server string
	APIKey string
}

var ErrNoCredentials = errors.New("no server and API key configured")

// GetDefaultConfigPath returns the default config file path (~/.goimmich.yml)
func GetDefaultConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("unable to determine home directory: %v", err)
	}
	return filepath.Join(homeDir, ".goimmich.yml"), nil
}

// LoadConfig loads the config file from the specified path, or the default
// location if empty. A missing file is not an error: user management has to
// work before any config exists.
func LoadConfig(configPath string) (*Config, error) {
	c := &Config{Users: make(map[string]UserConfig)}

	if configPath == "" {
		var err error
		configPath, err = GetDefaultConfigPath()
		if err != nil {
			return nil, err
		}
	}

	f, err := os.Open(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return c, nil
		}
		return nil, fmt.Errorf("unable to open config file: %v", err)
	}
	defer f.Close()

	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(c); err != nil {
		return nil, fmt.Errorf("unable to decode config file %s: %v", configPath, err)
	}
	if c.Users == nil {
		c.Users = make(map[string]UserConfig)
	}
	return c, nil
}

// Save writes the config to the specified path (default location if empty),
// creating parent directories as needed.
func (c *Config) Save(configPath string) error {
	if configPath == "" {
		var err error
		configPath, err = GetDefaultConfigPath()
		if err != nil {
			return err
		}
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("unable to create config directory: %v", err)
	}

	f, err := os.Create(configPath)
	if err != nil {
		return fmt.Errorf("unable to create config file: %v", err)
	}
	defer f.Close()

	encoder := yaml.NewEncoder(f)
	defer encoder.Close()

	if err := encoder.Encode(c); err != nil {
		return fmt.Errorf("unable to encode config file: %v", err)
	}
	return nil
}

// AddUser stores (or replaces) a profile. It becomes the current user when
// asked to, or when no current user is set yet.
func (c *Config) AddUser(name string, user UserConfig, makeDefault bool) {
	c.Users[name] = user
	if makeDefault || c.CurrentUser == "" {
		c.CurrentUser = name
	}
}

// DeleteUser removes a profile. Deleting the current user clears the
// current-user selection. Reports whether the profile existed.
func (c *Config) DeleteUser(name string) bool {
	if _, ok := c.Users[name]; !ok {
		return false
	}
	delete(c.Users, name)
	if c.CurrentUser == name {
		c.CurrentUser = ""
	}
	return true
}

// SetDefault marks an existing profile as the current user.
func (c *Config) SetDefault(name string) error {
	if _, ok := c.Users[name]; !ok {
		return fmt.Errorf("user %q not found", name)
	}
	c.CurrentUser = name
	return nil
}

// UserNames returns all profile names in stable order.
func (c *Config) UserNames() []string {
	names := make([]string, 0, len(c.Users))
	for name := range c.Users {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve picks the server/key pair for a run. Precedence: an explicit
// server+key pair beats a named profile, which beats the current user.
// The server URL is normalized by trimming any trailing slash.
func (c *Config) Resolve(server, key, user string) (Credentials, error) {
	switch {
	case server != "" && key != "":
		return Credentials{Server: normalizeServer(server), APIKey: key}, nil
	case user != "":
		u, ok := c.Users[user]
		if !ok {
			return Credentials{}, fmt.Errorf("user %q not found in config", user)
		}
		return Credentials{Server: normalizeServer(u.Server), APIKey: u.APIKey}, nil
	case c.CurrentUser != "":
		u, ok := c.Users[c.CurrentUser]
		if !ok {
			return Credentials{}, fmt.Errorf("current user %q not found in config", c.CurrentUser)
		}
		return Credentials{Server: normalizeServer(u.Server), APIKey: u.APIKey}, nil
	default:
		return Credentials{}, ErrNoCredentials
	}
}

func normalizeServer(server string) string {
	return strings.TrimRight(strings.TrimSpace(server), "/")
}
