package uploadengine

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")

	config := &Config{Users: make(map[string]UserConfig)}
	config.AddUser("home", UserConfig{Server: "http://immich.local:2283", APIKey: "abc"}, false)
	config.AddUser("work", UserConfig{Server: "https://photos.example.com", APIKey: "def"}, true)
	require.NoError(t, config.Save(path))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "work", loaded.CurrentUser)
	assert.Equal(t, config.Users, loaded.Users)
}

func TestLoadConfigMissingFile(t *testing.T) {
	config, err := LoadConfig(filepath.Join(t.TempDir(), "does-not-exist.yml"))
	require.NoError(t, err)
	assert.Empty(t, config.CurrentUser)
	assert.Empty(t, config.Users)
}

func TestAddUserFirstBecomesCurrent(t *testing.T) {
	config := &Config{Users: make(map[string]UserConfig)}
	config.AddUser("first", UserConfig{Server: "http://a", APIKey: "k"}, false)
	assert.Equal(t, "first", config.CurrentUser)

	config.AddUser("second", UserConfig{Server: "http://b", APIKey: "k"}, false)
	assert.Equal(t, "first", config.CurrentUser)
}

func TestDeleteUserClearsCurrent(t *testing.T) {
	config := &Config{Users: make(map[string]UserConfig)}
	config.AddUser("only", UserConfig{Server: "http://a", APIKey: "k"}, true)

	assert.False(t, config.DeleteUser("nope"))
	assert.True(t, config.DeleteUser("only"))
	assert.Empty(t, config.CurrentUser)
}

func TestSetDefaultUnknownUser(t *testing.T) {
	config := &Config{Users: make(map[string]UserConfig)}
	assert.Error(t, config.SetDefault("ghost"))
}

func TestResolvePrecedence(t *testing.T) {
	config := &Config{
		CurrentUser: "home",
		Users: map[string]UserConfig{
			"home": {Server: "http://home:2283/", APIKey: "home-key"},
			"work": {Server: "http://work:2283", APIKey: "work-key"},
		},
	}

	// Explicit pair wins over everything.
	creds, err := config.Resolve("http://cli:2283/", "cli-key", "work")
	require.NoError(t, err)
	assert.Equal(t, Credentials{Server: "http://cli:2283", APIKey: "cli-key"}, creds)

	// A named user beats the current one.
	creds, err = config.Resolve("", "", "work")
	require.NoError(t, err)
	assert.Equal(t, Credentials{Server: "http://work:2283", APIKey: "work-key"}, creds)

	// Fall back to the current user, trailing slash trimmed.
	creds, err = config.Resolve("", "", "")
	require.NoError(t, err)
	assert.Equal(t, Credentials{Server: "http://home:2283", APIKey: "home-key"}, creds)

	_, err = config.Resolve("", "", "ghost")
	assert.Error(t, err)

	config.CurrentUser = ""
	_, err = config.Resolve("", "", "")
	assert.True(t, errors.Is(err, ErrNoCredentials))
}
