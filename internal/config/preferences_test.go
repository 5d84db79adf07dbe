package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreferencesRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs", "preferences.yaml")

	prefs := Preferences{ManualLocation: "125 Summer St, Boston", ShowProgress: false}
	require.NoError(t, SavePreferences(path, prefs))

	loaded := LoadPreferences(path)
	assert.Equal(t, prefs, loaded)

	// No temp file is left behind.
	_, err := os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestLoadPreferencesMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope.yaml")

	prefs := LoadPreferences(path)
	assert.Equal(t, DefaultPreferences(), prefs)
	assert.True(t, prefs.ShowProgress)
	assert.Empty(t, prefs.ManualLocation)
}

func TestLoadPreferencesCorruptFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "preferences.yaml")
	require.NoError(t, os.WriteFile(path, []byte("{not yaml: ["), 0600))

	prefs := LoadPreferences(path)
	assert.Equal(t, DefaultPreferences(), prefs)

	// The broken file is kept aside for inspection.
	_, err := os.Stat(path + ".backup")
	assert.NoError(t, err)
}
