package registry

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func storePath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "registry.json")
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	path := storePath(t)

	reg := New(path)
	reg.InsertPinType(1001, CategoryExtractor, "Barren")
	reg.InsertCommodity(4096, "Water")
	reg.InsertPlanetType(2016, "Barren")
	reg.SetSettings(Settings{ShowRoutes: false, ShowLabels: true, ShowGrid: true})
	require.NoError(t, reg.Save())

	loaded, err := Load(path)
	require.NoError(t, err)

	category, planet := loaded.LookupPinType(1001)
	assert.Equal(t, CategoryExtractor, category)
	assert.Equal(t, "Barren", planet)
	assert.Equal(t, "Water", loaded.LookupCommodity(4096))
	assert.Equal(t, "Barren", loaded.LookupPlanetName(2016))
	assert.Equal(t, Settings{ShowRoutes: false, ShowLabels: true, ShowGrid: true}, loaded.Settings())
}

func TestSaveIsIdempotent(t *testing.T) {
	path := storePath(t)

	reg := New(path)
	reg.InsertCommodity(4096, "Water")
	reg.InsertCommodity(3645, "Bacteria")
	reg.InsertPinType(1001, CategoryExtractor, "Barren")
	require.NoError(t, reg.Save())
	first, err := os.ReadFile(path)
	require.NoError(t, err)

	require.NoError(t, reg.Save())
	second, err := os.ReadFile(path)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestSaveCreatesTimestampedBackup(t *testing.T) {
	path := storePath(t)

	reg := New(path)
	reg.InsertCommodity(4096, "Water")
	require.NoError(t, reg.Save())

	// First save has nothing to back up.
	backupDir := filepath.Join(filepath.Dir(path), "backup")
	entries, _ := os.ReadDir(backupDir)
	assert.Empty(t, entries)

	reg.InsertCommodity(3645, "Bacteria")
	require.NoError(t, reg.Save())

	entries, err := os.ReadDir(backupDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Regexp(t, `^registry_backup_\d{8}_\d{6}\.json$`, entries[0].Name())

	// The backup holds the pre-save content.
	backup, err := os.ReadFile(filepath.Join(backupDir, entries[0].Name()))
	require.NoError(t, err)
	assert.Contains(t, string(backup), "Water")
	assert.NotContains(t, string(backup), "Bacteria")
}

func TestSaveWithoutPathFails(t *testing.T) {
	reg := New("")
	assert.Error(t, reg.Save())
}

func TestLoadMissingFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestLoadMigratesLegacySchematics(t *testing.T) {
	path := storePath(t)
	legacy := `{
		"pin_types": {},
		"commodities": {"4096": "Water", "2393": "Old Name"},
		"planet_types": {},
		"schematics": {
			"2393": {"name": "Biofuels", "inputs": [], "output": 2393},
			"9838": {"name": "Superconductors", "inputs": [], "output": 9838}
		}
	}`
	require.NoError(t, os.WriteFile(path, []byte(legacy), 0644))

	reg, err := Load(path)
	require.NoError(t, err)

	// Legacy entries land in the commodity table; on conflict the legacy
	// name wins.
	assert.Equal(t, "Biofuels", reg.LookupCommodity(2393))
	assert.Equal(t, "Superconductors", reg.LookupCommodity(9838))
	assert.Equal(t, "Water", reg.LookupCommodity(4096))

	// The migrated store was saved back without the legacy section.
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.NotContains(t, doc, "schematics")

	// Reloading is now migration-free and stable.
	again, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Biofuels", again.LookupCommodity(2393))
}

func TestLoadSkipsNonNumericKeys(t *testing.T) {
	path := storePath(t)
	store := `{
		"pin_types": {"abc": {"category": "Extractor", "planet": "Barren"}},
		"commodities": {"4096": "Water", "xyz": "Broken"},
		"planet_types": {}
	}`
	require.NoError(t, os.WriteFile(path, []byte(store), 0644))

	reg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Water", reg.LookupCommodity(4096))
	assert.Len(t, reg.Commodities(), 1)
}

func TestLoadDefaultsSettingsWhenAbsent(t *testing.T) {
	path := storePath(t)
	store := `{"pin_types": {}, "commodities": {}, "planet_types": {}}`
	require.NoError(t, os.WriteFile(path, []byte(store), 0644))

	reg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultSettings(), reg.Settings())
}
