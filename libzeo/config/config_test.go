package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/fine-structures/zeosite/zeo"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, zeo.DefaultDegrees, cfg.ZeoDegrees())
	assert.Equal(t, zeo.Seed{Center: 7, Bridging: 107, Terminator: 108}, cfg.ZeoSeed())

	tbl, err := cfg.SpeciesTable()
	require.NoError(t, err)
	assert.Equal(t, zeo.DefaultSpeciesTable, tbl)
}

func TestLoadOverridesDefaults(t *testing.T) {
	pathname := filepath.Join(t.TempDir(), "run.yaml")
	require.NoError(t, os.WriteFile(pathname, []byte(`
structure: mor.xyz
cutoff: 2.1
seed: {center: 3, bridging: 40, terminator: 200}
species: {Si: center, Ge: center, O: bridging}
workers: 4
`), 0644))

	cfg, err := Load(pathname)
	require.NoError(t, err)
	assert.Equal(t, "mor.xyz", cfg.Structure)
	assert.Equal(t, 2.1, cfg.Cutoff)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, zeo.Seed{Center: 3, Bridging: 40, Terminator: 200}, cfg.ZeoSeed())
	assert.Equal(t, "Generated_structures", cfg.Output)
	assert.Equal(t, zeo.DefaultDegrees, cfg.ZeoDegrees())

	tbl, err := cfg.SpeciesTable()
	require.NoError(t, err)
	assert.Equal(t, zeo.SpeciesTable{
		"Si": zeo.TetrahedralCenter,
		"Ge": zeo.TetrahedralCenter,
		"O":  zeo.Bridging,
	}, tbl)
}

func TestWriteLoad(t *testing.T) {
	pathname := filepath.Join(t.TempDir(), "sub", "run.yaml")
	cfg := Default()
	cfg.FailFast = true
	cfg.Catalog = "sites.db"
	require.NoError(t, cfg.Write(pathname))

	loaded, err := Load(pathname)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		edit func(cfg *Config)
	}{
		{"cutoff", func(cfg *Config) { cfg.Cutoff = 0 }},
		{"bond length", func(cfg *Config) { cfg.BondLength = -1 }},
		{"degrees", func(cfg *Config) { cfg.Degrees.Bridging = 0 }},
		{"seed", func(cfg *Config) { cfg.Seed.Center = -1 }},
		{"symbols", func(cfg *Config) { cfg.TerminatorSymbol = "" }},
		{"workers", func(cfg *Config) { cfg.Workers = -2 }},
		{"species", func(cfg *Config) { cfg.Species["Na"] = "cation" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.edit(&cfg)
			assert.True(t, errors.Is(cfg.Validate(), zeo.ErrBadConfig))
		})
	}
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	pathname := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(pathname, []byte("cutoff: [1, 2\n"), 0644))
	_, err = Load(pathname)
	assert.True(t, errors.Is(err, zeo.ErrBadConfig))
}
