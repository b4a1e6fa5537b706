package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) string {
	out := &bytes.Buffer{}
	rootCmd.SetOut(out)
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.Execute(), "zeosite %v", args)
	return out.String()
}

func TestRingEndToEnd(t *testing.T) {
	dir := t.TempDir()
	structure := filepath.Join(dir, "ring.xyz")
	cfgPath := filepath.Join(dir, "ring.yaml")
	output := filepath.Join(dir, "Generated_structures")
	db := filepath.Join(dir, "sites.db")

	assert.Contains(t, run(t, "fixture", "--ring", "8", structure), "wrote 16 atoms (8 centers)")

	require.NoError(t, os.WriteFile(cfgPath, []byte(`
degrees: {center: 2, bridging: 2, terminator: 1}
seed: {center: 0, bridging: 8, terminator: 16}
`), 0644))

	assert.Contains(t, run(t, "validate", "-c", cfgPath, structure), "0 of 16 atoms failed")
	assert.Contains(t, run(t, "classify", "-c", cfgPath, structure), "7 centers in 4 shells over 7 levels")

	out := run(t, "generate", "-c", cfgPath, "-o", output, "--catalog", db, "-j", "2", structure)
	assert.Contains(t, out, "4 shells, 7 centers, 14 of 14 sites generated")
	assert.FileExists(t, filepath.Join(output, "neighbours_3", "Si_4", "O_12", "structure.xyz"))
	assert.FileExists(t, filepath.Join(output, "neighbours_3", "Si_4", "Al_4.xyz"))
	assert.FileExists(t, filepath.Join(output, "sites.csv"))

	assert.Contains(t, run(t, "catalog", "show", db), "14 of 14 sites (7 centers)")
	assert.Contains(t, run(t, "catalog", "get", db, "3", "4", "12"), "\nH ")
}
