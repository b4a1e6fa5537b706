package config

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/fine-structures/zeosite/zeo"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// DegreesConfig is the expected neighbour count per species.
type DegreesConfig struct {
	Center     int `yaml:"center"`
	Bridging   int `yaml:"bridging"`
	Terminator int `yaml:"terminator"`
}

// SeedConfig names the reference acid site.  A terminator index at or past the atom count denotes no terminator.
type SeedConfig struct {
	Center     int `yaml:"center"`
	Bridging   int `yaml:"bridging"`
	Terminator int `yaml:"terminator"`
}

// Config is one site generation run.
type Config struct {
	Structure        string            `yaml:"structure"`
	Output           string            `yaml:"output"`
	Catalog          string            `yaml:"catalog,omitempty"`
	Cutoff           float64           `yaml:"cutoff"`
	Degrees          DegreesConfig     `yaml:"degrees"`
	Seed             SeedConfig        `yaml:"seed"`
	SubstituteSymbol string            `yaml:"substitute_symbol"`
	TerminatorSymbol string            `yaml:"terminator_symbol"`
	BondLength       float64           `yaml:"bond_length"`
	Species          map[string]string `yaml:"species"`
	Workers          int               `yaml:"workers"`
	FailFast         bool              `yaml:"fail_fast"`
}

// Default returns the configuration of the reference CHA run.
func Default() Config {
	species := make(map[string]string, len(zeo.DefaultSpeciesTable))
	for sym, s := range zeo.DefaultSpeciesTable {
		species[sym] = s.String()
	}
	return Config{
		Structure: filepath.Join("Input_structures", "CHA_no_proton.xyz"),
		Output:    "Generated_structures",
		Cutoff:    zeo.DefaultCutoff,
		Degrees: DegreesConfig{
			Center:     zeo.DefaultCenterDegree,
			Bridging:   zeo.DefaultBridgingDegree,
			Terminator: zeo.DefaultTerminatorDegree,
		},
		Seed: SeedConfig{
			Center:     7,
			Bridging:   107,
			Terminator: 108,
		},
		SubstituteSymbol: zeo.DefaultSubstituteSymbol,
		TerminatorSymbol: zeo.DefaultTerminatorSymbol,
		BondLength:       zeo.DefaultBondLength,
		Species:          species,
		Workers:          1,
	}
}

// Load reads a YAML config.  Keys absent from the file keep their Default() value.
func Load(pathname string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(pathname)
	if err != nil {
		return cfg, errors.Wrapf(err, "reading config %q", pathname)
	}

	// A species section replaces the default table rather than merging into it
	defaultSpecies := cfg.Species
	cfg.Species = nil
	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrapf(zeo.ErrBadConfig, "parsing config %q: %v", pathname, err)
	}
	if cfg.Species == nil {
		cfg.Species = defaultSpecies
	}
	return cfg, cfg.Validate()
}

// Write saves cfg as YAML, creating the parent directory if needed.
func (cfg *Config) Write(pathname string) error {
	if err := os.MkdirAll(filepath.Dir(pathname), 0755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(pathname, data, 0644)
}

// Validate rejects values no run can use.
func (cfg *Config) Validate() error {
	switch {
	case cfg.Cutoff <= 0:
		return errors.Wrapf(zeo.ErrBadConfig, "cutoff must be positive, got %v", cfg.Cutoff)
	case cfg.BondLength <= 0:
		return errors.Wrapf(zeo.ErrBadConfig, "bond_length must be positive, got %v", cfg.BondLength)
	case cfg.Degrees.Center <= 0 || cfg.Degrees.Bridging <= 0 || cfg.Degrees.Terminator <= 0:
		return errors.Wrapf(zeo.ErrBadConfig, "degrees must be positive, got %+v", cfg.Degrees)
	case cfg.Seed.Center < 0 || cfg.Seed.Bridging < 0:
		return errors.Wrapf(zeo.ErrBadConfig, "seed center and bridging must be atom indices, got %+v", cfg.Seed)
	case len(cfg.SubstituteSymbol) == 0 || len(cfg.TerminatorSymbol) == 0:
		return errors.Wrap(zeo.ErrBadConfig, "substitute_symbol and terminator_symbol must be set")
	case cfg.Workers < 0:
		return errors.Wrapf(zeo.ErrBadConfig, "workers must not be negative, got %d", cfg.Workers)
	}
	_, err := cfg.SpeciesTable()
	return err
}

// SpeciesTable converts the species section, e.g. {Si: center, O: bridging}.
func (cfg *Config) SpeciesTable() (zeo.SpeciesTable, error) {
	if len(cfg.Species) == 0 {
		return zeo.DefaultSpeciesTable, nil
	}

	symbols := make([]string, 0, len(cfg.Species))
	for sym := range cfg.Species {
		symbols = append(symbols, sym)
	}
	sort.Strings(symbols)

	tbl := make(zeo.SpeciesTable, len(symbols))
	for _, sym := range symbols {
		s, ok := zeo.ParseSpecies(cfg.Species[sym])
		if !ok {
			return nil, errors.Wrapf(zeo.ErrBadConfig, "unknown species %q for symbol %q", cfg.Species[sym], sym)
		}
		tbl[sym] = s
	}
	return tbl, nil
}

func (cfg *Config) ZeoDegrees() zeo.Degrees {
	return zeo.Degrees{
		Center:     cfg.Degrees.Center,
		Bridging:   cfg.Degrees.Bridging,
		Terminator: cfg.Degrees.Terminator,
	}
}

func (cfg *Config) ZeoSeed() zeo.Seed {
	return zeo.Seed{
		Center:     cfg.Seed.Center,
		Bridging:   cfg.Seed.Bridging,
		Terminator: cfg.Seed.Terminator,
	}
}
