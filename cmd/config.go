package cmd

import (
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/CraigKelly/tsample/rand"
	"github.com/CraigKelly/tsample/sampler"
)

// envPrefix is prepended to every environment variable name in Config
const envPrefix = "TSAMPLE_"

// defaultConfigName is looked for in the home directory when no --config is given
const defaultConfigName = ".tsample.yaml"

// Config is everything a command needs. Values are layered: defaults, then
// the YAML config file, then TSAMPLE_* environment variables, then any
// command line flag that was explicitly set.
type Config struct {
	Data    string  `yaml:"data" env:"DATA"`
	Nu      float64 `yaml:"nu" env:"NU"`
	BurnIn  int     `yaml:"burn_in" env:"BURN_IN"`
	Samples int     `yaml:"samples" env:"SAMPLES"`
	Seed    int64   `yaml:"seed" env:"SEED"`
	Source  string  `yaml:"source" env:"SOURCE"`
	Workers int     `yaml:"workers" env:"WORKERS"`
	Trace   string  `yaml:"trace" env:"TRACE"`
	DB      string  `yaml:"db" env:"DB"`
	Monitor string  `yaml:"monitor" env:"MONITOR"`
	Verbose bool    `yaml:"verbose" env:"VERBOSE"`
}

func defaultConfig() Config {
	return Config{
		Nu:      4.0,
		BurnIn:  1000,
		Samples: 2000,
		Seed:    sampler.DefaultSeed,
		Source:  rand.MT19937,
		Workers: 1,
	}
}

// addRunFlags registers the sampling flags, bound to target
func addRunFlags(fs *pflag.FlagSet, target *Config) {
	fs.StringVarP(&target.Data, "data", "d", target.Data, "Observation file to read (numbers separated by space, comma or newline)")
	fs.Float64VarP(&target.Nu, "nu", "n", target.Nu, "Degrees of freedom for the latent variance prior (> 0)")
	fs.IntVarP(&target.BurnIn, "burn-in", "b", target.BurnIn, "Sweeps to discard before sampling")
	fs.IntVarP(&target.Samples, "samples", "s", target.Samples, "Sweeps to record")
	fs.Int64VarP(&target.Seed, "seed", "r", target.Seed, "Random seed to use")
	fs.StringVar(&target.Source, "source", target.Source, "PRNG source: mt19937 or xoshiro256+")
	fs.IntVarP(&target.Workers, "workers", "w", target.Workers, "Workers for the latent variance update (>1 selects the parallel draw sequence)")
	fs.StringVarP(&target.Trace, "trace", "t", target.Trace, "Write every sample to this tab separated trace file")
	fs.StringVar(&target.DB, "db", target.DB, "Store the run's samples in this SQLite file")
	fs.StringVarP(&target.Monitor, "monitor", "m", target.Monitor, "Serve progress over HTTP (expvar) at this address, e.g. :8000")
}

// loadConfig resolves the layered configuration. Only flags present in fs
// and explicitly set by the user override the file and environment.
func loadConfig(fs *pflag.FlagSet, flags *Config, configFile string) (*Config, error) {
	cfg := defaultConfig()

	path, explicit := configFile, configFile != ""
	if !explicit {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, defaultConfigName)
		}
	}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, errors.Wrapf(err, "Could not parse config file %s", path)
			}
		case explicit || !os.IsNotExist(err):
			return nil, errors.Wrapf(err, "Could not read config file %s", path)
		}
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: envPrefix}); err != nil {
		return nil, errors.Wrap(err, "Could not parse environment")
	}

	overrides := map[string]func(){
		"data":    func() { cfg.Data = flags.Data },
		"nu":      func() { cfg.Nu = flags.Nu },
		"burn-in": func() { cfg.BurnIn = flags.BurnIn },
		"samples": func() { cfg.Samples = flags.Samples },
		"seed":    func() { cfg.Seed = flags.Seed },
		"source":  func() { cfg.Source = flags.Source },
		"workers": func() { cfg.Workers = flags.Workers },
		"trace":   func() { cfg.Trace = flags.Trace },
		"db":      func() { cfg.DB = flags.DB },
		"monitor": func() { cfg.Monitor = flags.Monitor },
		"verbose": func() { cfg.Verbose = flags.Verbose },
	}
	fs.Visit(func(f *pflag.Flag) {
		if apply, ok := overrides[f.Name]; ok {
			apply()
		}
	})

	return &cfg, nil
}

// CheckRun returns an error if the config can not drive a sampler run
func (c *Config) CheckRun() error {
	if c.Data == "" {
		return errors.New("A data file is required (--data)")
	}
	if !(c.Nu > 0) {
		return errors.Errorf("nu must be > 0, got %v", c.Nu)
	}
	if c.BurnIn < 0 {
		return errors.Errorf("burn-in must be >= 0, got %d", c.BurnIn)
	}
	if c.Samples < 0 {
		return errors.Errorf("samples must be >= 0, got %d", c.Samples)
	}
	if c.Workers < 0 {
		return errors.Errorf("workers must be >= 0, got %d", c.Workers)
	}
	if c.Source != rand.MT19937 && c.Source != rand.Xoshiro256 {
		return errors.Errorf("Unknown random source %q", c.Source)
	}
	return nil
}
