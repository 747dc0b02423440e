package dknn

import (
	"os"
	"runtime"

	"github.com/pkg/errors"
	"github.com/viant/dknn/vector"
	"gopkg.in/yaml.v3"
)

// Config holds the DkNN model settings.
type Config struct {
	// Neighbors is the number of nearest training rows looked up per layer.
	Neighbors int `yaml:"neighbors"`

	// Classes is the number of classes; labels lie in [0, Classes).
	Classes int `yaml:"classes"`

	// Layers lists the layers taking part, in order.
	Layers Layers `yaml:"layers"`

	// Index configures the per-layer neighbor index backend.
	Index IndexConfig `yaml:"index"`

	// Missing decides how unfilled neighbor slots are scored.
	Missing MissingPolicy `yaml:"missing"`

	// Parallelism bounds how many layers are built or queried at once:
	// 0 or 1 runs layers sequentially, -1 uses GOMAXPROCS.
	Parallelism int `yaml:"parallelism"`
}

// IndexConfig selects and tunes the neighbor index backend.
type IndexConfig struct {
	Kind       IndexKind `yaml:"kind"`
	Distance   string    `yaml:"distance"`
	CoverBase  float32   `yaml:"cover_base"`
	CoverBound string    `yaml:"cover_bound"`
	BestFirst  bool      `yaml:"best_first"`
	// DSN is the SQLite database used by the sqlite backend; empty means an
	// in-memory database owned by the model.
	DSN string `yaml:"dsn"`
	// TablePrefix starts every sqlite index table name; the model id and
	// layer name follow, so models can share one database.
	TablePrefix string `yaml:"table_prefix"`
}

// DefaultConfig returns a configuration with the model defaults; callers
// still set Classes and Layers.
func DefaultConfig() Config {
	return Config{
		Neighbors: 75,
		Index:     IndexConfig{Kind: IndexAuto, TablePrefix: "knn_"},
		Missing:   MissingAsLabel,
	}
}

// LoadConfig reads a YAML configuration file on top of DefaultConfig.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "failed to read config %s", path)
	}
	return ParseConfig(data)
}

// ParseConfig decodes YAML on top of DefaultConfig and validates it.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Wrap(err, "failed to parse config")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.Neighbors <= 0 {
		return errors.Wrapf(ErrInvalidConfig, "neighbors must be positive, got %d", c.Neighbors)
	}
	if c.Classes <= 0 {
		return errors.Wrapf(ErrInvalidConfig, "classes must be positive, got %d", c.Classes)
	}
	if err := c.Layers.Validate(); err != nil {
		return err
	}
	if !c.Missing.Valid() {
		return errors.Wrapf(ErrInvalidConfig, "unknown missing policy %q", c.Missing)
	}
	if c.Parallelism < -1 {
		return errors.Wrapf(ErrInvalidConfig, "parallelism must be >= -1, got %d", c.Parallelism)
	}
	return c.Index.Validate()
}

// Validate checks the index settings.
func (c IndexConfig) Validate() error {
	switch c.Kind {
	case "", IndexAuto, IndexBrute, IndexCover, IndexSQLite:
	default:
		return errors.Wrapf(ErrInvalidConfig, "unknown index kind %q", c.Kind)
	}
	if _, ok := vector.ParseMetric(c.Distance); !ok {
		return errors.Wrapf(ErrInvalidConfig, "unknown distance %q", c.Distance)
	}
	if _, ok := parseBound(c.CoverBound); !ok {
		return errors.Wrapf(ErrInvalidConfig, "unknown cover bound %q", c.CoverBound)
	}
	if c.CoverBase != 0 && c.CoverBase <= 1 {
		return errors.Wrapf(ErrInvalidConfig, "cover base must be > 1, got %v", c.CoverBase)
	}
	return nil
}

func (c Config) missingPolicy() MissingPolicy {
	if c.Missing == "" {
		return MissingAsLabel
	}
	return c.Missing
}

func (c Config) parallelism() int {
	switch {
	case c.Parallelism < 0:
		return runtime.GOMAXPROCS(0)
	case c.Parallelism == 0:
		return 1
	}
	return c.Parallelism
}
