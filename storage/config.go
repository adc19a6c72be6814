package storage

import (
	"fmt"
	"io"
)

// Supported storage drivers.
const (
	DriverNone   = "none"
	DriverMemory = "memory"
	DriverFile   = "file"
	DriverSQLite = "sqlite"
)

// Config holds storage initialization parameters.
type Config struct {
	Driver string `json:"driver,omitempty" yaml:"driver,omitempty" env:"CHATWIDGET_STORAGE_DRIVER"` // none, memory, file or sqlite; empty infers file from Path.
	Path   string `json:"path,omitempty" yaml:"path,omitempty" env:"CHATWIDGET_STORAGE_PATH"`       // Directory (file) or database file (sqlite).
	Quota  int64  `json:"quota,omitempty" yaml:"quota,omitempty" env:"CHATWIDGET_STORAGE_QUOTA"`    // Max bytes per entry; 0 means unlimited.
}

// DefaultConfig returns the default storage configuration (disabled).
func DefaultConfig() Config {
	return Config{}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source.Driver != "" {
		c.Driver = source.Driver
	}
	if source.Path != "" {
		c.Path = source.Path
	}
	if source.Quota > 0 {
		c.Quota = source.Quota
	}
}

// NewStore creates a Store from configuration. Returns a nil Store when the
// driver is "none", or when both driver and path are empty: persistence is
// disabled and callers operate in memory only.
func NewStore(cfg *Config) (Store, error) {
	driver := cfg.Driver
	if driver == "" {
		if cfg.Path == "" {
			return nil, nil
		}
		driver = DriverFile
	}

	var (
		store Store
		err   error
	)
	switch driver {
	case DriverNone:
		return nil, nil
	case DriverMemory:
		store = NewMemoryStore()
	case DriverFile:
		if cfg.Path == "" {
			return nil, fmt.Errorf("%w: driver %s", ErrPathRequired, driver)
		}
		store = NewFileStore(cfg.Path)
	case DriverSQLite:
		store, err = NewSQLiteStore(cfg.Path)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownDriver, driver)
	}

	if cfg.Quota > 0 {
		store = NewQuotaStore(store, cfg.Quota)
	}
	return store, nil
}

// Close closes s if it holds resources (such as a database handle).
// Stores without resources, and nil, are ignored.
func Close(s Store) error {
	if c, ok := s.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
