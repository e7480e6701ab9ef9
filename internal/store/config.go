package store

import (
	"path/filepath"

	"codeberg.org/mutker/wattd/internal/errors"
)

const (
	// File system permissions and paths
	defaultDirPerm = 0o755

	DriverSQLite = "sqlite"
	DriverMemory = "memory"
)

type Config struct {
	Driver string
	DBPath string
	// BackupDir receives a copy of the database before a schema rebuild.
	// Defaults to a "backups" directory next to DBPath.
	BackupDir string
}

func (c Config) Validate() error {
	errFactory := errors.New()

	switch c.Driver {
	case DriverMemory:
		return nil
	case DriverSQLite:
		if c.DBPath == "" {
			return errFactory.New(ErrInvalidDBPath)
		}
		return nil
	default:
		return errFactory.WithData(ErrInvalidDriver, c.Driver)
	}
}

func (c Config) backupDir() string {
	if c.BackupDir != "" {
		return c.BackupDir
	}
	return filepath.Join(filepath.Dir(c.DBPath), "backups")
}
