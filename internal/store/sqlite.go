package store

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"sync"

	"codeberg.org/mutker/wattd/internal/errors"
	"codeberg.org/mutker/wattd/internal/logger"
	_ "github.com/mattn/go-sqlite3"
)

type sqliteStore struct {
	db     *sql.DB
	logger logger.Logger
	cfg    Config
	mu     sync.Mutex
	closed bool
}

// NewSQLite opens (creating if needed) the sqlite database at cfg.DBPath
func NewSQLite(cfg Config, log logger.Logger) (Store, error) {
	errFactory := errors.New()

	if cfg.DBPath == "" {
		return nil, errFactory.New(ErrInvalidDBPath)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), defaultDirPerm); err != nil {
		return nil, errFactory.WithData(ErrStorageInit, struct {
			Phase string
			Path  string
			Error string
		}{
			Phase: "create_directory",
			Path:  cfg.DBPath,
			Error: err.Error(),
		})
	}

	dsn := cfg.DBPath + "?_journal=WAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, errFactory.WithData(ErrStorageInit, struct {
			Phase string
			Error string
		}{
			Phase: "open_database",
			Error: err.Error(),
		})
	}
	// A single connection serializes writers and keeps VACUUM INTO simple.
	db.SetMaxOpenConns(1)

	if err := ValidateAndUpdateSchema(db, cfg.backupDir(), log); err != nil {
		db.Close()
		return nil, errFactory.WithData(ErrStorageInit, struct {
			Phase string
			Error string
		}{
			Phase: "schema_version",
			Error: err.Error(),
		})
	}

	log.Info().
		Str("path", cfg.DBPath).
		Int("schema_version", SchemaVersion).
		Msg("Store initialized")

	return &sqliteStore{
		db:     db,
		logger: log,
		cfg:    cfg,
	}, nil
}

func (s *sqliteStore) Get(ctx context.Context, key string) (string, bool, error) {
	errFactory := errors.New()

	if key == "" {
		return "", false, errFactory.New(ErrInvalidKey)
	}
	if s.isClosed() {
		return "", false, errFactory.New(ErrClosed)
	}

	var value string
	err := s.db.QueryRowContext(ctx, selectValueSQL, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, errFactory.Wrap(ErrStorageAccess, err).WithData(struct {
			Op  string
			Key string
		}{
			Op:  "get",
			Key: key,
		})
	}

	return value, true, nil
}

func (s *sqliteStore) Set(ctx context.Context, key, value string) error {
	errFactory := errors.New()

	if key == "" {
		return errFactory.New(ErrInvalidKey)
	}
	if s.isClosed() {
		return errFactory.New(ErrClosed)
	}

	if _, err := s.db.ExecContext(ctx, upsertValueSQL, key, value); err != nil {
		return errFactory.Wrap(ErrStorageAccess, err)
	}

	s.logger.Debug().Str("key", key).Int("bytes", len(value)).Msg("Stored value")
	return nil
}

func (s *sqliteStore) Remove(ctx context.Context, key string) error {
	errFactory := errors.New()

	if key == "" {
		return errFactory.New(ErrInvalidKey)
	}
	if s.isClosed() {
		return errFactory.New(ErrClosed)
	}

	if _, err := s.db.ExecContext(ctx, deleteValueSQL, key); err != nil {
		return errFactory.Wrap(ErrStorageAccess, err)
	}
	return nil
}

func (s *sqliteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	// Checkpoint WAL and cleanup on close
	if _, err := s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to checkpoint WAL")
	}

	if err := s.db.Close(); err != nil {
		return errors.New().WithData(ErrStorageClose, struct {
			Phase string
			Error string
		}{
			Phase: "close_database",
			Error: err.Error(),
		})
	}

	s.logger.Info().Msg("Store closed gracefully")

	return nil
}

func (s *sqliteStore) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
