package badger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/MuzammilBaloch-22/Cakelora/pkg/database"
	apperrors "github.com/MuzammilBaloch-22/Cakelora/pkg/errors"
)

// gcDiscardRatio is the fraction of a value log file that must be stale
// before GC rewrites it.
const gcDiscardRatio = 0.5

// Options configures the embedded store.
type Options struct {
	// Dir is the data directory. Ignored when InMemory is set.
	Dir      string
	InMemory bool
	Logger   *slog.Logger
}

// SlotStore implements repository.SlotStore on an embedded Badger database.
type SlotStore struct {
	db     *badger.DB
	logger *slog.Logger
}

// Open opens (or creates) the Badger database described by opts.
func Open(opts Options) (*SlotStore, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	bopts := badger.DefaultOptions(opts.Dir)
	if opts.InMemory {
		bopts = badger.DefaultOptions("").WithInMemory(true)
	}
	bopts = bopts.WithLogger(slogAdapter{logger: logger.With(slog.String("component", "badger"))})

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("open badger at %q: %w", opts.Dir, err)
	}
	return &SlotStore{db: db, logger: logger}, nil
}

// Get retrieves a copy of the value stored under key.
func (s *SlotStore) Get(ctx context.Context, key string) (_ []byte, err error) {
	_, end := database.TraceQuery(ctx, "badger", "Get", "")
	defer func() { end(err) }()

	var value []byte
	err = s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, apperrors.NotFound("slot", key)
		}
		return nil, fmt.Errorf("badger get slot: %w", err)
	}
	return value, nil
}

// Set writes value under key.
func (s *SlotStore) Set(ctx context.Context, key string, value []byte) (err error) {
	_, end := database.TraceQuery(ctx, "badger", "Set", "")
	defer func() { end(err) }()

	if err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), value)
	}); err != nil {
		return fmt.Errorf("badger set slot: %w", err)
	}
	return nil
}

// Delete removes key.
func (s *SlotStore) Delete(ctx context.Context, key string) (err error) {
	_, end := database.TraceQuery(ctx, "badger", "Delete", "")
	defer func() { end(err) }()

	if err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	}); err != nil {
		return fmt.Errorf("badger delete slot: %w", err)
	}
	return nil
}

// Ping reports whether the database is still open.
func (s *SlotStore) Ping(context.Context) error {
	if s.db.IsClosed() {
		return badger.ErrDBClosed
	}
	return nil
}

// RunGC periodically reclaims value log space until ctx is done.
func (s *SlotStore) RunGC(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.collectGarbage(); err != nil {
				s.logger.Warn("badger value log gc failed", slog.String("error", err.Error()))
				if errors.Is(err, badger.ErrGCInMemoryMode) {
					return
				}
			}
		}
	}
}

// collectGarbage rewrites value log files until nothing is left to reclaim.
func (s *SlotStore) collectGarbage() error {
	for {
		err := s.db.RunValueLogGC(gcDiscardRatio)
		switch {
		case err == nil:
			continue
		case errors.Is(err, badger.ErrNoRewrite), errors.Is(err, badger.ErrRejected):
			return nil
		default:
			return err
		}
	}
}

// Close flushes and closes the database.
func (s *SlotStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close badger: %w", err)
	}
	return nil
}

// slogAdapter routes Badger's printf-style logs through slog. Badger's info
// lines are logged at DEBUG.
type slogAdapter struct {
	logger *slog.Logger
}

func (a slogAdapter) Errorf(format string, args ...interface{}) {
	a.logger.Error(trim(fmt.Sprintf(format, args...)))
}

func (a slogAdapter) Warningf(format string, args ...interface{}) {
	a.logger.Warn(trim(fmt.Sprintf(format, args...)))
}

func (a slogAdapter) Infof(format string, args ...interface{}) {
	a.logger.Debug(trim(fmt.Sprintf(format, args...)))
}

func (a slogAdapter) Debugf(format string, args ...interface{}) {
	a.logger.Debug(trim(fmt.Sprintf(format, args...)))
}

func trim(s string) string {
	for len(s) > 0 && s[len(s)-1] == '\n' {
		s = s[:len(s)-1]
	}
	return s
}
