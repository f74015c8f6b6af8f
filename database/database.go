// Package database owns the process-wide database handle. All request
// handlers go through Manager.Acquire, which dials lazily on first use and
// shares a single in-flight attempt between concurrent callers.
package database

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"openreward-profile-service/common"
)

const maxConnectAttempts = 3

// OpenFunc dials the database. Swapped out in tests.
type OpenFunc func() (*gorm.DB, error)

type attempt struct {
	done chan struct{}
	db   *gorm.DB
	err  error
}

// Manager caches one live *gorm.DB for the process lifetime. A cold start
// dials with bounded retry and exponential backoff; every caller that
// arrives while the dial is running waits on the same attempt and receives
// its outcome. An exhausted attempt is cleared so a later call starts over.
type Manager struct {
	open OpenFunc

	// backoff schedule, overridable in tests
	baseBackoff time.Duration
	maxBackoff  time.Duration

	mu      sync.Mutex
	db      *gorm.DB
	pending *attempt
}

// NewManager builds a manager that dials Postgres with the given DSN.
// An empty DSN is allowed here; Acquire reports ErrConfigMissing.
func NewManager(dsn string) *Manager {
	var open OpenFunc
	if dsn != "" {
		open = func() (*gorm.DB, error) {
			return gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
		}
	}
	return newManager(open)
}

// NewManagerWithOpener builds a manager around a custom dialer.
func NewManagerWithOpener(open OpenFunc) *Manager {
	return newManager(open)
}

func newManager(open OpenFunc) *Manager {
	return &Manager{
		open:        open,
		baseBackoff: 1 * time.Second,
		maxBackoff:  10 * time.Second,
	}
}

// Acquire returns the cached connection, joining or starting a connect
// attempt as needed. Safe to call from many in-flight requests.
func (m *Manager) Acquire(ctx context.Context) (*gorm.DB, error) {
	m.mu.Lock()
	if m.db != nil {
		db := m.db
		m.mu.Unlock()
		return db, nil
	}
	if m.open == nil {
		m.mu.Unlock()
		return nil, common.ErrConfigMissing
	}
	a := m.pending
	if a == nil {
		a = &attempt{done: make(chan struct{})}
		m.pending = a
		go m.connect(a)
	}
	m.mu.Unlock()

	select {
	case <-a.done:
		return a.db, a.err
	case <-ctx.Done():
		// The attempt keeps running for the other waiters.
		return nil, ctx.Err()
	}
}

func (m *Manager) connect(a *attempt) {
	var lastErr error
	backoff := m.baseBackoff

	for i := 1; i <= maxConnectAttempts; i++ {
		db, err := m.open()
		if err == nil {
			m.mu.Lock()
			m.db = db
			m.pending = nil
			m.mu.Unlock()

			a.db = db
			close(a.done)
			log.Println("✅ Database connected")
			return
		}

		lastErr = err
		log.Printf("❌ Database connect attempt %d/%d failed: %v", i, maxConnectAttempts, err)

		if i < maxConnectAttempts {
			time.Sleep(backoff)
			backoff *= 2
			if backoff > m.maxBackoff {
				backoff = m.maxBackoff
			}
		}
	}

	// Clear the marker before reporting so a subsequent Acquire can retry
	// from scratch instead of joining a dead attempt.
	m.mu.Lock()
	m.pending = nil
	m.mu.Unlock()

	a.err = fmt.Errorf("%w after %d attempts: %v", common.ErrConnectionFailed, maxConnectAttempts, lastErr)
	close(a.done)
}
