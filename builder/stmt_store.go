package builder

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const defaultStmtTTL = time.Hour * 24

// cachedStmt prepared statement, waiters block on prepared until preparing finishes
type cachedStmt struct {
	*sql.Stmt
	prepared   chan struct{}
	prepareErr error
}

func (stmt *cachedStmt) Close() error {
	<-stmt.prepared

	if stmt.Stmt != nil {
		return stmt.Stmt.Close()
	}
	return nil
}

// stmtStore prepared statements keyed by sql, least recently used ones are closed on eviction
type stmtStore struct {
	mu  sync.Mutex
	lru *expirable.LRU[string, *cachedStmt]
}

func newStmtStore(size int, ttl time.Duration) *stmtStore {
	if size < 0 {
		size = 0
	}
	if ttl <= 0 {
		ttl = defaultStmtTTL
	}

	onEvicted := func(_ string, stmt *cachedStmt) {
		if stmt != nil {
			go stmt.Close()
		}
	}
	return &stmtStore{lru: expirable.NewLRU[string, *cachedStmt](size, onEvicted, ttl)}
}

func (s *stmtStore) prepare(ctx context.Context, db *sql.DB, query string) (*sql.Stmt, error) {
	s.mu.Lock()
	if stmt, ok := s.lru.Get(query); ok {
		s.mu.Unlock()
		<-stmt.prepared
		if stmt.prepareErr != nil {
			return nil, stmt.prepareErr
		}
		return stmt.Stmt, nil
	}

	stmt := &cachedStmt{prepared: make(chan struct{})}
	s.lru.Add(query, stmt)
	s.mu.Unlock()

	defer close(stmt.prepared)
	stmt.Stmt, stmt.prepareErr = db.PrepareContext(ctx, query)
	if stmt.prepareErr != nil {
		s.mu.Lock()
		s.lru.Remove(query)
		s.mu.Unlock()
		return nil, stmt.prepareErr
	}
	return stmt.Stmt, nil
}

func (s *stmtStore) keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lru.Keys()
}

func (s *stmtStore) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lru.Purge()
}
