package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

var (
	ErrNotFound = errors.New("not found")

	// ErrStaleStatus is returned by a sync when the row was not in the
	// expected source state and the confirming hash does not match an
	// earlier delivery. The caller reconciles from chain instead of
	// retrying.
	ErrStaleStatus = errors.New("stale status")
)

// Store wraps DB access.
type Store struct {
	DB *sql.DB
}

func New(dsn string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	return &Store{DB: db}, nil
}

func (s *Store) Close() {
	if s.DB != nil {
		_ = s.DB.Close()
	}
}

func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.DB.PingContext(ctx)
}

// weiString renders a big.Int for a NUMERIC(78,0) column. Nil maps to NULL.
func weiString(v *big.Int) any {
	if v == nil {
		return nil
	}
	return v.String()
}

func parseWei(s string) (*big.Int, error) {
	v, ok := new(big.Int).SetString(strings.TrimSpace(s), 10)
	if !ok {
		return nil, fmt.Errorf("malformed wei amount %q", s)
	}
	return v, nil
}

func weiFromNull(ns sql.NullString) (*big.Int, error) {
	if !ns.Valid {
		return nil, nil
	}
	return parseWei(ns.String)
}

func splitCSV(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if v := strings.TrimSpace(p); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func joinCSV(items []string) string {
	return strings.Join(items, ",")
}
