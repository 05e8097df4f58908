// Package siteconfig exposes the shop's key/value settings table as a
// read-only provider. Values are loaded once at startup and change only
// through an explicit Refresh; nothing reads the table ad hoc.
package siteconfig

import (
	"context"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Provider struct {
	db *pgxpool.Pool

	mu     sync.RWMutex
	values map[string]string
}

func Load(ctx context.Context, db *pgxpool.Pool) (*Provider, error) {
	p := &Provider{db: db, values: map[string]string{}}
	if err := p.Refresh(ctx); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Provider) Refresh(ctx context.Context) error {
	rows, err := p.db.Query(ctx, `SELECT key, value FROM settings`)
	if err != nil {
		return err
	}
	defer rows.Close()

	next := map[string]string{}
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return err
		}
		next[k] = v
	}
	if err := rows.Err(); err != nil {
		return err
	}

	p.mu.Lock()
	p.values = next
	p.mu.Unlock()
	return nil
}

func (p *Provider) Get(key string) string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.values[key]
}

func (p *Provider) GetDefault(key, def string) string {
	if v := p.Get(key); v != "" {
		return v
	}
	return def
}

// OpeningHours returns the grid bounds as "HH:MM" strings.
func (p *Provider) OpeningHours() (open, close string) {
	return p.GetDefault("opening_time", "09:00"), p.GetDefault("closing_time", "20:00")
}
