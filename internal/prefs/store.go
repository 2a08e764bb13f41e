// Package prefs is the durable key-value storage for dashboard clients.
// Each client (browser cookie or the CLI) has its own namespace of keys.
package prefs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ziadkadry99/netsentry/internal/db"
)

// CLIClientID is the namespace used by the terminal dashboard.
const CLIClientID = "cli"

// Store persists preferences in the preferences table.
type Store struct {
	db *db.DB
}

// NewStore creates a Store backed by the given database.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// Get returns the value stored for key, or "" when unset.
func (s *Store) Get(ctx context.Context, clientID, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM preferences WHERE client_id = ? AND key = ?`,
		clientID, key,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading preference %s: %w", key, err)
	}
	return value, nil
}

// Set stores value under key, replacing any previous value.
func (s *Store) Set(ctx context.Context, clientID, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO preferences (client_id, key, value) VALUES (?, ?, ?)
		ON CONFLICT(client_id, key) DO UPDATE SET value = excluded.value, updated_at = datetime('now')`,
		clientID, key, value,
	)
	if err != nil {
		return fmt.Errorf("writing preference %s: %w", key, err)
	}
	return nil
}

// ForClient returns a view of the store scoped to one client.
func (s *Store) ForClient(clientID string) *Client {
	return &Client{store: s, id: clientID}
}

// Client is the preference namespace of one dashboard client.
type Client struct {
	store *Store
	id    string
}

// ID returns the client identifier.
func (c *Client) ID() string { return c.id }

func (c *Client) Get(ctx context.Context, key string) (string, error) {
	return c.store.Get(ctx, c.id, key)
}

func (c *Client) Set(ctx context.Context, key, value string) error {
	return c.store.Set(ctx, c.id, key, value)
}
