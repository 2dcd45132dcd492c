package store

import (
	"context"
	"database/sql"
)

// Driver is an interface for store driver.
// It contains all methods that store database driver should implement.
type Driver interface {
	// GetDB returns the SQL handle, or nil for drivers that are not SQL backed.
	GetDB() *sql.DB
	Close() error

	IsInitialized(ctx context.Context) (bool, error)

	// Character model related methods. Characters are listed in sequence order.
	ListCharacters(ctx context.Context, find *FindCharacter) ([]*Character, error)
	AppendCharacter(ctx context.Context, create *Character) (*Character, error)

	// SystemSetting model related methods.
	GetSystemSetting(ctx context.Context, name string) (string, error)
	UpsertSystemSetting(ctx context.Context, name, value string) error
}
