package db

import (
	"github.com/pkg/errors"

	"github.com/hrygo/studysheet/internal/profile"
	"github.com/hrygo/studysheet/store"
	"github.com/hrygo/studysheet/store/db/file"
	"github.com/hrygo/studysheet/store/db/postgres"
	"github.com/hrygo/studysheet/store/db/sqlite"
)

// ============================================================================
// DRIVER SUPPORT
// ============================================================================
// file:     the flat UTF-8 character list (data.txt). Default, zero setup.
// sqlite:   single-node deployments that want a real database file.
// postgres: shared deployments.
//
// All drivers expose the same ordered, append-only sequence.
// ============================================================================

// NewDBDriver creates new db driver based on profile.
func NewDBDriver(profile *profile.Profile) (store.Driver, error) {
	var driver store.Driver
	var err error

	switch profile.Driver {
	case "file":
		driver, err = file.NewDB(profile)
	case "sqlite":
		driver, err = sqlite.NewDB(profile)
	case "postgres":
		driver, err = postgres.NewDB(profile)
	default:
		return nil, errors.Errorf("unknown db driver %q: only 'file', 'sqlite' and 'postgres' are supported", profile.Driver)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to create db driver")
	}
	return driver, nil
}
