package test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/hrygo/studysheet/internal/profile"
	"github.com/hrygo/studysheet/store"
	"github.com/hrygo/studysheet/store/db"
)

// NewTestingStore opens a fresh store for the driver named by the DRIVER
// environment variable (file by default).
func NewTestingStore(ctx context.Context, t *testing.T) *store.Store {
	return NewTestingStoreWithDriver(ctx, t, getDriverFromEnv())
}

// NewTestingStoreWithDriver opens a fresh, migrated store for driver.
func NewTestingStoreWithDriver(ctx context.Context, t *testing.T, driver string) *store.Store {
	t.Helper()
	profile := getTestingProfile(t, driver)
	dbDriver, err := db.NewDBDriver(profile)
	if err != nil {
		t.Fatalf("failed to create db driver: %v", err)
	}

	st := store.New(dbDriver, profile)
	if err := st.Migrate(ctx); err != nil {
		t.Fatalf("failed to migrate db: %v", err)
	}
	t.Cleanup(func() {
		st.Close()
	})
	return st
}

func getTestingProfile(t *testing.T, driver string) *profile.Profile {
	dir := t.TempDir()
	p := &profile.Profile{
		Mode:   "dev",
		Data:   dir,
		Driver: driver,
	}
	switch driver {
	case "file":
		p.CharacterFile = filepath.Join(dir, "data.txt")
	case "sqlite":
		p.DSN = filepath.Join(dir, "studysheet_test.db")
	case "postgres":
		dsn := os.Getenv("POSTGRES_TEST_DSN")
		if dsn == "" {
			t.Skip("POSTGRES_TEST_DSN is not set")
		}
		p.DSN = dsn
	default:
		t.Fatalf("unknown driver %q", driver)
	}
	return p
}

func getDriverFromEnv() string {
	driver := os.Getenv("DRIVER")
	if driver == "" {
		driver = "file"
	}
	return driver
}

// seedCharacters appends n distinct Han characters starting at U+4E00.
func seedCharacters(ctx context.Context, t *testing.T, st *store.Store, n int) []string {
	t.Helper()
	chars := make([]string, 0, n)
	for i := 0; i < n; i++ {
		c := string(rune(0x4E00 + i))
		if _, err := st.AppendCharacter(ctx, c); err != nil {
			t.Fatalf("failed to seed character %d: %v", i, err)
		}
		chars = append(chars, c)
	}
	return chars
}
