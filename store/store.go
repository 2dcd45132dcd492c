package store

import (
	"sync"

	"github.com/hrygo/studysheet/internal/profile"
)

// Store provides access to the master character sequence.
type Store struct {
	profile *profile.Profile
	driver  Driver

	// snapshot is loaded once and refreshed after each append.
	mu       sync.RWMutex
	snapshot *CharacterSequence

	// writeMu serializes appends within the process.
	writeMu sync.Mutex
}

// New creates a new instance of Store.
func New(driver Driver, profile *profile.Profile) *Store {
	return &Store{
		driver:  driver,
		profile: profile,
	}
}

func (s *Store) GetDriver() Driver {
	return s.driver
}

func (s *Store) Close() error {
	return s.driver.Close()
}
