package file

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/hrygo/studysheet/internal/profile"
	"github.com/hrygo/studysheet/store"
)

// DB keeps the master sequence in one flat UTF-8 text file with no
// delimiters. Whitespace in the file is ignored when loading.
type DB struct {
	path    string
	profile *profile.Profile

	mu sync.Mutex
}

func NewDB(profile *profile.Profile) (store.Driver, error) {
	if profile == nil {
		return nil, errors.New("profile is nil")
	}
	if profile.CharacterFile == "" {
		return nil, errors.New("character file is required")
	}
	if err := os.MkdirAll(filepath.Dir(profile.CharacterFile), 0o755); err != nil {
		return nil, errors.Wrapf(err, "failed to create directory for %s", profile.CharacterFile)
	}

	f, err := os.OpenFile(profile.CharacterFile, os.O_CREATE|os.O_RDONLY, 0o644)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open character file: %s", profile.CharacterFile)
	}
	if err := f.Close(); err != nil {
		return nil, errors.Wrap(err, "failed to close character file")
	}

	return &DB{path: profile.CharacterFile, profile: profile}, nil
}

func (d *DB) GetDB() *sql.DB {
	return nil
}

func (d *DB) Close() error {
	return nil
}

func (d *DB) IsInitialized(_ context.Context) (bool, error) {
	if _, err := os.Stat(d.path); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, errors.Wrapf(err, "failed to stat %s", d.path)
	}
	return true, nil
}

func (d *DB) read() ([]string, error) {
	raw, err := os.ReadFile(d.path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read character file: %s", d.path)
	}
	return store.SplitCharacters(string(raw)), nil
}

func (d *DB) ListCharacters(ctx context.Context, find *store.FindCharacter) ([]*store.Character, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d.mu.Lock()
	chars, err := d.read()
	d.mu.Unlock()
	if err != nil {
		return nil, err
	}

	list := make([]*store.Character, 0, len(chars))
	for i, c := range chars {
		if find.Glyph != nil && c != *find.Glyph {
			continue
		}
		list = append(list, &store.Character{ID: int32(i + 1), Glyph: c})
	}

	if find.Offset != nil {
		if *find.Offset >= len(list) {
			return []*store.Character{}, nil
		}
		list = list[*find.Offset:]
	}
	if find.Limit != nil && *find.Limit < len(list) {
		list = list[:*find.Limit]
	}
	return list, nil
}

// AppendCharacter writes create.Glyph to the end of the file. Uniqueness is
// checked by the store before calling.
func (d *DB) AppendCharacter(ctx context.Context, create *store.Character) (*store.Character, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	chars, err := d.read()
	if err != nil {
		return nil, err
	}

	f, err := os.OpenFile(d.path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open character file for append: %s", d.path)
	}
	if _, err := f.WriteString(create.Glyph); err != nil {
		f.Close()
		return nil, errors.Wrap(err, "failed to append character")
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return nil, errors.Wrap(err, "failed to sync character file")
	}
	if err := f.Close(); err != nil {
		return nil, errors.Wrap(err, "failed to close character file")
	}

	create.ID = int32(len(chars) + 1)
	create.CreatedTs = time.Now().Unix()
	return create, nil
}

// The flat file has no settings; the migrator never reaches these.

func (d *DB) GetSystemSetting(_ context.Context, _ string) (string, error) {
	return "", nil
}

func (d *DB) UpsertSystemSetting(_ context.Context, _, _ string) error {
	return nil
}
