package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/hrygo/studysheet/store"
)

func (d *DB) ListCharacters(ctx context.Context, find *store.FindCharacter) ([]*store.Character, error) {
	where, args := []string{"1 = 1"}, []any{}
	if v := find.Glyph; v != nil {
		where, args = append(where, "master_character.glyph = "+placeholder(len(args)+1)), append(args, *v)
	}

	query := `
		SELECT id, glyph, created_ts
		FROM master_character
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY master_character.id ASC`
	if find.Limit != nil {
		query = fmt.Sprintf("%s LIMIT %d", query, *find.Limit)
		if find.Offset != nil {
			query = fmt.Sprintf("%s OFFSET %d", query, *find.Offset)
		}
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query characters: %w", err)
	}
	defer rows.Close()

	list := make([]*store.Character, 0)
	for rows.Next() {
		var c store.Character
		if err := rows.Scan(&c.ID, &c.Glyph, &c.CreatedTs); err != nil {
			return nil, fmt.Errorf("failed to scan character: %w", err)
		}
		list = append(list, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate characters: %w", err)
	}
	return list, nil
}

func (d *DB) AppendCharacter(ctx context.Context, create *store.Character) (*store.Character, error) {
	fields := []string{"glyph"}
	args := []any{create.Glyph}
	if create.CreatedTs != 0 {
		fields = append(fields, "created_ts")
		args = append(args, create.CreatedTs)
	}

	stmt := `INSERT INTO master_character (` + strings.Join(fields, ", ") + `)
		VALUES (` + placeholders(len(args)) + `)
		RETURNING id, created_ts`
	if err := d.db.QueryRowContext(ctx, stmt, args...).Scan(&create.ID, &create.CreatedTs); err != nil {
		return nil, fmt.Errorf("failed to append character: %w", err)
	}
	return create, nil
}
