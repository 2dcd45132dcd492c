package store

import (
	"context"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	apperrors "github.com/hrygo/studysheet/internal/errors"
)

// Character is one entry of the master sequence.
type Character struct {
	ID        int32
	Glyph     string
	CreatedTs int64
}

// FindCharacter is the find condition for characters.
type FindCharacter struct {
	Glyph *string

	// Pagination
	Limit  *int
	Offset *int
}

// ImportResult summarizes a bulk import.
type ImportResult struct {
	Added      []string
	Duplicates int
	Invalid    int
}

// CharacterSequence is an ordered, 0-indexed snapshot of the master sequence.
// Characters are assumed distinct; when the underlying data holds a duplicate,
// IndexOf only ever resolves the earliest position.
type CharacterSequence struct {
	chars []string
	index map[string]int
}

// NewCharacterSequence builds a sequence with a first-occurrence index.
func NewCharacterSequence(chars []string) *CharacterSequence {
	seq := &CharacterSequence{
		chars: make([]string, len(chars)),
		index: make(map[string]int, len(chars)),
	}
	copy(seq.chars, chars)
	for i, c := range seq.chars {
		if _, ok := seq.index[c]; !ok {
			seq.index[c] = i
		}
	}
	return seq
}

// Len returns the number of characters.
func (s *CharacterSequence) Len() int {
	return len(s.chars)
}

// At returns the character at position i.
func (s *CharacterSequence) At(i int) string {
	return s.chars[i]
}

// IndexOf returns the first position of c.
func (s *CharacterSequence) IndexOf(c string) (int, bool) {
	i, ok := s.index[c]
	return i, ok
}

// Contains reports whether c is part of the sequence.
func (s *CharacterSequence) Contains(c string) bool {
	_, ok := s.index[c]
	return ok
}

// Chars returns a copy of the characters in order.
func (s *CharacterSequence) Chars() []string {
	out := make([]string, len(s.chars))
	copy(out, s.chars)
	return out
}

func (s *CharacterSequence) String() string {
	return strings.Join(s.chars, "")
}

// SplitCharacters NFC-normalizes text and splits it into single-code-point
// characters, dropping whitespace.
func SplitCharacters(text string) []string {
	text = norm.NFC.String(text)
	chars := make([]string, 0, utf8.RuneCountInString(text))
	for _, r := range text {
		if unicode.IsSpace(r) || r == utf8.RuneError {
			continue
		}
		chars = append(chars, string(r))
	}
	return chars
}

// IsChineseCharacter reports whether r is a Han ideograph.
func IsChineseCharacter(r rune) bool {
	return unicode.Is(unicode.Han, r)
}

// NormalizeCharacter validates raw input for an append: exactly one
// character, and that character must be a Han ideograph.
func NormalizeCharacter(raw string) (string, error) {
	chars := SplitCharacters(raw)
	switch {
	case len(chars) == 0:
		return "", apperrors.Length("Exactly one character is required")
	case len(chars) > 1:
		return "", apperrors.Length("Only one character can be added at a time, got %d", len(chars)).
			WithContext("length", len(chars))
	}
	c := chars[0]
	r, _ := utf8.DecodeRuneInString(c)
	if !IsChineseCharacter(r) {
		return "", apperrors.InvalidCharacter("'%s' is not a Chinese character", c).WithContext("char", c)
	}
	return c, nil
}

// ListCharacters returns the cached master sequence, loading it on first use.
func (s *Store) ListCharacters(ctx context.Context) (*CharacterSequence, error) {
	s.mu.RLock()
	snapshot := s.snapshot
	s.mu.RUnlock()
	if snapshot != nil {
		return snapshot, nil
	}
	return s.Refresh(ctx)
}

// Refresh reloads the snapshot from the driver.
func (s *Store) Refresh(ctx context.Context) (*CharacterSequence, error) {
	list, err := s.driver.ListCharacters(ctx, &FindCharacter{})
	if err != nil {
		return nil, err
	}
	chars := make([]string, 0, len(list))
	for _, c := range list {
		chars = append(chars, c.Glyph)
	}
	snapshot := NewCharacterSequence(chars)

	s.mu.Lock()
	s.snapshot = snapshot
	s.mu.Unlock()
	return snapshot, nil
}

// AppendCharacter validates raw and adds it to the end of the master sequence.
// It returns the index of the new character.
func (s *Store) AppendCharacter(ctx context.Context, raw string) (int, error) {
	c, err := NormalizeCharacter(raw)
	if err != nil {
		return 0, err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.appendLocked(ctx, c)
}

func (s *Store) appendLocked(ctx context.Context, c string) (int, error) {
	seq, err := s.ListCharacters(ctx)
	if err != nil {
		return 0, err
	}
	if i, ok := seq.IndexOf(c); ok {
		return 0, apperrors.Duplicate("Character '%s' already exists at index %d", c, i).
			WithContext("char", c).
			WithContext("index", i)
	}

	if _, err := s.driver.AppendCharacter(ctx, &Character{Glyph: c}); err != nil {
		return 0, err
	}
	if _, err := s.Refresh(ctx); err != nil {
		return 0, err
	}
	return seq.Len(), nil
}

// ImportCharacters appends every Chinese character of text that is not yet
// part of the master sequence, in order.
func (s *Store) ImportCharacters(ctx context.Context, text string) (*ImportResult, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	result := &ImportResult{}
	for _, c := range SplitCharacters(text) {
		r, _ := utf8.DecodeRuneInString(c)
		if !IsChineseCharacter(r) {
			result.Invalid++
			continue
		}
		if _, err := s.appendLocked(ctx, c); err != nil {
			if apperrors.IsCode(err, apperrors.ErrCodeDuplicate) {
				result.Duplicates++
				continue
			}
			return result, err
		}
		result.Added = append(result.Added, c)
	}
	return result, nil
}
