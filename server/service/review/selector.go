// Package review assembles spaced-review study sets from the master character
// sequence and names the resulting sheets.
package review

import (
	"math/rand/v2"
	"slices"

	apperrors "github.com/hrygo/studysheet/internal/errors"
	"github.com/hrygo/studysheet/store"
)

const (
	// SetSize is the number of characters on one study sheet.
	SetSize = 50
	// ReservedPrefix is the highest index that can never hold a new character.
	// Indices 0..ReservedPrefix are always treated as already reviewed.
	ReservedPrefix = 50
)

// StudySet is the ordered list of characters printed on one sheet.
type StudySet []string

// Selection is a StudySet together with the positions that produced it.
type Selection struct {
	Characters StudySet
	// NewIndices are the master-sequence positions of the new characters, in input order.
	NewIndices []int
	// StartIndex is the position the backward scan began at, -1 when no scan ran.
	StartIndex int
	// OldIndices are the positions of the review characters, in scan order.
	OldIndices []int
	// NextIndex is the position the scan would visit next, -1 when no scan ran.
	NextIndex int
}

// Select returns the study set for newChars reviewed from startChar.
func Select(newChars []string, startChar string, all *store.CharacterSequence) (StudySet, error) {
	sel, err := SelectDetailed(newChars, startChar, all)
	if err != nil {
		return nil, err
	}
	return sel.Characters, nil
}

// SelectDetailed runs the selection and reports every resolved position.
//
// New characters come first, in input order. The remaining slots are filled by
// scanning backward from startChar, wrapping past index 0 to the end of the
// sequence and skipping positions held by new characters. When 50 or more new
// characters are given, the first 50 are returned and startChar is never looked up.
func SelectDetailed(newChars []string, startChar string, all *store.CharacterSequence) (*Selection, error) {
	numNew := len(newChars)
	numOld := SetSize - numNew

	if numOld <= 0 {
		return &Selection{
			Characters: slices.Clone(newChars[:SetSize]),
			StartIndex: -1,
			NextIndex:  -1,
		}, nil
	}
	if numNew == 0 {
		return nil, apperrors.MissingInput("New characters are required")
	}

	newIndices := make([]int, 0, numNew)
	for _, c := range newChars {
		i, ok := all.IndexOf(c)
		if !ok {
			return nil, apperrors.NotFound("New character '%s' not found in the character list", c).
				WithContext("char", c)
		}
		newIndices = append(newIndices, i)
	}

	minNewIndex := slices.Min(newIndices)
	if minNewIndex <= ReservedPrefix {
		return nil, apperrors.InvalidPosition("All new characters must have indices > %d. Found character at index %d", ReservedPrefix, minNewIndex).
			WithContext("char", all.At(minNewIndex)).
			WithContext("index", minNewIndex)
	}

	if startChar == "" {
		return nil, apperrors.MissingInput("Review starting character is required")
	}
	startIndex, ok := all.IndexOf(startChar)
	if !ok {
		return nil, apperrors.NotFound("Review starting character '%s' not found in the character list", startChar).
			WithContext("char", startChar)
	}
	if startIndex >= minNewIndex {
		return nil, apperrors.InvalidPosition("Review starting point (index %d) must be less than smallest new character index (%d)", startIndex, minNewIndex).
			WithContext("char", startChar).
			WithContext("index", startIndex).
			WithContext("min_new_index", minNewIndex)
	}

	oldIndices, next, err := scanBackward(startIndex, numOld, all.Len(), newIndices)
	if err != nil {
		return nil, err
	}

	characters := make(StudySet, 0, SetSize)
	characters = append(characters, newChars...)
	for _, i := range oldIndices {
		characters = append(characters, all.At(i))
	}
	return &Selection{
		Characters: characters,
		NewIndices: newIndices,
		StartIndex: startIndex,
		OldIndices: oldIndices,
		NextIndex:  next,
	}, nil
}

// scanBackward collects want positions walking down from start over a
// sequence of length n, wrapping to n-1 after 0 and skipping positions in
// skip. It gives up after one full cycle, so no position is collected twice.
func scanBackward(start, want, n int, skip []int) ([]int, int, error) {
	skipped := make(map[int]struct{}, len(skip))
	for _, i := range skip {
		skipped[i] = struct{}{}
	}

	collected := make([]int, 0, want)
	current := start
	for visited := 0; len(collected) < want; visited++ {
		if visited == n {
			return nil, -1, apperrors.InsufficientData("Unable to find enough old characters").
				WithContext("found", len(collected)).
				WithContext("needed", want)
		}
		if _, ok := skipped[current]; !ok {
			collected = append(collected, current)
		}
		current--
		if current < 0 {
			current = n - 1
		}
	}
	return collected, current, nil
}

// Shuffle returns a shuffled copy of set. rng may be seeded for reproducible output.
func Shuffle(set StudySet, rng *rand.Rand) StudySet {
	out := slices.Clone(set)
	rng.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}
