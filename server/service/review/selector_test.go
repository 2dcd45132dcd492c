package review

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/hrygo/studysheet/internal/errors"
	"github.com/hrygo/studysheet/store"
)

// sequence returns n distinct Han characters, U+4E00 onwards.
func sequence(n int) *store.CharacterSequence {
	chars := make([]string, n)
	for i := range chars {
		chars[i] = string(rune(0x4E00 + i))
	}
	return store.NewCharacterSequence(chars)
}

func charsAt(all *store.CharacterSequence, indices ...int) []string {
	out := make([]string, 0, len(indices))
	for _, i := range indices {
		out = append(out, all.At(i))
	}
	return out
}

func TestSelectWraparound(t *testing.T) {
	all := sequence(100)
	newIndices := []int{52, 54, 65, 66, 68}
	newChars := charsAt(all, newIndices...)

	sel, err := SelectDetailed(newChars, all.At(10), all)
	require.NoError(t, err)

	var want []int
	for i := 10; i >= 0; i-- {
		want = append(want, i)
	}
	for i := 99; i >= 69; i-- {
		want = append(want, i)
	}
	want = append(want, 67, 64, 63)

	assert.Equal(t, want, sel.OldIndices)
	assert.Equal(t, 10, sel.StartIndex)
	assert.Equal(t, 62, sel.NextIndex)
	assert.Equal(t, newIndices, sel.NewIndices)

	require.Len(t, sel.Characters, SetSize)
	assert.Equal(t, newChars, []string(sel.Characters[:len(newChars)]))
	assert.Equal(t, all.At(10), sel.Characters[len(newChars)])
	for _, i := range sel.OldIndices {
		assert.NotContains(t, newIndices, i)
	}
}

func TestSelectNormalCase(t *testing.T) {
	all := sequence(120)
	newChars := charsAt(all, 52, 53, 54)

	set, err := Select(newChars, all.At(30), all)
	require.NoError(t, err)

	require.Len(t, set, SetSize)
	assert.Equal(t, newChars, []string(set[:3]))
	assert.Equal(t, all.At(30), set[3])
	assert.Equal(t, all.At(0), set[33])
	assert.Equal(t, all.At(119), set[34])
	assertNoDuplicates(t, set)
}

func TestSelectErrors(t *testing.T) {
	all := sequence(100)

	tests := []struct {
		name      string
		newChars  []string
		startChar string
		code      apperrors.ErrorCode
		message   string
	}{
		{
			name:      "start index equals smallest new index",
			newChars:  charsAt(all, 52, 53),
			startChar: all.At(52),
			code:      apperrors.ErrCodeInvalidPosition,
			message:   "Review starting point (index 52) must be less than smallest new character index (52)",
		},
		{
			name:      "start index past smallest new index",
			newChars:  charsAt(all, 60, 53),
			startChar: all.At(70),
			code:      apperrors.ErrCodeInvalidPosition,
			message:   "Review starting point (index 70) must be less than smallest new character index (53)",
		},
		{
			name:      "new character inside reserved prefix",
			newChars:  charsAt(all, 20),
			startChar: all.At(10),
			code:      apperrors.ErrCodeInvalidPosition,
			message:   "All new characters must have indices > 50. Found character at index 20",
		},
		{
			name:      "new character exactly at the boundary",
			newChars:  charsAt(all, 60, 50),
			startChar: all.At(10),
			code:      apperrors.ErrCodeInvalidPosition,
			message:   "All new characters must have indices > 50. Found character at index 50",
		},
		{
			name:      "reserved prefix checked before start char",
			newChars:  charsAt(all, 20),
			startChar: "",
			code:      apperrors.ErrCodeInvalidPosition,
		},
		{
			name:      "missing start char",
			newChars:  charsAt(all, 60, 61),
			startChar: "",
			code:      apperrors.ErrCodeMissingInput,
			message:   "Review starting character is required",
		},
		{
			name:      "new character not in list",
			newChars:  []string{"🚀", "💫"},
			startChar: all.At(10),
			code:      apperrors.ErrCodeNotFound,
			message:   "New character '🚀' not found in the character list",
		},
		{
			name:      "start character not in list",
			newChars:  charsAt(all, 60),
			startChar: "龍",
			code:      apperrors.ErrCodeNotFound,
			message:   "Review starting character '龍' not found in the character list",
		},
		{
			name:      "no new characters",
			newChars:  nil,
			startChar: all.At(10),
			code:      apperrors.ErrCodeMissingInput,
			message:   "New characters are required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set, err := Select(tt.newChars, tt.startChar, all)
			require.Error(t, err)
			assert.Nil(t, set)
			e, ok := apperrors.As(err)
			require.True(t, ok, "expected a coded error, got %v", err)
			assert.Equal(t, tt.code, e.Code)
			if tt.message != "" {
				assert.Equal(t, tt.message, e.Message)
			}
		})
	}
}

func TestSelectTruncatesWithoutLookups(t *testing.T) {
	all := sequence(101)
	newChars := all.Chars()[51:101]
	require.Len(t, newChars, 50)

	set, err := Select(newChars, all.At(10), all)
	require.NoError(t, err)
	assert.Equal(t, newChars, []string(set))

	// Neither the start character nor the sequence is consulted.
	longer := append(charsAt(all, 60, 61), newChars...)
	set, err = Select(longer, "", nil)
	require.NoError(t, err)
	assert.Equal(t, longer[:50], []string(set))
}

func TestSelectResultDoesNotAliasInput(t *testing.T) {
	all := sequence(101)
	newChars := all.Chars()[51:101]
	set, err := Select(newChars, "", all)
	require.NoError(t, err)
	set[0] = "X"
	assert.NotEqual(t, "X", newChars[0])
}

func TestSelectProperties(t *testing.T) {
	all := sequence(80)
	rng := rand.New(rand.NewPCG(7, 11))

	for round := 0; round < 200; round++ {
		count := 1 + rng.IntN(20)
		perm := rng.Perm(80 - 51)
		newIndices := make([]int, 0, count)
		for _, p := range perm[:min(count, len(perm))] {
			newIndices = append(newIndices, 51+p)
		}
		newChars := charsAt(all, newIndices...)
		minNew := newIndices[0]
		for _, i := range newIndices {
			minNew = min(minNew, i)
		}
		start := rng.IntN(minNew)

		sel, err := SelectDetailed(newChars, all.At(start), all)
		require.NoError(t, err)

		require.Len(t, sel.Characters, SetSize)
		assert.Equal(t, newChars, []string(sel.Characters[:len(newChars)]))
		assertNoDuplicates(t, sel.Characters)

		// Old positions follow strict reverse cyclic order from start and
		// only positions of new characters are ever skipped.
		n := all.Len()
		require.Equal(t, start, sel.OldIndices[0])
		for k := 1; k < len(sel.OldIndices); k++ {
			prev, cur := sel.OldIndices[k-1], sel.OldIndices[k]
			gap := (prev - cur + n) % n
			require.GreaterOrEqual(t, gap, 1, "round %d", round)
			for d := 1; d < gap; d++ {
				assert.Contains(t, newIndices, (prev-d+n)%n, "round %d", round)
			}
		}
	}
}

func TestScanBackwardInsufficientData(t *testing.T) {
	_, _, err := scanBackward(2, 5, 4, []int{3})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeInsufficientData))

	_, _, err = scanBackward(0, 1, 2, []int{0, 1})
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeInsufficientData))

	got, next, err := scanBackward(1, 3, 4, []int{3})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 0, 2}, got)
	assert.Equal(t, 1, next)
}

func TestShuffle(t *testing.T) {
	all := sequence(100)
	set, err := Select(charsAt(all, 60, 61), all.At(40), all)
	require.NoError(t, err)

	shuffled := Shuffle(set, rand.New(rand.NewPCG(1, 2)))
	assert.ElementsMatch(t, set, shuffled)
	assert.NotEqual(t, set, shuffled)
	assert.Equal(t, all.At(60), set[0], "input must not be modified")

	again := Shuffle(set, rand.New(rand.NewPCG(1, 2)))
	assert.Equal(t, shuffled, again)
}

func assertNoDuplicates(t *testing.T, set StudySet) {
	t.Helper()
	seen := make(map[string]struct{}, len(set))
	for _, c := range set {
		_, dup := seen[c]
		require.False(t, dup, "duplicate character %q", c)
		seen[c] = struct{}{}
	}
}
