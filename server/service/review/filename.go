package review

import (
	"fmt"
	"strings"

	"github.com/hrygo/studysheet/store"
)

// Compose returns a sheet label of the form "{new}(next:{c})", where c is the
// character the next session should start reviewing from. It falls back to
// "{new}" when no review characters are needed or a lookup fails.
//
// The next start is startIndex minus the number of review slots. Positions
// skipped because they hold new characters are not accounted for, so the
// label can be early by that many positions.
func Compose(newChars []string, startChar string, all *store.CharacterSequence) string {
	label := strings.Join(newChars, "")
	numOld := SetSize - len(newChars)
	if numOld <= 0 || all == nil || all.Len() == 0 {
		return label
	}

	startIndex, ok := all.IndexOf(startChar)
	if !ok {
		return label
	}
	next := startIndex - numOld
	if next < 0 {
		next += all.Len()
	}
	if next < 0 || next >= all.Len() {
		return label
	}
	return fmt.Sprintf("%s(next:%s)", label, all.At(next))
}
