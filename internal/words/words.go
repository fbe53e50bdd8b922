// internal/words/words.go
//
// Provides the fixed word list for a round.
//
// Responsibilities:
//   - Load the list from the embedded assets exactly once.
//   - Validate it (non-empty, lowercase a–z, no duplicates).
//   - Supply lookups (List, Contains, Stats).
//
// The list is not configurable: every refill of a round's queue draws from
// the same words, in a fresh random order.

package words

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/robalobadob/guesstheword/assets"
)

var (
	initOnce   sync.Once
	list       []string            // words in asset order
	listSet    map[string]struct{} // same words, for lookups
	initialErr error
)

// Init loads and validates the word list exactly once.
// Returns an error if the list is empty or malformed.
func Init() error {
	initOnce.Do(func() {
		ws, err := assets.WordList()
		if err != nil {
			initialErr = fmt.Errorf("words: read list: %w", err)
			return
		}
		if err := validate(ws); err != nil {
			initialErr = err
			return
		}
		list = ws
		listSet = toSet(ws)
	})
	return initialErr
}

// validate enforces the list rules.
func validate(ws []string) error {
	if len(ws) == 0 {
		return errors.New("words: list is empty")
	}
	seen := make(map[string]struct{}, len(ws))
	for _, w := range ws {
		if !isAlpha(w) {
			return fmt.Errorf("words: %q is not a lowercase word", w)
		}
		if _, dup := seen[w]; dup {
			return fmt.Errorf("words: %q listed twice", w)
		}
		seen[w] = struct{}{}
	}
	return nil
}

// toSet converts a list of strings into a lookup set.
func toSet(ws []string) map[string]struct{} {
	m := make(map[string]struct{}, len(ws))
	for _, w := range ws {
		m[w] = struct{}{}
	}
	return m
}

// isAlpha reports whether s is a non-empty run of lowercase ASCII letters.
func isAlpha(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return true
}

// List returns a fresh copy of the word list, loading it on first use.
// It is empty only if Init failed.
func List() []string {
	_ = Init()
	return slices.Clone(list)
}

// Contains reports whether w is on the list.
func Contains(w string) bool {
	_ = Init()
	_, ok := listSet[w]
	return ok
}

// Stats returns the number of loaded words.
func Stats() int {
	_ = Init()
	return len(list)
}
