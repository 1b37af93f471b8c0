package engine

import (
	"fmt"

	"github.com/google/uuid"
)

// Generator produces unique identifiers.
type Generator func() string

// UUIDv7 returns time-ordered UUID strings.
func UUIDv7() Generator {
	return func() string { return uuid.Must(uuid.NewV7()).String() }
}

// Prefixed prepends prefix to the ids produced by gen.
func Prefixed(prefix string, gen Generator) Generator {
	return func() string { return prefix + gen() }
}

// Sequential returns prefix-1, prefix-2 and so on. Replays and tests use it
// for stable ids.
func Sequential(prefix string) Generator {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}
