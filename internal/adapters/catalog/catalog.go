// Package catalog provides the static heist challenge content.
package catalog

import (
	"context"
	"strings"

	"github.com/levelup/heist/internal/domain/model"
)

// Catalog serves the compound challenge set and the safe challenge pool.
type Catalog interface {
	// CompoundChallenges returns the ordered compound set.
	CompoundChallenges(ctx context.Context) []model.Challenge

	// SafeChallenges returns the safe pool. Index positions are stable: a
	// heist pins its safe challenge by index for its whole lifetime.
	SafeChallenges(ctx context.Context) []model.Challenge
}

// StaticCatalog implements Catalog from fixed in-memory content.
type StaticCatalog struct {
	compound []model.Challenge
	safe     []model.Challenge
}

// NewStaticCatalog returns the built-in level-3 heist content.
func NewStaticCatalog() *StaticCatalog {
	return &StaticCatalog{
		compound: []model.Challenge{
			{ID: "c_1", Question: "What keyword is used to define a function in Python?", Answer: "def", Reward: 200},
			{ID: "c_2", Question: "How do you create a list in Python?", Answer: "[]", Reward: 200},
			{ID: "c_3", Question: "What method adds an element to the end of a list?", Answer: "append", Reward: 200},
		},
		safe: []model.Challenge{
			{ID: "s_1", Question: "Write a one-liner to reverse a string in Python", Answer: "s[::-1]"},
			{ID: "s_2", Question: "What is the output of: print(type([]) == list)", Answer: "True"},
			{ID: "s_3", Question: "How do you get the last element of a list named arr?", Answer: "arr[-1]"},
		},
	}
}

// CompoundChallenges returns the ordered compound set.
func (c *StaticCatalog) CompoundChallenges(ctx context.Context) []model.Challenge {
	out := make([]model.Challenge, len(c.compound))
	copy(out, c.compound)
	return out
}

// SafeChallenges returns the safe pool.
func (c *StaticCatalog) SafeChallenges(ctx context.Context) []model.Challenge {
	out := make([]model.Challenge, len(c.safe))
	copy(out, c.safe)
	return out
}

// Redact strips answers from a challenge list for client delivery.
func Redact(challenges []model.Challenge) []model.Challenge {
	out := make([]model.Challenge, len(challenges))
	for i, c := range challenges {
		out[i] = c.Redacted()
	}
	return out
}

// NormalizeAnswer canonicalizes a submission for comparison: trimmed and
// lowercased, exact match only.
func NormalizeAnswer(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
