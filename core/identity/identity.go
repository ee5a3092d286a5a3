package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrIdentityExhausted is returned when the requested number of free ids cannot be produced.
var ErrIdentityExhausted = errors.New("identity generator exhausted")

// Generator produces ids that are unused for a customer.
type Generator interface {
	GenerateUniqueIds(ctx context.Context, customerID int, count int) ([]string, error)
}

// Target is a table column whose values must not collide with generated ids.
type Target struct {
	Table  string
	Column string
}

// Config holds identity generation settings.
type Config struct {
	// Length is the number of characters in a generated id.
	Length int `mapstructure:"length" default:"12"`
	// MaxAttempts bounds the number of candidate rounds before giving up.
	MaxAttempts int `mapstructure:"max_attempts" default:"5"`
}

// DBGenerator draws random candidates and drops any already present in the targets.
type DBGenerator struct {
	db        *gorm.DB
	targets   []Target
	length    int
	attempts  int
	candidate func() string
}

// NewDBGenerator creates a generator checking collisions against the given targets.
func NewDBGenerator(db *gorm.DB, cfg Config, targets ...Target) *DBGenerator {
	length := cfg.Length
	if length <= 0 || length > 32 {
		length = 12
	}
	attempts := cfg.MaxAttempts
	if attempts <= 0 {
		attempts = 5
	}

	g := &DBGenerator{
		db:       db,
		targets:  targets,
		length:   length,
		attempts: attempts,
	}
	g.candidate = g.randomID
	return g
}

func (g *DBGenerator) randomID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:g.length]
}

// GenerateUniqueIds returns count distinct ids not used by the customer in any target.
func (g *DBGenerator) GenerateUniqueIds(ctx context.Context, customerID int, count int) ([]string, error) {
	if count <= 0 {
		return nil, nil
	}

	ids := make([]string, 0, count)
	seen := make(map[string]struct{}, count)

	for attempt := 0; attempt < g.attempts && len(ids) < count; attempt++ {
		need := count - len(ids)
		candidates := make([]string, 0, need)
		for i := 0; i < need; i++ {
			c := g.candidate()
			if _, dup := seen[c]; dup {
				continue
			}
			seen[c] = struct{}{}
			candidates = append(candidates, c)
		}

		taken, err := g.taken(ctx, customerID, candidates)
		if err != nil {
			return nil, err
		}

		for _, c := range candidates {
			if _, used := taken[c]; !used {
				ids = append(ids, c)
			}
		}
	}

	if len(ids) < count {
		return nil, fmt.Errorf("%w: produced %d of %d ids", ErrIdentityExhausted, len(ids), count)
	}
	return ids, nil
}

func (g *DBGenerator) taken(ctx context.Context, customerID int, candidates []string) (map[string]struct{}, error) {
	taken := make(map[string]struct{})
	if len(candidates) == 0 {
		return taken, nil
	}

	for _, t := range g.targets {
		var used []string
		err := g.db.WithContext(ctx).
			Table(t.Table).
			Where("customer_id = ? AND "+t.Column+" IN ?", customerID, candidates).
			Pluck(t.Column, &used).Error
		if err != nil {
			return nil, fmt.Errorf("failed to check ids against %s: %w", t.Table, err)
		}
		for _, u := range used {
			taken[u] = struct{}{}
		}
	}
	return taken, nil
}
