package catalog

import (
	"context"
	"sync"

	"github.com/mobilyasoft/configurator/internal/rules"
)

// RuleCache holds a compiled rule snapshot shared by configuration sessions.
//
// Rules are immutable per session: a session keeps evaluating against the
// snapshot it started with even if the cache refreshes underneath. Refresh
// re-fetches and re-compiles the full list; rule sets are small, so there is
// no incremental diffing.
type RuleCache struct {
	store *Store

	mu       sync.RWMutex
	snapshot []rules.CompiledRule
}

// NewRuleCache creates a cache and loads the initial snapshot.
func NewRuleCache(ctx context.Context, store *Store) (*RuleCache, error) {
	c := &RuleCache{store: store}
	if err := c.Refresh(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

// Snapshot returns the current compiled rule set.
// The returned slice is shared and must not be mutated by callers.
func (c *RuleCache) Snapshot() []rules.CompiledRule {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshot
}

// Refresh re-fetches and re-compiles the full rule set.
// On compile failure the previous snapshot stays in place: a bad rule import
// must not strip constraints from live sessions.
func (c *RuleCache) Refresh(ctx context.Context) error {
	ruleSet, err := c.store.GetRules(ctx)
	if err != nil {
		return err
	}

	compiled, err := rules.CompileAll(ruleSet)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.snapshot = compiled
	c.mu.Unlock()
	return nil
}
