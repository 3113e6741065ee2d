// internal/rules/compile.go
package rules

import (
	"strconv"
	"strings"

	"github.com/mobilyasoft/configurator/internal/types"
)

/*
 * Rule compilation and validation.
 *
 * Compiles types.Rule to CompiledRule with a resolved match mode, parsed
 * require actions, and validated resource limits.
 *
 * Compilation workflow:
 *   1. Validate resource limits (condition count, require entries)
 *   2. Resolve the match mode (explicit tag, or legacy inference)
 *   3. Parse __CONTAINS_SPEC__ sentinels into typed require entries
 *
 * Why compile-time validation: enforcing limits during compilation moves
 * error detection to rule load time rather than evaluation time. Evaluation
 * itself must never fail (stale selections degrade to "rule does not fire").
 *
 * Legacy mode inference: rules written before the explicit mode tag carry
 * conditions keyed either by specification-type id or by name, and the
 * shipped system decided per rule by checking whether any key parses as an
 * integer. That heuristic is preserved for untagged rules only; tagged rules
 * skip it, which removes the ambiguity of numeric-looking names.
 */

// RequireSentinelPrefix marks a require entry that expands to every
// specification type whose name contains the keyword after '='.
const RequireSentinelPrefix = "__CONTAINS_SPEC__="

// RequireEntry is a parsed entry of an allow rule's require list.
type RequireEntry struct {
	// Literal is a direct specification-type reference. Accepted by the data
	// model but not enforced by the evaluator (shipped behavior).
	Literal string

	// Keyword is the sentinel keyword; empty for literal entries.
	Keyword string
}

// Sentinel reports whether the entry expands by keyword match.
func (e RequireEntry) Sentinel() bool {
	return e.Keyword != ""
}

// CompiledRule is a pre-processed rule ready for evaluation.
type CompiledRule struct {
	ID         types.RuleID
	Kind       types.RuleKind
	Mode       types.MatchMode // resolved; never MatchUnspecified
	Conditions map[string]string
	Require    []RequireEntry
	Message    string
}

// Compile validates and pre-processes a rule for evaluation.
// Set-kind rules compile to an inert rule the evaluator skips; their
// semantics are unconfirmed and guessing would silently mutate selections.
func Compile(rule *types.Rule) (*CompiledRule, error) {
	if len(rule.Conditions) > types.MaxRuleConditions {
		return nil, types.ErrTooManyConditions
	}

	compiled := &CompiledRule{
		ID:         rule.ID,
		Kind:       rule.Kind,
		Mode:       resolveMode(rule),
		Conditions: rule.Conditions,
		Message:    rule.Message,
	}

	switch rule.Kind {
	case types.RuleDeny:
		if len(rule.Conditions) == 0 {
			return nil, types.ErrEmptyConditions
		}
	case types.RuleAllow:
		if len(rule.Conditions) == 0 {
			return nil, types.ErrEmptyConditions
		}
		if rule.Actions != nil {
			if len(rule.Actions.Require) > types.MaxRequireEntries {
				return nil, types.ErrTooManyRequireEntries
			}
			compiled.Require = parseRequire(rule.Actions.Require)
		}
	case types.RuleSet:
		// Inert: accepted, never evaluated.
	}

	return compiled, nil
}

// CompileAll compiles a full rule snapshot in catalog order.
// Order is preserved: the evaluator's last-deny-wins feedback depends on it.
func CompileAll(ruleSet []types.Rule) ([]CompiledRule, error) {
	if len(ruleSet) > types.MaxRuleSetSize {
		return nil, types.ErrRuleSetTooLarge
	}

	compiled := make([]CompiledRule, 0, len(ruleSet))
	for i := range ruleSet {
		cr, err := Compile(&ruleSet[i])
		if err != nil {
			return nil, err
		}
		compiled = append(compiled, *cr)
	}
	return compiled, nil
}

// resolveMode returns the rule's explicit mode, or infers it for legacy
// rules: id mode iff any condition key parses as an integer.
func resolveMode(rule *types.Rule) types.MatchMode {
	if rule.Mode != types.MatchUnspecified {
		return rule.Mode
	}
	for key := range rule.Conditions {
		if _, err := strconv.Atoi(key); err == nil {
			return types.MatchByID
		}
	}
	return types.MatchByName
}

// parseRequire splits require entries into literals and keyword sentinels.
func parseRequire(entries []string) []RequireEntry {
	parsed := make([]RequireEntry, 0, len(entries))
	for _, entry := range entries {
		if kw, ok := strings.CutPrefix(entry, RequireSentinelPrefix); ok {
			parsed = append(parsed, RequireEntry{Keyword: kw})
			continue
		}
		parsed = append(parsed, RequireEntry{Literal: entry})
	}
	return parsed
}
