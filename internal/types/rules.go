// internal/types/rules.go
package types

/*
 * Domain types for business rules.
 *
 * Provides Rule, RuleKind, MatchMode and RuleActions structures used by
 * internal/rules for compilation and evaluation. These types are wire-format
 * agnostic - database rows and YAML fixtures convert into them at the
 * internal/core/catalog boundary.
 *
 * Rule conditions are a strict conjunction (AND): every condition must match
 * for a rule to fire. There is no disjunction or negation primitive.
 *
 * Condition keys reference catalog entities in one of two key spaces:
 * specification-type ids or specification-type names. Rules authored against
 * names survive catalog id churn; rules authored against ids are unambiguous
 * when display names collide. MatchMode tags the key space explicitly; for
 * legacy rules without a tag, internal/rules infers it at compile time.
 */

// RuleKind discriminates rule behavior.
type RuleKind string

const (
	// RuleDeny invalidates the selection combination when conditions match.
	RuleDeny RuleKind = "deny"

	// RuleAllow makes additional specification types conditionally mandatory
	// when conditions match, via the Require action list.
	RuleAllow RuleKind = "allow"

	// RuleSet is accepted by the data model but not implemented by the
	// evaluator. Intended semantics unconfirmed; compiled as inert.
	RuleSet RuleKind = "set"
)

// MatchMode selects the key space of a rule's conditions.
type MatchMode string

const (
	// MatchUnspecified defers to compile-time inference: id mode iff any
	// condition key parses as an integer.
	MatchUnspecified MatchMode = ""

	// MatchByID matches condition keys as specification-type ids and
	// condition values as raw option ids.
	MatchByID MatchMode = "by_id"

	// MatchByName matches condition keys as specification-type names and
	// condition values as option display names.
	MatchByName MatchMode = "by_name"
)

// RuleID identifies a rule in the catalog.
type RuleID string

// RuleActions carries the consequences of an allow rule.
type RuleActions struct {
	// Require lists specification types that become mandatory when the rule
	// fires. Each entry is either a literal specification-type reference or
	// a "__CONTAINS_SPEC__=<keyword>" sentinel meaning every type whose name
	// contains the keyword (case-insensitive), excluding the gate type.
	Require []string `json:"require" yaml:"require"`
}

// Rule is a declarative cross-feature constraint, owned by the catalog and
// read-only to the engine.
type Rule struct {
	ID   RuleID   `json:"id" yaml:"id"`
	Kind RuleKind `json:"kind" yaml:"kind"`

	// Mode tags the condition key space. Empty for legacy rules.
	Mode MatchMode `json:"mode,omitempty" yaml:"mode,omitempty"`

	// Conditions maps a feature key (id or name per Mode) to the expected
	// option value. All must match for the rule to fire.
	Conditions map[string]string `json:"conditions" yaml:"conditions"`

	// Actions applies to allow rules only.
	Actions *RuleActions `json:"actions,omitempty" yaml:"actions,omitempty"`

	// Message is shown when the rule fires. Optional; deny rules without a
	// message fall back to a generic rejection text.
	Message string `json:"message,omitempty" yaml:"message,omitempty"`
}
