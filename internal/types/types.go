// Package types provides domain models shared across configurator components.
//
// Zero-dependency design: types.go, catalog.go, rules.go and errors.go use
// only the standard library so the rule engine can be embedded without
// pulling in transport or storage dependencies. ID utilities in ids.go import
// uuid but are isolated for selective inclusion.
//
// Separation from storage: database row shapes live next to the queries in
// internal/core consumers. This package contains hand-written types for the
// engine's vocabulary (selections, visibility, evaluation results) and for
// concepts that must never depend on a wire format.
package types

// SessionID represents a UUIDv7 configuration session identifier.
// String alias enables type safety while maintaining JSON string serialization.
type SessionID string

// VariantID represents a UUIDv7 identifier of a created product variant.
// UUIDv7 time-ordering ensures sequential IDs cluster in B-tree indexes.
type VariantID string

// SpecTypeID identifies one specification type within a product.
// Catalog ids are numeric strings in the shipped dataset; the alias keeps the
// engine agnostic to that (rule match-mode inference is the only place that
// cares, see internal/rules).
type SpecTypeID string

// OptionID identifies one option within its parent specification type.
// Unique within the parent type only, not globally.
type OptionID string

// ProductID identifies a configurable product.
type ProductID string

// Selections maps a specification type to the chosen option.
// Absence of a key means "no selection yet". Mutated one entry at a time via
// the session's Select operation; never partially invalid mid-update.
type Selections map[SpecTypeID]OptionID

// Clone returns an independent copy of the selection state.
func (s Selections) Clone() Selections {
	dst := make(Selections, len(s))
	for k, v := range s {
		dst[k] = v
	}
	return dst
}

// VisibilityMap maps a specification type to hidden=true/visible=false.
// Absence from the map means "always visible" (the default). Derived from
// catalog and selections on every change; never stored.
type VisibilityMap map[SpecTypeID]bool

// Visible reports whether the given specification type is currently visible.
func (v VisibilityMap) Visible(id SpecTypeID) bool {
	return !v[id]
}

// EvaluationResult is the outcome of one rule-engine pass.
// Valid starts true; only deny matches and unmet allow-triggered requirements
// flip it to false, and nothing flips it back within one pass. Feedback holds
// the message of the last matching deny rule (overwrite, not accumulation).
type EvaluationResult struct {
	Valid           bool                  `json:"valid"`
	Feedback        string                `json:"feedback,omitempty"`
	TooltipWarnings map[SpecTypeID]string `json:"tooltip_warnings,omitempty"`
}

// RequiredResult is the outcome of the catalog-declared required check,
// independent of the rule engine's conditional mandatoriness.
type RequiredResult struct {
	Valid        bool     `json:"valid"`
	MissingNames []string `json:"missing_names,omitempty"`
}

// Resource limits enforced by the configurator to keep evaluation bounded and
// to reject malformed external pricing responses.
const (
	// MaxProductionCodeLength bounds the externally generated production code.
	// Longer codes indicate a misconfigured code template on the pricing side
	// and are treated as a data-quality defect, not a user error.
	MaxProductionCodeLength = 50

	// MaxVariantDescriptionLength bounds the externally generated description.
	MaxVariantDescriptionLength = 200

	// MaxRuleConditions limits conditions per rule to keep the conjunctive
	// match linear and rule authoring sane.
	MaxRuleConditions = 32

	// MaxRequireEntries limits require actions per allow rule.
	MaxRequireEntries = 32

	// MaxRuleSetSize caps rules loaded per refresh. Rule sets are small in
	// practice; the cap guards against a runaway catalog import.
	MaxRuleSetSize = 10000
)
