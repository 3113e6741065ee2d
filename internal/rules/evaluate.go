// internal/rules/evaluate.go
package rules

import (
	"fmt"

	"github.com/mobilyasoft/configurator/internal/types"
)

/*
 * Rule evaluation orchestration.
 *
 * Evaluates a compiled rule snapshot against selection state and the
 * specification catalog, producing overall validity, a human-readable
 * rejection message, and per-type conditional-mandatory warnings.
 *
 * Evaluation flow:
 *   1. Build name<->id projections; selections whose option id is stale are
 *      silently skipped (catalog edits mid-session are expected, never fatal)
 *   2. Walk rules in catalog order
 *   3. deny: conjunctive condition match per the rule's mode; a match flips
 *      Valid false and overwrites Feedback (last matching deny wins)
 *   4. allow: on match, expand require sentinels; when the gate holds the
 *      trigger option, every expanded type must have a selection - missing
 *      ones produce tooltip warnings and flip Valid false
 *
 * Valid is sticky: nothing flips it back to true within one pass. The
 * last-match-wins feedback overwrite mirrors the shipped system, which shows
 * one message at a time; accumulating all messages is a known alternative
 * deliberately not taken (see DESIGN.md).
 *
 * Failure semantics: missing selection entries, unknown specification ids and
 * an absent gate type all degrade to "this rule does not fire". Evaluate
 * never returns an error and must never panic.
 */

// User-facing messages of the shipped system, kept verbatim.
const (
	// DefaultDenyFeedback is shown when a deny rule without a message fires.
	DefaultDenyFeedback = "Seçtiğiniz kombinasyon geçersiz!"

	// GateRequireFeedback is shown when gate-triggered requirements are unmet.
	GateRequireFeedback = "TÜM ETAJER özellikleri zorunludur!"
)

// Evaluate runs the rule snapshot against the current selections.
func Evaluate(selections types.Selections, specTypes []types.SpecificationType, ruleSet []CompiledRule) types.EvaluationResult {
	result := types.EvaluationResult{
		Valid:           true,
		TooltipWarnings: map[types.SpecTypeID]string{},
	}

	byName := projectByName(selections, specTypes)

	for i := range ruleSet {
		rule := &ruleSet[i]
		switch rule.Kind {
		case types.RuleDeny:
			if matches(rule, selections, byName) {
				result.Valid = false
				if rule.Message != "" {
					result.Feedback = rule.Message
				} else {
					result.Feedback = DefaultDenyFeedback
				}
			}
		case types.RuleAllow:
			if len(rule.Require) == 0 {
				continue
			}
			if matches(rule, selections, byName) {
				applyRequire(rule, selections, specTypes, &result)
			}
		}
	}

	return result
}

// projectByName indexes resolvable selections by specification-type name.
// Entries whose option id no longer resolves are skipped, not errors.
func projectByName(selections types.Selections, specTypes []types.SpecificationType) map[string]string {
	byName := make(map[string]string, len(selections))
	for i := range specTypes {
		st := &specTypes[i]
		optID, ok := selections[st.ID]
		if !ok || optID == "" {
			continue
		}
		opt, ok := st.Option(optID)
		if !ok {
			continue
		}
		byName[st.Name] = opt.Name
	}
	return byName
}

// matches applies the strict conjunction: every condition must hold.
func matches(rule *CompiledRule, selections types.Selections, byName map[string]string) bool {
	if len(rule.Conditions) == 0 {
		return false
	}
	for key, expected := range rule.Conditions {
		switch rule.Mode {
		case types.MatchByID:
			if string(selections[types.SpecTypeID(key)]) != expected {
				return false
			}
		default:
			if byName[key] != expected {
				return false
			}
		}
	}
	return true
}

// applyRequire enforces the gate-triggered conditional mandatoriness of an
// allow rule's sentinel entries. Literal entries are accepted by the data
// model but not enforced here (shipped behavior).
func applyRequire(rule *CompiledRule, selections types.Selections, specTypes []types.SpecificationType, result *types.EvaluationResult) {
	gate := findByName(specTypes, DefaultGateTypeName)
	if gate == nil || !gateTriggered(gate, selections) {
		return
	}

	for _, entry := range rule.Require {
		if !entry.Sentinel() {
			continue
		}
		for i := range specTypes {
			st := &specTypes[i]
			if st.Name == DefaultGateTypeName {
				continue
			}
			if !nameContains(st.Name, entry.Keyword) {
				continue
			}
			if selections[st.ID] != "" {
				continue
			}
			result.TooltipWarnings[st.ID] = fmt.Sprintf("\"%s\" zorunlu alan", st.Name)
			result.Valid = false
			result.Feedback = GateRequireFeedback
		}
	}
}
