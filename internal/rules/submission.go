// internal/rules/submission.go
package rules

import "github.com/mobilyasoft/configurator/internal/types"

/*
 * Submission gating.
 *
 * The pure half of the price/code submission adapter: decides whether the
 * external pricing system may be contacted at all, and shapes the payload
 * when it may. Rejections are typed so callers can render an actionable
 * message per failure mode instead of a generic error.
 *
 * Payload filtering: only selections that are non-null, currently visible and
 * still resolvable against the catalog are sent. A previously-visible-then-
 * hidden choice, or a stale option id left over from a catalog edit, must
 * never silently influence price or code generation.
 */

// SubmissionPayload is the request shape sent to the pricing system.
type SubmissionPayload struct {
	ProductID  types.ProductID  `json:"product_id"`
	Selections types.Selections `json:"selections"`
}

// PrepareSubmission gates and shapes a variant-creation request.
// Returns a sentinel error (rule violation, pending mandatory fields, or
// missing required selection) when submission is blocked locally; no network
// call may be made in that case.
func PrepareSubmission(product *types.Product, selections types.Selections, visibility types.VisibilityMap, ruleResult types.EvaluationResult, requiredResult types.RequiredResult) (SubmissionPayload, error) {
	// Warnings imply !Valid; the more specific rejection wins.
	if len(ruleResult.TooltipWarnings) > 0 {
		return SubmissionPayload{}, types.ErrPendingMandatoryFields
	}
	if !ruleResult.Valid {
		return SubmissionPayload{}, types.ErrRuleViolation
	}
	if !requiredResult.Valid {
		return SubmissionPayload{}, types.ErrMissingRequiredSelection
	}

	filtered := types.Selections{}
	for specID, optID := range selections {
		if optID == "" {
			continue
		}
		if !visibility.Visible(specID) {
			continue
		}
		st, ok := product.SpecType(specID)
		if !ok {
			continue
		}
		if _, ok := st.Option(optID); !ok {
			continue
		}
		filtered[specID] = optID
	}

	return SubmissionPayload{
		ProductID:  product.ID,
		Selections: filtered,
	}, nil
}
