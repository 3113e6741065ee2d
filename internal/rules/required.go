// internal/rules/required.go
package rules

import "github.com/mobilyasoft/configurator/internal/types"

/*
 * Required-selection validation.
 *
 * Independent completeness check, deliberately separate from the rule engine:
 * required-ness here is a catalog-declared, unconditional property, whereas
 * the rule engine handles conditional mandatoriness. Both must pass before
 * submission proceeds.
 */

// ValidateRequired checks that every required, currently visible
// specification type has a selection. Hidden types are exempt even when
// flagged required; a visible required type with no options can never be
// satisfied and always reports missing.
func ValidateRequired(specTypes []types.SpecificationType, selections types.Selections, visibility types.VisibilityMap) types.RequiredResult {
	result := types.RequiredResult{Valid: true}

	for i := range specTypes {
		st := &specTypes[i]
		if !st.IsRequired {
			continue
		}
		if !visibility.Visible(st.ID) {
			continue
		}
		if len(st.Options) > 0 && selections[st.ID] != "" {
			continue
		}
		result.MissingNames = append(result.MissingNames, st.Name)
	}

	result.Valid = len(result.MissingNames) == 0
	return result
}
