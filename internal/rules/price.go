// internal/rules/price.go
package rules

import (
	"math"

	"github.com/mobilyasoft/configurator/internal/types"
)

/*
 * Client-side price math.
 *
 * Produces the preview figure shown while editing: base price plus the
 * deltas of visible, resolvable selections. The external pricing system is
 * authoritative for the final price; this is a pre-flight estimate only.
 */

// TotalPrice computes the preview price for the current selections.
// Hidden and stale selections contribute nothing, mirroring the submission
// payload filter. Rounded to 2 decimal places for display stability.
func TotalPrice(product *types.Product, selections types.Selections, visibility types.VisibilityMap) float64 {
	total := product.BasePrice
	for specID, optID := range selections {
		if optID == "" || !visibility.Visible(specID) {
			continue
		}
		st, ok := product.SpecType(specID)
		if !ok {
			continue
		}
		opt, ok := st.Option(optID)
		if !ok {
			continue
		}
		total += opt.PriceDelta
	}
	return round2(total)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
