// internal/types/catalog.go
package types

/*
 * Catalog domain types.
 *
 * Provides Product, SpecificationType, Option and VisibleWhen structures used
 * by internal/rules for visibility resolution and evaluation. These types are
 * wire-format agnostic - database-row-to-types conversion happens at the
 * internal/core/catalog boundary.
 *
 * Key types:
 *   - Product: Catalog root with base price and ordered specification types
 *   - SpecificationType: One configurable feature with its option list
 *   - Option: One selectable value with a price delta
 *   - VisibleWhen: Catalog-declared conditional visibility (gate/trigger)
 */

// Option is one selectable value of a SpecificationType.
type Option struct {
	ID   OptionID `json:"id" yaml:"id"`
	Name string   `json:"name" yaml:"name"`

	// PriceDelta is the option's contribution to the client-side price
	// preview. Missing or non-numeric source data loads as 0.
	PriceDelta float64 `json:"price_delta" yaml:"price_delta"`
}

// VisibleWhen declares conditional visibility for a specification type:
// the type is visible only while the gate type has the trigger option
// selected. Absence means "always visible".
type VisibleWhen struct {
	GateSpecID      SpecTypeID `json:"gate_spec_id" yaml:"gate_spec_id"`
	TriggerOptionID OptionID   `json:"trigger_option_id" yaml:"trigger_option_id"`
}

// SpecificationType represents one configurable feature of a product.
//
// Options is ordered for display only; order is never used as a tie-break.
// A type with no options is never selectable and is treated as
// always-invalid-to-require.
type SpecificationType struct {
	ID   SpecTypeID `json:"id" yaml:"id"`
	Name string     `json:"name" yaml:"name"`

	// IsRequired makes a selection mandatory before submission, but only
	// while the type is visible. Hidden required types are exempt.
	IsRequired bool     `json:"is_required" yaml:"is_required"`
	Options    []Option `json:"options" yaml:"options"`

	// VisibleWhen is optional catalog metadata driving the visibility
	// resolver. When no type in a catalog carries it, the resolver falls
	// back to the shipped single hard-coded gate dependency.
	VisibleWhen *VisibleWhen `json:"visible_when,omitempty" yaml:"visible_when,omitempty"`
}

// Option returns the option with the given id, or false when the id is stale
// (no longer present in the catalog).
func (st *SpecificationType) Option(id OptionID) (Option, bool) {
	for _, opt := range st.Options {
		if opt.ID == id {
			return opt, true
		}
	}
	return Option{}, false
}

// Product is the read-only description of a configurable product.
type Product struct {
	ID                 ProductID           `json:"id" yaml:"id"`
	Name               string              `json:"name" yaml:"name"`
	BasePrice          float64             `json:"base_price" yaml:"base_price"`
	Currency           string              `json:"currency" yaml:"currency"`
	SpecificationTypes []SpecificationType `json:"specification_types" yaml:"specification_types"`
}

// SpecType returns the specification type with the given id, or false when
// the id is unknown.
func (p *Product) SpecType(id SpecTypeID) (*SpecificationType, bool) {
	for i := range p.SpecificationTypes {
		if p.SpecificationTypes[i].ID == id {
			return &p.SpecificationTypes[i], true
		}
	}
	return nil, false
}
