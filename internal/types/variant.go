// internal/types/variant.go
package types

import "unicode/utf8"

// Variant is a finalized configuration created on the external pricing
// system, mirrored locally. The pricing system is authoritative for codes
// and price; the local record exists for listing and price refresh.
type Variant struct {
	ID             VariantID  `json:"id"`
	ProductID      ProductID  `json:"product_id"`
	ReferenceCode  string     `json:"reference_code"`
	ProductionCode string     `json:"production_code"`
	Description    string     `json:"description"`
	TotalPrice     float64    `json:"total_price"`
	Currency       string     `json:"currency"`
	Selections     Selections `json:"selections"`

	// Suspect marks a variant that tripped the data-quality guard (code or
	// description over limit). The record is kept: it exists server-side
	// regardless, and discarding it would hide the defect.
	Suspect bool `json:"suspect,omitempty"`
}

// CheckDataQuality validates the externally generated code and description
// against the configured length limits. A violation is a backend
// configuration defect, not a user input error.
func (v *Variant) CheckDataQuality() error {
	// Limits are character counts; descriptions carry Turkish text.
	if utf8.RuneCountInString(v.ProductionCode) > MaxProductionCodeLength {
		return ErrDataQualityGuard
	}
	if utf8.RuneCountInString(v.Description) > MaxVariantDescriptionLength {
		return ErrDataQualityGuard
	}
	return nil
}
