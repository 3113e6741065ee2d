// Package catalog provides read access to the specification catalog and the
// business rule set, plus the local variant mirror.
//
// The engine treats this package as its data-access collaborator: everything
// it returns is a snapshot, and nothing here is consulted during evaluation
// itself (internal/rules is pure). Rules load in catalog order; the evaluator
// depends on that order for its last-match-wins feedback.
package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mobilyasoft/configurator/internal/core/db"
	"github.com/mobilyasoft/configurator/internal/types"
)

// Store reads catalog entities through named queries.
type Store struct {
	queries *db.Queries
}

// NewStore creates a store over loaded queries.
func NewStore(queries *db.Queries) (*Store, error) {
	if queries == nil {
		return nil, fmt.Errorf("queries cannot be nil")
	}
	return &Store{queries: queries}, nil
}

type productRow struct {
	ProductID string  `db:"product_id"`
	Name      string  `db:"name"`
	BasePrice float64 `db:"base_price"`
	Currency  string  `db:"currency"`
}

type specTypeRow struct {
	SpecTypeID      string         `db:"spec_type_id"`
	Name            string         `db:"name"`
	IsRequired      bool           `db:"is_required"`
	GateSpecID      sql.NullString `db:"gate_spec_id"`
	TriggerOptionID sql.NullString `db:"trigger_option_id"`
}

type optionRow struct {
	SpecTypeID string  `db:"spec_type_id"`
	OptionID   string  `db:"option_id"`
	Name       string  `db:"name"`
	PriceDelta float64 `db:"price_delta"`
}

type ruleRow struct {
	RuleID     string         `db:"rule_id"`
	Kind       string         `db:"kind"`
	Mode       string         `db:"mode"`
	Conditions string         `db:"conditions"`
	Actions    sql.NullString `db:"actions"`
	Message    string         `db:"message"`
}

// GetCatalog loads a product with its specification types and options.
func (s *Store) GetCatalog(ctx context.Context, productID types.ProductID) (*types.Product, error) {
	var pr productRow
	if err := s.queries.Get(ctx, "get-product", &pr, string(productID)); err != nil {
		return nil, fmt.Errorf("failed to load product %s: %w", productID, err)
	}

	var stRows []specTypeRow
	if err := s.queries.Select(ctx, "list-spec-types", &stRows, string(productID)); err != nil {
		return nil, fmt.Errorf("failed to load specification types: %w", err)
	}

	var optRows []optionRow
	if err := s.queries.Select(ctx, "list-options", &optRows, string(productID)); err != nil {
		return nil, fmt.Errorf("failed to load options: %w", err)
	}

	optionsByType := make(map[string][]types.Option, len(stRows))
	for _, or := range optRows {
		optionsByType[or.SpecTypeID] = append(optionsByType[or.SpecTypeID], types.Option{
			ID:         types.OptionID(or.OptionID),
			Name:       or.Name,
			PriceDelta: or.PriceDelta,
		})
	}

	product := &types.Product{
		ID:        types.ProductID(pr.ProductID),
		Name:      pr.Name,
		BasePrice: pr.BasePrice,
		Currency:  pr.Currency,
	}

	for _, sr := range stRows {
		st := types.SpecificationType{
			ID:         types.SpecTypeID(sr.SpecTypeID),
			Name:       sr.Name,
			IsRequired: sr.IsRequired,
			Options:    optionsByType[sr.SpecTypeID],
		}
		if sr.GateSpecID.Valid && sr.TriggerOptionID.Valid {
			st.VisibleWhen = &types.VisibleWhen{
				GateSpecID:      types.SpecTypeID(sr.GateSpecID.String),
				TriggerOptionID: types.OptionID(sr.TriggerOptionID.String),
			}
		}
		product.SpecificationTypes = append(product.SpecificationTypes, st)
	}

	return product, nil
}

// GetRules loads the full rule set in catalog order.
// Malformed rule rows are skipped so one bad import cannot take down every
// configuration session.
func (s *Store) GetRules(ctx context.Context) ([]types.Rule, error) {
	var rows []ruleRow
	if err := s.queries.Select(ctx, "list-rules", &rows); err != nil {
		return nil, fmt.Errorf("failed to load rules: %w", err)
	}
	if len(rows) > types.MaxRuleSetSize {
		return nil, types.ErrRuleSetTooLarge
	}

	ruleSet := make([]types.Rule, 0, len(rows))
	for _, r := range rows {
		var conditions map[string]string
		if err := json.Unmarshal([]byte(r.Conditions), &conditions); err != nil {
			continue
		}

		rule := types.Rule{
			ID:         types.RuleID(r.RuleID),
			Kind:       types.RuleKind(r.Kind),
			Mode:       types.MatchMode(r.Mode),
			Conditions: conditions,
			Message:    r.Message,
		}

		if r.Actions.Valid && r.Actions.String != "" {
			var actions types.RuleActions
			if err := json.Unmarshal([]byte(r.Actions.String), &actions); err != nil {
				continue
			}
			rule.Actions = &actions
		}

		ruleSet = append(ruleSet, rule)
	}

	return ruleSet, nil
}

// SaveVariant mirrors an externally created variant locally.
func (s *Store) SaveVariant(ctx context.Context, v *types.Variant) error {
	selections, err := json.Marshal(v.Selections)
	if err != nil {
		return fmt.Errorf("failed to encode selections: %w", err)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	_, err = s.queries.Exec(ctx, "insert-variant",
		string(v.ID), string(v.ProductID), v.ReferenceCode, v.ProductionCode,
		v.Description, v.TotalPrice, v.Currency, string(selections), v.Suspect,
		now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to save variant: %w", err)
	}
	return nil
}

// UpdateVariantPrice replaces the locally held price and description with a
// fresh response from the pricing source.
func (s *Store) UpdateVariantPrice(ctx context.Context, id types.VariantID, totalPrice float64, currency, description string) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.queries.Exec(ctx, "update-variant-price", totalPrice, currency, description, now, string(id))
	if err != nil {
		return fmt.Errorf("failed to update variant price: %w", err)
	}
	return nil
}

// GetVariant loads a mirrored variant.
func (s *Store) GetVariant(ctx context.Context, id types.VariantID) (*types.Variant, error) {
	var row struct {
		VariantID      string  `db:"variant_id"`
		ProductID      string  `db:"product_id"`
		ReferenceCode  string  `db:"reference_code"`
		ProductionCode string  `db:"production_code"`
		Description    string  `db:"description"`
		TotalPrice     float64 `db:"total_price"`
		Currency       string  `db:"currency"`
		Selections     string  `db:"selections"`
		Suspect        bool    `db:"suspect"`
	}
	if err := s.queries.Get(ctx, "get-variant", &row, string(id)); err != nil {
		return nil, fmt.Errorf("failed to load variant %s: %w", id, err)
	}

	var selections types.Selections
	if err := json.Unmarshal([]byte(row.Selections), &selections); err != nil {
		return nil, fmt.Errorf("failed to decode selections: %w", err)
	}

	return &types.Variant{
		ID:             types.VariantID(row.VariantID),
		ProductID:      types.ProductID(row.ProductID),
		ReferenceCode:  row.ReferenceCode,
		ProductionCode: row.ProductionCode,
		Description:    row.Description,
		TotalPrice:     row.TotalPrice,
		Currency:       row.Currency,
		Selections:     selections,
		Suspect:        row.Suspect,
	}, nil
}
