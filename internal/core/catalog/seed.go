package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mobilyasoft/configurator/internal/types"
)

// SeedFile is the YAML fixture shape consumed by the seed command:
// one or more products with their full specification trees, plus a rule set.
type SeedFile struct {
	Products []types.Product `yaml:"products"`
	Rules    []types.Rule    `yaml:"rules"`
}

// LoadSeedFile parses a catalog fixture from disk.
func LoadSeedFile(path string) (*SeedFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file %s: %w", path, err)
	}

	var seed SeedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}
	return &seed, nil
}

// Seed inserts a fixture into the database.
// Insert-only: seeding an already-populated database fails on the first
// duplicate key rather than silently overwriting catalog data.
func (s *Store) Seed(ctx context.Context, seed *SeedFile) error {
	now := time.Now().UTC().Format(time.RFC3339)

	for _, p := range seed.Products {
		if _, err := s.queries.Exec(ctx, "insert-product",
			string(p.ID), p.Name, p.BasePrice, p.Currency, now); err != nil {
			return fmt.Errorf("failed to insert product %s: %w", p.ID, err)
		}

		for pos, st := range p.SpecificationTypes {
			var gateID, triggerID interface{}
			if st.VisibleWhen != nil {
				gateID = string(st.VisibleWhen.GateSpecID)
				triggerID = string(st.VisibleWhen.TriggerOptionID)
			}
			if _, err := s.queries.Exec(ctx, "insert-spec-type",
				string(st.ID), string(p.ID), st.Name, st.IsRequired, pos, gateID, triggerID); err != nil {
				return fmt.Errorf("failed to insert specification type %s: %w", st.ID, err)
			}

			for optPos, opt := range st.Options {
				if _, err := s.queries.Exec(ctx, "insert-option",
					string(opt.ID), string(p.ID), string(st.ID), opt.Name, opt.PriceDelta, optPos); err != nil {
					return fmt.Errorf("failed to insert option %s: %w", opt.ID, err)
				}
			}
		}
	}

	for pos, rule := range seed.Rules {
		conditions, err := json.Marshal(rule.Conditions)
		if err != nil {
			return fmt.Errorf("failed to encode conditions for rule %s: %w", rule.ID, err)
		}

		var actions interface{}
		if rule.Actions != nil {
			encoded, err := json.Marshal(rule.Actions)
			if err != nil {
				return fmt.Errorf("failed to encode actions for rule %s: %w", rule.ID, err)
			}
			actions = string(encoded)
		}

		if _, err := s.queries.Exec(ctx, "insert-rule",
			string(rule.ID), string(rule.Kind), string(rule.Mode),
			string(conditions), actions, rule.Message, pos, now); err != nil {
			return fmt.Errorf("failed to insert rule %s: %w", rule.ID, err)
		}
	}

	return nil
}
