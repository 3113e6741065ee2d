// internal/rules/visibility.go
package rules

import (
	"strings"

	"github.com/mobilyasoft/configurator/internal/types"
)

/*
 * Visibility resolution.
 *
 * Derives which specification types are currently hidden from the catalog and
 * selection state. Pure function of its inputs; safe to re-run on every
 * selection change.
 *
 * Two data sources, checked in order:
 *   1. Catalog metadata: any SpecificationType carrying VisibleWhen hides
 *      itself unless the gate type has the trigger option selected.
 *   2. Shipped fallback: when no type declares VisibleWhen, the single
 *      hard-coded dependency ships as data here - the gate type is found by
 *      its literal name, and its dependent family is every type whose name
 *      contains the gate keyword (case-insensitive), excluding the gate.
 *
 * The map records hidden types only; absence means visible. An absent gate
 * type is a no-op (empty map, everything visible), not an error, and stale
 * selection ids resolve to "not triggered" rather than failing.
 */

// Shipped gate dataset: "has shelf unit?" gates the shelf-unit feature
// family, visible only while "yes, with shelf" is selected.
const (
	DefaultGateTypeName      = "ETAJER VAR MI?"
	DefaultTriggerOptionName = "EVET ETAJERLİ"
)

// ResolveVisibility derives the hidden set for the given selections.
func ResolveVisibility(specTypes []types.SpecificationType, selections types.Selections) types.VisibilityMap {
	if hasVisibilityMetadata(specTypes) {
		return resolveFromMetadata(specTypes, selections)
	}
	return resolveShippedGate(specTypes, selections)
}

func hasVisibilityMetadata(specTypes []types.SpecificationType) bool {
	for i := range specTypes {
		if specTypes[i].VisibleWhen != nil {
			return true
		}
	}
	return false
}

// resolveFromMetadata hides every metadata-carrying type whose gate does not
// currently hold the trigger option.
func resolveFromMetadata(specTypes []types.SpecificationType, selections types.Selections) types.VisibilityMap {
	vis := types.VisibilityMap{}
	for i := range specTypes {
		vw := specTypes[i].VisibleWhen
		if vw == nil {
			continue
		}
		if selections[vw.GateSpecID] != vw.TriggerOptionID {
			vis[specTypes[i].ID] = true
		}
	}
	return vis
}

// resolveShippedGate implements the single hard-coded dependency.
func resolveShippedGate(specTypes []types.SpecificationType, selections types.Selections) types.VisibilityMap {
	gate := findByName(specTypes, DefaultGateTypeName)
	if gate == nil {
		return types.VisibilityMap{}
	}

	if gateTriggered(gate, selections) {
		return types.VisibilityMap{}
	}

	keyword := GateKeyword(gate.Name)
	vis := types.VisibilityMap{}
	for i := range specTypes {
		st := &specTypes[i]
		if st.ID == gate.ID {
			continue
		}
		if nameContains(st.Name, keyword) {
			vis[st.ID] = true
		}
	}
	return vis
}

// gateTriggered resolves the gate's selected option and compares its name
// against the trigger value. Stale option ids resolve to not-triggered.
func gateTriggered(gate *types.SpecificationType, selections types.Selections) bool {
	optID, ok := selections[gate.ID]
	if !ok {
		return false
	}
	opt, ok := gate.Option(optID)
	if !ok {
		return false
	}
	return opt.Name == DefaultTriggerOptionName
}

// GateKeyword derives the dependent-family keyword from a gate type's name:
// its first whitespace-delimited token ("ETAJER" in the shipped dataset).
func GateKeyword(gateName string) string {
	fields := strings.Fields(gateName)
	if len(fields) == 0 {
		return gateName
	}
	return fields[0]
}

func nameContains(name, keyword string) bool {
	return strings.Contains(strings.ToUpper(name), strings.ToUpper(keyword))
}

func findByName(specTypes []types.SpecificationType, name string) *types.SpecificationType {
	for i := range specTypes {
		if specTypes[i].Name == name {
			return &specTypes[i]
		}
	}
	return nil
}
