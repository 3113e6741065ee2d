// Package session manages configuration sessions: per-user selection state,
// derived evaluation, and the Editing -> Submitted lifecycle.
//
// Concurrency model per the engine's contract: evaluation is pure and cheap,
// safe to re-run on every change. Network calls are suspension points - a
// superseding selection change does not cancel an in-flight preview, so
// preview responses carry the selection sequence token they were requested
// at and are discarded when the token has moved on. Submissions are
// serialized per session; the pricing system owns uniqueness and the client
// has no transaction boundary of its own.
package session

import (
	"errors"

	"github.com/mobilyasoft/configurator/internal/rules"
	"github.com/mobilyasoft/configurator/internal/types"
)

// State is the lifecycle phase of a session.
type State string

const (
	// StateEditing accepts selection changes and submission attempts.
	StateEditing State = "editing"

	// StateSubmitted holds a created variant; only price refresh and reset
	// are allowed. There is no way back to editing without a full reset.
	StateSubmitted State = "submitted"
)

// ErrStalePreview indicates a preview response arrived after the selections
// it was computed for had already changed. The response must be discarded.
var ErrStalePreview = errors.New("preview response superseded by newer selection")

// Session is one user's configuration of one product.
// Not safe for concurrent use; the Manager serializes access.
type Session struct {
	id       types.SessionID
	product  *types.Product
	ruleSet  []rules.CompiledRule
	selected types.Selections
	seq      uint64
	state    State
	variant  *types.Variant

	// submitting guards against concurrent submit attempts while the
	// manager's lock is released for the network call.
	submitting bool
}

// Evaluation is the derived result of one engine pass, tagged with the
// selection sequence it was computed at.
type Evaluation struct {
	Seq            uint64                 `json:"seq"`
	Visibility     types.VisibilityMap    `json:"visibility"`
	RuleResult     types.EvaluationResult `json:"rule_result"`
	RequiredResult types.RequiredResult   `json:"required_result"`
	TotalPrice     float64                `json:"total_price"`
	Currency       string                 `json:"currency"`
}

func newSession(product *types.Product, ruleSet []rules.CompiledRule) *Session {
	return &Session{
		id:       types.NewSessionID(),
		product:  product,
		ruleSet:  ruleSet,
		selected: types.Selections{},
		state:    StateEditing,
	}
}

// ID returns the session identifier.
func (s *Session) ID() types.SessionID { return s.id }

// State returns the lifecycle phase.
func (s *Session) State() State { return s.state }

// Variant returns the created variant, or nil while editing.
func (s *Session) Variant() *types.Variant { return s.variant }

// setSelection records one selection change. An empty option id clears the entry.
// Exactly one entry changes per call; the state is never partially invalid.
func (s *Session) setSelection(specID types.SpecTypeID, optID types.OptionID) error {
	if s.state == StateSubmitted {
		return types.ErrSessionSubmitted
	}

	st, ok := s.product.SpecType(specID)
	if !ok {
		return types.ErrUnknownSpecType
	}
	if optID != "" {
		if _, ok := st.Option(optID); !ok {
			return types.ErrUnknownOption
		}
	}

	if optID == "" {
		delete(s.selected, specID)
	} else {
		s.selected[specID] = optID
	}
	s.seq++
	return nil
}

// reset clears all selections and returns the session to editing.
// The variant, if any, stays created server-side; the session simply starts
// a new configuration.
func (s *Session) reset() {
	s.selected = types.Selections{}
	s.variant = nil
	s.state = StateEditing
	s.seq++
}

// evaluate runs visibility, rules, required check and price math against the
// current selections. Pure: identical state yields identical output.
func (s *Session) evaluate() Evaluation {
	specTypes := s.product.SpecificationTypes
	visibility := rules.ResolveVisibility(specTypes, s.selected)
	ruleResult := rules.Evaluate(s.selected, specTypes, s.ruleSet)
	requiredResult := rules.ValidateRequired(specTypes, s.selected, visibility)

	return Evaluation{
		Seq:            s.seq,
		Visibility:     visibility,
		RuleResult:     ruleResult,
		RequiredResult: requiredResult,
		TotalPrice:     rules.TotalPrice(s.product, s.selected, visibility),
		Currency:       s.product.Currency,
	}
}

// prepare gates the session for submission and shapes the payload.
func (s *Session) prepare() (rules.SubmissionPayload, error) {
	eval := s.evaluate()
	return rules.PrepareSubmission(s.product, s.selected, eval.Visibility, eval.RuleResult, eval.RequiredResult)
}
