package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/mobilyasoft/configurator/internal/core/pricing"
	"github.com/mobilyasoft/configurator/internal/rules"
	"github.com/mobilyasoft/configurator/internal/types"
)

// PricingClient is the external variant/pricing collaborator contract.
// Implemented by *pricing.Client; tests substitute a fake.
type PricingClient interface {
	PreviewConfiguration(ctx context.Context, payload rules.SubmissionPayload) (*pricing.PreviewResponse, error)
	CreateVariant(ctx context.Context, payload rules.SubmissionPayload) (*types.Variant, error)
	RefreshPrice(ctx context.Context, referenceCode string) (*pricing.PriceRefresh, error)
}

// VariantStore persists the local mirror of created variants.
// Implemented by *catalog.Store.
type VariantStore interface {
	SaveVariant(ctx context.Context, v *types.Variant) error
	UpdateVariantPrice(ctx context.Context, id types.VariantID, totalPrice float64, currency, description string) error
}

// ErrSessionNotFound indicates an unknown or expired session id.
var ErrSessionNotFound = fmt.Errorf("session not found")

// Manager owns all live sessions and orchestrates their interaction with the
// pricing system. Session state is mutated only under the manager's lock;
// the lock is released around network calls so one slow submission cannot
// stall every other session.
type Manager struct {
	pricing PricingClient
	store   VariantStore

	mu       sync.Mutex
	sessions map[types.SessionID]*Session
}

// NewManager creates a session manager.
func NewManager(pricingClient PricingClient, store VariantStore) (*Manager, error) {
	if pricingClient == nil {
		return nil, fmt.Errorf("pricingClient cannot be nil")
	}
	if store == nil {
		return nil, fmt.Errorf("store cannot be nil")
	}
	return &Manager{
		pricing:  pricingClient,
		store:    store,
		sessions: make(map[types.SessionID]*Session),
	}, nil
}

// Create starts a session for the product against a compiled rule snapshot.
// The snapshot is fixed for the session's lifetime; a rule cache refresh
// affects new sessions only.
func (m *Manager) Create(product *types.Product, ruleSet []rules.CompiledRule) (types.SessionID, Evaluation) {
	s := newSession(product, ruleSet)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.id] = s
	return s.id, s.evaluate()
}

// Select applies one selection change and returns the fresh evaluation.
// Rejected while a submit is in flight: the submit carries the selections it
// was started with, and a change now would be silently dropped on success.
func (m *Manager) Select(id types.SessionID, specID types.SpecTypeID, optID types.OptionID) (Evaluation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return Evaluation{}, ErrSessionNotFound
	}
	if s.submitting {
		return Evaluation{}, types.ErrSubmissionInFlight
	}
	if err := s.setSelection(specID, optID); err != nil {
		return Evaluation{}, err
	}
	return s.evaluate(), nil
}

// Reset clears the session's selections and returns it to editing.
// Idempotent: resetting an already-empty session is a no-op beyond bumping
// the sequence token. Rejected while a submit is in flight; the submit's
// outcome would silently overwrite the reset.
func (m *Manager) Reset(id types.SessionID) (Evaluation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return Evaluation{}, ErrSessionNotFound
	}
	if s.submitting {
		return Evaluation{}, types.ErrSubmissionInFlight
	}
	s.reset()
	return s.evaluate(), nil
}

// Evaluate returns the evaluation of the current state without mutating it.
func (m *Manager) Evaluate(id types.SessionID) (Evaluation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return Evaluation{}, ErrSessionNotFound
	}
	return s.evaluate(), nil
}

// State reports the session's lifecycle phase and variant, if any.
func (m *Manager) State(id types.SessionID) (State, *types.Variant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return "", nil, ErrSessionNotFound
	}
	return s.state, s.variant, nil
}

// Preview asks the pricing system for an advisory check of the current
// selections. The response is discarded with ErrStalePreview when the
// selections changed while the call was in flight.
func (m *Manager) Preview(ctx context.Context, id types.SessionID) (*pricing.PreviewResponse, error) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	if !ok {
		m.mu.Unlock()
		return nil, ErrSessionNotFound
	}
	payload, err := s.prepare()
	if err != nil {
		m.mu.Unlock()
		return nil, err
	}
	requestedAt := s.seq
	m.mu.Unlock()

	resp, err := m.pricing.PreviewConfiguration(ctx, payload)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if s.seq != requestedAt {
		return nil, ErrStalePreview
	}
	return resp, nil
}

// Submit creates the variant on the pricing system.
//
// Blocked locally, with no network call, while the evaluation rejects the
// selections. Concurrent submits for the same session are rejected with
// ErrSubmissionInFlight. On success the session transitions to Submitted.
//
// A data-quality violation in the response returns the variant together with
// types.ErrDataQualityGuard: the record exists server-side, is mirrored
// locally flagged suspect, and must be shown as a configuration defect
// rather than a normal success.
func (m *Manager) Submit(ctx context.Context, id types.SessionID) (*types.Variant, error) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	if !ok {
		m.mu.Unlock()
		return nil, ErrSessionNotFound
	}
	if s.state == StateSubmitted {
		m.mu.Unlock()
		return nil, types.ErrSessionSubmitted
	}
	if s.submitting {
		m.mu.Unlock()
		return nil, types.ErrSubmissionInFlight
	}
	payload, err := s.prepare()
	if err != nil {
		m.mu.Unlock()
		return nil, err
	}
	s.submitting = true
	m.mu.Unlock()

	variant, err := m.pricing.CreateVariant(ctx, payload)

	m.mu.Lock()
	defer m.mu.Unlock()
	s.submitting = false

	if err != nil {
		return nil, err
	}

	guardErr := variant.CheckDataQuality()
	if guardErr != nil {
		variant.Suspect = true
	}

	if saveErr := m.store.SaveVariant(ctx, variant); saveErr != nil {
		// The variant exists server-side; a failed mirror write must not
		// pretend otherwise.
		s.variant = variant
		s.state = StateSubmitted
		return variant, fmt.Errorf("variant created but not mirrored: %w", saveErr)
	}

	s.variant = variant
	s.state = StateSubmitted
	return variant, guardErr
}

// RefreshPrice re-queries the pricing source for the session's variant and
// replaces the locally held price and description in place. The session
// stays in Submitted.
func (m *Manager) RefreshPrice(ctx context.Context, id types.SessionID) (*types.Variant, error) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	if !ok {
		m.mu.Unlock()
		return nil, ErrSessionNotFound
	}
	if s.state != StateSubmitted || s.variant == nil {
		m.mu.Unlock()
		return nil, types.ErrSessionNotSubmitted
	}
	referenceCode := s.variant.ReferenceCode
	m.mu.Unlock()

	fresh, err := m.pricing.RefreshPrice(ctx, referenceCode)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if s.variant == nil {
		// Reset raced the refresh; nothing to apply.
		return nil, types.ErrSessionNotSubmitted
	}

	s.variant.TotalPrice = fresh.TotalPrice
	s.variant.Currency = fresh.Currency
	s.variant.Description = fresh.Description

	if err := m.store.UpdateVariantPrice(ctx, s.variant.ID, fresh.TotalPrice, fresh.Currency, fresh.Description); err != nil {
		return s.variant, fmt.Errorf("price applied but not mirrored: %w", err)
	}
	return s.variant, nil
}

// Close removes a session. Selections are never persisted; discarding the
// session discards the state.
func (m *Manager) Close(id types.SessionID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
}
