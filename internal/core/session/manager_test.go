// internal/core/session/manager_test.go
package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/mobilyasoft/configurator/internal/core/pricing"
	"github.com/mobilyasoft/configurator/internal/rules"
	"github.com/mobilyasoft/configurator/internal/types"
)

// fakePricing is a scriptable PricingClient. Channels, when set, let tests
// hold a call open to exercise the in-flight paths.
type fakePricing struct {
	mu sync.Mutex

	previewResp *pricing.PreviewResponse
	previewErr  error
	createdCode string
	createErr   error
	refreshResp *pricing.PriceRefresh
	refreshErr  error

	previewEntered chan struct{}
	previewRelease chan struct{}
	createEntered  chan struct{}
	createRelease  chan struct{}

	createCalls int
}

func (f *fakePricing) PreviewConfiguration(ctx context.Context, payload rules.SubmissionPayload) (*pricing.PreviewResponse, error) {
	if f.previewEntered != nil {
		close(f.previewEntered)
		<-f.previewRelease
	}
	if f.previewErr != nil {
		return nil, f.previewErr
	}
	if f.previewResp != nil {
		return f.previewResp, nil
	}
	return &pricing.PreviewResponse{Valid: true, ReferenceCode: "REF-0001"}, nil
}

func (f *fakePricing) CreateVariant(ctx context.Context, payload rules.SubmissionPayload) (*types.Variant, error) {
	f.mu.Lock()
	f.createCalls++
	f.mu.Unlock()

	if f.createEntered != nil {
		close(f.createEntered)
		<-f.createRelease
	}
	if f.createErr != nil {
		return nil, f.createErr
	}

	code := f.createdCode
	if code == "" {
		code = "BD-0001"
	}
	return &types.Variant{
		ID:             types.NewVariantID(),
		ProductID:      payload.ProductID,
		ReferenceCode:  "REF-0001",
		ProductionCode: code,
		Description:    "Banyo Dolabı, METAL kulp",
		TotalPrice:     1030,
		Currency:       "TRY",
		Selections:     payload.Selections.Clone(),
	}, nil
}

func (f *fakePricing) RefreshPrice(ctx context.Context, referenceCode string) (*pricing.PriceRefresh, error) {
	if f.refreshErr != nil {
		return nil, f.refreshErr
	}
	if f.refreshResp != nil {
		return f.refreshResp, nil
	}
	return &pricing.PriceRefresh{TotalPrice: 1100, Currency: "TRY", Description: "güncel fiyat"}, nil
}

func (f *fakePricing) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.createCalls
}

type fakeStore struct {
	mu      sync.Mutex
	saved   []*types.Variant
	updated int
	saveErr error
}

func (f *fakeStore) SaveVariant(ctx context.Context, v *types.Variant) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = append(f.saved, v)
	return nil
}

func (f *fakeStore) UpdateVariantPrice(ctx context.Context, id types.VariantID, totalPrice float64, currency, description string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updated++
	return nil
}

func testProduct() *types.Product {
	return &types.Product{
		ID:        "p-1",
		Name:      "Banyo Dolabı",
		BasePrice: 1000,
		Currency:  "TRY",
		SpecificationTypes: []types.SpecificationType{
			{ID: "10", Name: "ETAJER VAR MI?", Options: []types.Option{
				{ID: "100", Name: "EVET ETAJERLİ", PriceDelta: 200},
				{ID: "101", Name: "HAYIR"},
			}},
			{ID: "11", Name: "ETAJER RENGİ", Options: []types.Option{
				{ID: "110", Name: "BEYAZ", PriceDelta: 50},
			}},
			{ID: "12", Name: "ETAJER BOYU", Options: []types.Option{
				{ID: "120", Name: "KISA"},
			}},
			{ID: "13", Name: "KULP TİPİ", IsRequired: true, Options: []types.Option{
				{ID: "130", Name: "METAL", PriceDelta: 30},
				{ID: "131", Name: "AHŞAP"},
			}},
		},
	}
}

func testRules(t *testing.T) []rules.CompiledRule {
	t.Helper()
	compiled, err := rules.CompileAll([]types.Rule{
		{
			ID:         "r-deny",
			Kind:       types.RuleDeny,
			Conditions: map[string]string{"KULP TİPİ": "AHŞAP", "ETAJER RENGİ": "BEYAZ"},
			Message:    "Ahşap kulp beyaz etajer ile seçilemez!",
		},
		{
			ID:         "r-require",
			Kind:       types.RuleAllow,
			Conditions: map[string]string{"ETAJER VAR MI?": "EVET ETAJERLİ"},
			Actions:    &types.RuleActions{Require: []string{"__CONTAINS_SPEC__=ETAJER"}},
		},
	})
	if err != nil {
		t.Fatalf("CompileAll() error = %v, want nil", err)
	}
	return compiled
}

func newTestManager(t *testing.T, client *fakePricing, store *fakeStore) (*Manager, types.SessionID) {
	t.Helper()
	m, err := NewManager(client, store)
	if err != nil {
		t.Fatalf("NewManager() error = %v, want nil", err)
	}
	id, eval := m.Create(testProduct(), testRules(t))
	if eval.Seq != 0 {
		t.Fatalf("initial Seq = %d, want 0", eval.Seq)
	}
	return m, id
}

func TestManager_SelectAndEvaluate(t *testing.T) {
	m, id := newTestManager(t, &fakePricing{}, &fakeStore{})

	eval, err := m.Select(id, "13", "130")
	if err != nil {
		t.Fatalf("Select() error = %v, want nil", err)
	}
	if eval.Seq != 1 {
		t.Errorf("Seq = %d, want 1", eval.Seq)
	}
	if !eval.RuleResult.Valid {
		t.Errorf("RuleResult.Valid = false, want true")
	}
	if eval.TotalPrice != 1030 {
		t.Errorf("TotalPrice = %v, want 1030", eval.TotalPrice)
	}

	// Shelf family hidden until the gate triggers
	if eval.Visibility.Visible("11") {
		t.Errorf("spec 11 visible, want hidden")
	}

	if _, err := m.Select(id, "99", "1"); !errors.Is(err, types.ErrUnknownSpecType) {
		t.Errorf("error = %v, want ErrUnknownSpecType", err)
	}
	if _, err := m.Select(id, "13", "999"); !errors.Is(err, types.ErrUnknownOption) {
		t.Errorf("error = %v, want ErrUnknownOption", err)
	}
	if _, err := m.Select("missing", "13", "130"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("error = %v, want ErrSessionNotFound", err)
	}
}

func TestManager_ClearSelection(t *testing.T) {
	m, id := newTestManager(t, &fakePricing{}, &fakeStore{})

	if _, err := m.Select(id, "13", "130"); err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	eval, err := m.Select(id, "13", "")
	if err != nil {
		t.Fatalf("clear Select() error = %v, want nil", err)
	}
	if eval.TotalPrice != 1000 {
		t.Errorf("TotalPrice = %v, want 1000 after clearing", eval.TotalPrice)
	}
	if eval.RequiredResult.Valid {
		t.Errorf("RequiredResult.Valid = true, want false with required type cleared")
	}
}

func TestManager_SubmitHappyPath(t *testing.T) {
	client := &fakePricing{}
	store := &fakeStore{}
	m, id := newTestManager(t, client, store)

	if _, err := m.Select(id, "13", "130"); err != nil {
		t.Fatalf("Select() error = %v", err)
	}

	variant, err := m.Submit(context.Background(), id)
	if err != nil {
		t.Fatalf("Submit() error = %v, want nil", err)
	}
	if variant.ProductionCode != "BD-0001" {
		t.Errorf("ProductionCode = %s, want BD-0001", variant.ProductionCode)
	}
	if variant.Suspect {
		t.Errorf("Suspect = true, want false")
	}
	if len(store.saved) != 1 {
		t.Errorf("saved variants = %d, want 1", len(store.saved))
	}

	state, got, err := m.State(id)
	if err != nil {
		t.Fatalf("State() error = %v", err)
	}
	if state != StateSubmitted {
		t.Errorf("state = %s, want submitted", state)
	}
	if got == nil || got.ID != variant.ID {
		t.Errorf("variant = %v, want the submitted one", got)
	}

	// Locked after submission
	if _, err := m.Select(id, "13", "131"); !errors.Is(err, types.ErrSessionSubmitted) {
		t.Errorf("Select error = %v, want ErrSessionSubmitted", err)
	}
	if _, err := m.Submit(context.Background(), id); !errors.Is(err, types.ErrSessionSubmitted) {
		t.Errorf("second Submit error = %v, want ErrSessionSubmitted", err)
	}
}

func TestManager_SubmitBlockedLocally(t *testing.T) {
	client := &fakePricing{}
	m, id := newTestManager(t, client, &fakeStore{})

	// Required type missing
	if _, err := m.Submit(context.Background(), id); !errors.Is(err, types.ErrMissingRequiredSelection) {
		t.Errorf("error = %v, want ErrMissingRequiredSelection", err)
	}

	// Deny rule fires
	if _, err := m.Select(id, "10", "100"); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Select(id, "11", "110"); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Select(id, "12", "120"); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Select(id, "13", "131"); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Submit(context.Background(), id); !errors.Is(err, types.ErrRuleViolation) {
		t.Errorf("error = %v, want ErrRuleViolation", err)
	}

	// Gate triggered but shelf family incomplete
	if _, err := m.Select(id, "13", "130"); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Select(id, "12", ""); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Submit(context.Background(), id); !errors.Is(err, types.ErrPendingMandatoryFields) {
		t.Errorf("error = %v, want ErrPendingMandatoryFields", err)
	}

	if client.calls() != 0 {
		t.Errorf("CreateVariant calls = %d, want 0 (local rejections make no network call)", client.calls())
	}
}

func TestManager_SubmitDataQualityGuard(t *testing.T) {
	client := &fakePricing{createdCode: strings.Repeat("X", types.MaxProductionCodeLength+1)}
	store := &fakeStore{}
	m, id := newTestManager(t, client, store)

	if _, err := m.Select(id, "13", "130"); err != nil {
		t.Fatal(err)
	}

	variant, err := m.Submit(context.Background(), id)
	if !errors.Is(err, types.ErrDataQualityGuard) {
		t.Fatalf("error = %v, want ErrDataQualityGuard", err)
	}
	if variant == nil {
		t.Fatal("variant = nil, want the created record")
	}
	if !variant.Suspect {
		t.Errorf("Suspect = false, want true")
	}
	if len(store.saved) != 1 {
		t.Errorf("saved variants = %d, want 1 (suspect records are still mirrored)", len(store.saved))
	}

	state, _, _ := m.State(id)
	if state != StateSubmitted {
		t.Errorf("state = %s, want submitted (the record exists server-side)", state)
	}
}

func TestManager_SubmitSerialized(t *testing.T) {
	client := &fakePricing{
		createEntered: make(chan struct{}),
		createRelease: make(chan struct{}),
	}
	m, id := newTestManager(t, client, &fakeStore{})

	if _, err := m.Select(id, "13", "130"); err != nil {
		t.Fatal(err)
	}

	done := make(chan error, 1)
	go func() {
		_, err := m.Submit(context.Background(), id)
		done <- err
	}()

	<-client.createEntered

	// First submit is parked inside the network call; a second one must be
	// rejected immediately instead of creating a duplicate.
	if _, err := m.Submit(context.Background(), id); !errors.Is(err, types.ErrSubmissionInFlight) {
		t.Errorf("error = %v, want ErrSubmissionInFlight", err)
	}

	close(client.createRelease)
	if err := <-done; err != nil {
		t.Errorf("first Submit error = %v, want nil", err)
	}
	if client.calls() != 1 {
		t.Errorf("CreateVariant calls = %d, want 1", client.calls())
	}
}

func TestManager_EditLockedDuringSubmit(t *testing.T) {
	client := &fakePricing{
		createEntered: make(chan struct{}),
		createRelease: make(chan struct{}),
	}
	m, id := newTestManager(t, client, &fakeStore{})

	if _, err := m.Select(id, "13", "130"); err != nil {
		t.Fatal(err)
	}

	done := make(chan error, 1)
	go func() {
		_, err := m.Submit(context.Background(), id)
		done <- err
	}()

	<-client.createEntered

	// The in-flight submit carries the selections it started with; a reset
	// or selection change now would be silently discarded on success.
	if _, err := m.Reset(id); !errors.Is(err, types.ErrSubmissionInFlight) {
		t.Errorf("Reset error = %v, want ErrSubmissionInFlight", err)
	}
	if _, err := m.Select(id, "13", "131"); !errors.Is(err, types.ErrSubmissionInFlight) {
		t.Errorf("Select error = %v, want ErrSubmissionInFlight", err)
	}

	close(client.createRelease)
	if err := <-done; err != nil {
		t.Fatalf("Submit error = %v, want nil", err)
	}

	state, variant, err := m.State(id)
	if err != nil {
		t.Fatal(err)
	}
	if state != StateSubmitted || variant == nil {
		t.Fatalf("state = %s, variant = %v, want submitted with variant", state, variant)
	}
	if variant.Selections["13"] != "130" {
		t.Errorf("variant selections = %v, want the ones the submit started with", variant.Selections)
	}

	// Reset works again once the submit has settled
	if _, err := m.Reset(id); err != nil {
		t.Errorf("Reset after settle error = %v, want nil", err)
	}
}

func TestManager_SubmitTransientFailureKeepsEditing(t *testing.T) {
	client := &fakePricing{createErr: types.ErrTransientNetwork}
	m, id := newTestManager(t, client, &fakeStore{})

	if _, err := m.Select(id, "13", "130"); err != nil {
		t.Fatal(err)
	}

	if _, err := m.Submit(context.Background(), id); !errors.Is(err, types.ErrTransientNetwork) {
		t.Fatalf("error = %v, want ErrTransientNetwork", err)
	}

	state, _, _ := m.State(id)
	if state != StateEditing {
		t.Errorf("state = %s, want editing after transient failure", state)
	}

	// Retry succeeds
	client.createErr = nil
	if _, err := m.Submit(context.Background(), id); err != nil {
		t.Errorf("retry Submit error = %v, want nil", err)
	}
}

func TestManager_PreviewStaleDiscard(t *testing.T) {
	client := &fakePricing{
		previewEntered: make(chan struct{}),
		previewRelease: make(chan struct{}),
	}
	m, id := newTestManager(t, client, &fakeStore{})

	if _, err := m.Select(id, "13", "130"); err != nil {
		t.Fatal(err)
	}

	done := make(chan error, 1)
	go func() {
		_, err := m.Preview(context.Background(), id)
		done <- err
	}()

	<-client.previewEntered

	// Selection changes while the preview is in flight
	if _, err := m.Select(id, "13", "131"); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Select(id, "13", "130"); err != nil {
		t.Fatal(err)
	}

	close(client.previewRelease)
	if err := <-done; !errors.Is(err, ErrStalePreview) {
		t.Errorf("error = %v, want ErrStalePreview", err)
	}
}

func TestManager_PreviewFresh(t *testing.T) {
	m, id := newTestManager(t, &fakePricing{}, &fakeStore{})

	if _, err := m.Select(id, "13", "130"); err != nil {
		t.Fatal(err)
	}

	resp, err := m.Preview(context.Background(), id)
	if err != nil {
		t.Fatalf("Preview() error = %v, want nil", err)
	}
	if !resp.Valid || resp.ReferenceCode != "REF-0001" {
		t.Errorf("response = %+v, want valid with REF-0001", resp)
	}
}

func TestManager_RefreshPrice(t *testing.T) {
	client := &fakePricing{}
	store := &fakeStore{}
	m, id := newTestManager(t, client, store)

	if _, err := m.RefreshPrice(context.Background(), id); !errors.Is(err, types.ErrSessionNotSubmitted) {
		t.Errorf("error = %v, want ErrSessionNotSubmitted before submit", err)
	}

	if _, err := m.Select(id, "13", "130"); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Submit(context.Background(), id); err != nil {
		t.Fatal(err)
	}

	variant, err := m.RefreshPrice(context.Background(), id)
	if err != nil {
		t.Fatalf("RefreshPrice() error = %v, want nil", err)
	}
	if variant.TotalPrice != 1100 {
		t.Errorf("TotalPrice = %v, want 1100", variant.TotalPrice)
	}
	if variant.Description != "güncel fiyat" {
		t.Errorf("Description = %q, want refreshed value", variant.Description)
	}
	if store.updated != 1 {
		t.Errorf("price updates mirrored = %d, want 1", store.updated)
	}
}

func TestManager_ResetAfterSubmit(t *testing.T) {
	m, id := newTestManager(t, &fakePricing{}, &fakeStore{})

	if _, err := m.Select(id, "13", "130"); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Submit(context.Background(), id); err != nil {
		t.Fatal(err)
	}

	eval, err := m.Reset(id)
	if err != nil {
		t.Fatalf("Reset() error = %v, want nil", err)
	}
	if eval.TotalPrice != 1000 {
		t.Errorf("TotalPrice = %v, want base price after reset", eval.TotalPrice)
	}

	state, variant, _ := m.State(id)
	if state != StateEditing {
		t.Errorf("state = %s, want editing", state)
	}
	if variant != nil {
		t.Errorf("variant = %v, want nil after reset", variant)
	}

	// Editable again
	if _, err := m.Select(id, "13", "131"); err != nil {
		t.Errorf("Select after reset error = %v, want nil", err)
	}
}

func TestManager_Close(t *testing.T) {
	m, id := newTestManager(t, &fakePricing{}, &fakeStore{})

	m.Close(id)
	if _, err := m.Evaluate(id); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("error = %v, want ErrSessionNotFound after Close", err)
	}
}

func TestManager_ConcurrentSessions(t *testing.T) {
	m, _ := newTestManager(t, &fakePricing{}, &fakeStore{})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		id, _ := m.Create(testProduct(), nil)
		wg.Add(1)
		go func(id types.SessionID) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				if _, err := m.Select(id, "13", "130"); err != nil {
					t.Errorf("Select() error = %v", err)
					return
				}
				if _, err := m.Evaluate(id); err != nil {
					t.Errorf("Evaluate() error = %v", err)
					return
				}
			}
		}(id)
	}

	waited := make(chan struct{})
	go func() {
		wg.Wait()
		close(waited)
	}()
	select {
	case <-waited:
	case <-time.After(10 * time.Second):
		t.Fatal("concurrent sessions deadlocked")
	}
}
