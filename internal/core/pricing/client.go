// Package pricing provides the HTTP client for the external variant-creation
// and pricing system.
//
// The pricing system is the source of truth for reference codes, production
// codes and prices; the local engine's validity check is a pre-flight gate
// only. All requests carry the API key and an HMAC-SHA256 body signature.
//
// Error mapping: transport failures and 5xx responses surface as
// types.ErrTransientNetwork (retryable, but never retried here - the caller
// decides); 4xx responses surface as types.ErrSubmissionRejected with the
// server's message verbatim.
package pricing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mobilyasoft/configurator/internal/rules"
	"github.com/mobilyasoft/configurator/internal/types"
)

// Client issues signed JSON requests to the pricing system.
type Client struct {
	baseURL string
	apiKey  string
	secret  []byte
	http    *http.Client
}

// NewClient creates a pricing client.
func NewClient(baseURL, apiKey string, secret []byte, timeout time.Duration) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("baseURL cannot be empty")
	}
	if len(secret) == 0 {
		return nil, fmt.Errorf("secret cannot be empty")
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		secret:  secret,
		http:    &http.Client{Timeout: timeout},
	}, nil
}

// PreviewResponse is the advisory server-side pre-check result.
type PreviewResponse struct {
	Valid         bool   `json:"valid"`
	ReferenceCode string `json:"reference_code"`
}

// SelectionLine is the canonical per-selection breakdown returned by the
// pricing system alongside a created or refreshed variant.
type SelectionLine struct {
	SpecTypeID types.SpecTypeID `json:"spec_type_id"`
	OptionID   types.OptionID   `json:"option_id"`
	Name       string           `json:"name"`
	Price      float64          `json:"price"`
}

type variantResponse struct {
	ReferenceCode  string          `json:"reference_code"`
	ProductionCode string          `json:"production_code"`
	Description    string          `json:"description"`
	TotalPrice     float64         `json:"total_price"`
	Currency       string          `json:"currency"`
	Selections     []SelectionLine `json:"selections"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// PreviewConfiguration asks the pricing system for an advisory validity
// check and a reference code before committing. The client-side evaluation
// stays authoritative for UI gating.
func (c *Client) PreviewConfiguration(ctx context.Context, payload rules.SubmissionPayload) (*PreviewResponse, error) {
	var resp PreviewResponse
	if err := c.post(ctx, "/v1/configurations/preview", payload, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CreateVariant submits a finalized selection set. The returned variant
// carries the externally generated codes and the authoritative price; the
// caller applies the data-quality guard and persists the mirror.
func (c *Client) CreateVariant(ctx context.Context, payload rules.SubmissionPayload) (*types.Variant, error) {
	var resp variantResponse
	if err := c.post(ctx, "/v1/variants", payload, &resp); err != nil {
		return nil, err
	}

	return &types.Variant{
		ID:             types.NewVariantID(),
		ProductID:      payload.ProductID,
		ReferenceCode:  resp.ReferenceCode,
		ProductionCode: resp.ProductionCode,
		Description:    resp.Description,
		TotalPrice:     resp.TotalPrice,
		Currency:       resp.Currency,
		Selections:     payload.Selections,
	}, nil
}

// RefreshPrice re-queries the pricing source for an already-created variant.
// Same response shape as CreateVariant; the caller replaces the locally held
// price and description with the fresh values.
func (c *Client) RefreshPrice(ctx context.Context, referenceCode string) (*PriceRefresh, error) {
	var resp variantResponse
	body := map[string]string{"reference_code": referenceCode}
	if err := c.post(ctx, "/v1/variants/price-refresh", body, &resp); err != nil {
		return nil, err
	}
	return &PriceRefresh{
		TotalPrice:  resp.TotalPrice,
		Currency:    resp.Currency,
		Description: resp.Description,
	}, nil
}

// PriceRefresh is the subset of the variant response applied in place on
// a price refresh.
type PriceRefresh struct {
	TotalPrice  float64
	Currency    string
	Description string
}

// post issues one signed JSON request and decodes the response.
func (c *Client) post(ctx context.Context, path string, payload, dest interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Api-Key", c.apiKey)
	req.Header.Set("X-Signature", SignBody(c.secret, body))

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", types.ErrTransientNetwork, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%w: %v", types.ErrTransientNetwork, err)
	}

	switch {
	case resp.StatusCode >= 500:
		return fmt.Errorf("%w: pricing system returned %d", types.ErrTransientNetwork, resp.StatusCode)
	case resp.StatusCode >= 400:
		var er errorResponse
		if err := json.Unmarshal(respBody, &er); err != nil || er.Error == "" {
			return fmt.Errorf("%w: status %d", types.ErrSubmissionRejected, resp.StatusCode)
		}
		return fmt.Errorf("%w: %s", types.ErrSubmissionRejected, er.Error)
	}

	if err := json.Unmarshal(respBody, dest); err != nil {
		return fmt.Errorf("failed to decode pricing response: %w", err)
	}
	return nil
}
