package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/mobilyasoft/configurator/internal/core/session"
	"github.com/mobilyasoft/configurator/internal/types"
)

type createSessionRequest struct {
	ProductID string `json:"product_id"`
}

type selectRequest struct {
	SpecTypeID string `json:"spec_type_id"`
	OptionID   string `json:"option_id"`
}

type sessionResponse struct {
	SessionID  string             `json:"session_id"`
	State      string             `json:"state"`
	Evaluation session.Evaluation `json:"evaluation"`
}

type stateResponse struct {
	SessionID string         `json:"session_id"`
	State     string         `json:"state"`
	Variant   *types.Variant `json:"variant,omitempty"`
}

type submitResponse struct {
	Variant *types.Variant `json:"variant"`
	Warning string         `json:"warning,omitempty"`
}

type variantResponse struct {
	Variant   *types.Variant `json:"variant"`
	CreatedAt time.Time      `json:"created_at"`
}

// Health reports liveness.
func (s *ConfiguratorService) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// CreateSession starts a configuration session for a product.
// The session pins the current rule snapshot for its lifetime.
func (s *ConfiguratorService) CreateSession(c echo.Context) error {
	var req createSessionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}
	if req.ProductID == "" {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "product_id is required"})
	}

	product, err := s.store.GetCatalog(c.Request().Context(), types.ProductID(req.ProductID))
	if err != nil {
		return writeError(c, err)
	}

	id, eval := s.manager.Create(product, s.cache.Snapshot())
	return c.JSON(http.StatusCreated, sessionResponse{
		SessionID:  string(id),
		State:      string(session.StateEditing),
		Evaluation: eval,
	})
}

// GetSession returns the lifecycle state and variant of a session.
func (s *ConfiguratorService) GetSession(c echo.Context) error {
	id, err := types.ParseSessionID(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid session id"})
	}

	state, variant, err := s.manager.State(id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, stateResponse{
		SessionID: string(id),
		State:     string(state),
		Variant:   variant,
	})
}

// Select applies one selection change. An empty option_id clears the
// selection for that specification type.
func (s *ConfiguratorService) Select(c echo.Context) error {
	id, err := types.ParseSessionID(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid session id"})
	}

	var req selectRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}
	if req.SpecTypeID == "" {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "spec_type_id is required"})
	}

	eval, err := s.manager.Select(id, types.SpecTypeID(req.SpecTypeID), types.OptionID(req.OptionID))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, sessionResponse{
		SessionID:  string(id),
		State:      string(session.StateEditing),
		Evaluation: eval,
	})
}

// Reset clears all selections and returns the session to editing.
func (s *ConfiguratorService) Reset(c echo.Context) error {
	id, err := types.ParseSessionID(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid session id"})
	}

	eval, err := s.manager.Reset(id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, sessionResponse{
		SessionID:  string(id),
		State:      string(session.StateEditing),
		Evaluation: eval,
	})
}

// Evaluation returns the current evaluation without mutating the session.
func (s *ConfiguratorService) Evaluation(c echo.Context) error {
	id, err := types.ParseSessionID(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid session id"})
	}

	eval, err := s.manager.Evaluate(id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, eval)
}

// Preview asks the pricing system for an advisory check of the current
// selections without creating anything.
func (s *ConfiguratorService) Preview(c echo.Context) error {
	id, err := types.ParseSessionID(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid session id"})
	}

	resp, err := s.manager.Preview(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

// Submit creates the variant on the pricing system and locks the session.
// A data-quality violation still creates the record; the variant is
// returned flagged with a warning instead of a plain success.
func (s *ConfiguratorService) Submit(c echo.Context) error {
	id, err := types.ParseSessionID(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid session id"})
	}

	variant, err := s.manager.Submit(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, types.ErrDataQualityGuard) && variant != nil {
			return c.JSON(http.StatusCreated, submitResponse{
				Variant: variant,
				Warning: err.Error(),
			})
		}
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, submitResponse{Variant: variant})
}

// GetVariant returns a mirrored variant by id. The creation time is read
// from the UUIDv7 id rather than the audit columns, so the lookup stays a
// single row fetch.
func (s *ConfiguratorService) GetVariant(c echo.Context) error {
	id, err := types.ParseVariantID(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid variant id"})
	}

	variant, err := s.store.GetVariant(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, variantResponse{
		Variant:   variant,
		CreatedAt: types.VariantIDTime(variant.ID),
	})
}

// RefreshPrice re-reads the price for a submitted session's variant.
func (s *ConfiguratorService) RefreshPrice(c echo.Context) error {
	id, err := types.ParseSessionID(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid session id"})
	}

	variant, err := s.manager.RefreshPrice(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, submitResponse{Variant: variant})
}

// RefreshRules reloads the compiled rule snapshot from the database.
// Live sessions keep the snapshot they were created with.
func (s *ConfiguratorService) RefreshRules(c echo.Context) error {
	if err := s.cache.Refresh(c.Request().Context()); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]int{"rules": len(s.cache.Snapshot())})
}
