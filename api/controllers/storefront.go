package controllers

import (
	"context"
	"net/http"

	"github.com/angelmondragon/catalogcart/api/middleware"
	"github.com/angelmondragon/catalogcart/api/responses"
	"github.com/angelmondragon/catalogcart/api/validators"
	"github.com/angelmondragon/catalogcart/internal/filter"
	"github.com/angelmondragon/catalogcart/internal/storefront"
	pkgerrors "github.com/angelmondragon/catalogcart/pkg/errors"
	"github.com/angelmondragon/catalogcart/pkg/logger"
)

// SessionProvider resolves the storefront session bound to a request.
type SessionProvider interface {
	Session(ctx context.Context, id string) (*storefront.Session, error)
}

func sessionFor(r *http.Request, sessions SessionProvider) (*storefront.Session, error) {
	if sessions == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "storefront unavailable")
	}
	id := middleware.SessionIDFromContext(r.Context())
	if id == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session id missing")
	}
	return sessions.Session(r.Context(), id)
}

// sessionHandler resolves the session and hands it to fn; errors from either are written
// as error envelopes.
func sessionHandler(sessions SessionProvider, logg *logger.Logger, fn func(*http.Request, *storefront.Session) (any, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := sessionFor(r, sessions)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		payload, err := fn(r, session)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, payload)
	}
}

func StorefrontView(sessions SessionProvider, logg *logger.Logger) http.HandlerFunc {
	return sessionHandler(sessions, logg, func(_ *http.Request, s *storefront.Session) (any, error) {
		return s.View(), nil
	})
}

func StorefrontSelectCategory(sessions SessionProvider, logg *logger.Logger) http.HandlerFunc {
	return sessionHandler(sessions, logg, func(r *http.Request, s *storefront.Session) (any, error) {
		id, err := validators.PathInt(r, "categoryId")
		if err != nil {
			return nil, err
		}
		if err := s.SelectCategory(id); err != nil {
			return nil, err
		}
		return s.View(), nil
	})
}

func StorefrontToggleCategory(sessions SessionProvider, logg *logger.Logger) http.HandlerFunc {
	return sessionHandler(sessions, logg, func(r *http.Request, s *storefront.Session) (any, error) {
		id, err := validators.PathInt(r, "categoryId")
		if err != nil {
			return nil, err
		}
		if _, err := s.ToggleCategory(id); err != nil {
			return nil, err
		}
		return s.View(), nil
	})
}

func StorefrontClearSelection(sessions SessionProvider, logg *logger.Logger) http.HandlerFunc {
	return sessionHandler(sessions, logg, func(_ *http.Request, s *storefront.Session) (any, error) {
		s.ClearSelection()
		return s.View(), nil
	})
}

type updateFiltersRequest struct {
	Availability *string `json:"availability" validate:"omitempty,max=8"`
	PriceBand    *string `json:"price_band" validate:"omitempty,max=32"`
	SortByStock  *bool   `json:"sort_by_stock"`
}

// StorefrontUpdateFilters applies the fields present in the body; absent fields keep their
// current value.
func StorefrontUpdateFilters(sessions SessionProvider, logg *logger.Logger) http.HandlerFunc {
	return sessionHandler(sessions, logg, func(r *http.Request, s *storefront.Session) (any, error) {
		var payload updateFiltersRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			return nil, err
		}
		update := storefront.FilterUpdate{
			Availability: payload.Availability,
			SortByStock:  payload.SortByStock,
		}
		if payload.PriceBand != nil {
			band := filter.PriceBand(*payload.PriceBand)
			update.PriceBand = &band
		}
		if err := s.UpdateFilters(update); err != nil {
			return nil, err
		}
		return s.View(), nil
	})
}
