package controllers

import (
	"net/http"
	"time"

	"github.com/angelmondragon/catalogcart/api/responses"
	"github.com/angelmondragon/catalogcart/api/validators"
	"github.com/angelmondragon/catalogcart/internal/catalog"
	"github.com/angelmondragon/catalogcart/internal/filter"
	pkgerrors "github.com/angelmondragon/catalogcart/pkg/errors"
	"github.com/angelmondragon/catalogcart/pkg/logger"
	"github.com/angelmondragon/catalogcart/pkg/metrics"
)

type productsResponse struct {
	Products []*catalog.Product `json:"products"`
	Total    int                `json:"total"`
	Filters  productsFilters    `json:"filters"`
}

type productsFilters struct {
	CategoryID   *int             `json:"category_id"`
	Availability string           `json:"availability"`
	PriceBand    filter.PriceBand `json:"price_band"`
	SortByStock  bool             `json:"sort_by_stock"`
}

// CatalogCategories returns the full category tree.
func CatalogCategories(cat *catalog.Catalog, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cat == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog unavailable"))
			return
		}
		responses.WriteSuccess(w, map[string]any{"categories": cat.Categories()})
	}
}

// CatalogProducts filters the catalog without touching any session state.
func CatalogProducts(cat *catalog.Catalog, sm *metrics.StorefrontMetrics, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cat == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog unavailable"))
			return
		}

		categoryID, err := validators.ParseOptionalQueryInt(r, "category_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		availability, err := filter.ParseAvailability(r.URL.Query().Get("availability"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid availability").WithDetails(map[string]any{"field": "availability"}))
			return
		}
		sortByStock, err := validators.ParseQueryBool(r, "sort_by_stock", false)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		band := filter.NormalizeBand(r.URL.Query().Get("price"))

		criteria := filter.Criteria{
			Availability: availability,
			PriceRange:   band.Range(),
			SortByStock:  sortByStock,
		}
		if categoryID != nil {
			node, ok := cat.Category(*categoryID)
			if !ok {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "category not found").WithDetails(map[string]any{"category_id": *categoryID}))
				return
			}
			criteria.Category = node
		}

		started := time.Now()
		products := filter.Apply(cat.Products(), criteria)
		sm.ObserveFilter(time.Since(started), len(products))

		responses.WriteSuccess(w, productsResponse{
			Products: products,
			Total:    len(products),
			Filters: productsFilters{
				CategoryID:   categoryID,
				Availability: filter.FormatAvailability(availability),
				PriceBand:    band,
				SortByStock:  sortByStock,
			},
		})
	}
}
