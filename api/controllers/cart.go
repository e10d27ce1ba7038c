package controllers

import (
	"net/http"

	"github.com/angelmondragon/catalogcart/api/validators"
	"github.com/angelmondragon/catalogcart/internal/storefront"
	"github.com/angelmondragon/catalogcart/pkg/logger"
)

const maxProductIDLen = 64

type cartResponse struct {
	storefront.CartView
	Open bool `json:"open"`
}

type checkoutResponse struct {
	Items      []storefront.CartRow `json:"items"`
	TotalItems int                  `json:"total_items"`
	Subtotal   string               `json:"subtotal"`
	Unpriced   int                  `json:"unpriced_items"`
}

func cartPayload(s *storefront.Session) cartResponse {
	return cartResponse{CartView: s.Cart(), Open: s.CartOpen()}
}

func CartGet(sessions SessionProvider, logg *logger.Logger) http.HandlerFunc {
	return sessionHandler(sessions, logg, func(_ *http.Request, s *storefront.Session) (any, error) {
		return cartPayload(s), nil
	})
}

type cartMutation func(s *storefront.Session, r *http.Request, productID string) error

func cartItemHandler(sessions SessionProvider, logg *logger.Logger, mutate cartMutation) http.HandlerFunc {
	return sessionHandler(sessions, logg, func(r *http.Request, s *storefront.Session) (any, error) {
		productID, err := validators.PathString(r, "productId", maxProductIDLen)
		if err != nil {
			return nil, err
		}
		if err := mutate(s, r, productID); err != nil {
			return nil, err
		}
		return cartPayload(s), nil
	})
}

func CartAddItem(sessions SessionProvider, logg *logger.Logger) http.HandlerFunc {
	return cartItemHandler(sessions, logg, func(s *storefront.Session, r *http.Request, id string) error {
		return s.AddToCart(r.Context(), id)
	})
}

func CartIncrementItem(sessions SessionProvider, logg *logger.Logger) http.HandlerFunc {
	return cartItemHandler(sessions, logg, func(s *storefront.Session, r *http.Request, id string) error {
		return s.IncrementItem(r.Context(), id)
	})
}

func CartDecrementItem(sessions SessionProvider, logg *logger.Logger) http.HandlerFunc {
	return cartItemHandler(sessions, logg, func(s *storefront.Session, r *http.Request, id string) error {
		return s.DecrementItem(r.Context(), id)
	})
}

func CartRemoveItem(sessions SessionProvider, logg *logger.Logger) http.HandlerFunc {
	return cartItemHandler(sessions, logg, func(s *storefront.Session, r *http.Request, id string) error {
		return s.RemoveItem(r.Context(), id)
	})
}

// CartCheckout empties the cart and returns the receipt.
func CartCheckout(sessions SessionProvider, logg *logger.Logger) http.HandlerFunc {
	return sessionHandler(sessions, logg, func(r *http.Request, s *storefront.Session) (any, error) {
		receipt, err := s.Checkout(r.Context())
		if err != nil {
			return nil, err
		}
		items := make([]storefront.CartRow, 0, len(receipt.Entries))
		for _, e := range receipt.Entries {
			items = append(items, storefront.CartRow{Product: e.Product, Quantity: e.Quantity})
		}
		if logg != nil {
			ctx := logg.WithFields(r.Context(), map[string]any{"total_items": receipt.TotalItems, "lines": len(items)})
			logg.Info(ctx, "cart.checkout")
		}
		return checkoutResponse{
			Items:      items,
			TotalItems: receipt.TotalItems,
			Subtotal:   receipt.Subtotal.StringFixed(2),
			Unpriced:   receipt.Unpriced,
		}, nil
	})
}

func CartTogglePanel(sessions SessionProvider, logg *logger.Logger) http.HandlerFunc {
	return sessionHandler(sessions, logg, func(_ *http.Request, s *storefront.Session) (any, error) {
		return map[string]bool{"open": s.ToggleCart()}, nil
	})
}

func CartClosePanel(sessions SessionProvider, logg *logger.Logger) http.HandlerFunc {
	return sessionHandler(sessions, logg, func(_ *http.Request, s *storefront.Session) (any, error) {
		s.CloseCart()
		return map[string]bool{"open": false}, nil
	})
}
