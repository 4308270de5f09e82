package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/shopease/shopease-backend/api/responses"
	"github.com/shopease/shopease-backend/api/validators"
	"github.com/shopease/shopease-backend/internal/cart"
	productsvc "github.com/shopease/shopease-backend/internal/products"
	pkgerrors "github.com/shopease/shopease-backend/pkg/errors"
	"github.com/shopease/shopease-backend/pkg/logger"
	"github.com/shopease/shopease-backend/pkg/types"
)

type cartLineResponse struct {
	ProductID uuid.UUID `json:"product_id"`
	Name      string    `json:"name"`
	UnitPrice string    `json:"unit_price"`
	ImageURL  string    `json:"image_url,omitempty"`
	Quantity  int       `json:"quantity"`
	Subtotal  string    `json:"subtotal"`
}

type cartResponse struct {
	Lines      []cartLineResponse `json:"lines"`
	ItemCount  int                `json:"item_count"`
	Total      string             `json:"total"`
	TotalPaise int64              `json:"total_paise"`
}

func toCartResponse(store *cart.Store) cartResponse {
	lines := store.Lines()
	out := make([]cartLineResponse, 0, len(lines))
	for _, line := range lines {
		out = append(out, cartLineResponse{
			ProductID: line.ProductID,
			Name:      line.Name,
			UnitPrice: types.RupeesFromPaise(line.UnitPricePaise),
			ImageURL:  line.ImageURL,
			Quantity:  line.Quantity,
			Subtotal:  types.RupeesFromPaise(line.SubtotalPaise()),
		})
	}
	total := store.TotalPaise()
	return cartResponse{
		Lines:      out,
		ItemCount:  store.Count(),
		Total:      types.RupeesFromPaise(total),
		TotalPaise: total,
	}
}

type addCartItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,min=1"`
}

type updateCartItemRequest struct {
	Quantity int `json:"quantity" validate:"gte=0"`
}

// CartFetch returns the scope's cart.
func CartFetch(carts *cart.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope, err := cartScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		store, err := carts.Get(r.Context(), scope)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart"))
			return
		}
		responses.WriteSuccess(w, toCartResponse(store))
	}
}

// CartAdd puts a product into the cart. The listing's current price and name
// are captured on the line; re-adding refreshes them.
func CartAdd(carts *cart.Manager, products productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope, err := cartScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload addCartItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := products.Get(r.Context(), payload.ProductID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if !product.IsActive {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "product not found"))
			return
		}
		if !product.InStock {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeConflict, "product is out of stock"))
			return
		}

		line := cart.Line{
			ProductID:      product.ID,
			Name:           product.Name,
			UnitPricePaise: product.PricePaise,
			Quantity:       payload.Quantity,
		}
		if product.ImageURL != nil {
			line.ImageURL = *product.ImageURL
		}

		store, err := carts.Add(r.Context(), scope, line)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "add to cart"))
			return
		}
		responses.WriteSuccess(w, toCartResponse(store))
	}
}

// CartUpdateItem sets a line's quantity. Zero removes the line; a product
// not in the cart is left untouched.
func CartUpdateItem(carts *cart.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope, err := cartScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID, err := uuidParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateCartItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		store, err := carts.SetQuantity(r.Context(), scope, productID, payload.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update cart"))
			return
		}
		responses.WriteSuccess(w, toCartResponse(store))
	}
}

// CartRemoveItem deletes a line.
func CartRemoveItem(carts *cart.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope, err := cartScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID, err := uuidParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		store, err := carts.Remove(r.Context(), scope, productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update cart"))
			return
		}
		responses.WriteSuccess(w, toCartResponse(store))
	}
}

// CartClear empties the cart.
func CartClear(carts *cart.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope, err := cartScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := carts.Clear(r.Context(), scope); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart"))
			return
		}

		store, err := carts.Get(r.Context(), scope)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart"))
			return
		}
		responses.WriteSuccess(w, toCartResponse(store))
	}
}
