package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/metinatakli/storefront/api"
	"github.com/metinatakli/storefront/internal/basket"
	"github.com/metinatakli/storefront/internal/domain"
)

func (app *Application) GetBasket(w http.ResponseWriter, r *http.Request) {
	basketID := app.sessionManager.Token(r.Context())

	view, err := app.baskets.View(r.Context(), basketID)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	app.writeBasket(w, r, view)
}

func (app *Application) ClearBasket(w http.ResponseWriter, r *http.Request) {
	basketID := app.sessionManager.Token(r.Context())

	err := app.baskets.Clear(r.Context(), basketID)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (app *Application) AddBasketItem(w http.ResponseWriter, r *http.Request) {
	logger := app.contextGetLogger(r)

	var input api.AddBasketItemRequest

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.validator.Struct(input)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	product, err := app.productRepo.GetById(r.Context(), input.ProductId)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRecordNotFound):
			logger.Warn("basket add rejected: unknown product", "product_id", input.ProductId)
			app.notFoundResponseWithErr(w, r, fmt.Errorf("product %s not found", input.ProductId))
		default:
			app.serverErrorResponse(w, r, err)
		}

		return
	}

	quantity := 1
	if input.Quantity != nil {
		quantity = *input.Quantity
	}

	basketID := app.sessionManager.Token(r.Context())

	view, err := app.baskets.Add(r.Context(), basketID, product.ToItem(), quantity)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrBasketFull):
			logger.Warn("basket add rejected: basket is full", "product_id", input.ProductId, "quantity", quantity)
			app.fieldErrorResponse(w, r, "Quantity", fmt.Sprintf("basket can hold at most %d items", domain.MaxBasketItems))
		case errors.Is(err, domain.ErrEditConflict):
			app.editConflictResponseWithErr(w, r, err)
		default:
			app.serverErrorResponse(w, r, err)
		}

		return
	}

	app.writeBasket(w, r, view)
}

func (app *Application) RemoveBasketItem(
	w http.ResponseWriter,
	r *http.Request,
	productId string,
	params api.RemoveBasketItemParams) {

	all := params.All != nil && *params.All
	basketID := app.sessionManager.Token(r.Context())

	view, err := app.baskets.Remove(r.Context(), basketID, productId, all)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrItemNotInBasket):
			app.notFoundResponseWithErr(w, r, fmt.Errorf("product %s is not in the basket", productId))
		case errors.Is(err, domain.ErrEditConflict):
			app.editConflictResponseWithErr(w, r, err)
		default:
			app.serverErrorResponse(w, r, err)
		}

		return
	}

	app.writeBasket(w, r, view)
}

func (app *Application) writeBasket(w http.ResponseWriter, r *http.Request, view basket.View) {
	resp := api.BasketResponse{
		Basket: toApiBasket(view, app.config.Checkout.Currency),
	}

	err := app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// observeBasket is subscribed to the basket store.
func (app *Application) observeBasket(ctx context.Context, view basket.View) {
	app.serverMetrics.BasketSize.Observe(float64(len(view.Items)))

	app.loggerFromContext(ctx).Debug("basket updated",
		"basket_id", view.ID,
		"items", len(view.Items),
		"groups", view.Groups.Len(),
		"total", view.Total.String(),
	)
}

func toApiBasket(view basket.View, currency string) api.Basket {
	items := make([]api.Item, len(view.Items))
	for i, item := range view.Items {
		items[i] = toApiItem(item)
	}

	groups := view.Groups.Groups()
	apiGroups := make([]api.BasketGroup, len(groups))

	for i, group := range groups {
		representative := group.Representative()

		apiGroups[i] = api.BasketGroup{
			ProductId: group.ProductID,
			Name:      representative.Name,
			UnitPrice: representative.Price,
			Quantity:  group.Quantity(),
			Subtotal:  group.Subtotal(),
		}

		if representative.Image != "" {
			apiGroups[i].Image = &representative.Image
		}
	}

	return api.Basket{
		Items:     items,
		Groups:    apiGroups,
		ItemCount: len(view.Items),
		Total:     view.Total,
		Currency:  currency,
	}
}

func toApiItem(item domain.Item) api.Item {
	apiItem := api.Item{
		Id:    item.ProductID,
		Name:  &item.Name,
		Price: &item.Price,
	}

	if item.Image != "" {
		apiItem.Image = &item.Image
	}

	return apiItem
}
