package app

import (
	"net/http"

	"github.com/metinatakli/storefront/api"
	"github.com/metinatakli/storefront/internal/domain"
)

func (app *Application) GetProducts(w http.ResponseWriter, r *http.Request) {
	products, err := app.productRepo.GetAll(r.Context())
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	resp := api.ProductListResponse{
		Products: make([]api.Product, len(products)),
	}

	for i, p := range products {
		resp.Products[i] = toApiProduct(p)
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func toApiProduct(p domain.Product) api.Product {
	product := api.Product{
		Id:    p.ID,
		Name:  p.Name,
		Price: p.Price,
	}

	if p.Image != "" {
		product.Image = &p.Image
	}

	return product
}
