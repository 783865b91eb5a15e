package controllers

import (
	"github.com/shashiranjanraj/storefront/pkg/ctx"
)

// ShopController serves the public catalogue.
type ShopController struct {
	catalog Catalog
}

func NewShopController(catalog Catalog) *ShopController {
	return &ShopController{catalog: catalog}
}

// Index handles GET / and GET /products?page=N.
func (h *ShopController) Index(c *ctx.Context) {
	page, err := h.catalog.Page(c.Context(), c.QueryInt("page", 1))
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(page)
}

// Product handles GET /products/{productId}.
func (h *ShopController) Product(c *ctx.Context) {
	p, err := h.catalog.Product(c.Context(), c.Param("productId"))
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(p)
}
