package controllers

import (
	"errors"
	"net/http"

	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/pkg/ctx"
)

type editProductInput struct {
	ProductID   string `json:"productId"   validate:"required"`
	Title       string `json:"title"       validate:"required,min=3"`
	Price       string `json:"price"       validate:"required,decimal"`
	Description string `json:"description" validate:"required,between=5,400"`
}

// AdminController manages the products an admin created.
type AdminController struct {
	catalog  Catalog
	products Products
}

func NewAdminController(catalog Catalog, products Products) *AdminController {
	return &AdminController{catalog: catalog, products: products}
}

// Products handles GET /admin/products?page=N.
func (h *AdminController) Products(c *ctx.Context) {
	page, err := h.catalog.AdminPage(c.Context(), c.UserID(), c.QueryInt("page", 1))
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(page)
}

// Add handles POST /admin/add-product (multipart, "image" file part).
func (h *AdminController) Add(c *ctx.Context) {
	var in services.ProductInput
	if !c.Bind(&in) {
		return
	}
	img, closeImg, ok := h.upload(c)
	if !ok {
		return
	}
	defer closeImg()

	p, err := h.products.Create(c.Context(), c.UserID(), in, img)
	if err != nil {
		fail(c, err)
		return
	}
	c.Created(p)
}

// Edit handles GET /admin/edit-product/{productId}.
func (h *AdminController) Edit(c *ctx.Context) {
	p, err := h.products.ForEdit(c.Context(), c.UserID(), c.Param("productId"))
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(p)
}

// Update handles POST /admin/edit-product. The image part is optional.
func (h *AdminController) Update(c *ctx.Context) {
	var in editProductInput
	if !c.Bind(&in) {
		return
	}
	img, closeImg, ok := h.upload(c)
	if !ok {
		return
	}
	defer closeImg()

	p, err := h.products.Update(c.Context(), c.UserID(), in.ProductID, services.ProductInput{
		Title:       in.Title,
		Price:       in.Price,
		Description: in.Description,
	}, img)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(p)
}

// Delete handles DELETE /admin/products/{productId}.
func (h *AdminController) Delete(c *ctx.Context) {
	if err := h.products.Delete(c.Context(), c.UserID(), c.Param("productId")); err != nil {
		fail(c, err)
		return
	}
	c.Message("Success!", nil)
}

// upload returns the "image" part, or nil when none was sent.
func (h *AdminController) upload(c *ctx.Context) (*services.Upload, func(), bool) {
	noop := func() {}
	if c.R.MultipartForm == nil {
		return nil, noop, true
	}
	file, header, err := c.R.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, noop, true
	}
	if err != nil {
		c.Error(http.StatusBadRequest, "invalid image upload")
		return nil, noop, false
	}
	return &services.Upload{Filename: header.Filename, Content: file}, func() { file.Close() }, true
}
