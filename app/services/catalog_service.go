package services

import (
	"context"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/pkg/orm"
)

type CatalogService struct {
	products repositories.ProductRepository
}

func NewCatalogService(products repositories.ProductRepository) *CatalogService {
	return &CatalogService{products: products}
}

// PageMeta is the pagination block shown under a product listing.
type PageMeta struct {
	TotalProducts   int64 `json:"totalProducts"`
	CurrentPage     int   `json:"currentPage"`
	HasNextPage     bool  `json:"hasNextPage"`
	HasPreviousPage bool  `json:"hasPreviousPage"`
	NextPage        int   `json:"nextPage"`
	PreviousPage    int   `json:"previousPage"`
	LastPage        int   `json:"lastPage"`
}

type ProductPage struct {
	Products []models.Product `json:"prods"`
	Meta     PageMeta         `json:"pagination"`
}

// Page lists the whole catalogue, repositories.ProductsPerPage at a time.
func (s *CatalogService) Page(ctx context.Context, page int) (ProductPage, error) {
	return s.page(ctx, repositories.ProductFilter{}, page)
}

// AdminPage lists only the products userID created.
func (s *CatalogService) AdminPage(ctx context.Context, userID string, page int) (ProductPage, error) {
	return s.page(ctx, repositories.ProductFilter{UserID: userID}, page)
}

func (s *CatalogService) Product(ctx context.Context, id string) (models.Product, error) {
	return s.products.FindByID(ctx, id)
}

func (s *CatalogService) page(ctx context.Context, filter repositories.ProductFilter, page int) (ProductPage, error) {
	if page < 1 {
		page = 1
	}
	items, p, err := s.products.Page(ctx, filter, page, repositories.ProductsPerPage)
	if err != nil {
		return ProductPage{}, err
	}
	return ProductPage{Products: items, Meta: metaFrom(p)}, nil
}

func metaFrom(p orm.Pagination) PageMeta {
	return PageMeta{
		TotalProducts:   p.Total,
		CurrentPage:     p.Page,
		HasNextPage:     p.HasNext,
		HasPreviousPage: p.HasPrev,
		NextPage:        p.NextPage,
		PreviousPage:    p.PrevPage,
		LastPage:        p.LastPage,
	}
}
