// Package graphql exposes the catalogue as a read-only GraphQL schema.
package graphql

import (
	"context"
	"errors"

	gql "github.com/graphql-go/graphql"

	"github.com/shashiranjanraj/storefront/app/apperr"
	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/services"
	gqlhttp "github.com/shashiranjanraj/storefront/pkg/graphql"
)

// Catalog is the read side the schema resolves against.
type Catalog interface {
	Page(ctx context.Context, page int) (services.ProductPage, error)
	Product(ctx context.Context, id string) (models.Product, error)
}

var productType = gql.NewObject(gql.ObjectConfig{
	Name: "Product",
	Fields: gql.Fields{
		"id":          &gql.Field{Type: gql.NewNonNull(gql.ID)},
		"title":       &gql.Field{Type: gql.NewNonNull(gql.String)},
		"price":       &gql.Field{Type: gql.NewNonNull(gql.String)},
		"description": &gql.Field{Type: gql.String},
		"imageUrl":    &gql.Field{Type: gql.String},
	},
})

var pageInfoType = gql.NewObject(gql.ObjectConfig{
	Name: "PageInfo",
	Fields: gql.Fields{
		"totalProducts":   &gql.Field{Type: gql.Int},
		"currentPage":     &gql.Field{Type: gql.Int},
		"hasNextPage":     &gql.Field{Type: gql.Boolean},
		"hasPreviousPage": &gql.Field{Type: gql.Boolean},
		"nextPage":        &gql.Field{Type: gql.Int},
		"previousPage":    &gql.Field{Type: gql.Int},
		"lastPage":        &gql.Field{Type: gql.Int},
	},
})

var productPageType = gql.NewObject(gql.ObjectConfig{
	Name: "ProductPage",
	Fields: gql.Fields{
		"items": &gql.Field{
			Type: gql.NewList(productType),
			Resolve: func(p gql.ResolveParams) (interface{}, error) {
				return p.Source.(services.ProductPage).Products, nil
			},
		},
		"pageInfo": &gql.Field{
			Type: pageInfoType,
			Resolve: func(p gql.ResolveParams) (interface{}, error) {
				m := p.Source.(services.ProductPage).Meta
				return map[string]interface{}{
					"totalProducts":   int(m.TotalProducts),
					"currentPage":     m.CurrentPage,
					"hasNextPage":     m.HasNextPage,
					"hasPreviousPage": m.HasPreviousPage,
					"nextPage":        m.NextPage,
					"previousPage":    m.PreviousPage,
					"lastPage":        m.LastPage,
				}, nil
			},
		},
	},
})

// NewSchema builds the catalogue schema:
//
//	{ products(page: 2) { items { id title price } pageInfo { hasNextPage } } }
//	{ product(id: "...") { title description } }
func NewSchema(catalog Catalog) (gql.Schema, error) {
	query := gql.NewObject(gql.ObjectConfig{
		Name: "Query",
		Fields: gql.Fields{
			"products": &gql.Field{
				Type: productPageType,
				Args: gql.FieldConfigArgument{
					"page": &gql.ArgumentConfig{Type: gql.Int, DefaultValue: 1},
				},
				Resolve: func(p gql.ResolveParams) (interface{}, error) {
					page, _ := p.Args["page"].(int)
					result, err := catalog.Page(p.Context, page)
					if err != nil {
						return nil, err
					}
					return result, nil
				},
			},
			"product": &gql.Field{
				Type: productType,
				Args: gql.FieldConfigArgument{
					"id": &gql.ArgumentConfig{Type: gql.NewNonNull(gql.ID)},
				},
				Resolve: func(p gql.ResolveParams) (interface{}, error) {
					id, _ := p.Args["id"].(string)
					product, err := catalog.Product(p.Context, id)
					if errors.Is(err, apperr.ErrNotFound) {
						return nil, nil
					}
					if err != nil {
						return nil, err
					}
					return product, nil
				},
			},
		},
	})
	return gqlhttp.NewSchema(query)
}
