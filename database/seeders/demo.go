package seeders

import (
	"context"
	"errors"
	"fmt"

	"github.com/shashiranjanraj/storefront/app/apperr"
	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/config"
	"github.com/shashiranjanraj/storefront/pkg/auth"
)

func init() {
	Register("demo_admin", SeedAdmin)
	Register("demo_products", SeedProducts)
}

// AdminEmail owns the demo catalogue.
const AdminEmail = "admin@storefront.local"

var demoProducts = []models.Product{
	{Title: "Enamel Camp Mug", Price: "12.50", Description: "A speckled steel mug that survives campfires and dishwashers alike.", ImagePath: "images/demo-mug.png"},
	{Title: "Linen Tea Towel", Price: "9.00", Description: "Stonewashed linen towel, dries glasses without leaving lint behind.", ImagePath: "images/demo-towel.png"},
	{Title: "Cast Iron Skillet", Price: "39.99", Description: "Pre-seasoned ten inch skillet for searing, baking and everything in between.", ImagePath: "images/demo-skillet.png"},
	{Title: "Pour Over Kettle", Price: "45.00", Description: "Gooseneck kettle with a built-in thermometer for precise brewing.", ImagePath: "images/demo-kettle.png"},
	{Title: "Oak Cutting Board", Price: "28.00", Description: "End-grain oak board finished with food safe mineral oil.", ImagePath: "images/demo-board.png"},
}

// SeedAdmin creates the demo admin unless the email is already taken.
// The password comes from SEED_ADMIN_PASSWORD.
func SeedAdmin(ctx context.Context, repos repositories.Set) error {
	_, err := repos.Users.FindByEmail(ctx, AdminEmail)
	if err == nil {
		return nil
	}
	if !errors.Is(err, apperr.ErrNotFound) {
		return err
	}

	hash, err := auth.HashPassword(config.Get("SEED_ADMIN_PASSWORD", "admin123"))
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	admin := &models.User{
		Name:     "Store Admin",
		Email:    AdminEmail,
		Password: hash,
		Role:     models.RoleAdmin,
	}
	admin.Cart.Clear()
	return repos.Users.Create(ctx, admin)
}

// SeedProducts adds the demo catalogue owned by the demo admin. Titles that
// already exist are skipped.
func SeedProducts(ctx context.Context, repos repositories.Set) error {
	admin, err := repos.Users.FindByEmail(ctx, AdminEmail)
	if err != nil {
		return fmt.Errorf("demo admin: %w", err)
	}

	for _, p := range demoProducts {
		p.UserID = admin.ID
		if err := repos.Products.Create(ctx, &p); err != nil && !errors.Is(err, apperr.ErrConflict) {
			return err
		}
	}
	return nil
}
