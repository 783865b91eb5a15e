package services

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/shashiranjanraj/storefront/app/apperr"
	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/pkg/logger"
	"github.com/shashiranjanraj/storefront/pkg/money"
	"github.com/shashiranjanraj/storefront/pkg/storage"
	"github.com/shashiranjanraj/storefront/pkg/validate"
)

// ProductInput is the admin product form.
type ProductInput struct {
	Title       string `json:"title"       validate:"required,min=3"`
	Price       string `json:"price"       validate:"required,decimal"`
	Description string `json:"description" validate:"required,between=5,400"`
}

// Upload is an image file received with the product form.
type Upload struct {
	Filename string
	Content  io.Reader
}

const imageDir = "images"

var allowedImageTypes = map[string]bool{"image/png": true, "image/jpeg": true}

// ProductService is the admin side of the catalogue. Every mutation is
// scoped to the admin who created the product.
type ProductService struct {
	products repositories.ProductRepository
	disk     storage.Disk
	now      func() time.Time
}

func NewProductService(products repositories.ProductRepository, disk storage.Disk) *ProductService {
	return &ProductService{products: products, disk: disk, now: time.Now}
}

// Create stores a new product owned by userID. An image is required.
func (s *ProductService) Create(ctx context.Context, userID string, in ProductInput, img *Upload) (models.Product, error) {
	if img == nil {
		return models.Product{}, apperr.Invalid("image", "Attached file is not an image.")
	}
	price, err := checkProduct(in)
	if err != nil {
		return models.Product{}, err
	}

	imagePath, err := s.storeImage(ctx, img)
	if err != nil {
		return models.Product{}, err
	}

	p := models.Product{
		Title:       strings.TrimSpace(in.Title),
		Price:       price,
		Description: strings.TrimSpace(in.Description),
		ImagePath:   imagePath,
		UserID:      userID,
	}
	if err := s.products.Create(ctx, &p); err != nil {
		s.removeImage(ctx, imagePath)
		return models.Product{}, err
	}
	return p, nil
}

// ForEdit loads id for its owner.
func (s *ProductService) ForEdit(ctx context.Context, userID, id string) (models.Product, error) {
	p, err := s.products.FindByID(ctx, id)
	if err != nil {
		return models.Product{}, err
	}
	if p.UserID != userID {
		return models.Product{}, apperr.ErrForbidden
	}
	return p, nil
}

// Update rewrites id's fields. When img is set the new file replaces the old
// one, which is removed only after the record is saved.
func (s *ProductService) Update(ctx context.Context, userID, id string, in ProductInput, img *Upload) (models.Product, error) {
	p, err := s.ForEdit(ctx, userID, id)
	if err != nil {
		return models.Product{}, err
	}
	price, err := checkProduct(in)
	if err != nil {
		return models.Product{}, err
	}

	oldImage := p.ImagePath
	if img != nil {
		if p.ImagePath, err = s.storeImage(ctx, img); err != nil {
			return models.Product{}, err
		}
	}
	p.Title = strings.TrimSpace(in.Title)
	p.Price = price
	p.Description = strings.TrimSpace(in.Description)
	p.UpdatedAt = s.now().UTC()

	if err := s.products.Update(ctx, &p); err != nil {
		if img != nil {
			s.removeImage(ctx, p.ImagePath)
		}
		return models.Product{}, err
	}
	if img != nil {
		s.removeImage(ctx, oldImage)
	}
	return p, nil
}

// Delete removes id and its image. Past orders keep their snapshots.
func (s *ProductService) Delete(ctx context.Context, userID, id string) error {
	p, err := s.products.DeleteOwned(ctx, id, userID)
	if err != nil {
		return err
	}
	s.removeImage(ctx, p.ImagePath)
	return nil
}

func checkProduct(in ProductInput) (string, error) {
	if errs := validate.Struct(in); validate.HasErrors(errs) {
		return "", &apperr.ValidationError{Fields: errs}
	}
	price, err := money.Normalize(in.Price)
	if err != nil {
		return "", apperr.Invalid("price", "The price must be a valid amount.")
	}
	return price, nil
}

// storeImage sniffs the upload and writes it under images/. Only PNG and
// JPEG are accepted.
func (s *ProductService) storeImage(ctx context.Context, img *Upload) (string, error) {
	br := bufio.NewReaderSize(img.Content, 512)
	head, err := br.Peek(512)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return "", fmt.Errorf("product image: %w", err)
	}
	if !allowedImageTypes[http.DetectContentType(head)] {
		return "", apperr.Invalid("image", "Attached file is not an image.")
	}

	name := path.Base(strings.ReplaceAll(img.Filename, "\\", "/"))
	name = strings.ReplaceAll(strings.TrimSpace(name), " ", "-")
	if name == "" || name == "." || name == "/" {
		name = "image"
	}
	p := fmt.Sprintf("%s/%d-%s", imageDir, s.now().UnixMilli(), name)

	if err := s.disk.PutStream(ctx, p, br); err != nil {
		return "", fmt.Errorf("product image %s: %v: %w", p, err, apperr.ErrStorage)
	}
	return p, nil
}

// removeImage is best effort; a leftover file is logged, not fatal.
func (s *ProductService) removeImage(ctx context.Context, p string) {
	if p == "" {
		return
	}
	if err := s.disk.Delete(ctx, p); err != nil {
		logger.WithCtx(ctx).Warn("product image not removed", "path", p, "error", err)
	}
}
