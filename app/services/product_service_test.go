package services

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/storefront/app/apperr"
)

var pngBytes = append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 32)...)

func pngUpload(name string) *Upload {
	return &Upload{Filename: name, Content: bytes.NewReader(pngBytes)}
}

func newProductService(products *fakeProducts, disk *fakeDisk) *ProductService {
	svc := NewProductService(products, disk)
	svc.now = func() time.Time { return time.UnixMilli(1700000000000) }
	return svc
}

var validInput = ProductInput{Title: "A Book", Price: "12.5", Description: "A fine book to read"}

func TestCreateProduct(t *testing.T) {
	products, disk := newFakeProducts(), newFakeDisk()
	svc := newProductService(products, disk)

	p, err := svc.Create(context.Background(), "admin", validInput, pngUpload("my cover.png"))
	require.NoError(t, err)

	assert.NotEmpty(t, p.ID)
	assert.Equal(t, "12.50", p.Price)
	assert.Equal(t, "admin", p.UserID)
	assert.Equal(t, "images/1700000000000-my-cover.png", p.ImagePath)

	stored, err := disk.Get(context.Background(), p.ImagePath)
	require.NoError(t, err)
	assert.Equal(t, pngBytes, stored)
}

func TestCreateProductRejectsNonImage(t *testing.T) {
	disk := newFakeDisk()
	svc := newProductService(newFakeProducts(), disk)

	_, err := svc.Create(context.Background(), "admin", validInput,
		&Upload{Filename: "evil.png", Content: strings.NewReader("#!/bin/sh\necho hi\n")})

	var verr *apperr.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "image")
	assert.Zero(t, disk.count())
}

func TestCreateProductRequiresImage(t *testing.T) {
	svc := newProductService(newFakeProducts(), newFakeDisk())
	_, err := svc.Create(context.Background(), "admin", validInput, nil)

	var verr *apperr.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "image")
}

func TestCreateProductValidation(t *testing.T) {
	svc := newProductService(newFakeProducts(), newFakeDisk())

	_, err := svc.Create(context.Background(), "admin",
		ProductInput{Title: "ab", Price: "cheap", Description: "tiny"}, pngUpload("a.png"))

	var verr *apperr.ValidationError
	require.ErrorAs(t, err, &verr)
	for _, field := range []string{"title", "price", "description"} {
		assert.Contains(t, verr.Fields, field)
	}
}

func TestUpdateProductReplacesImage(t *testing.T) {
	products, disk := newFakeProducts(), newFakeDisk()
	svc := newProductService(products, disk)
	ctx := context.Background()

	p, err := svc.Create(ctx, "admin", validInput, pngUpload("old.png"))
	require.NoError(t, err)
	svc.now = func() time.Time { return time.UnixMilli(1700000009999) }

	in := validInput
	in.Title = "A Better Book"
	updated, err := svc.Update(ctx, "admin", p.ID, in, pngUpload("new.png"))
	require.NoError(t, err)

	assert.Equal(t, "A Better Book", updated.Title)
	assert.Equal(t, "images/1700000009999-new.png", updated.ImagePath)
	assert.False(t, disk.Exists(ctx, p.ImagePath))
	assert.True(t, disk.Exists(ctx, updated.ImagePath))
}

func TestUpdateProductWithoutImageKeepsOld(t *testing.T) {
	products, disk := newFakeProducts(), newFakeDisk()
	svc := newProductService(products, disk)
	ctx := context.Background()

	p, err := svc.Create(ctx, "admin", validInput, pngUpload("old.png"))
	require.NoError(t, err)

	updated, err := svc.Update(ctx, "admin", p.ID, validInput, nil)
	require.NoError(t, err)
	assert.Equal(t, p.ImagePath, updated.ImagePath)
	assert.True(t, disk.Exists(ctx, p.ImagePath))
}

func TestUpdateProductFailureRemovesNewImage(t *testing.T) {
	products, disk := newFakeProducts(), newFakeDisk()
	svc := newProductService(products, disk)
	ctx := context.Background()

	p, err := svc.Create(ctx, "admin", validInput, pngUpload("old.png"))
	require.NoError(t, err)
	products.updateErr = errBoom
	svc.now = func() time.Time { return time.UnixMilli(1700000009999) }

	_, err = svc.Update(ctx, "admin", p.ID, validInput, pngUpload("new.png"))

	assert.ErrorIs(t, err, errBoom)
	assert.True(t, disk.Exists(ctx, p.ImagePath))
	assert.False(t, disk.Exists(ctx, "images/1700000009999-new.png"))
}

func TestProductOwnership(t *testing.T) {
	products, disk := newFakeProducts(productA), newFakeDisk()
	svc := newProductService(products, disk)
	ctx := context.Background()

	_, err := svc.ForEdit(ctx, "other-admin", "A")
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	_, err = svc.Update(ctx, "other-admin", "A", validInput, nil)
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	assert.ErrorIs(t, svc.Delete(ctx, "other-admin", "A"), apperr.ErrForbidden)

	_, err = svc.ForEdit(ctx, "admin", "missing")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestDeleteProductRemovesImage(t *testing.T) {
	products, disk := newFakeProducts(), newFakeDisk()
	svc := newProductService(products, disk)
	ctx := context.Background()

	p, err := svc.Create(ctx, "admin", validInput, pngUpload("cover.png"))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, "admin", p.ID))

	assert.False(t, disk.Exists(ctx, p.ImagePath))
	_, err = products.FindByID(ctx, p.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
