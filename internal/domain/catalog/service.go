// Package catalog orchestrates product persistence together with the image
// file lifecycle: uploads are stored on create/update and superseded or
// orphaned files are removed.
package catalog

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/bakeshop/internal/domain/product"
)

// allowedExtensions is the upload allow-list. Extensions are matched
// case-insensitively.
var allowedExtensions = map[string]struct{}{
	".png":  {},
	".jpg":  {},
	".jpeg": {},
	".gif":  {},
}

// InvalidFileTypeError indicates an upload with a disallowed file extension.
type InvalidFileTypeError struct {
	Filename string
}

func (e *InvalidFileTypeError) Error() string {
	return fmt.Sprintf("invalid file type %q: allowed: png, jpg, jpeg, gif", e.Filename)
}

// FileStore persists uploaded image files. Save stores content under a
// unique name derived from the original filename and returns the stored
// name. Remove deletes a stored file and returns nil when it is absent.
type FileStore interface {
	Save(filename string, content io.Reader) (string, error)
	Remove(name string) error
}

// Upload is a pending image upload handed over by the transport layer.
// Size limits are enforced at the transport boundary, not here.
type Upload struct {
	Filename string
	Content  io.Reader
}

// Input holds the raw form fields for a product create or update. Price is
// the unparsed form value; Image is nil when no new file was uploaded.
type Input struct {
	Name  string
	Price string
	Image *Upload
}

// Service wraps the product repository with image file side effects.
type Service struct {
	products product.Repository
	files    FileStore
}

// NewService creates a catalog Service.
func NewService(products product.Repository, files FileStore) *Service {
	return &Service{
		products: products,
		files:    files,
	}
}

// Create validates the input, stores the uploaded image if any, and inserts
// a new product row. It returns the assigned product ID. Nothing is
// persisted when validation fails.
func (s *Service) Create(ctx context.Context, in Input) (int64, error) {
	name, price, err := parseInput(in)
	if err != nil {
		return 0, err
	}

	imageRef := ""
	if in.Image != nil {
		stored, err := s.saveUpload(in.Image)
		if err != nil {
			return 0, err
		}
		imageRef = stored
	}

	p := &product.Product{
		Name:  name,
		Price: price,
		Image: imageRef,
	}
	if err := s.products.Create(ctx, p); err != nil {
		return 0, errors.Wrap(err, "create product")
	}

	return p.ID, nil
}

// Update validates the input and rewrites the product row. When a new image
// is uploaded, the new file is saved and the row updated before the old file
// is removed, so a failed upload can never lose the existing image. The old
// file removal is best-effort. Returns product.ErrNotFound when the product
// does not exist.
func (s *Service) Update(ctx context.Context, id int64, in Input) error {
	current, err := s.products.GetByID(ctx, id)
	if err != nil {
		return err
	}

	name, price, err := parseInput(in)
	if err != nil {
		return err
	}

	imageRef := current.Image
	supersededImage := ""
	if in.Image != nil {
		stored, err := s.saveUpload(in.Image)
		if err != nil {
			return err
		}
		imageRef = stored
		supersededImage = current.Image
	}

	p := &product.Product{
		ID:    id,
		Name:  name,
		Price: price,
		Image: imageRef,
	}
	if err := s.products.Update(ctx, p); err != nil {
		return errors.Wrap(err, "update product")
	}

	if supersededImage != "" {
		// The new file and row are in place; losing this removal only
		// leaves an orphaned file behind.
		_ = s.files.Remove(supersededImage)
	}

	return nil
}

// Delete removes the product row and its stored image file if one exists.
// The file removal is best-effort; a missing file never aborts the deletion.
// Returns product.ErrNotFound when the product does not exist.
func (s *Service) Delete(ctx context.Context, id int64) error {
	current, err := s.products.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if current.Image != "" {
		_ = s.files.Remove(current.Image)
	}

	if err := s.products.Delete(ctx, id); err != nil {
		return errors.Wrap(err, "delete product")
	}

	return nil
}

// saveUpload checks the extension allow-list and stores the file.
func (s *Service) saveUpload(u *Upload) (string, error) {
	ext := strings.ToLower(filepath.Ext(u.Filename))
	if _, ok := allowedExtensions[ext]; !ok {
		return "", &InvalidFileTypeError{Filename: u.Filename}
	}

	stored, err := s.files.Save(u.Filename, u.Content)
	if err != nil {
		return "", errors.Wrap(err, "save image")
	}
	return stored, nil
}

// parseInput validates the raw form fields: name must be non-empty and price
// must parse as a non-negative decimal.
func parseInput(in Input) (string, decimal.Decimal, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return "", decimal.Zero, &product.ValidationError{Field: "name", Reason: "must not be empty"}
	}

	priceStr := strings.TrimSpace(in.Price)
	if priceStr == "" {
		return "", decimal.Zero, &product.ValidationError{Field: "price", Reason: "must not be empty"}
	}
	price, err := decimal.NewFromString(priceStr)
	if err != nil {
		return "", decimal.Zero, &product.ValidationError{Field: "price", Reason: "must be a number"}
	}
	if price.IsNegative() {
		return "", decimal.Zero, &product.ValidationError{Field: "price", Reason: "must not be negative"}
	}

	return name, price, nil
}
