package product

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"abc-retailers/internal/logger"
	"abc-retailers/internal/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ImageUploader stores an image somewhere public and returns its URL.
type ImageUploader interface {
	Upload(ctx context.Context, filename string, r io.Reader) (string, error)
}

type Service interface {
	ListActive(ctx context.Context, category *string) ([]*Product, error)
	ListAll(ctx context.Context) ([]*Product, error)
	Latest(ctx context.Context, n int) ([]*Product, error)
	Get(ctx context.Context, id string) (*Product, error)
	// FindActive returns (nil, nil) when the product is missing or soft-deleted.
	FindActive(ctx context.Context, id string) (*Product, error)
	Create(ctx context.Context, input Input) (*Product, error)
	Update(ctx context.Context, id string, input Input) (*Product, error)
	Delete(ctx context.Context, id string) error
	AttachImage(ctx context.Context, id, filename string, r io.Reader) (*Product, error)
}

type service struct {
	repo     Repository
	uploader ImageUploader
}

// NewService builds the product service. uploader may be nil, in which case
// AttachImage fails with ErrNoUploader.
func NewService(repo Repository, uploader ImageUploader) Service {
	return &service{repo: repo, uploader: uploader}
}

func (s *service) ListActive(ctx context.Context, category *string) ([]*Product, error) {
	return s.repo.List(ctx, ListOptions{OnlyActive: true, Category: category})
}

func (s *service) ListAll(ctx context.Context) ([]*Product, error) {
	return s.repo.List(ctx, ListOptions{})
}

// Latest returns up to n of the most recently added active products.
func (s *service) Latest(ctx context.Context, n int) ([]*Product, error) {
	if n <= 0 {
		return []*Product{}, nil
	}
	return s.repo.List(ctx, ListOptions{OnlyActive: true, NewestFirst: true, Limit: n})
}

// Get hides soft-deleted products from everyone but admins.
func (s *service) Get(ctx context.Context, id string) (*Product, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.IsActive && !utils.IsAdmin(ctx) {
		return nil, ErrProductNotFound
	}
	return p, nil
}

func (s *service) FindActive(ctx context.Context, id string) (*Product, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, nil
	}
	p, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, ErrProductNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if !p.IsActive {
		return nil, nil
	}
	return p, nil
}

// checkID rejects ids that are not uuids before they reach postgres.
func checkID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrProductNotFound
	}
	return nil
}

func validateInput(input Input) error {
	if strings.TrimSpace(input.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidProduct)
	}
	if !input.Price.IsPositive() {
		return fmt.Errorf("%w: price must be greater than zero", ErrInvalidProduct)
	}
	if input.Stock < 0 {
		return fmt.Errorf("%w: stock cannot be negative", ErrInvalidProduct)
	}
	return nil
}

func (s *service) Create(ctx context.Context, input Input) (*Product, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "CreateProduct"),
	)

	if err := validateInput(input); err != nil {
		log.Debug("invalid product input", zap.Error(err))
		return nil, err
	}

	p := &Product{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		Price:       input.Price,
		Stock:       input.Stock,
		IsActive:    true,
		ImageURL:    input.ImageURL,
		Category:    input.Category,
	}

	if err := s.repo.Create(ctx, p); err != nil {
		log.Error("failed to create product", zap.Error(err))
		return nil, err
	}

	log.Info("product created", zap.String("product_id", p.ID))
	return p, nil
}

func (s *service) Update(ctx context.Context, id string, input Input) (*Product, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "UpdateProduct"),
		zap.String("product_id", id),
	)

	if err := checkID(id); err != nil {
		return nil, err
	}
	if err := validateInput(input); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	existing.Name = strings.TrimSpace(input.Name)
	existing.Description = input.Description
	existing.Price = input.Price
	existing.Stock = input.Stock
	existing.Category = input.Category
	if input.ImageURL != nil {
		existing.ImageURL = input.ImageURL
	}

	if err := s.repo.Update(ctx, existing); err != nil {
		log.Error("failed to update product", zap.Error(err))
		return nil, err
	}

	log.Info("product updated")
	return existing, nil
}

// Delete is a soft delete: the row stays so order history keeps resolving.
func (s *service) Delete(ctx context.Context, id string) error {
	if err := checkID(id); err != nil {
		return err
	}
	if err := s.repo.SetActive(ctx, id, false); err != nil {
		if !errors.Is(err, ErrProductNotFound) {
			logger.FromCtx(ctx).Error("failed to deactivate product",
				zap.String("layer", "service"),
				zap.String("product_id", id),
				zap.Error(err),
			)
		}
		return err
	}
	return nil
}

func (s *service) AttachImage(ctx context.Context, id, filename string, r io.Reader) (*Product, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "AttachImage"),
		zap.String("product_id", id),
	)

	if err := checkID(id); err != nil {
		return nil, err
	}
	if s.uploader == nil {
		return nil, ErrNoUploader
	}

	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	url, err := s.uploader.Upload(ctx, filename, r)
	if err != nil {
		log.Error("image upload failed", zap.Error(err))
		return nil, err
	}

	if err := s.repo.SetImageURL(ctx, id, url); err != nil {
		log.Error("failed to store image url", zap.Error(err))
		return nil, err
	}

	p.ImageURL = &url
	log.Info("product image attached", zap.String("image_url", url))
	return p, nil
}
