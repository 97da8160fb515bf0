package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"cartside/api/internal/ids"
	"cartside/api/internal/media/sniffer"
	"cartside/api/internal/models"
	"cartside/api/internal/repository"
	"cartside/api/internal/storage"
)

type ProductStore interface {
	Create(ctx context.Context, product models.Product) error
	GetByID(ctx context.Context, id string) (models.Product, error)
	Update(ctx context.Context, product models.Product) error
	DeleteByID(ctx context.Context, id string) error
	ListByShop(ctx context.Context, shopID string, limit int, offset int) ([]models.Product, error)
}

// MediaHost is the media-hosting collaborator: upload raw bytes into a
// folder, destroy by key.
type MediaHost interface {
	Upload(ctx context.Context, data []byte, folder string, ext string, contentType string) (storage.UploadedMedia, error)
	Destroy(ctx context.Context, key string) error
}

type CatalogService struct {
	products ProductStore
	media    MediaHost
	log      zerolog.Logger
}

func NewCatalogService(products ProductStore, media MediaHost, log zerolog.Logger) *CatalogService {
	return &CatalogService{products: products, media: media, log: log}
}

type ProductInput struct {
	Name        string
	Description string
	PriceCents  int64
	Stock       int
	Category    string
	Image       []byte
}

func (s *CatalogService) CreateProduct(ctx context.Context, shopID string, input ProductInput) (models.Product, error) {
	if input.Name == "" || input.PriceCents <= 0 || input.Stock < 0 {
		return models.Product{}, ErrInvalidInput
	}

	product := models.Product{
		ID:          ids.New(),
		ShopID:      shopID,
		Name:        input.Name,
		Description: input.Description,
		PriceCents:  input.PriceCents,
		Stock:       input.Stock,
		Category:    input.Category,
	}

	if len(input.Image) > 0 {
		uploaded, err := s.uploadImage(ctx, input.Image)
		if err != nil {
			return models.Product{}, err
		}
		product.ImageKey = &uploaded.Key
		product.ImageURL = &uploaded.URL
	}

	if err := s.products.Create(ctx, product); err != nil {
		return models.Product{}, err
	}
	return product, nil
}

func (s *CatalogService) UpdateProduct(ctx context.Context, shopID string, productID string, input ProductInput) (models.Product, error) {
	product, err := s.getOwned(ctx, shopID, productID)
	if err != nil {
		return models.Product{}, err
	}

	if input.Name != "" {
		product.Name = input.Name
	}
	if input.Description != "" {
		product.Description = input.Description
	}
	if input.PriceCents > 0 {
		product.PriceCents = input.PriceCents
	}
	if input.Stock >= 0 {
		product.Stock = input.Stock
	}
	if input.Category != "" {
		product.Category = input.Category
	}

	if len(input.Image) > 0 {
		uploaded, err := s.uploadImage(ctx, input.Image)
		if err != nil {
			return models.Product{}, err
		}
		if product.ImageKey != nil {
			if err := s.media.Destroy(ctx, *product.ImageKey); err != nil {
				s.log.Warn().Err(err).Str("key", *product.ImageKey).Msg("destroy replaced image failed")
			}
		}
		product.ImageKey = &uploaded.Key
		product.ImageURL = &uploaded.URL
	}

	if err := s.products.Update(ctx, product); err != nil {
		return models.Product{}, err
	}
	return product, nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, shopID string, productID string) error {
	product, err := s.getOwned(ctx, shopID, productID)
	if err != nil {
		return err
	}

	if err := s.products.DeleteByID(ctx, product.ID); err != nil {
		return err
	}

	if product.ImageKey != nil {
		if err := s.media.Destroy(ctx, *product.ImageKey); err != nil {
			s.log.Warn().Err(err).Str("key", *product.ImageKey).Msg("destroy product image failed")
		}
	}
	return nil
}

func (s *CatalogService) GetProduct(ctx context.Context, id string) (models.Product, error) {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return models.Product{}, ErrNotFound
		}
		return models.Product{}, err
	}
	return product, nil
}

func (s *CatalogService) ListShopProducts(ctx context.Context, shopID string, limit int, offset int) ([]models.Product, error) {
	return s.products.ListByShop(ctx, shopID, limit, offset)
}

func (s *CatalogService) getOwned(ctx context.Context, shopID string, productID string) (models.Product, error) {
	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return models.Product{}, ErrNotFound
		}
		return models.Product{}, err
	}
	if product.ShopID != shopID {
		return models.Product{}, ErrForbidden
	}
	return product, nil
}

func (s *CatalogService) uploadImage(ctx context.Context, data []byte) (storage.UploadedMedia, error) {
	head := data
	if len(head) > 512 {
		head = head[:512]
	}
	detected, err := sniffer.DetectHead(head)
	if err != nil {
		return storage.UploadedMedia{}, ErrInvalidInput
	}

	return s.media.Upload(ctx, data, "products", string(detected.Type), detected.MIME)
}
