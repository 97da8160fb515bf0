package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"cartside/api/internal/ids"
	"cartside/api/internal/models"
	"cartside/api/internal/repository"
)

var ErrOutOfStock = errors.New("insufficient stock")

type OrderStore interface {
	Create(ctx context.Context, order models.Order) error
	GetByID(ctx context.Context, id string) (models.Order, error)
	UpdateStatus(ctx context.Context, id string, status models.OrderStatus) error
	ListByUser(ctx context.Context, userID string, limit int, offset int) ([]models.Order, error)
	ListByShop(ctx context.Context, shopID string, limit int, offset int) ([]models.Order, error)
}

type ReviewStore interface {
	Create(ctx context.Context, review models.Review) error
	ListByProduct(ctx context.Context, productID string, limit int, offset int) ([]models.Review, error)
}

type OrderService struct {
	orders   OrderStore
	reviews  ReviewStore
	products ProductStore
	log      zerolog.Logger
}

func NewOrderService(orders OrderStore, reviews ReviewStore, products ProductStore, log zerolog.Logger) *OrderService {
	return &OrderService{orders: orders, reviews: reviews, products: products, log: log}
}

func (s *OrderService) PlaceOrder(ctx context.Context, userID string, productID string, quantity int) (models.Order, error) {
	if productID == "" || quantity < 1 {
		return models.Order{}, ErrInvalidInput
	}

	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return models.Order{}, ErrNotFound
		}
		return models.Order{}, err
	}
	if product.Stock < quantity {
		return models.Order{}, ErrOutOfStock
	}

	order := models.Order{
		ID:             ids.New(),
		UserID:         userID,
		ProductID:      product.ID,
		Quantity:       quantity,
		UnitPriceCents: product.PriceCents,
		Status:         models.OrderStatusPlaced,
	}
	if err := s.orders.Create(ctx, order); err != nil {
		return models.Order{}, err
	}

	product.Stock -= quantity
	if err := s.products.Update(ctx, product); err != nil {
		s.log.Error().Err(err).Str("product_id", product.ID).Msg("stock decrement failed")
	}

	return order, nil
}

func (s *OrderService) ListUserOrders(ctx context.Context, userID string, limit int, offset int) ([]models.Order, error) {
	return s.orders.ListByUser(ctx, userID, limit, offset)
}

func (s *OrderService) ListShopOrders(ctx context.Context, shopID string, limit int, offset int) ([]models.Order, error) {
	return s.orders.ListByShop(ctx, shopID, limit, offset)
}

var validStatuses = map[models.OrderStatus]struct{}{
	models.OrderStatusShipped:   {},
	models.OrderStatusDelivered: {},
	models.OrderStatusCancelled: {},
}

// UpdateOrderStatus lets the shop owning the ordered product advance the
// order's status.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, shopID string, orderID string, status models.OrderStatus) error {
	if _, ok := validStatuses[status]; !ok {
		return ErrInvalidInput
	}

	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return ErrNotFound
		}
		return err
	}

	product, err := s.products.GetByID(ctx, order.ProductID)
	if err != nil {
		return err
	}
	if product.ShopID != shopID {
		return ErrForbidden
	}

	return s.orders.UpdateStatus(ctx, order.ID, status)
}

func (s *OrderService) AddReview(ctx context.Context, userID string, productID string, rating int, comment string) (models.Review, error) {
	if rating < 1 || rating > 5 {
		return models.Review{}, ErrInvalidInput
	}

	if _, err := s.products.GetByID(ctx, productID); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return models.Review{}, ErrNotFound
		}
		return models.Review{}, err
	}

	review := models.Review{
		ID:        ids.New(),
		ProductID: productID,
		UserID:    userID,
		Rating:    rating,
		Comment:   comment,
	}
	if err := s.reviews.Create(ctx, review); err != nil {
		return models.Review{}, err
	}
	return review, nil
}

func (s *OrderService) ListReviews(ctx context.Context, productID string, limit int, offset int) ([]models.Review, error) {
	return s.reviews.ListByProduct(ctx, productID, limit, offset)
}
