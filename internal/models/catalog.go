package models

import "time"

type OrderStatus string

const (
	OrderStatusPlaced    OrderStatus = "placed"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

type Product struct {
	ID          string
	ShopID      string
	Name        string
	Description string
	PriceCents  int64
	Stock       int
	Category    string
	ImageKey    *string
	ImageURL    *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Order struct {
	ID             string
	UserID         string
	ProductID      string
	Quantity       int
	UnitPriceCents int64
	Status         OrderStatus
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type Review struct {
	ID        string
	ProductID string
	UserID    string
	Rating    int
	Comment   string
	CreatedAt time.Time
}
