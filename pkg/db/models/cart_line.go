package models

import (
	"time"

	"github.com/google/uuid"
)

// CartLine persists one menu-item line tied to the CartRecord. Quantity
// is always at least one; a line dropping to zero is deleted, not stored.
type CartLine struct {
	ID             uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	CartID         uuid.UUID `gorm:"column:cart_id;type:uuid;not null;index"`
	ItemID         int64     `gorm:"column:item_id;not null"`
	ItemName       string    `gorm:"column:item_name;not null"`
	UnitPriceCents int64     `gorm:"column:unit_price_cents;not null"`
	Quantity       int       `gorm:"column:quantity;not null"`
	RestaurantID   int64     `gorm:"column:restaurant_id;not null"`
	RestaurantName string    `gorm:"column:restaurant_name;not null"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
