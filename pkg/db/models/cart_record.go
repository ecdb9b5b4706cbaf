package models

import (
	"time"

	"github.com/google/uuid"
)

// CartRecord is the single persisted cart for this device profile. A
// non-nil restaurant anchor means every line belongs to that restaurant.
type CartRecord struct {
	ID             uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	RestaurantID   *int64     `gorm:"column:restaurant_id"`
	RestaurantName *string    `gorm:"column:restaurant_name"`
	Lines          []CartLine `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	CreatedAt      time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
