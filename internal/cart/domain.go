package cart

import "github.com/shopspring/decimal"

// Restaurant is the anchor a non-empty cart is tied to. All lines in the
// cart share this restaurant.
type Restaurant struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Item is the menu-item view handed to AddItem by browsing screens.
type Item struct {
	ID             int64           `json:"id"`
	Name           string          `json:"name"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	RestaurantID   int64           `json:"restaurant_id"`
	RestaurantName string          `json:"restaurant_name"`
}

// Line is one cart line. Quantity is at least one at all times; a line
// that would reach zero is removed instead.
type Line struct {
	ItemID         int64           `json:"item_id"`
	Name           string          `json:"name"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	Quantity       int             `json:"quantity"`
	RestaurantID   int64           `json:"restaurant_id"`
	RestaurantName string          `json:"restaurant_name"`
}

// Extension returns unit price times quantity for the line.
func (l Line) Extension() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}
