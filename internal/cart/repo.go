package cart

import (
	"context"
	"errors"

	"github.com/platedrop/ordercore/pkg/db"
	"github.com/platedrop/ordercore/pkg/db/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Repository persists the cart snapshot between process runs. Saves are
// best-effort: the in-memory store stays authoritative either way.
type Repository interface {
	Load(ctx context.Context) ([]Line, *Restaurant, error)
	Save(ctx context.Context, lines []Line, restaurant *Restaurant) error
}

type gormRepository struct {
	client *db.Client
}

// NewRepository builds the sqlite-backed cart repository.
func NewRepository(client *db.Client) Repository {
	return &gormRepository{client: client}
}

func (r *gormRepository) Load(ctx context.Context) ([]Line, *Restaurant, error) {
	var record models.CartRecord
	err := r.client.DB().WithContext(ctx).Preload("Lines").First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, nil
		}
		return nil, nil, err
	}

	var restaurant *Restaurant
	if record.RestaurantID != nil {
		name := ""
		if record.RestaurantName != nil {
			name = *record.RestaurantName
		}
		restaurant = &Restaurant{ID: *record.RestaurantID, Name: name}
	}

	lines := make([]Line, 0, len(record.Lines))
	for _, row := range record.Lines {
		lines = append(lines, Line{
			ItemID:         row.ItemID,
			Name:           row.ItemName,
			UnitPrice:      decimal.New(row.UnitPriceCents, -2),
			Quantity:       row.Quantity,
			RestaurantID:   row.RestaurantID,
			RestaurantName: row.RestaurantName,
		})
	}
	return lines, restaurant, nil
}

// Save replaces the whole persisted snapshot. The cart is small enough
// that wholesale replacement beats tracking row-level diffs.
func (r *gormRepository) Save(ctx context.Context, lines []Line, restaurant *Restaurant) error {
	return r.client.WithTx(ctx, func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.CartLine{}).Error; err != nil {
			return err
		}
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.CartRecord{}).Error; err != nil {
			return err
		}

		record := models.CartRecord{ID: uuid.New()}
		if restaurant != nil {
			id := restaurant.ID
			name := restaurant.Name
			record.RestaurantID = &id
			record.RestaurantName = &name
		}
		if err := tx.Create(&record).Error; err != nil {
			return err
		}

		if len(lines) == 0 {
			return nil
		}
		rows := make([]models.CartLine, 0, len(lines))
		for _, line := range lines {
			rows = append(rows, models.CartLine{
				ID:             uuid.New(),
				CartID:         record.ID,
				ItemID:         line.ItemID,
				ItemName:       line.Name,
				UnitPriceCents: line.UnitPrice.Mul(decimal.NewFromInt(100)).IntPart(),
				Quantity:       line.Quantity,
				RestaurantID:   line.RestaurantID,
				RestaurantName: line.RestaurantName,
			})
		}
		return tx.Create(&rows).Error
	})
}

// memoryRepository keeps the snapshot in process. Used when no storage
// path is configured and by tests.
type memoryRepository struct {
	lines      []Line
	restaurant *Restaurant
}

// NewMemoryRepository builds a volatile cart repository.
func NewMemoryRepository() Repository {
	return &memoryRepository{}
}

func (m *memoryRepository) Load(ctx context.Context) ([]Line, *Restaurant, error) {
	return append([]Line(nil), m.lines...), m.restaurant, nil
}

func (m *memoryRepository) Save(ctx context.Context, lines []Line, restaurant *Restaurant) error {
	m.lines = append([]Line(nil), lines...)
	m.restaurant = restaurant
	return nil
}
