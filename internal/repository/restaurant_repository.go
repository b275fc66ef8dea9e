package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mianwuxin/chatbot-backend/internal/models"
)

// RestaurantRepository reads the two knowledge source tables: menu_items and
// restaurant_details.
type RestaurantRepository struct {
	db *pgxpool.Pool
}

// NewRestaurantRepository creates a new restaurant repository.
func NewRestaurantRepository(db *pgxpool.Pool) *RestaurantRepository {
	return &RestaurantRepository{db: db}
}

// ListMenuItems returns every menu item.
func (r *RestaurantRepository) ListMenuItems(ctx context.Context) ([]models.MenuItem, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, price, description FROM menu_items ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("select menu items: %w", err)
	}
	defer rows.Close()

	var items []models.MenuItem

	for rows.Next() {
		var item models.MenuItem
		if err := rows.Scan(&item.ID, &item.Name, &item.Price, &item.Description); err != nil {
			return nil, fmt.Errorf("scan menu item: %w", err)
		}

		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating menu items: %w", err)
	}

	return items, nil
}

// ListRestaurantDetails returns every restaurant detail row.
func (r *RestaurantRepository) ListRestaurantDetails(ctx context.Context) ([]models.RestaurantDetail, error) {
	rows, err := r.db.Query(ctx, `SELECT id, details, description FROM restaurant_details ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("select restaurant details: %w", err)
	}
	defer rows.Close()

	var details []models.RestaurantDetail

	for rows.Next() {
		var detail models.RestaurantDetail
		if err := rows.Scan(&detail.ID, &detail.Details, &detail.Description); err != nil {
			return nil, fmt.Errorf("scan restaurant detail: %w", err)
		}

		details = append(details, detail)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating restaurant details: %w", err)
	}

	return details, nil
}
