package catalog

import (
	"context"
	"database/sql"

	"github.com/quickbite-app/quickbite/internal/domain"
)

type CatalogRepository struct {
	db *sql.DB
}

func NewCatalogRepository(db *sql.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

func (r *CatalogRepository) ListCategories(ctx context.Context) ([]domain.Category, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, image_url
		FROM categories
		ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	categories := []domain.Category{}
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.ImageURL); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return categories, nil
}

func (r *CatalogRepository) CreateCategory(ctx context.Context, c *domain.Category) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO categories (id, name, image_url)
		VALUES ($1, $2, $3)
	`, c.ID, c.Name, c.ImageURL)
	return err
}

func (r *CatalogRepository) ListItemsByCategory(ctx context.Context, categoryID string) ([]domain.MenuItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, category_id, name, description, price, image_url
		FROM menu_items
		WHERE category_id = $1
		ORDER BY name
	`, categoryID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	items := []domain.MenuItem{}
	for rows.Next() {
		var item domain.MenuItem
		if err := rows.Scan(&item.ID, &item.CategoryID, &item.Name, &item.Description, &item.Price, &item.ImageURL); err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return items, nil
}

// GetItem returns nil without error when no item matches.
func (r *CatalogRepository) GetItem(ctx context.Context, id string) (*domain.MenuItem, error) {
	item := &domain.MenuItem{}

	err := r.db.QueryRowContext(ctx, `
		SELECT id, category_id, name, description, price, image_url
		FROM menu_items
		WHERE id = $1
	`, id).Scan(&item.ID, &item.CategoryID, &item.Name, &item.Description, &item.Price, &item.ImageURL)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return item, nil
}

func (r *CatalogRepository) CreateItem(ctx context.Context, item *domain.MenuItem) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO menu_items (id, category_id, name, description, price, image_url)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, item.ID, item.CategoryID, item.Name, item.Description, item.Price, item.ImageURL)
	return err
}

// UpdateItem replaces all mutable fields. Returns false when no item matched.
func (r *CatalogRepository) UpdateItem(ctx context.Context, item *domain.MenuItem) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE menu_items
		SET category_id = $2, name = $3, description = $4, price = $5, image_url = $6
		WHERE id = $1
	`, item.ID, item.CategoryID, item.Name, item.Description, item.Price, item.ImageURL)
	if err != nil {
		return false, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rowsAffected > 0, nil
}

func (r *CatalogRepository) DeleteItem(ctx context.Context, id string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
		DELETE FROM menu_items WHERE id = $1
	`, id)
	if err != nil {
		return false, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rowsAffected > 0, nil
}
