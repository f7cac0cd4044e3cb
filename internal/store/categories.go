package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"sms-ledger/internal/logging"
	"sms-ledger/internal/models"
	"sms-ledger/internal/parsererror"
)

// Categories lists every category by name.
func (s *Store) Categories(ctx context.Context) ([]models.Category, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT category_id, category FROM categories ORDER BY category ASC`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// CategoryByID returns parsererror.ErrNotFound when id is unknown.
func (s *Store) CategoryByID(ctx context.Context, id int64) (models.Category, error) {
	c := models.Category{}
	err := s.db.QueryRowContext(ctx, s.rebind(`SELECT category_id, category FROM categories WHERE category_id = ?`), id).
		Scan(&c.ID, &c.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return c, fmt.Errorf("category %d: %w", id, parsererror.ErrNotFound)
	}
	if err != nil {
		return c, fmt.Errorf("find category: %w", err)
	}
	return c, nil
}

// CreateCategory inserts a category. A taken name yields parsererror.ErrAlreadyExists.
func (s *Store) CreateCategory(ctx context.Context, name string) (models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Category{}, &parsererror.ValidationError{Field: "category", Reason: "is required"}
	}

	c := models.Category{Name: name}
	err := s.db.QueryRowContext(ctx, s.rebind(`INSERT INTO categories (category) VALUES (?) RETURNING category_id`), name).
		Scan(&c.ID)
	if err != nil {
		return models.Category{}, fmt.Errorf("create category %q: %w", name, mapError(err))
	}

	s.logger.Info("Created category", logging.F(logging.FieldCategory, name), logging.F(logging.FieldCategoryID, c.ID))
	return c, nil
}
