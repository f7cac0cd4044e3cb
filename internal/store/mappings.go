package store

import (
	"context"
	"fmt"
	"strings"

	"sms-ledger/internal/logging"
	"sms-ledger/internal/models"
	"sms-ledger/internal/parsererror"
)

const (
	upsertDescription = `INSERT INTO descriptions (description, category) VALUES (?, ?)
ON CONFLICT (description) DO UPDATE SET category = excluded.category`
	upsertSource = `INSERT INTO sources (reference, source) VALUES (?, ?)
ON CONFLICT (reference) DO UPDATE SET source = excluded.source`
)

// DescriptionMappings lists description mappings in insertion order. The resolver relies on it.
func (s *Store) DescriptionMappings(ctx context.Context) ([]models.DescriptionMapping, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT description, category FROM descriptions ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list description mappings: %w", err)
	}
	defer rows.Close()

	var mappings []models.DescriptionMapping
	for rows.Next() {
		var m models.DescriptionMapping
		if err := rows.Scan(&m.Description, &m.Category); err != nil {
			return nil, fmt.Errorf("scan description mapping: %w", err)
		}
		mappings = append(mappings, m)
	}
	return mappings, rows.Err()
}

// UpsertDescriptionMapping writes m, replacing the category of an existing description.
func (s *Store) UpsertDescriptionMapping(ctx context.Context, m models.DescriptionMapping) error {
	if err := validateDescriptionMapping(m); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, s.rebind(upsertDescription), m.Description, m.Category); err != nil {
		return fmt.Errorf("save description mapping: %w", mapError(err))
	}
	s.logger.Debug("Saved description mapping",
		logging.F(logging.FieldDescription, m.Description), logging.F(logging.FieldCategory, m.Category))
	return nil
}

// SourceMappings lists source mappings in insertion order.
func (s *Store) SourceMappings(ctx context.Context) ([]models.SourceMapping, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT reference, source FROM sources ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list source mappings: %w", err)
	}
	defer rows.Close()

	var mappings []models.SourceMapping
	for rows.Next() {
		var m models.SourceMapping
		if err := rows.Scan(&m.Reference, &m.Source); err != nil {
			return nil, fmt.Errorf("scan source mapping: %w", err)
		}
		mappings = append(mappings, m)
	}
	return mappings, rows.Err()
}

// UpsertSourceMapping writes m, replacing the source name of an existing reference.
func (s *Store) UpsertSourceMapping(ctx context.Context, m models.SourceMapping) error {
	if err := validateSourceMapping(m); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, s.rebind(upsertSource), m.Reference, m.Source); err != nil {
		return fmt.Errorf("save source mapping: %w", mapError(err))
	}
	return nil
}

func validateDescriptionMapping(m models.DescriptionMapping) error {
	if strings.TrimSpace(m.Description) == "" {
		return &parsererror.ValidationError{Field: "description", Reason: "is required"}
	}
	if strings.TrimSpace(m.Category) == "" {
		return &parsererror.ValidationError{Field: "category", Reason: "is required"}
	}
	return nil
}

func validateSourceMapping(m models.SourceMapping) error {
	if strings.TrimSpace(m.Reference) == "" {
		return &parsererror.ValidationError{Field: "reference", Reason: "is required"}
	}
	if strings.TrimSpace(m.Source) == "" {
		return &parsererror.ValidationError{Field: "source", Reason: "is required"}
	}
	return nil
}
