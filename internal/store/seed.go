package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"sms-ledger/internal/logging"
	"sms-ledger/internal/models"

	"gopkg.in/yaml.v3"
)

// FindSeedFile looks for a seed file in the usual locations: as given, ./config,
// ./database, then ~/.config/sms-ledger.
func FindSeedFile(filename string) (string, error) {
	if filepath.IsAbs(filename) {
		if _, err := os.Stat(filename); err == nil {
			return filename, nil
		}
		return "", os.ErrNotExist
	}

	locations := []string{
		filename,
		filepath.Join("config", filename),
		filepath.Join("database", filename),
	}
	if home, err := os.UserHomeDir(); err == nil {
		locations = append(locations, filepath.Join(home, ".config", "sms-ledger", filename))
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location, nil
		}
	}
	return "", os.ErrNotExist
}

// LoadSeedFile reads a YAML mapping seed:
//
//	descriptions:
//	  - {description: uber, category: Transport}
//	sources:
//	  - {reference: "1234", source: DFCC Visa}
func LoadSeedFile(path string) (models.MappingSeed, error) {
	var seed models.MappingSeed

	data, err := os.ReadFile(path) // #nosec G304 -- path is chosen by the operator
	if err != nil {
		return seed, fmt.Errorf("read seed file: %w", err)
	}
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return seed, fmt.Errorf("parse seed file %s: %w", path, err)
	}
	return seed, nil
}

// ImportSeed upserts every mapping of seed in one database transaction.
func (s *Store) ImportSeed(ctx context.Context, seed models.MappingSeed) (int, error) {
	for _, m := range seed.Descriptions {
		if err := validateDescriptionMapping(m); err != nil {
			return 0, err
		}
	}
	for _, m := range seed.Sources {
		if err := validateSourceMapping(m); err != nil {
			return 0, err
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin seed import: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, m := range seed.Descriptions {
		if _, err := tx.ExecContext(ctx, s.rebind(upsertDescription), m.Description, m.Category); err != nil {
			return 0, fmt.Errorf("import description %q: %w", m.Description, mapError(err))
		}
	}
	for _, m := range seed.Sources {
		if _, err := tx.ExecContext(ctx, s.rebind(upsertSource), m.Reference, m.Source); err != nil {
			return 0, fmt.Errorf("import source %q: %w", m.Reference, mapError(err))
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit seed import: %w", err)
	}

	n := len(seed.Descriptions) + len(seed.Sources)
	s.logger.Info("Imported mapping seed", logging.F(logging.FieldCount, n))
	return n, nil
}
