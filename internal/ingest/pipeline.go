// Package ingest turns uploaded notification text into an editable preview of drafts and
// commits confirmed previews as one atomic batch.
package ingest

import (
	"context"
	"fmt"
	"io"
	"strings"

	"sms-ledger/internal/logging"
	"sms-ledger/internal/models"
	"sms-ledger/internal/parsererror"
	"sms-ledger/internal/resolver"
	"sms-ledger/internal/smsparser"
)

// MappingSource supplies the tables the resolver reconciles drafts against.
type MappingSource interface {
	Categories(ctx context.Context) ([]models.Category, error)
	DescriptionMappings(ctx context.Context) ([]models.DescriptionMapping, error)
	SourceMappings(ctx context.Context) ([]models.SourceMapping, error)
}

// BatchWriter persists a batch of drafts atomically.
type BatchWriter interface {
	InsertBatch(ctx context.Context, drafts []models.Draft) ([]int64, error)
}

// Pipeline runs uploads through the extractor and the resolver.
type Pipeline struct {
	extractor *smsparser.Extractor
	mappings  MappingSource
	policy    string
	delimiter rune
	logger    logging.Logger
}

// NewPipeline creates a Pipeline. policy is a resolver match policy; delimiter 0 means ','.
func NewPipeline(extractor *smsparser.Extractor, mappings MappingSource, policy string, delimiter rune, logger logging.Logger) *Pipeline {
	if delimiter == 0 {
		delimiter = ','
	}
	return &Pipeline{
		extractor: extractor,
		mappings:  mappings,
		policy:    policy,
		delimiter: delimiter,
		logger:    logging.OrDefault(logger),
	}
}

// Extractor returns the extractor the pipeline uses.
func (p *Pipeline) Extractor() *smsparser.Extractor {
	return p.extractor
}

// Resolver loads a fresh snapshot of the mapping tables.
func (p *Pipeline) Resolver(ctx context.Context) (*resolver.Resolver, error) {
	categories, err := p.mappings.Categories(ctx)
	if err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}
	descriptions, err := p.mappings.DescriptionMappings(ctx)
	if err != nil {
		return nil, fmt.Errorf("load description mappings: %w", err)
	}
	sources, err := p.mappings.SourceMappings(ctx)
	if err != nil {
		return nil, fmt.Errorf("load source mappings: %w", err)
	}

	return resolver.New(resolver.Tables{
		Descriptions: descriptions,
		Sources:      sources,
		Categories:   categories,
	}, p.policy, p.logger), nil
}

// Parse reads an upload and builds its preview.
func (p *Pipeline) Parse(ctx context.Context, r io.Reader) (*Preview, error) {
	rows, err := ReadMessages(r, p.delimiter)
	if err != nil {
		return nil, err
	}
	return p.Build(ctx, rows)
}

// Build extracts and resolves rows. Empty cells only count towards TotalRows.
func (p *Pipeline) Build(ctx context.Context, rows []Row) (*Preview, error) {
	res, err := p.Resolver(ctx)
	if err != nil {
		return nil, err
	}

	preview := NewPreview()
	preview.Counters.TotalRows = len(rows)
	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		text := strings.TrimSpace(row.Text)
		if text == "" {
			continue
		}
		preview.Counters.NonEmpty++

		draft, ok := p.extractor.Extract(text)
		if !ok {
			preview.Skipped = append(preview.Skipped, Skipped{Row: row.Index, Text: text})
			continue
		}
		preview.Counters.Matched++
		preview.Drafts = append(preview.Drafts, res.Resolve(draft))
	}

	p.logger.Info("Preview built",
		logging.F(logging.FieldPreviewID, preview.ID),
		logging.F(logging.FieldTotal, preview.Counters.TotalRows),
		logging.F(logging.FieldCount, preview.Counters.NonEmpty),
		logging.F(logging.FieldMatched, preview.Counters.Matched))
	return preview, nil
}

// Commit validates drafts and writes them through w as one batch. Nothing reaches w when
// the batch is empty or a draft is invalid. A storage failure comes back as a
// parsererror.CommitError and leaves nothing persisted.
func Commit(ctx context.Context, w BatchWriter, drafts []models.Draft) ([]int64, error) {
	if err := validateBatch(drafts); err != nil {
		return nil, err
	}

	ids, err := w.InsertBatch(ctx, drafts)
	if err != nil {
		return nil, &parsererror.CommitError{Rows: len(drafts), Err: err}
	}
	return ids, nil
}

// validateBatch rejects an empty batch or the first row that could not be stored.
func validateBatch(drafts []models.Draft) error {
	if len(drafts) == 0 {
		return parsererror.ErrEmptyBatch
	}
	for i, d := range drafts {
		if err := d.Validate(); err != nil {
			return &parsererror.RowError{Row: i, Err: err}
		}
	}
	return nil
}
