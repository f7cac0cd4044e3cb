package ingest

import (
	"fmt"
	"os"
	"time"

	"sms-ledger/internal/fileutils"
	"sms-ledger/internal/models"
	"sms-ledger/internal/parsererror"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Outcome summarizes a parsed upload.
type Outcome string

const (
	OutcomeNoRows         Outcome = "no_rows"
	OutcomeNothingMatched Outcome = "nothing_matched"
	OutcomeReady          Outcome = "ready"
)

// Counters describe what happened to the rows of an upload.
type Counters struct {
	TotalRows int `json:"total_rows" yaml:"total_rows"`
	NonEmpty  int `json:"non_empty" yaml:"non_empty"`
	Matched   int `json:"matched" yaml:"matched"`
}

// Skipped is a non-empty row no pattern recognized.
type Skipped struct {
	Row  int    `json:"row" yaml:"row"`
	Text string `json:"text" yaml:"text"`
}

// Preview is the editable list of drafts extracted from one upload.
type Preview struct {
	ID        string         `json:"id" yaml:"id"`
	CreatedAt time.Time      `json:"created_at" yaml:"created_at"`
	Counters  Counters       `json:"counters" yaml:"counters"`
	Drafts    []models.Draft `json:"drafts" yaml:"drafts"`
	Skipped   []Skipped      `json:"skipped,omitempty" yaml:"skipped,omitempty"`
}

// NewPreview returns an empty preview with a fresh id.
func NewPreview() *Preview {
	return &Preview{ID: uuid.NewString(), CreatedAt: time.Now().UTC(), Drafts: []models.Draft{}}
}

// Outcome reports whether the upload had no rows, matched nothing, or is ready to commit.
func (p *Preview) Outcome() Outcome {
	switch {
	case p.Counters.NonEmpty == 0:
		return OutcomeNoRows
	case p.Counters.Matched == 0:
		return OutcomeNothingMatched
	default:
		return OutcomeReady
	}
}

// Len returns the number of drafts still in the preview.
func (p *Preview) Len() int {
	return len(p.Drafts)
}

// Remove drops the drafts at the given positions. Positions may come in any order and
// repeat; any position out of range rejects the whole call.
func (p *Preview) Remove(indices ...int) error {
	drop := make(map[int]struct{}, len(indices))
	for _, i := range indices {
		if i < 0 || i >= len(p.Drafts) {
			return &parsererror.ValidationError{
				Field:  "index",
				Reason: fmt.Sprintf("%d is out of range [0, %d)", i, len(p.Drafts)),
			}
		}
		drop[i] = struct{}{}
	}

	kept := make([]models.Draft, 0, len(p.Drafts)-len(drop))
	for i, d := range p.Drafts {
		if _, ok := drop[i]; !ok {
			kept = append(kept, d)
		}
	}
	p.Drafts = kept
	return nil
}

// Replace overwrites the draft at position i.
func (p *Preview) Replace(i int, d models.Draft) error {
	if i < 0 || i >= len(p.Drafts) {
		return &parsererror.ValidationError{Field: "index", Reason: fmt.Sprintf("%d is out of range [0, %d)", i, len(p.Drafts))}
	}
	p.Drafts[i] = d
	return nil
}

// Save writes the preview as YAML, creating parent directories.
func (p *Preview) Save(path string) error {
	data, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode preview: %w", err)
	}
	return fileutils.WriteFile(path, data, models.PermissionPreviewFile)
}

// LoadPreview reads a preview written by Save.
func LoadPreview(path string) (*Preview, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path is chosen by the operator
	if err != nil {
		return nil, fmt.Errorf("read preview: %w", err)
	}
	var p Preview
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse preview %s: %w", path, err)
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Drafts == nil {
		p.Drafts = []models.Draft{}
	}
	return &p, nil
}
