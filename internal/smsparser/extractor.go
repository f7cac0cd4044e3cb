package smsparser

import (
	"strings"
	"time"

	"sms-ledger/internal/currencyutils"
	"sms-ledger/internal/dateutils"
	"sms-ledger/internal/logging"
	"sms-ledger/internal/models"
	"sms-ledger/internal/parsererror"

	"github.com/shopspring/decimal"
)

// Extractor turns one notification text into a fully populated draft.
type Extractor struct {
	registry        *Registry
	defaultCurrency string
	now             func() time.Time
	logger          logging.Logger
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithDefaultCurrency sets the currency used when a pattern captures none.
func WithDefaultCurrency(code string) Option {
	return func(e *Extractor) {
		e.defaultCurrency = currencyutils.NormalizeCurrency(code, models.DefaultCurrency)
	}
}

// WithClock replaces time.Now as the fallback datetime source.
func WithClock(now func() time.Time) Option {
	return func(e *Extractor) {
		if now != nil {
			e.now = now
		}
	}
}

// NewExtractor creates an Extractor over registry. A nil registry means DefaultRegistry.
func NewExtractor(registry *Registry, logger logging.Logger, opts ...Option) *Extractor {
	if registry == nil {
		registry = DefaultRegistry()
	}
	e := &Extractor{
		registry:        registry,
		defaultCurrency: models.DefaultCurrency,
		now:             time.Now,
		logger:          logging.OrDefault(logger),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Registry returns the pattern registry the extractor evaluates.
func (e *Extractor) Registry() *Registry {
	return e.registry
}

// DefaultCurrency returns the currency drafts get when a pattern captures none.
func (e *Extractor) DefaultCurrency() string {
	return e.defaultCurrency
}

// Extract runs the registry against text. When no pattern matches it returns false;
// that is not an error. A matched draft always has every field set.
func (e *Extractor) Extract(text string) (models.Draft, bool) {
	pattern, captures, ok := e.registry.Match(text)
	if !ok {
		return models.Draft{}, false
	}

	draft := models.Draft{
		Amount:      e.amount(pattern, captures.Amount),
		Currency:    currencyutils.NormalizeCurrency(captures.Currency, e.defaultCurrency),
		DateTime:    e.datetime(pattern, captures.DateTime),
		Source:      captures.Source,
		Description: captures.Merchant,
		CategoryID:  models.UncategorizedCategoryID,
		Pattern:     pattern.Name,
	}
	if draft.Source == "" {
		draft.Source = models.UnknownSource
	}
	if draft.Description == "" {
		draft.Description = fallbackDescription(text)
	}

	e.logger.Debug("Extracted draft",
		logging.F(logging.FieldPattern, pattern.Name),
		logging.F(logging.FieldDescription, draft.Description),
		logging.F(logging.FieldSource, draft.Source))
	return draft, true
}

func (e *Extractor) amount(pattern Pattern, raw string) decimal.Decimal {
	amount, err := currencyutils.ParseAmount(raw)
	if err != nil {
		e.logger.Debug("Amount fallback to zero", logging.F(logging.FieldError,
			&parsererror.ParseError{Pattern: pattern.Name, Field: GroupAmount, Value: raw, Err: err}))
		return decimal.Zero
	}
	return amount
}

func (e *Extractor) datetime(pattern Pattern, raw string) string {
	if raw == "" {
		return dateutils.FormatCanonical(e.now())
	}
	normalized, err := dateutils.Normalize(raw, pattern.Layouts...)
	if err != nil {
		e.logger.Debug("Datetime fallback to extraction time", logging.F(logging.FieldError,
			&parsererror.ParseError{Pattern: pattern.Name, Field: GroupDateTime, Value: raw, Err: err}))
		return dateutils.FormatCanonical(e.now())
	}
	return normalized
}

func fallbackDescription(text string) string {
	runes := []rune(strings.TrimSpace(text))
	if len(runes) > models.DescriptionFallbackLength {
		runes = runes[:models.DescriptionFallbackLength]
	}
	return string(runes)
}
