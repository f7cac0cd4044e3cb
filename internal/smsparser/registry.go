package smsparser

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	"sms-ledger/internal/dateutils"
	"sms-ledger/internal/parsererror"
)

// DFCCCreditCard matches DFCC Bank credit card debit alerts:
//
//	": JOHN DOE CARD**1234 DEBITED USD 1,250.00 ON(15/JAN/2024 14:30)"
var DFCCCreditCard = Pattern{
	Name: "DFCC CC",
	Regex: regexp.MustCompile(`(?i):\s+(?P<merchant>.+?)\sCARD\*\*(?P<source>\d{4})\s+DEBITED\s+` +
		`(?P<currency>[A-Z]{3})\s+(?P<amount>[\d,]+\.\d{2})\s+ON\((?P<datetime>\d{2}/[A-Z]{3}/\d{4}\s+\d{2}:\d{2})\)`),
	Layouts: []string{dateutils.LayoutSlashMonthName},
}

// CardUsageAlert matches the generic "card ending" purchase alert several local issuers send:
//
//	"Your card ending 4321 was used for LKR 2,500.00 at KEELLS SUPER on 15-01-2024 14:30"
var CardUsageAlert = Pattern{
	Name: "Card Usage Alert",
	Regex: regexp.MustCompile(`(?i)card\s+ending\s+(?:with\s+)?(?P<source>\d{4})\s+(?:was|has\s+been)\s+used\s+for\s+` +
		`(?P<currency>[A-Z]{3})\s*(?P<amount>[\d,]+(?:\.\d{1,2})?)\s+at\s+(?P<merchant>.+?)\s+on\s+` +
		`(?P<datetime>\d{2}[-/]\d{2}[-/]\d{4}\s+\d{2}:\d{2}(?::\d{2})?)`),
	Layouts: []string{
		dateutils.LayoutDashNumeric,
		dateutils.LayoutDashNumericS,
		dateutils.LayoutSlashNumeric,
		dateutils.LayoutSlashNumericS,
	},
}

// Registry is the ordered list of patterns. The first pattern that matches decides;
// later patterns are never evaluated for that text.
type Registry struct {
	mu       sync.RWMutex
	patterns []Pattern
}

// NewRegistry builds a registry holding patterns in the given order.
func NewRegistry(patterns ...Pattern) (*Registry, error) {
	r := &Registry{}
	for _, p := range patterns {
		if err := r.Register(p); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// DefaultRegistry returns a registry with the built-in bank formats.
func DefaultRegistry() *Registry {
	return &Registry{patterns: []Pattern{DFCCCreditCard, CardUsageAlert}}
}

// Register appends p after every pattern already registered.
func (r *Registry) Register(p Pattern) error {
	if strings.TrimSpace(p.Name) == "" {
		return &parsererror.ValidationError{Field: "name", Reason: "pattern name is required"}
	}
	if p.Regex == nil {
		return &parsererror.ValidationError{Field: "regex", Reason: fmt.Sprintf("pattern %q has no regex", p.Name)}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.patterns {
		if strings.EqualFold(existing.Name, p.Name) {
			return fmt.Errorf("pattern %q: %w", p.Name, parsererror.ErrAlreadyExists)
		}
	}
	r.patterns = append(r.patterns, p)
	return nil
}

// Names lists the registered patterns in evaluation order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, len(r.patterns))
	for i, p := range r.patterns {
		names[i] = p.Name
	}
	return names
}

// Len returns the number of registered patterns.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.patterns)
}

// Match runs the patterns in order and returns the first that matches text.
func (r *Registry) Match(text string) (Pattern, Captures, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.patterns {
		if captures, ok := p.Apply(text); ok {
			return p, captures, true
		}
	}
	return Pattern{}, Captures{}, false
}
