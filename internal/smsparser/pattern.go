// Package smsparser extracts transaction drafts from bank notification text using an
// ordered registry of source-specific patterns.
package smsparser

import (
	"regexp"
	"strings"
)

// Capture group names a pattern regex may declare.
const (
	GroupMerchant = "merchant"
	GroupSource   = "source"
	GroupCurrency = "currency"
	GroupAmount   = "amount"
	GroupDateTime = "datetime"
)

// Captures is the partial draft a pattern produces from a match. Empty fields are
// filled with the extractor fallbacks.
type Captures struct {
	Merchant string
	Source   string
	Currency string
	Amount   string
	DateTime string
}

// Mapper turns the named groups of a match into Captures. It must be pure.
type Mapper func(groups map[string]string) Captures

// Pattern recognizes one notification format.
type Pattern struct {
	// Name identifies the pattern in logs and in drafts ("DFCC CC").
	Name string
	// Regex must declare named groups; see the Group constants.
	Regex *regexp.Regexp
	// Layouts lists the time layouts of the datetime capture, tried in order.
	Layouts []string
	// Map is optional. Without it, groups are copied by name.
	Map Mapper
}

// Apply matches text and maps the result. It reports false when the regex does not match.
func (p Pattern) Apply(text string) (Captures, bool) {
	m := p.Regex.FindStringSubmatch(text)
	if m == nil {
		return Captures{}, false
	}

	groups := make(map[string]string, len(m))
	for i, name := range p.Regex.SubexpNames() {
		if name == "" || i >= len(m) {
			continue
		}
		groups[name] = strings.TrimSpace(m[i])
	}

	mapper := p.Map
	if mapper == nil {
		mapper = MapByGroupName
	}
	return mapper(groups), true
}

// MapByGroupName copies the standard named groups into Captures.
func MapByGroupName(groups map[string]string) Captures {
	return Captures{
		Merchant: groups[GroupMerchant],
		Source:   groups[GroupSource],
		Currency: groups[GroupCurrency],
		Amount:   groups[GroupAmount],
		DateTime: groups[GroupDateTime],
	}
}
