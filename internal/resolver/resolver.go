// Package resolver reconciles extracted drafts against the learned mapping tables.
package resolver

import (
	"strings"

	"sms-ledger/internal/logging"
	"sms-ledger/internal/models"
)

// Match policies for description mappings.
const (
	// PolicyFirst picks the first matching mapping in table order.
	PolicyFirst = "first"
	// PolicyLongest picks the longest matching mapping; ties keep table order.
	PolicyLongest = "longest"
)

// Tables is a read-only snapshot of the mapping tables and the live category list.
type Tables struct {
	Descriptions []models.DescriptionMapping
	Sources      []models.SourceMapping
	Categories   []models.Category
}

type descriptionRule struct {
	needle   string
	category string
}

// Resolver rewrites the category and source of drafts. It never mutates its snapshot,
// so one Resolver may be shared between goroutines.
type Resolver struct {
	rules      []descriptionRule
	sources    map[string]string
	categories map[string]int64
	policy     string
	logger     logging.Logger
}

// New builds a Resolver from a snapshot. Unknown policies behave like PolicyFirst.
func New(tables Tables, policy string, logger logging.Logger) *Resolver {
	r := &Resolver{
		rules:      make([]descriptionRule, 0, len(tables.Descriptions)),
		sources:    make(map[string]string, len(tables.Sources)),
		categories: make(map[string]int64, len(tables.Categories)),
		policy:     policy,
		logger:     logging.OrDefault(logger),
	}

	for _, m := range tables.Descriptions {
		needle := strings.ToLower(m.Description)
		if strings.TrimSpace(needle) == "" {
			continue
		}
		r.rules = append(r.rules, descriptionRule{needle: needle, category: m.Category})
	}
	direct := make(map[string]string, len(tables.Sources))
	for _, m := range tables.Sources {
		if _, seen := direct[m.Reference]; !seen {
			direct[m.Reference] = m.Source
		}
	}
	// A source that is itself a reference is followed to the end of its chain, so
	// resolving a resolved draft changes nothing.
	for reference := range direct {
		r.sources[reference] = terminalSource(direct, reference)
	}
	for _, c := range tables.Categories {
		if _, seen := r.categories[c.Name]; !seen {
			r.categories[c.Name] = c.ID
		}
	}
	return r
}

// Resolve returns draft with its category and source reconciled. The input is not modified.
func (r *Resolver) Resolve(draft models.Draft) models.Draft {
	if category, ok := r.matchDescription(draft.Description); ok {
		if id, known := r.categories[category]; known {
			draft.CategoryID = id
		} else {
			r.logger.Debug("Mapped category is not a live category",
				logging.F(logging.FieldDescription, draft.Description),
				logging.F(logging.FieldCategory, category))
		}
	}

	if source, ok := r.sources[draft.Source]; ok {
		draft.Source = source
	}
	return draft
}

// ResolveAll resolves every draft in order.
func (r *Resolver) ResolveAll(drafts []models.Draft) []models.Draft {
	out := make([]models.Draft, len(drafts))
	for i, d := range drafts {
		out[i] = r.Resolve(d)
	}
	return out
}

// CategoryID returns the id of a live category by exact name.
func (r *Resolver) CategoryID(name string) (int64, bool) {
	id, ok := r.categories[name]
	return id, ok
}

// terminalSource follows reference through direct until it reaches a name that is not
// a reference. A cycle ends at its lexicographically smallest member, which every
// member of the cycle then maps to.
func terminalSource(direct map[string]string, reference string) string {
	var path []string
	index := make(map[string]int)
	current := reference
	for {
		next, ok := direct[current]
		if !ok {
			return current
		}
		if at, looped := index[current]; looped {
			smallest := path[at]
			for _, name := range path[at:] {
				if name < smallest {
					smallest = name
				}
			}
			return smallest
		}
		index[current] = len(path)
		path = append(path, current)
		current = next
	}
}

func (r *Resolver) matchDescription(description string) (string, bool) {
	haystack := strings.ToLower(description)
	best := -1
	for i, rule := range r.rules {
		if !strings.Contains(haystack, rule.needle) {
			continue
		}
		if r.policy != PolicyLongest {
			return rule.category, true
		}
		if best < 0 || len(rule.needle) > len(r.rules[best].needle) {
			best = i
		}
	}
	if best < 0 {
		return "", false
	}
	return r.rules[best].category, true
}
