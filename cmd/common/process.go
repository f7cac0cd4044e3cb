// Package common contains shared functionality for command handlers
package common

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"sms-ledger/cmd/root"
	"sms-ledger/internal/container"
	"sms-ledger/internal/currencyutils"
	"sms-ledger/internal/ingest"
	"sms-ledger/internal/parsererror"
)

// ParsePositions turns a "1,3,5" list of 1-based preview positions into 0-based indices.
func ParsePositions(list string) ([]int, error) {
	if strings.TrimSpace(list) == "" {
		return nil, nil
	}
	var indices []int
	for _, part := range strings.Split(list, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil || n < 1 {
			return nil, &parsererror.ValidationError{Field: "drop", Reason: fmt.Sprintf("%q is not a row position", part)}
		}
		indices = append(indices, n-1)
	}
	return indices, nil
}

// PrintPreview writes the counters and one line per draft, numbered from 1.
func PrintPreview(w io.Writer, p *ingest.Preview) error {
	fmt.Fprintf(w, "Preview %s: %d rows, %d non-empty, %d matched (%s)\n",
		p.ID, p.Counters.TotalRows, p.Counters.NonEmpty, p.Counters.Matched, p.Outcome())
	if p.Len() == 0 {
		return nil
	}
	tw := root.NewTable(w, "#", "DATETIME", "AMOUNT", "SOURCE", "CATEGORY", "DESCRIPTION")
	for i, d := range p.Drafts {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\t%s\n",
			i+1, d.DateTime, currencyutils.FormatAmount(d.Amount, d.Currency), d.Source, d.CategoryID, d.Description)
	}
	return tw.Flush()
}

// CommitPreview drops the given positions and commits what is left through a session.
func CommitPreview(ctx context.Context, c *container.Container, p *ingest.Preview, drop []int) ([]int64, error) {
	session := c.NewSession()
	if err := session.Resume(p); err != nil {
		return nil, err
	}
	if len(drop) > 0 {
		if err := session.Remove(drop...); err != nil {
			return nil, err
		}
	}
	return session.Commit(ctx)
}

// Container returns the container built by the root command.
func Container() (*container.Container, error) {
	if root.AppContainer == nil {
		return nil, fmt.Errorf("application container is not initialized")
	}
	return root.AppContainer, nil
}
