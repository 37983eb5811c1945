package feed

import (
	"fmt"
	"strings"
)

// Validate checks the standings contract: a race id is present, ranks
// start at 1 and are unique, bibs are present and unique, penalties
// are not negative.
func (r *Results) Validate() error {
	if strings.TrimSpace(r.RaceID) == "" {
		return fmt.Errorf("%w: results missing race_id", ErrValidation)
	}
	seenBib := make(map[string]bool, len(r.Rows))
	seenRank := make(map[int]bool, len(r.Rows))
	for i := range r.Rows {
		row := &r.Rows[i]
		if row.Rank < 1 {
			return fmt.Errorf("%w: row %d rank below 1", ErrValidation, i)
		}
		if seenRank[row.Rank] {
			return fmt.Errorf("%w: duplicate rank %d", ErrValidation, row.Rank)
		}
		seenRank[row.Rank] = true
		if strings.TrimSpace(row.Bib) == "" {
			return fmt.Errorf("%w: row %d missing bib", ErrValidation, i)
		}
		if seenBib[row.Bib] {
			return fmt.Errorf("%w: duplicate bib %q", ErrValidation, row.Bib)
		}
		seenBib[row.Bib] = true
		if row.Penalty < 0 {
			return fmt.Errorf("%w: row %d negative penalty", ErrValidation, i)
		}
	}
	return nil
}

// Validate checks the on-course contract: bibs are present and unique,
// penalties and gate values are not negative.
func (o *OnCourse) Validate() error {
	seenBib := make(map[string]bool, len(o.Competitors))
	for i := range o.Competitors {
		c := &o.Competitors[i]
		if strings.TrimSpace(c.Bib) == "" {
			return fmt.Errorf("%w: competitor %d missing bib", ErrValidation, i)
		}
		if seenBib[c.Bib] {
			return fmt.Errorf("%w: duplicate bib %q", ErrValidation, c.Bib)
		}
		seenBib[c.Bib] = true
		if c.Penalty < 0 {
			return fmt.Errorf("%w: competitor %d negative penalty", ErrValidation, i)
		}
		for _, g := range c.Gates {
			if g < 0 {
				return fmt.Errorf("%w: competitor %d negative gate value", ErrValidation, i)
			}
		}
	}
	return nil
}
