package domain

// DefaultPageSize is the page size when none is specified.
const DefaultPageSize = 25

// MaxPageSize is the maximum allowed page size.
const MaxPageSize = 200

// PageRequest holds pagination parameters for list operations.
// Pages are 1-based.
type PageRequest struct {
	Page  int
	Limit int
}

// EffectiveLimit returns the page size clamped to [1, MaxPageSize].
func (p PageRequest) EffectiveLimit() int {
	if p.Limit <= 0 {
		return DefaultPageSize
	}
	if p.Limit > MaxPageSize {
		return MaxPageSize
	}
	return p.Limit
}

// EffectivePage returns the 1-based page number, defaulting to 1.
func (p PageRequest) EffectivePage() int {
	if p.Page <= 0 {
		return 1
	}
	return p.Page
}

// Offset returns the row offset for the effective page and limit.
func (p PageRequest) Offset() int {
	return (p.EffectivePage() - 1) * p.EffectiveLimit()
}

// TotalPages computes the number of pages for a total row count.
func (p PageRequest) TotalPages(total int64) int {
	limit := int64(p.EffectiveLimit())
	pages := (total + limit - 1) / limit
	if pages < 1 {
		pages = 1
	}
	return int(pages)
}
