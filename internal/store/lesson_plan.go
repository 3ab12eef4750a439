package store

import (
	"context"
	"database/sql"
	"math"
	"strings"

	"github.com/google/uuid"
	"github.com/phrazzld/lessondeck/internal/domain"
)

// List defaults and bounds.
const (
	DefaultPage     = 1
	DefaultPageSize = 10
	MaxPageSize     = 100
	// MaxPage keeps Offset inside an int32 for any page size.
	MaxPage = math.MaxInt32 / MaxPageSize
)

// SortField names a column a list may be ordered by.
type SortField string

// Sortable columns. Anything else falls back to SortByCreatedAt.
const (
	SortByCreatedAt SortField = "created_at"
	SortByLesson    SortField = "lesson"
	SortByModule    SortField = "module"
)

// SortDirection is either ascending or descending.
type SortDirection string

// Sort directions
const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// ListParams controls paging, search and ordering of a list query.
type ListParams struct {
	Page     int
	PageSize int
	// Search matches case-insensitively against lesson and module.
	Search  string
	SortBy  SortField
	SortDir SortDirection
	// Grade restricts the result to one grade when non-nil.
	Grade *int
}

// Normalize returns a copy with defaults applied and out-of-range values
// clamped. Unknown sort columns and directions fall back to created_at desc.
func (p ListParams) Normalize() ListParams {
	switch {
	case p.Page < 1:
		p.Page = DefaultPage
	case p.Page > MaxPage:
		p.Page = MaxPage
	}
	switch {
	case p.PageSize < 1:
		p.PageSize = DefaultPageSize
	case p.PageSize > MaxPageSize:
		p.PageSize = MaxPageSize
	}
	p.Search = strings.TrimSpace(p.Search)

	switch SortField(strings.ToLower(string(p.SortBy))) {
	case SortByLesson:
		p.SortBy = SortByLesson
	case SortByModule:
		p.SortBy = SortByModule
	default:
		p.SortBy = SortByCreatedAt
	}

	if SortDirection(strings.ToLower(string(p.SortDir))) == SortAsc {
		p.SortDir = SortAsc
	} else {
		p.SortDir = SortDesc
	}
	return p
}

// Offset returns the row offset of the first item on the page.
func (p ListParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// LessonPlanPage is one page of a lesson plan listing.
type LessonPlanPage struct {
	Items    []*domain.LessonPlan `json:"items"`
	Total    int                  `json:"total"`
	Page     int                  `json:"page"`
	PageSize int                  `json:"page_size"`
}

// LessonPlanStore defines the interface for lesson plan data persistence.
type LessonPlanStore interface {
	// Create saves a new lesson plan to the store.
	// Returns ErrInvalidEntity if the plan fails validation.
	Create(ctx context.Context, plan *domain.LessonPlan) error

	// GetByID retrieves a lesson plan by its unique ID.
	// Returns ErrLessonPlanNotFound if the plan does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.LessonPlan, error)

	// List returns one page of lesson plans matching params. The params are
	// normalized before use, and the returned page echoes the normalized values.
	List(ctx context.Context, params ListParams) (*LessonPlanPage, error)

	// WithTx returns a new store instance that uses the provided transaction.
	WithTx(tx *sql.Tx) LessonPlanStore
}
