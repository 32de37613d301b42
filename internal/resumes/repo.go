package resumes

import "context"

// Patch carries partial updates for a resume. Keys under Profile merge into
// the stored profile; keys under Fields merge into the free-form fields.
type Patch struct {
	Profile map[string]any
	Fields  map[string]any
}

// SearchResult is one page of matching resumes plus pagination bookkeeping.
type SearchResult struct {
	Items       []Resume
	CurrentPage int
	TotalPages  int
	TotalCount  int
}

// Repo defines persistence operations for resumes.
type Repo interface {
	Create(ctx context.Context, r Resume) error
	GetByID(ctx context.Context, id string) (Resume, error)
	UpdateByID(ctx context.Context, id string, patch Patch) (Resume, error)
	UpdateSearchText(ctx context.Context, id string, text string) error
	DeleteByID(ctx context.Context, id string) (Resume, error)
	ListAll(ctx context.Context) ([]Resume, error)
	Search(ctx context.Context, page, limit int, keywords []string) (SearchResult, error)
}
