package resumes

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryRepo is an in-memory implementation of Repo, used when no database is
// configured (dev) and in tests.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string]Resume
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{data: make(map[string]Resume)}
}

// Create stores a new resume.
func (r *MemoryRepo) Create(ctx context.Context, res Resume) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[res.ID] = cloneResume(res)
	return nil
}

// GetByID returns a resume by id.
func (r *MemoryRepo) GetByID(ctx context.Context, id string) (Resume, error) {
	if err := ctx.Err(); err != nil {
		return Resume{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	res, ok := r.data[id]
	if !ok {
		return Resume{}, ErrNotFound
	}
	return cloneResume(res), nil
}

// UpdateByID merges the patch into the stored record.
func (r *MemoryRepo) UpdateByID(ctx context.Context, id string, patch Patch) (Resume, error) {
	if err := ctx.Err(); err != nil {
		return Resume{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	res, ok := r.data[id]
	if !ok {
		return Resume{}, ErrNotFound
	}

	res = cloneResume(res)
	applyProfilePatch(&res.Profile, patch.Profile)
	if len(patch.Fields) > 0 {
		if res.Fields == nil {
			res.Fields = make(map[string]any, len(patch.Fields))
		}
		for k, v := range patch.Fields {
			res.Fields[k] = v
		}
	}
	res.UpdatedAt = time.Now().UTC()

	r.data[id] = cloneResume(res)
	return res, nil
}

// UpdateSearchText replaces the derived search text.
func (r *MemoryRepo) UpdateSearchText(ctx context.Context, id string, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	res, ok := r.data[id]
	if !ok {
		return ErrNotFound
	}
	res.SearchText = text
	r.data[id] = res
	return nil
}

// DeleteByID removes a resume and returns its prior state.
func (r *MemoryRepo) DeleteByID(ctx context.Context, id string) (Resume, error) {
	if err := ctx.Err(); err != nil {
		return Resume{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	res, ok := r.data[id]
	if !ok {
		return Resume{}, ErrNotFound
	}
	delete(r.data, id)
	return res, nil
}

// ListAll returns every resume, newest first.
func (r *MemoryRepo) ListAll(ctx context.Context) ([]Resume, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sortedSnapshot(), nil
}

// Search filters by keywords (every keyword must appear in the search text)
// and paginates with the same offset semantics as the Postgres repo.
func (r *MemoryRepo) Search(ctx context.Context, page, limit int, keywords []string) (SearchResult, error) {
	if err := ctx.Err(); err != nil {
		return SearchResult{}, err
	}
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = 10
	}

	r.mu.RLock()
	all := r.sortedSnapshot()
	r.mu.RUnlock()

	var matched []Resume
	for _, res := range all {
		if matchesKeywords(res.SearchText, keywords) {
			matched = append(matched, res)
		}
	}

	totalCount := len(matched)
	start := (page - 1) * limit
	if start > totalCount {
		start = totalCount
	}
	end := start + limit
	if end > totalCount {
		end = totalCount
	}

	return SearchResult{
		Items:       matched[start:end],
		CurrentPage: page,
		TotalPages:  totalPages(totalCount, limit),
		TotalCount:  totalCount,
	}, nil
}

func (r *MemoryRepo) sortedSnapshot() []Resume {
	out := make([]Resume, 0, len(r.data))
	for _, res := range r.data {
		out = append(out, cloneResume(res))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func matchesKeywords(searchText string, keywords []string) bool {
	if len(keywords) == 0 {
		return true
	}
	haystack := strings.ToLower(searchText)
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" {
			continue
		}
		if !strings.Contains(haystack, kw) {
			return false
		}
	}
	return true
}

func applyProfilePatch(p *Profile, patch map[string]any) {
	for k, v := range patch {
		s, _ := v.(string)
		switch k {
		case "firstName":
			p.FirstName = s
		case "lastName":
			p.LastName = s
		case "name":
			p.Name = s
		case "email":
			p.Email = s
		case "phone":
			p.Phone = s
		case "jobId":
			p.JobID = s
		}
	}
}

func cloneResume(res Resume) Resume {
	if res.Fields != nil {
		fields := make(map[string]any, len(res.Fields))
		for k, v := range res.Fields {
			fields[k] = v
		}
		res.Fields = fields
	}
	return res
}

var _ Repo = (*MemoryRepo)(nil)
