package resumes

import "time"

// ResumeResponse is the outward-facing representation of a resume.
type ResumeResponse struct {
	ID        string         `json:"id"`
	Profile   Profile        `json:"profile"`
	Fields    map[string]any `json:"fields,omitempty"`
	ResumePDF ResumePDF      `json:"resumePdf"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// SearchResponse is one page of resumes plus pagination bookkeeping.
type SearchResponse struct {
	Items       []ResumeResponse `json:"items"`
	CurrentPage int              `json:"currentPage"`
	TotalPages  int              `json:"totalPages"`
	TotalCount  int              `json:"totalCount"`
}

func toResponse(res Resume) ResumeResponse {
	return ResumeResponse{
		ID:        res.ID,
		Profile:   res.Profile,
		Fields:    res.Fields,
		ResumePDF: res.ResumePDF,
		CreatedAt: res.CreatedAt,
		UpdatedAt: res.UpdatedAt,
	}
}

func toSearchResponse(result SearchResult) SearchResponse {
	items := make([]ResumeResponse, 0, len(result.Items))
	for _, res := range result.Items {
		items = append(items, toResponse(res))
	}
	return SearchResponse{
		Items:       items,
		CurrentPage: result.CurrentPage,
		TotalPages:  result.TotalPages,
		TotalCount:  result.TotalCount,
	}
}
