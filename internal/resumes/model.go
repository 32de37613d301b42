package resumes

import "time"

// Profile holds the structured identity fields parsed out of a resume.
// Both shapes seen in the wild are supported: separate first/last names and a
// single combined name string.
type Profile struct {
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Name      string `json:"name,omitempty"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
	JobID     string `json:"jobId,omitempty"`
}

// ResumePDF references the stored resume file. Set exactly once at creation.
type ResumePDF struct {
	FileURL   string `json:"fileUrl"`
	StorageID string `json:"storageId"`
}

// Resume is a stored resume record. Fields carries the free-form parsed
// resume content supplied at creation time. ExtractedText and SearchText are
// derived and feed the keyword search index.
type Resume struct {
	ID            string
	Profile       Profile
	Fields        map[string]any
	ResumePDF     ResumePDF
	ExtractedText string
	SearchText    string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
