package resumes

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"resumehub/internal/extract"
	"resumehub/internal/growhire"
	"resumehub/internal/settings"
	"resumehub/internal/shared/storage/object"
	"resumehub/internal/shared/telemetry"
)

// Forwarder sends a candidate to the ATS. Implemented by growhire.Client.
type Forwarder interface {
	Forward(ctx context.Context, cand growhire.Candidate, cookie string, jobID string) (map[string]any, error)
}

// Service contains business logic for resumes.
type Service struct {
	Repo      Repo
	Store     object.ObjectStore
	Forwarder Forwarder
	Settings  *settings.Store
}

// Create uploads the resume file and persists a new record. The blob upload
// happens first: if it fails, no record is created.
func (s *Service) Create(ctx context.Context, fileName string, data []byte, profile Profile, fields map[string]any) (Resume, error) {
	if fileName == "" || len(data) == 0 {
		return Resume{}, ErrInvalidInput
	}

	ref, err := s.Store.Upload(ctx, fileName, bytes.NewReader(data))
	if err != nil {
		return Resume{}, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	// Best effort: an unparseable file is still a valid resume.
	extracted, err := extract.Text(ctx, data, ref.MimeType, fileName)
	if err != nil {
		telemetry.Info("resume.extract.skipped", map[string]any{
			"file_name": fileName,
			"mime_type": ref.MimeType,
			"reason":    err.Error(),
		})
		extracted = ""
	}

	now := time.Now().UTC()
	res := Resume{
		ID:      uuid.NewString(),
		Profile: profile,
		Fields:  fields,
		ResumePDF: ResumePDF{
			FileURL:   ref.URL,
			StorageID: ref.StorageID,
		},
		ExtractedText: extracted,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	res.SearchText = buildSearchText(res)

	if err := s.Repo.Create(ctx, res); err != nil {
		return Resume{}, err
	}
	return res, nil
}

// GetByID returns a resume by id.
func (s *Service) GetByID(ctx context.Context, id string) (Resume, error) {
	return s.Repo.GetByID(ctx, id)
}

// Update merges the patch into the record and refreshes the derived search text.
func (s *Service) Update(ctx context.Context, id string, patch Patch) (Resume, error) {
	res, err := s.Repo.UpdateByID(ctx, id, patch)
	if err != nil {
		return Resume{}, err
	}

	if text := buildSearchText(res); text != res.SearchText {
		if err := s.Repo.UpdateSearchText(ctx, id, text); err != nil {
			return Resume{}, err
		}
		res.SearchText = text
	}
	return res, nil
}

// Delete removes the record, then attempts exactly one deletion of its blob.
// A blob-deletion failure is logged, not surfaced: the record is already gone
// and reporting a failure would misstate the outcome.
func (s *Service) Delete(ctx context.Context, id string) (Resume, error) {
	res, err := s.Repo.DeleteByID(ctx, id)
	if err != nil {
		return Resume{}, err
	}

	if storageID := res.ResumePDF.StorageID; storageID != "" {
		if err := s.Store.Delete(ctx, storageID); err != nil {
			telemetry.Error("resume.blob.delete_failed", map[string]any{
				"resume_id":  id,
				"storage_id": storageID,
				"err":        err.Error(),
			})
		}
	}
	return res, nil
}

// ListAll returns every resume.
func (s *Service) ListAll(ctx context.Context) ([]Resume, error) {
	return s.Repo.ListAll(ctx)
}

// Search returns one page of matching resumes.
func (s *Service) Search(ctx context.Context, page, limit int, keywords []string) (SearchResult, error) {
	return s.Repo.Search(ctx, page, limit, keywords)
}

// Forward sends the resume to the ATS. Blank cookie/jobID fall back to the
// stored settings, and a blank job id further falls back to the resume's own
// profile. Forwarding does not mutate the record.
func (s *Service) Forward(ctx context.Context, id, cookie, jobID string) (map[string]any, error) {
	res, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	cookie = strings.TrimSpace(cookie)
	jobID = strings.TrimSpace(jobID)
	if s.Settings != nil {
		if cookie == "" {
			cookie = s.Settings.Get(settings.KeyCookie)
		}
		if jobID == "" {
			jobID = s.Settings.Get(settings.KeyJobID)
		}
	}
	if jobID == "" {
		jobID = res.Profile.JobID
	}

	if cookie == "" {
		return nil, ErrMissingCredential
	}
	if jobID == "" {
		return nil, fmt.Errorf("%w: job id is required", ErrInvalidInput)
	}

	cand := growhire.Candidate{
		FirstName: res.Profile.FirstName,
		LastName:  res.Profile.LastName,
		Name:      res.Profile.Name,
		Email:     res.Profile.Email,
		Phone:     res.Profile.Phone,
		FileURL:   res.ResumePDF.FileURL,
	}
	return s.Forwarder.Forward(ctx, cand, cookie, jobID)
}

// buildSearchText flattens the profile, the free-form fields and the
// extracted file text into the string the keyword index covers.
func buildSearchText(res Resume) string {
	var parts []string
	add := func(s string) {
		if trimmed := strings.TrimSpace(s); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}

	add(res.Profile.FirstName)
	add(res.Profile.LastName)
	add(res.Profile.Name)
	add(res.Profile.Email)
	add(res.Profile.Phone)
	add(flattenFields(res.Fields))
	add(res.ExtractedText)

	return strings.Join(parts, "\n")
}

func flattenFields(fields map[string]any) string {
	var parts []string
	collectStrings(fields, &parts)
	return strings.Join(parts, "\n")
}

// collectStrings walks nested maps/slices in key order so the result is stable.
func collectStrings(v any, out *[]string) {
	switch t := v.(type) {
	case string:
		if trimmed := strings.TrimSpace(t); trimmed != "" {
			*out = append(*out, trimmed)
		}
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			collectStrings(t[k], out)
		}
	case []any:
		for _, item := range t {
			collectStrings(item, out)
		}
	}
}
