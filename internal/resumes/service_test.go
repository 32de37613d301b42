package resumes

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"resumehub/internal/growhire"
	"resumehub/internal/settings"
	"resumehub/internal/shared/storage/object"
)

type fakeStore struct {
	uploads   int
	deletes   []string
	uploadErr error
	deleteErr error
}

func (f *fakeStore) Upload(ctx context.Context, fileName string, r io.Reader) (object.BlobRef, error) {
	f.uploads++
	if f.uploadErr != nil {
		return object.BlobRef{}, f.uploadErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return object.BlobRef{}, err
	}
	return object.BlobRef{
		URL:       "http://files.test/blob_" + fileName,
		StorageID: "blob_" + fileName,
		SizeBytes: int64(len(data)),
		MimeType:  "application/octet-stream",
	}, nil
}

func (f *fakeStore) Open(ctx context.Context, storageID string) (io.ReadCloser, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeStore) Delete(ctx context.Context, storageID string) error {
	f.deletes = append(f.deletes, storageID)
	return f.deleteErr
}

type fakeForwarder struct {
	calls  int
	cand   growhire.Candidate
	cookie string
	jobID  string
	resp   map[string]any
	err    error
}

func (f *fakeForwarder) Forward(ctx context.Context, cand growhire.Candidate, cookie string, jobID string) (map[string]any, error) {
	f.calls++
	f.cand = cand
	f.cookie = cookie
	f.jobID = jobID
	return f.resp, f.err
}

func newTestService(t *testing.T) (*Service, *fakeStore, *fakeForwarder) {
	t.Helper()
	store := &fakeStore{}
	fwd := &fakeForwarder{resp: map[string]any{"ok": true}}
	settingsStore := settings.NewStore(filepath.Join(t.TempDir(), "settings.json"))
	svc := &Service{
		Repo:      NewMemoryRepo(),
		Store:     store,
		Forwarder: fwd,
		Settings:  settingsStore,
	}
	return svc, store, fwd
}

func TestServiceCreateStoresBlobReference(t *testing.T) {
	svc, store, _ := newTestService(t)

	profile := Profile{Name: "Jane Doe", Email: "jane@example.com"}
	fields := map[string]any{"skills": []any{"Go", "Postgres"}}

	res, err := svc.Create(context.Background(), "jane.pdf", []byte("not a real pdf"), profile, fields)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if res.ID == "" {
		t.Fatalf("expected generated id")
	}
	if res.ResumePDF.FileURL != "http://files.test/blob_jane.pdf" || res.ResumePDF.StorageID != "blob_jane.pdf" {
		t.Fatalf("unexpected blob reference: %+v", res.ResumePDF)
	}
	if store.uploads != 1 {
		t.Fatalf("expected 1 upload, got %d", store.uploads)
	}
	if !strings.Contains(res.SearchText, "jane@example.com") || !strings.Contains(res.SearchText, "Postgres") {
		t.Fatalf("search text missing profile or field values: %q", res.SearchText)
	}

	stored, err := svc.GetByID(context.Background(), res.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if stored.Profile.Email != "jane@example.com" {
		t.Fatalf("unexpected stored profile: %+v", stored.Profile)
	}
}

func TestServiceCreateUploadFailureCreatesNoRecord(t *testing.T) {
	svc, store, _ := newTestService(t)
	store.uploadErr = errors.New("bucket unavailable")

	_, err := svc.Create(context.Background(), "jane.pdf", []byte("data"), Profile{}, nil)
	if !errors.Is(err, ErrStorage) {
		t.Fatalf("expected ErrStorage, got %v", err)
	}

	list, err := svc.ListAll(context.Background())
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("expected no records after failed upload, got %d", len(list))
	}
}

func TestServiceCreateRejectsEmptyFile(t *testing.T) {
	svc, store, _ := newTestService(t)

	if _, err := svc.Create(context.Background(), "jane.pdf", nil, Profile{}, nil); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if store.uploads != 0 {
		t.Fatalf("expected no upload attempt, got %d", store.uploads)
	}
}

func TestServiceDeleteRemovesBlobOnce(t *testing.T) {
	svc, store, _ := newTestService(t)

	res, err := svc.Create(context.Background(), "jane.pdf", []byte("data"), Profile{Name: "Jane Doe"}, nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	deleted, err := svc.Delete(context.Background(), res.ID)
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if deleted.ID != res.ID {
		t.Fatalf("expected deleted record %s, got %s", res.ID, deleted.ID)
	}
	if len(store.deletes) != 1 || store.deletes[0] != res.ResumePDF.StorageID {
		t.Fatalf("expected exactly one blob delete for %q, got %v", res.ResumePDF.StorageID, store.deletes)
	}

	if _, err := svc.GetByID(context.Background(), res.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestServiceDeleteBlobFailureStillSucceeds(t *testing.T) {
	svc, store, _ := newTestService(t)
	store.deleteErr = errors.New("bucket unavailable")

	res, err := svc.Create(context.Background(), "jane.pdf", []byte("data"), Profile{}, nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := svc.Delete(context.Background(), res.ID); err != nil {
		t.Fatalf("expected delete to succeed despite blob failure, got %v", err)
	}
	if _, err := svc.GetByID(context.Background(), res.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected record gone, got %v", err)
	}
}

func TestServiceDeleteUnknownID(t *testing.T) {
	svc, store, _ := newTestService(t)

	if _, err := svc.Delete(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if len(store.deletes) != 0 {
		t.Fatalf("expected no blob delete for unknown record, got %v", store.deletes)
	}
}

func TestServiceUpdateRefreshesSearchText(t *testing.T) {
	svc, _, _ := newTestService(t)

	res, err := svc.Create(context.Background(), "jane.pdf", []byte("data"), Profile{Name: "Jane Doe", Email: "old@example.com"}, nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	updated, err := svc.Update(context.Background(), res.ID, Patch{
		Profile: map[string]any{"email": "new@example.com"},
		Fields:  map[string]any{"summary": "staff engineer"},
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	if updated.Profile.Email != "new@example.com" {
		t.Fatalf("expected patched email, got %q", updated.Profile.Email)
	}
	if updated.ResumePDF != res.ResumePDF {
		t.Fatalf("blob reference must not change on update")
	}
	if !strings.Contains(updated.SearchText, "new@example.com") || !strings.Contains(updated.SearchText, "staff engineer") {
		t.Fatalf("search text not refreshed: %q", updated.SearchText)
	}
	if strings.Contains(updated.SearchText, "old@example.com") {
		t.Fatalf("search text still holds replaced value: %q", updated.SearchText)
	}
}

func TestServiceForwardUsesSuppliedCredential(t *testing.T) {
	svc, _, fwd := newTestService(t)

	res, err := svc.Create(context.Background(), "jane.pdf", []byte("data"), Profile{Name: "Jane Doe", Email: "jane@example.com"}, nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	result, err := svc.Forward(context.Background(), res.ID, "sid=abc", "job-7")
	if err != nil {
		t.Fatalf("Forward: %v", err)
	}
	if result["ok"] != true {
		t.Fatalf("unexpected result: %v", result)
	}
	if fwd.cookie != "sid=abc" || fwd.jobID != "job-7" {
		t.Fatalf("credential not passed through: cookie=%q jobID=%q", fwd.cookie, fwd.jobID)
	}
	if fwd.cand.Name != "Jane Doe" || fwd.cand.FileURL != res.ResumePDF.FileURL {
		t.Fatalf("unexpected candidate: %+v", fwd.cand)
	}
}

func TestServiceForwardFallsBackToStoredSettings(t *testing.T) {
	svc, _, fwd := newTestService(t)
	if err := svc.Settings.Set(settings.KeyCookie, "sid=stored"); err != nil {
		t.Fatalf("Set cookie: %v", err)
	}
	if err := svc.Settings.Set(settings.KeyJobID, "job-stored"); err != nil {
		t.Fatalf("Set job id: %v", err)
	}

	res, err := svc.Create(context.Background(), "jane.pdf", []byte("data"), Profile{Name: "Jane Doe"}, nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := svc.Forward(context.Background(), res.ID, "", ""); err != nil {
		t.Fatalf("Forward: %v", err)
	}
	if fwd.cookie != "sid=stored" || fwd.jobID != "job-stored" {
		t.Fatalf("expected stored fallbacks, got cookie=%q jobID=%q", fwd.cookie, fwd.jobID)
	}
}

func TestServiceForwardMissingCookie(t *testing.T) {
	svc, _, fwd := newTestService(t)

	res, err := svc.Create(context.Background(), "jane.pdf", []byte("data"), Profile{JobID: "job-1"}, nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := svc.Forward(context.Background(), res.ID, "", ""); !errors.Is(err, ErrMissingCredential) {
		t.Fatalf("expected ErrMissingCredential, got %v", err)
	}
	if fwd.calls != 0 {
		t.Fatalf("expected no upstream call without credential, got %d", fwd.calls)
	}
}

func TestServiceForwardJobIDFromProfile(t *testing.T) {
	svc, _, fwd := newTestService(t)

	res, err := svc.Create(context.Background(), "jane.pdf", []byte("data"), Profile{Name: "Jane Doe", JobID: "job-profile"}, nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := svc.Forward(context.Background(), res.ID, "sid=abc", ""); err != nil {
		t.Fatalf("Forward: %v", err)
	}
	if fwd.jobID != "job-profile" {
		t.Fatalf("expected job id from profile, got %q", fwd.jobID)
	}
}
