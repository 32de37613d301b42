package growhire

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestClient(endpoint string) *Client {
	return &Client{
		httpClient: &http.Client{},
		endpoint:   endpoint,
		origin:     defaultOrigin,
		referer:    defaultReferer,
	}
}

func TestSplitName(t *testing.T) {
	cases := []struct {
		name      string
		cand      Candidate
		wantFirst string
		wantLast  string
	}{
		{"structured wins", Candidate{FirstName: "Jane", LastName: "Doe", Name: "Ignored Person"}, "Jane", "Doe"},
		{"combined two tokens", Candidate{Name: "Jane Doe"}, "Jane", "Doe"},
		{"combined three tokens", Candidate{Name: "Jane van Doe"}, "Jane", "Doe"},
		{"single token", Candidate{Name: "Jane"}, "Jane", "Jane"},
		{"empty", Candidate{}, "", ""},
		{"first only", Candidate{FirstName: "Jane"}, "Jane", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			first, last := splitName(tc.cand)
			if first != tc.wantFirst || last != tc.wantLast {
				t.Fatalf("splitName = %q/%q, want %q/%q", first, last, tc.wantFirst, tc.wantLast)
			}
		})
	}
}

func TestForwardPostsCandidateForm(t *testing.T) {
	fileSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("%PDF-1.4 fake"))
	}))
	defer fileSrv.Close()

	var (
		gotCookie string
		gotForm   map[string]string
		gotFile   []byte
		gotName   string
	)
	ats := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("ParseMultipartForm: %v", err)
		}
		gotCookie = r.Header.Get("Cookie")
		gotForm = map[string]string{}
		for k, v := range r.MultipartForm.Value {
			if len(v) > 0 {
				gotForm[k] = v[0]
			}
		}
		if f, hdr, err := r.FormFile("resumeFile"); err == nil {
			gotName = hdr.Filename
			gotFile, _ = io.ReadAll(f)
			f.Close()
		} else {
			t.Errorf("FormFile: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidateId":"c-1"}`))
	}))
	defer ats.Close()

	client := newTestClient(ats.URL)
	cand := Candidate{
		Name:    "Jane Doe",
		Email:   "jane@example.com",
		FileURL: fileSrv.URL + "/jane_resume.pdf",
	}

	result, err := client.Forward(context.Background(), cand, "sid=abc123", "job-42")
	if err != nil {
		t.Fatalf("Forward: %v", err)
	}
	if result["candidateId"] != "c-1" {
		t.Fatalf("expected candidateId c-1, got %v", result)
	}

	if gotCookie != "sid=abc123" {
		t.Fatalf("expected session cookie forwarded, got %q", gotCookie)
	}
	if gotForm["firstName"] != "Jane" || gotForm["lastName"] != "Doe" {
		t.Fatalf("unexpected name fields: %v", gotForm)
	}
	if gotForm["email"] != "jane@example.com" {
		t.Fatalf("unexpected email: %q", gotForm["email"])
	}
	if gotForm["phoneNumber"] != "N/A" {
		t.Fatalf("expected missing phone to fall back to N/A, got %q", gotForm["phoneNumber"])
	}
	if gotForm["jobId"] != "job-42" {
		t.Fatalf("unexpected jobId: %q", gotForm["jobId"])
	}
	if gotForm["customFields"] != "[]" {
		t.Fatalf("unexpected customFields: %q", gotForm["customFields"])
	}

	var links []socialLink
	if err := json.Unmarshal([]byte(gotForm["socialLinks"]), &links); err != nil {
		t.Fatalf("socialLinks not JSON: %v", err)
	}
	if len(links) != 1 || links[0].Type != "url" || links[0].URL != cand.FileURL {
		t.Fatalf("unexpected socialLinks: %v", links)
	}

	if gotName != "jane_resume.pdf" {
		t.Fatalf("unexpected resume file name: %q", gotName)
	}
	if string(gotFile) != "%PDF-1.4 fake" {
		t.Fatalf("unexpected resume file bytes: %q", gotFile)
	}
}

func TestForwardDownloadFailureSkipsPost(t *testing.T) {
	fileSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer fileSrv.Close()

	atsCalls := 0
	ats := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atsCalls++
	}))
	defer ats.Close()

	client := newTestClient(ats.URL)
	_, err := client.Forward(context.Background(), Candidate{Name: "Jane Doe", FileURL: fileSrv.URL + "/missing.pdf"}, "sid=abc", "job-1")

	var downloadErr *DownloadError
	if !errors.As(err, &downloadErr) {
		t.Fatalf("expected DownloadError, got %v", err)
	}
	if atsCalls != 0 {
		t.Fatalf("expected no candidate post after download failure, got %d", atsCalls)
	}
}

func TestForwardUpstreamRejection(t *testing.T) {
	fileSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("pdf"))
	}))
	defer fileSrv.Close()

	ats := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte("session expired"))
	}))
	defer ats.Close()

	client := newTestClient(ats.URL)
	_, err := client.Forward(context.Background(), Candidate{Name: "Jane Doe", FileURL: fileSrv.URL + "/r.pdf"}, "sid=stale", "job-1")

	var forwardErr *ForwardError
	if !errors.As(err, &forwardErr) {
		t.Fatalf("expected ForwardError, got %v", err)
	}
	if forwardErr.StatusCode != http.StatusForbidden {
		t.Fatalf("expected status 403, got %d", forwardErr.StatusCode)
	}
	if forwardErr.Body != "session expired" {
		t.Fatalf("unexpected upstream body: %q", forwardErr.Body)
	}
}

func TestFileNameFromURL(t *testing.T) {
	cases := []struct {
		url  string
		want string
	}{
		{"http://files.test/abc123_jane.pdf", "abc123_jane.pdf"},
		{"http://files.test/nested/path/cv.docx", "cv.docx"},
		{"http://files.test/", "resume.pdf"},
		{"", "resume.pdf"},
	}
	for _, tc := range cases {
		if got := fileNameFromURL(tc.url); got != tc.want {
			t.Fatalf("fileNameFromURL(%q) = %q, want %q", tc.url, got, tc.want)
		}
	}
}
