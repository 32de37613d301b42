package growhire

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path"
	"strconv"
	"strings"
	"time"
)

const (
	defaultEndpoint = "https://dash.growhire.com/api/candidate/create?_data=routes%2Fapi.candidate.create"
	defaultOrigin   = "https://dash.growhire.com"
	defaultReferer  = "https://dash.growhire.com/app/jobs/"

	fallbackValue = "N/A"
)

// Candidate carries the resume fields the ATS form is built from. Name parts
// may come in structured (FirstName/LastName) or combined (Name) shape.
type Candidate struct {
	FirstName string
	LastName  string
	Name      string
	Email     string
	Phone     string
	FileURL   string
}

// Client posts candidates to the GrowHire ATS. Authentication is a raw
// browser session cookie supplied per call; there is no retry policy and no
// idempotency key, so forwarding twice creates two candidates upstream.
type Client struct {
	httpClient *http.Client
	endpoint   string
	origin     string
	referer    string
}

// NewClient constructs a GrowHire client. GROWHIRE_ENDPOINT and
// GROWHIRE_TIMEOUT_SECONDS override the defaults.
func NewClient() *Client {
	timeout := 30 * time.Second
	if raw := strings.TrimSpace(os.Getenv("GROWHIRE_TIMEOUT_SECONDS")); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			timeout = time.Duration(parsed) * time.Second
		}
	}
	endpoint := strings.TrimSpace(os.Getenv("GROWHIRE_ENDPOINT"))
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		endpoint:   endpoint,
		origin:     defaultOrigin,
		referer:    defaultReferer,
	}
}

type socialLink struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}

// Forward downloads the stored resume file and posts the candidate form.
// It returns the ATS's parsed JSON response body.
func (c *Client) Forward(ctx context.Context, cand Candidate, cookie string, jobID string) (map[string]any, error) {
	firstName, lastName := splitName(cand)

	fileBytes, fileName, err := c.download(ctx, cand.FileURL)
	if err != nil {
		return nil, err
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	fields := []struct{ name, value string }{
		{"firstName", orFallback(firstName)},
		{"lastName", orFallback(lastName)},
		{"email", orFallback(cand.Email)},
		{"phoneNumber", orFallback(cand.Phone)},
		{"socialLinks", marshalSocialLinks(cand.FileURL)},
		{"customFields", "[]"},
		{"jobId", jobID},
	}
	for _, f := range fields {
		if err := writer.WriteField(f.name, f.value); err != nil {
			return nil, fmt.Errorf("write form field %s: %w", f.name, err)
		}
	}

	part, err := writer.CreateFormFile("resumeFile", fileName)
	if err != nil {
		return nil, fmt.Errorf("create resume file part: %w", err)
	}
	if _, err := part.Write(fileBytes); err != nil {
		return nil, fmt.Errorf("write resume file part: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, &body)
	if err != nil {
		return nil, fmt.Errorf("build candidate request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Origin", c.origin)
	req.Header.Set("Referer", c.referer)
	req.Header.Set("Cookie", cookie)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("post candidate: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read candidate response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &ForwardError{StatusCode: resp.StatusCode, Body: truncate(string(respBody), 512)}
	}

	var parsed map[string]any
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, &ForwardError{StatusCode: resp.StatusCode, Body: truncate(string(respBody), 512)}
	}
	return parsed, nil
}

// download fetches the stored resume file fresh at forward time.
func (c *Client) download(ctx context.Context, fileURL string) ([]byte, string, error) {
	if strings.TrimSpace(fileURL) == "" {
		return nil, "", &DownloadError{URL: fileURL, Err: fmt.Errorf("empty file url")}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return nil, "", &DownloadError{URL: fileURL, Err: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", &DownloadError{URL: fileURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", &DownloadError{URL: fileURL, Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", &DownloadError{URL: fileURL, Err: err}
	}

	return data, fileNameFromURL(fileURL), nil
}

// splitName resolves first/last name: structured fields win, otherwise the
// combined name splits on whitespace (first token / last token).
func splitName(cand Candidate) (string, string) {
	firstName := strings.TrimSpace(cand.FirstName)
	lastName := strings.TrimSpace(cand.LastName)
	if firstName != "" || lastName != "" {
		return firstName, lastName
	}

	parts := strings.Fields(cand.Name)
	if len(parts) == 0 {
		return "", ""
	}
	return parts[0], parts[len(parts)-1]
}

func marshalSocialLinks(fileURL string) string {
	links := []socialLink{}
	if strings.TrimSpace(fileURL) != "" {
		links = append(links, socialLink{Type: "url", URL: fileURL})
	}
	data, err := json.Marshal(links)
	if err != nil {
		return "[]"
	}
	return string(data)
}

func orFallback(value string) string {
	if strings.TrimSpace(value) == "" {
		return fallbackValue
	}
	return value
}

func fileNameFromURL(fileURL string) string {
	parsed, err := url.Parse(fileURL)
	if err != nil {
		return "resume.pdf"
	}
	name := path.Base(parsed.Path)
	if name == "" || name == "." || name == "/" {
		return "resume.pdf"
	}
	return name
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
