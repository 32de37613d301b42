package growhire

import "fmt"

// DownloadError indicates the stored resume file could not be fetched; the
// candidate POST is never attempted on this path.
type DownloadError struct {
	URL string
	Err error
}

func (e *DownloadError) Error() string {
	return fmt.Sprintf("download resume file %s: %v", e.URL, e.Err)
}

func (e *DownloadError) Unwrap() error { return e.Err }

// ForwardError indicates the candidate POST failed upstream or returned a
// body that is not valid JSON.
type ForwardError struct {
	StatusCode int
	Body       string
}

func (e *ForwardError) Error() string {
	return fmt.Sprintf("growhire candidate create failed: status=%d body=%s", e.StatusCode, e.Body)
}
