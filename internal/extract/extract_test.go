package extract

import (
	"context"
	"strings"
	"testing"
)

func TestNormalizeMimeType(t *testing.T) {
	cases := []struct {
		mime string
		name string
		want string
	}{
		{"application/pdf", "cv.bin", mimePDF},
		{"Application/PDF; charset=utf-8", "cv.bin", mimePDF},
		{mimeDOCX, "cv.bin", mimeDOCX},
		{"application/octet-stream", "cv.pdf", mimePDF},
		{"application/zip", "cv.docx", mimeDOCX},
		{"application/octet-stream", "cv.txt", "application/octet-stream"},
	}
	for _, tc := range cases {
		if got := normalizeMimeType(tc.mime, tc.name); got != tc.want {
			t.Fatalf("normalizeMimeType(%q, %q) = %q, want %q", tc.mime, tc.name, got, tc.want)
		}
	}
}

func TestTextUnsupportedType(t *testing.T) {
	_, err := Text(context.Background(), []byte("plain text resume"), "text/plain", "cv.txt")
	if err == nil || !strings.Contains(err.Error(), "unsupported mime type") {
		t.Fatalf("expected unsupported mime type error, got %v", err)
	}
}

func TestStripDocxXML(t *testing.T) {
	raw := `<w:document><w:body>` +
		`<w:p><w:r><w:t>Jane Doe</w:t></w:r></w:p>` +
		`<w:p><w:r><w:t>Staff Engineer</w:t></w:r></w:p>` +
		`</w:body></w:document>`

	got := stripDocxXML(raw)
	want := "Jane Doe\nStaff Engineer"
	if got != want {
		t.Fatalf("stripDocxXML = %q, want %q", got, want)
	}
}

func TestStripDocxXMLMalformedFallsBack(t *testing.T) {
	raw := "<broken <xml"
	if got := stripDocxXML(raw); got != raw {
		t.Fatalf("expected raw passthrough for malformed xml, got %q", got)
	}
}
