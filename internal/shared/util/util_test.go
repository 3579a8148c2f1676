package util

import (
	"strings"
	"testing"
)

func TestOwnerKeyStableHex(t *testing.T) {
	got := OwnerKey("workspace")
	if got != OwnerKey("workspace") {
		t.Fatalf("expected stable key, got %s", got)
	}
	if got == OwnerKey("other") {
		t.Fatalf("expected distinct keys per owner")
	}
	if len(got) != 32 {
		t.Fatalf("expected 32 hex characters, got %d", len(got))
	}
	for _, ch := range got {
		if !((ch >= 'a' && ch <= 'f') || (ch >= '0' && ch <= '9')) {
			t.Fatalf("key contains non-hex character: %c", ch)
		}
	}
}

func TestSanitizeFileName(t *testing.T) {
	cases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "resume.pdf", want: "resume.pdf"},
		{in: " cv/2024\\final.docx ", want: "cv_2024_final.docx"},
		{in: "tab\there.txt", want: "tabhere.txt"},
		{in: "../etc/passwd", wantErr: true},
		{in: "   ", wantErr: true},
	}
	for _, tc := range cases {
		got, err := SanitizeFileName(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("%q: expected error, got %q", tc.in, got)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Fatalf("%q: got %q, %v; want %q", tc.in, got, err, tc.want)
		}
	}
}

func TestSanitizeFileNameKeepsExtensionWhenShortening(t *testing.T) {
	got, err := SanitizeFileName(strings.Repeat("a", 300) + ".docx")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != maxFileNameLen || !strings.HasSuffix(got, ".docx") {
		t.Fatalf("unexpected name %q (%d)", got, len(got))
	}
}
