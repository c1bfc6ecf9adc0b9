package document

import (
	"io"
	"log/slog"
	"testing"
)

func TestIsPDF(t *testing.T) {
	cases := []struct {
		name string
		data []byte
		want bool
	}{
		{"pdf header", []byte("%PDF-1.7\n..."), true},
		{"plain text", []byte("hello"), false},
		{"empty", nil, false},
		{"header not at start", []byte(" %PDF-1.4"), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsPDF(tc.data); got != tc.want {
				t.Errorf("IsPDF(%q) = %v, want %v", tc.data, got, tc.want)
			}
		})
	}
}

func TestStripDataURL(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"data:application/pdf;base64,JVBERi0x", "JVBERi0x"},
		{"data:;base64,QUJD", "QUJD"},
		{"JVBERi0x", "JVBERi0x"},
		{"payload,with,commas", "payload,with,commas"},
	}
	for _, tc := range cases {
		if got := StripDataURL(tc.in); got != tc.want {
			t.Errorf("StripDataURL(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestCountPages_UnparseableDefaultsToOne(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if got := CountPages([]byte("%PDF-1.4 truncated garbage"), logger); got != 1 {
		t.Errorf("expected fallback page count 1, got %d", got)
	}
	if got := CountPages(nil, logger); got != 1 {
		t.Errorf("expected fallback page count 1 for empty input, got %d", got)
	}
}
