package document

import (
	"bytes"
	"log/slog"
	"strings"

	"github.com/ledongthuc/pdf"
)

var pdfMagic = []byte("%PDF")

// IsPDF reports whether the bytes carry the PDF signature. The declared MIME
// type from the intake layer is not trusted; this is the authoritative check.
func IsPDF(b []byte) bool {
	return bytes.HasPrefix(b, pdfMagic)
}

// StripDataURL removes a "data:application/pdf;base64," style prefix from a
// base64 payload, if present.
func StripDataURL(s string) string {
	if i := strings.IndexByte(s, ','); i >= 0 && strings.HasPrefix(s, "data:") {
		return s[i+1:]
	}
	return s
}

// CountPages returns the page count of a PDF, best effort. On any parse
// failure it assumes a single page rather than failing the request.
func CountPages(b []byte, logger *slog.Logger) (n int) {
	if logger == nil {
		logger = slog.Default()
	}
	defer func() {
		if r := recover(); r != nil {
			logger.Warn("document.page_count.panic", "recovered", r)
			n = 1
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		logger.Warn("document.page_count.unreadable", "error", err)
		return 1
	}
	n = r.NumPage()
	if n < 1 {
		n = 1
	}
	return n
}
