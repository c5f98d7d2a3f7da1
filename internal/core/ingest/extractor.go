package ingest

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"

	"rag-ingest/internal/core/chunking"
	s3client "rag-ingest/pkg/s3"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/ledongthuc/pdf"
)

// FetchToLocalTemp downloads a local or s3:// file to a temporary path and
// returns a cleanup function.
func FetchToLocalTemp(ctx context.Context, filePath string) (string, func(), error) {
	if strings.HasPrefix(filePath, "s3://") {
		u, err := url.Parse(filePath)
		if err != nil {
			return "", func() {}, err
		}
		bucket := u.Host
		key := strings.TrimPrefix(u.Path, "/")
		cli, err := s3client.GetClient()
		if err != nil {
			return "", func() {}, err
		}
		tmp, err := os.CreateTemp("", "ingest-*.pdf")
		if err != nil {
			return "", func() {}, err
		}
		out, err := cli.GetObject(ctx, &s3.GetObjectInput{Bucket: aws.String(bucket), Key: aws.String(key)})
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
			return "", func() {}, err
		}
		defer out.Body.Close()
		if _, err := io.Copy(tmp, out.Body); err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
			return "", func() {}, err
		}
		tmp.Close()
		return tmp.Name(), func() { _ = os.Remove(tmp.Name()) }, nil
	}

	abs := filePath
	if !filepath.IsAbs(abs) {
		// allow relative stored paths
		cwd, _ := os.Getwd()
		abs = filepath.Join(cwd, filePath)
	}
	// Copy to temp to ensure we can re-open
	src, err := os.Open(abs)
	if err != nil {
		return "", func() {}, err
	}
	defer src.Close()
	tmp, err := os.CreateTemp("", "ingest-*.pdf")
	if err != nil {
		return "", func() {}, err
	}
	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", func() {}, err
	}
	tmp.Close()
	return tmp.Name(), func() { _ = os.Remove(tmp.Name()) }, nil
}

// ExtractPages reads the document at localPath into per-page text. PDFs are
// extracted page by page so chunk provenance stays accurate; anything else is
// treated as a single plain-text page. Page numbers are 1..N contiguous and
// empty pages are kept in place (they contribute zero chunks downstream).
func ExtractPages(localPath string) ([]chunking.Page, error) {
	if pages, err := extractPDFPages(localPath); err == nil {
		return pages, nil
	}
	return extractPlainText(localPath)
}

func extractPDFPages(localPath string) ([]chunking.Page, error) {
	f, r, err := pdf.Open(localPath)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	total := r.NumPage()
	if total == 0 {
		return nil, fmt.Errorf("pdf has no pages")
	}
	pages := make([]chunking.Page, 0, total)
	for i := 1; i <= total; i++ {
		p := r.Page(i)
		text := ""
		if !p.V.IsNull() {
			if t, err := p.GetPlainText(nil); err == nil {
				text = t
			}
		}
		pages = append(pages, chunking.Page{
			Number: i,
			Text:   sanitizeUTF8Printable(text),
		})
	}
	return pages, nil
}

func extractPlainText(localPath string) ([]chunking.Page, error) {
	raw, err := os.ReadFile(localPath)
	if err != nil {
		return nil, err
	}
	var content string
	if utf8.Valid(raw) {
		content = string(raw)
	} else {
		content = string([]rune(string(raw)))
	}
	content = sanitizeUTF8Printable(content)
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("empty content")
	}
	return []chunking.Page{{Number: 1, Text: content}}, nil
}

// sanitizeUTF8Printable removes BOM and non-printable runes, keeping common whitespace.
func sanitizeUTF8Printable(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r == '\uFEFF' { // BOM
			continue
		}
		if r == unicode.ReplacementChar { // U+FFFD
			continue
		}
		if r == '\n' || r == '\t' || r == '\r' {
			// keep
		} else if !unicode.IsPrint(r) {
			continue
		}
		b.WriteRune(r)
	}
	return strings.TrimSpace(b.String())
}
