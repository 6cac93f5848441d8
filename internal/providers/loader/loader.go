package loader

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/inbucket/html2text"
	"github.com/ledongthuc/pdf"

	"github.com/sandevgo/docchat/internal/core"
	"github.com/sandevgo/docchat/pkg/retry"
)

const (
	DefaultMaxBytes     = 20 << 20
	defaultFetchTimeout = 15 * time.Second
)

var textExtensions = map[string]bool{
	"": true, ".txt": true, ".md": true, ".markdown": true, ".rst": true,
	".csv": true, ".tsv": true, ".json": true, ".yaml": true, ".yml": true,
	".log": true, ".xml": true, ".go": true, ".py": true, ".js": true, ".ts": true,
}

var htmlExtensions = map[string]bool{".html": true, ".htm": true, ".xhtml": true}

// Loader turns files, URLs and uploads into UTF-8 Documents.
type Loader struct {
	client   *http.Client
	retrier  *retry.Retrier
	maxBytes int64
}

func New(maxBytes int64) *Loader {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Loader{
		client:   &http.Client{Timeout: defaultFetchTimeout},
		retrier:  retry.NewDefaultRetrier().WithRetryable(func(err error) bool { return !errors.Is(err, core.ErrLoadError) }),
		maxBytes: maxBytes,
	}
}

// Load reads a local path or an http(s) URL.
func (l *Loader) Load(ctx context.Context, ref string) (core.Document, error) {
	if u, err := url.Parse(ref); err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		return l.fetch(ctx, u)
	}

	f, err := os.Open(ref)
	if err != nil {
		return core.Document{}, fmt.Errorf("%w: %w", core.ErrLoadError, err)
	}
	defer f.Close()

	return l.LoadReader(ctx, filepath.Base(ref), f)
}

// LoadReader converts r according to the extension of name, sniffing content when the extension is unknown.
func (l *Loader) LoadReader(ctx context.Context, name string, r io.Reader) (core.Document, error) {
	data, err := io.ReadAll(io.LimitReader(r, l.maxBytes+1))
	if err != nil {
		return core.Document{}, fmt.Errorf("%w: read %s: %w", core.ErrLoadError, name, err)
	}
	if int64(len(data)) > l.maxBytes {
		return core.Document{}, fmt.Errorf("%w: %s exceeds %d bytes", core.ErrLoadError, name, l.maxBytes)
	}
	return convert(name, "", data)
}

func (l *Loader) fetch(ctx context.Context, u *url.URL) (core.Document, error) {
	var doc core.Document
	err := l.retrier.Do(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
		if err != nil {
			return fmt.Errorf("%w: %w", core.ErrLoadError, err)
		}
		req.Header.Set("User-Agent", core.AppUserAgent)

		resp, err := l.client.Do(req)
		if err != nil {
			return fmt.Errorf("failed to fetch url: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
			return fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
		}
		if resp.StatusCode >= 400 {
			return fmt.Errorf("%w: HTTP %d: %s", core.ErrLoadError, resp.StatusCode, resp.Status)
		}

		data, err := io.ReadAll(io.LimitReader(resp.Body, l.maxBytes+1))
		if err != nil {
			return fmt.Errorf("failed to read body: %w", err)
		}
		if int64(len(data)) > l.maxBytes {
			return fmt.Errorf("%w: %s exceeds %d bytes", core.ErrLoadError, u, l.maxBytes)
		}

		doc, err = convert(path.Base(u.Path), resp.Header.Get("Content-Type"), data)
		if err != nil {
			return err
		}
		doc.Metadata.Source = u.String()
		return nil
	})
	if err != nil {
		if errors.Is(err, core.ErrLoadError) {
			return core.Document{}, err
		}
		return core.Document{}, fmt.Errorf("%w: %w", core.ErrLoadError, err)
	}
	return doc, nil
}

func convert(name, contentType string, data []byte) (core.Document, error) {
	ext := strings.ToLower(filepath.Ext(name))
	if contentType == "" && ext != ".pdf" && !htmlExtensions[ext] && (ext == "" || !textExtensions[ext]) {
		contentType = http.DetectContentType(data)
	}

	var content string
	switch {
	case ext == ".pdf" || strings.HasPrefix(contentType, "application/pdf"):
		text, err := pdfText(data)
		if err != nil {
			return core.Document{}, fmt.Errorf("%w: convert pdf %s: %w", core.ErrLoadError, name, err)
		}
		content = text
	case htmlExtensions[ext] || strings.HasPrefix(contentType, "text/html") || strings.HasPrefix(contentType, "application/xhtml"):
		text, err := html2text.FromReader(bytes.NewReader(data), html2text.Options{PrettyTables: true})
		if err != nil {
			return core.Document{}, fmt.Errorf("%w: convert html %s: %w", core.ErrLoadError, name, err)
		}
		content = text
	case textExtensions[ext] || strings.HasPrefix(contentType, "text/") || strings.Contains(contentType, "json"):
		content = string(data)
	default:
		return core.Document{}, fmt.Errorf("%w: unsupported format %q (%s)", core.ErrLoadError, name, contentType)
	}

	content = strings.TrimPrefix(content, "\uFEFF")
	if !utf8.ValidString(content) {
		return core.Document{}, fmt.Errorf("%w: %s is not valid UTF-8", core.ErrLoadError, name)
	}

	return core.Document{
		Content:  content,
		Metadata: core.DocumentMetadata{Source: name},
	}, nil
}

// pdfText extracts the text layer of every page. Scanned PDFs yield an empty string.
func pdfText(data []byte) (text string, err error) {
	// The parser panics on some malformed files.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	plain, err := r.GetPlainText()
	if err != nil {
		return "", err
	}
	out, err := io.ReadAll(plain)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
