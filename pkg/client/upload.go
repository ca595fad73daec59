package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"shareit/pkg/models"
)

// FileField is the multipart field the server reads the upload from.
const FileField = "file"

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// UploadResult describes a completed upload.
type UploadResult struct {
	Name string
	Size int64
	URL  string
}

// Upload validates and streams the file at path to the server, reporting
// integer percentages to onProgress (which may be nil).
func (c *Client) Upload(ctx context.Context, path string, onProgress func(int)) (*UploadResult, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	stat, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if !stat.Mode().IsRegular() {
		_ = file.Close()
		return nil, fmt.Errorf("%s is not a regular file", path)
	}

	return c.upload(ctx, filepath.Base(path), file, stat.Size(), onProgress)
}

// UploadReader streams size bytes from reader under the given file name.
func (c *Client) UploadReader(ctx context.Context, name string, reader io.Reader, size int64, onProgress func(int)) (*UploadResult, error) {
	return c.upload(ctx, name, io.NopCloser(reader), size, onProgress)
}

func (c *Client) upload(ctx context.Context, name string, source io.ReadCloser, size int64, onProgress func(int)) (*UploadResult, error) {
	if err := ValidateSize(size); err != nil {
		_ = source.Close()
		return nil, err
	}

	pipeReader, pipeWriter := io.Pipe()
	writer := multipart.NewWriter(pipeWriter)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+uploadPath, pipeReader)
	if err != nil {
		_ = source.Close()
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	progress := newProgressReader(source, size, onProgress)
	go func() {
		defer func() { _ = source.Close() }()
		pipeWriter.CloseWithError(writeFilePart(writer, name, progress))
	}()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		_ = pipeReader.CloseWithError(err)
		return nil, fmt.Errorf("upload %s: %w", name, err)
	}
	defer func() { _ = resp.Body.Close() }()
	// Unblocks the writer if the server replied before reading everything.
	defer func() { _ = pipeReader.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, readServerError(resp)
	}

	var reply models.UploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	if reply.URL == "" {
		return nil, errors.New("upload response missing url")
	}

	progress.finish()
	return &UploadResult{Name: name, Size: size, URL: reply.URL}, nil
}

// writeFilePart writes the single file part and closes the multipart body.
func writeFilePart(writer *multipart.Writer, name string, content io.Reader) error {
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		FileField, quoteEscaper.Replace(name)))
	header.Set("Content-Type", contentType(name))

	part, err := writer.CreatePart(header)
	if err != nil {
		return fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return fmt.Errorf("write multipart data: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("close multipart writer: %w", err)
	}
	return nil
}

func contentType(name string) string {
	if ct := mime.TypeByExtension(filepath.Ext(name)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

// progressReader reports round(read*100/total) whenever the value grows.
type progressReader struct {
	reader     io.Reader
	total      int64
	read       int64
	onProgress func(int)

	mu   sync.Mutex
	last int
}

func newProgressReader(reader io.Reader, total int64, onProgress func(int)) *progressReader {
	return &progressReader{reader: reader, total: total, onProgress: onProgress, last: -1}
}

func (p *progressReader) Read(buf []byte) (int, error) {
	n, err := p.reader.Read(buf)
	if n > 0 {
		p.read += int64(n)
		p.report(percent(p.read, p.total))
	}
	return n, err
}

func (p *progressReader) finish() {
	p.report(100)
}

func (p *progressReader) report(pct int) {
	if p.onProgress == nil {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if pct <= p.last {
		return
	}
	p.last = pct
	p.onProgress(pct)
}

// percent returns round(done*100/total) clamped to 0..100.
func percent(done, total int64) int {
	if total <= 0 {
		return 100
	}
	pct := (done*200 + total) / (total * 2)
	switch {
	case pct < 0:
		return 0
	case pct > 100:
		return 100
	}
	return int(pct)
}
