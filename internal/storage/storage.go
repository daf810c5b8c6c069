package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"
)

// Store persists uploaded bytes and returns the public URL of the object.
type Store interface {
	Save(ctx context.Context, filename, contentType string, body io.Reader) (string, error)
}

// Result describes a stored upload.
type Result struct {
	URL      string
	Filename string
	// Width and Height are zero when the bytes could not be decoded.
	Width  int
	Height int
}

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9.-]`)

// SanitizeFilename drops every character outside [a-zA-Z0-9.-].
func SanitizeFilename(name string) string {
	return unsafeFilenameChars.ReplaceAllString(name, "")
}

// BuildFilename prefixes the sanitized name with the upload time in Unix milliseconds.
func BuildFilename(now time.Time, original string) string {
	return fmt.Sprintf("%d-%s", now.UnixMilli(), SanitizeFilename(original))
}

// IsImageContentType reports whether the declared type is an image/* type.
func IsImageContentType(contentType string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(contentType)), "image/")
}

// Put writes data under a timestamped filename and probes image dimensions.
func Put(ctx context.Context, store Store, now time.Time, original, contentType string, data []byte) (Result, error) {
	filename := BuildFilename(now, original)
	url, err := store.Save(ctx, filename, contentType, bytes.NewReader(data))
	if err != nil {
		return Result{}, err
	}

	result := Result{URL: url, Filename: filename}
	if width, height, ok := Dimensions(data); ok {
		result.Width = width
		result.Height = height
	}
	return result, nil
}
