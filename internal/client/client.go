package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/promodash/internal/service"
)

const maxResponseBytes = 4 << 20

// MsgSelectImage is the alert shown when a form is submitted without an image.
const MsgSelectImage = "Please select an image"

// ErrNoFile is returned by SubmitCreate when no image was selected.
// Show MsgSelectImage to the user.
var ErrNoFile = errors.New("no image selected")

type httpDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// APIError carries a failure envelope or an unexpected HTTP status.
type APIError struct {
	Status  int
	Message string
	Details string
}

func (e *APIError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s", e.Message, e.Details)
	}
	return e.Message
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Details string          `json:"details"`
	Message string          `json:"message"`
	URL     string          `json:"url"`
	Width   int             `json:"width"`
	Height  int             `json:"height"`
}

// Client talks to the dashboard's JSON API.
type Client struct {
	baseURL string
	http    httpDoer
}

// New creates a client for the server at baseURL.
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) SetHTTPClient(client httpDoer) {
	if client == nil {
		c.http = &http.Client{Timeout: 30 * time.Second}
		return
	}
	c.http = client
}

// UploadResult is the decoded upload response.
type UploadResult struct {
	URL     string
	Message string
	Width   int
	Height  int
}

// Upload posts an image to /api/upload.
func (c *Client) Upload(ctx context.Context, filename, contentType string, data []byte) (UploadResult, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	if err != nil {
		return UploadResult{}, fmt.Errorf("build upload form: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return UploadResult{}, fmt.Errorf("build upload form: %w", err)
	}
	if err := writer.Close(); err != nil {
		return UploadResult{}, fmt.Errorf("build upload form: %w", err)
	}

	env, err := c.do(ctx, http.MethodPost, "/api/upload", writer.FormDataContentType(), &body)
	if err != nil {
		return UploadResult{}, err
	}
	if env.URL == "" {
		return UploadResult{}, &APIError{Status: http.StatusOK, Message: "Invalid upload response"}
	}
	return UploadResult{URL: env.URL, Message: env.Message, Width: env.Width, Height: env.Height}, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, payload interface{}) (envelope, error) {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return envelope{}, fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}
	return c.do(ctx, method, path, "application/json", body)
}

func (c *Client) do(ctx context.Context, method, path, contentType string, body io.Reader) (envelope, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return envelope{}, fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return envelope{}, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return envelope{}, fmt.Errorf("read response: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		if resp.StatusCode >= http.StatusBadRequest {
			return envelope{}, &APIError{Status: resp.StatusCode, Message: resp.Status}
		}
		return envelope{}, fmt.Errorf("invalid response format: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest || !env.Success {
		message := strings.TrimSpace(env.Error)
		if message == "" {
			message = "Operation failed"
		}
		return envelope{}, &APIError{Status: resp.StatusCode, Message: message, Details: env.Details}
	}
	return env, nil
}

// Resource is the typed client of one collection.
type Resource[T any] struct {
	client *Client
	schema service.Schema
}

// NewResource binds c to the collection described by schema.
func NewResource[T any](c *Client, schema service.Schema) *Resource[T] {
	return &Resource[T]{client: c, schema: schema}
}

// Fields is the body of a create request.
type Fields struct {
	Title    string
	Image    string
	Link     string
	IsActive *bool
}

func (r *Resource[T]) path(id string) string {
	if id == "" {
		return "/api/" + r.schema.Collection
	}
	return "/api/" + r.schema.Collection + "/" + id
}

// List returns the collection. The slice is never nil, even on error.
func (r *Resource[T]) List(ctx context.Context) ([]T, error) {
	items := make([]T, 0)
	env, err := r.client.doJSON(ctx, http.MethodGet, r.path(""), nil)
	if err != nil {
		return items, err
	}
	if err := json.Unmarshal(env.Data, &items); err != nil {
		return make([]T, 0), fmt.Errorf("decode %s: %w", r.schema.Plural, err)
	}
	return items, nil
}

func (r *Resource[T]) Get(ctx context.Context, id string) (*T, error) {
	env, err := r.client.doJSON(ctx, http.MethodGet, r.path(id), nil)
	if err != nil {
		return nil, err
	}
	return decodeRecord[T](env)
}

func (r *Resource[T]) Create(ctx context.Context, fields Fields) (*T, error) {
	body := map[string]interface{}{
		"title":             fields.Title,
		r.schema.ImageField: fields.Image,
	}
	if r.schema.HasLink {
		body["link"] = fields.Link
	}
	if fields.IsActive != nil {
		body["isActive"] = *fields.IsActive
	}

	env, err := r.client.doJSON(ctx, http.MethodPost, r.path(""), body)
	if err != nil {
		return nil, err
	}
	return decodeRecord[T](env)
}

// Update sends only the non-nil fields of patch.
func (r *Resource[T]) Update(ctx context.Context, id string, patch service.Patch) (*T, error) {
	body := map[string]interface{}{}
	if patch.Title != nil {
		body["title"] = *patch.Title
	}
	if patch.Image != nil {
		body[r.schema.ImageField] = *patch.Image
	}
	if patch.Link != nil && r.schema.HasLink {
		body["link"] = *patch.Link
	}
	if patch.IsActive != nil {
		body["isActive"] = *patch.IsActive
	}

	env, err := r.client.doJSON(ctx, http.MethodPatch, r.path(id), body)
	if err != nil {
		return nil, err
	}
	return decodeRecord[T](env)
}

// Delete returns the server's confirmation message.
func (r *Resource[T]) Delete(ctx context.Context, id string) (string, error) {
	env, err := r.client.doJSON(ctx, http.MethodDelete, r.path(id), nil)
	if err != nil {
		return "", err
	}
	return env.Message, nil
}

// File is an image picked in a form.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Submission is the state of a create/edit form.
type Submission struct {
	Title    string
	Link     string
	IsActive bool
	File     *File
}

// SubmitCreate uploads the selected image and creates the record with the
// returned URL. Nothing is sent when no file was selected.
func (r *Resource[T]) SubmitCreate(ctx context.Context, form Submission) (*T, error) {
	if form.File == nil {
		return nil, ErrNoFile
	}

	uploaded, err := r.client.Upload(ctx, form.File.Name, form.File.ContentType, form.File.Data)
	if err != nil {
		return nil, err
	}

	active := form.IsActive
	return r.Create(ctx, Fields{
		Title:    strings.TrimSpace(form.Title),
		Image:    uploaded.URL,
		Link:     strings.TrimSpace(form.Link),
		IsActive: &active,
	})
}

// SubmitEdit uploads a replacement image only when one was selected; otherwise
// the stored image is kept.
func (r *Resource[T]) SubmitEdit(ctx context.Context, id string, form Submission) (*T, error) {
	title := strings.TrimSpace(form.Title)
	link := strings.TrimSpace(form.Link)
	active := form.IsActive
	patch := service.Patch{Title: &title, IsActive: &active}
	if r.schema.HasLink {
		patch.Link = &link
	}

	if form.File != nil {
		uploaded, err := r.client.Upload(ctx, form.File.Name, form.File.ContentType, form.File.Data)
		if err != nil {
			return nil, err
		}
		patch.Image = &uploaded.URL
	}

	return r.Update(ctx, id, patch)
}

func decodeRecord[T any](env envelope) (*T, error) {
	var item T
	if err := json.Unmarshal(env.Data, &item); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	return &item, nil
}
