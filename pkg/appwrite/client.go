// Package appwrite is a minimal client for the Appwrite Storage REST API.
// It covers the file operations this service needs: create, get, delete,
// list, and the public view/preview/download URL forms.
package appwrite

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"
)

// ErrNotFound is returned when the provider reports a missing file.
var ErrNotFound = errors.New("file not found")

// Config holds the provider connection settings. BaseURL and HTTPClient
// can be overridden in tests.
type Config struct {
	Endpoint  string
	ProjectID string
	APIKey    string
	BucketID  string

	HTTPClient *http.Client
}

type Client struct {
	endpoint  string
	projectID string
	apiKey    string
	bucketID  string
	http      *http.Client
}

func New(cfg Config) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}

	return &Client{
		endpoint:  cfg.Endpoint,
		projectID: cfg.ProjectID,
		apiKey:    cfg.APIKey,
		bucketID:  cfg.BucketID,
		http:      httpClient,
	}
}

// File is the provider's file record.
type File struct {
	ID           string `json:"$id"`
	BucketID     string `json:"bucketId"`
	Name         string `json:"name"`
	MimeType     string `json:"mimeType"`
	SizeOriginal int64  `json:"sizeOriginal"`
	CreatedAt    string `json:"$createdAt"`
	UpdatedAt    string `json:"$updatedAt"`
}

// FileList is the provider's paginated list response.
type FileList struct {
	Total int64  `json:"total"`
	Files []File `json:"files"`
}

// apiError is the provider's error envelope.
type apiError struct {
	Message string `json:"message"`
	Code    int    `json:"code"`
	Type    string `json:"type"`
}

func (e *apiError) Error() string {
	return fmt.Sprintf("appwrite: %s (code %d, type %s)", e.Message, e.Code, e.Type)
}

// CreateFile uploads data as a new file under fileID.
func (c *Client) CreateFile(ctx context.Context, fileID, name string, data []byte) (*File, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	if err := writer.WriteField("fileId", fileID); err != nil {
		return nil, fmt.Errorf("failed to write fileId field: %w", err)
	}

	part, err := writer.CreateFormFile("file", name)
	if err != nil {
		return nil, fmt.Errorf("failed to create file part: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, fmt.Errorf("failed to write file data: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, c.filesPath(), &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	var file File
	if err := c.do(req, &file); err != nil {
		return nil, err
	}
	return &file, nil
}

// GetFile fetches the file record for fileID.
func (c *Client) GetFile(ctx context.Context, fileID string) (*File, error) {
	req, err := c.newRequest(ctx, http.MethodGet, c.filesPath()+"/"+fileID, nil)
	if err != nil {
		return nil, err
	}

	var file File
	if err := c.do(req, &file); err != nil {
		return nil, err
	}
	return &file, nil
}

// DeleteFile removes the file fileID from the bucket.
func (c *Client) DeleteFile(ctx context.Context, fileID string) error {
	req, err := c.newRequest(ctx, http.MethodDelete, c.filesPath()+"/"+fileID, nil)
	if err != nil {
		return err
	}

	return c.do(req, nil)
}

// ListFiles returns a page of file records. Limit and offset are forwarded
// to the provider as list queries.
func (c *Client) ListFiles(ctx context.Context, limit, offset int) (*FileList, error) {
	url := fmt.Sprintf("%s?queries[]=limit(%d)&queries[]=offset(%d)", c.filesPath(), limit, offset)

	req, err := c.newRequest(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	var list FileList
	if err := c.do(req, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

func (c *Client) filesPath() string {
	return fmt.Sprintf("%s/storage/buckets/%s/files", c.endpoint, c.bucketID)
}

func (c *Client) newRequest(ctx context.Context, method, url string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("X-Appwrite-Project", c.projectID)
	req.Header.Set("X-Appwrite-Key", c.apiKey)
	return req, nil
}

func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		if resp.StatusCode == http.StatusNotFound {
			return ErrNotFound
		}

		var apiErr apiError
		if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Message != "" {
			return &apiErr
		}
		return fmt.Errorf("appwrite: unexpected status %d: %s", resp.StatusCode, string(body))
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
