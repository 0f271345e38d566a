// Package client provides a Go client for the inkwell HTTP API and the
// autosave coordinator that drives debounced note persistence.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"inkwell/internal/domain/models"
)

// Client is a thin wrapper over the REST surface.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a client for the API served at baseURL.
func New(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// APIError is a non-2xx response from the server.
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Detail)
}

// NoteUpdate is a partial note update; nil fields are left unchanged.
type NoteUpdate struct {
	Title   *string  `json:"title,omitempty"`
	Content *string  `json:"content,omitempty"`
	Tags    []string `json:"tags,omitempty"`
}

// CreateNote creates a note and returns its id.
func (c *Client) CreateNote(ctx context.Context, title, content string, folderID *string, tags []string) (string, error) {
	body := map[string]any{"title": title, "content": content}
	if folderID != nil {
		body["folder_id"] = *folderID
	}
	if len(tags) > 0 {
		body["tags"] = tags
	}

	var created struct {
		ID string `json:"id"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/notes", body, &created); err != nil {
		return "", err
	}
	return created.ID, nil
}

// GetNote fetches the canonical persisted note, tags included.
func (c *Client) GetNote(ctx context.Context, id string) (*models.Note, error) {
	var note models.Note
	if err := c.do(ctx, http.MethodGet, "/api/notes/"+url.PathEscape(id), nil, &note); err != nil {
		return nil, err
	}
	return &note, nil
}

// UpdateNote applies a partial update to a note.
func (c *Client) UpdateNote(ctx context.Context, id string, update NoteUpdate) error {
	return c.do(ctx, http.MethodPut, "/api/notes/"+url.PathEscape(id), update, nil)
}

// DeleteNote deletes a note.
func (c *Client) DeleteNote(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/notes/"+url.PathEscape(id), nil, nil)
}

// ListNotes lists notes, optionally restricted to a folder.
func (c *Client) ListNotes(ctx context.Context, folderID *string) ([]models.Note, error) {
	path := "/api/notes"
	if folderID != nil {
		path += "?folder_id=" + url.QueryEscape(*folderID)
	}
	var notes []models.Note
	if err := c.do(ctx, http.MethodGet, path, nil, &notes); err != nil {
		return nil, err
	}
	return notes, nil
}

// CreateFolder creates a folder and returns its id.
func (c *Client) CreateFolder(ctx context.Context, name string, parentID *string) (string, error) {
	body := map[string]any{"name": name}
	if parentID != nil {
		body["parent_id"] = *parentID
	}

	var created struct {
		ID string `json:"id"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/folders", body, &created); err != nil {
		return "", err
	}
	return created.ID, nil
}

// DeleteFolder deletes a folder and its descendant folders.
func (c *Client) DeleteFolder(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/folders/"+url.PathEscape(id), nil, nil)
}

// FolderTree fetches the nested folder hierarchy.
func (c *Client) FolderTree(ctx context.Context) ([]*models.FolderTreeNode, error) {
	var tree []*models.FolderTreeNode
	if err := c.do(ctx, http.MethodGet, "/api/folders/tree", nil, &tree); err != nil {
		return nil, err
	}
	return tree, nil
}

// Search runs a substring search. An empty query matches nothing and is
// answered locally without a request, mirroring the server's contract.
func (c *Client) Search(ctx context.Context, query string, folderID *string, tags []string) (*models.SearchResults, error) {
	if query == "" {
		return &models.SearchResults{Notes: []models.Note{}, Total: 0}, nil
	}

	params := url.Values{}
	params.Set("query", query)
	if folderID != nil {
		params.Set("folder_id", *folderID)
	}
	for _, tag := range tags {
		params.Add("tags", tag)
	}

	var results models.SearchResults
	if err := c.do(ctx, http.MethodGet, "/api/search?"+params.Encode(), nil, &results); err != nil {
		return nil, err
	}
	return &results, nil
}

// Save persists the title and content of a note. Together with GetNote
// it satisfies the NoteSaver interface used by the Autosaver.
func (c *Client) Save(ctx context.Context, noteID, title, content string) error {
	return c.UpdateNote(ctx, noteID, NoteUpdate{Title: &title, Content: &content})
}

// Fetch re-reads the canonical persisted note after a save.
func (c *Client) Fetch(ctx context.Context, noteID string) (*models.Note, error) {
	return c.GetNote(ctx, noteID)
}

func (c *Client) do(ctx context.Context, method, path string, body, dest any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr struct {
			Error string `json:"error"`
		}
		detail := resp.Status
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Error != "" {
			detail = apiErr.Error
		}
		return &APIError{Status: resp.StatusCode, Detail: detail}
	}

	if dest != nil {
		if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
