// Package client is a Go client for the feattrack REST API.
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
)

// Project is the wire form of a project.
type Project struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

// Feature is the wire form of a feature.
type Feature struct {
	ID               string   `json:"id"`
	Title            string   `json:"title"`
	Description      string   `json:"description,omitempty"`
	ProjectID        string   `json:"project_id"`
	ParentID         string   `json:"parent_id,omitempty"`
	Images           []string `json:"images"`
	Order            int      `json:"order"`
	HasAccounting    bool     `json:"has_accounting"`
	IsAccountingDone bool     `json:"is_accounting_done"`
	IsCompleted      bool     `json:"is_completed"`
	CreatedAt        string   `json:"created_at"`
	UpdatedAt        string   `json:"updated_at"`
}

// FeatureNode is a feature with its children, as returned by the tree endpoint.
type FeatureNode struct {
	Feature
	Children []*FeatureNode `json:"children"`
}

// FeatureUpdate is a partial feature update. Nil fields are not sent.
type FeatureUpdate struct {
	Title            *string   `json:"title,omitempty"`
	Description      *string   `json:"description,omitempty"`
	ParentID         *string   `json:"parent_id,omitempty"`
	Images           *[]string `json:"images,omitempty"`
	Order            *int      `json:"order,omitempty"`
	HasAccounting    *bool     `json:"has_accounting,omitempty"`
	IsAccountingDone *bool     `json:"is_accounting_done,omitempty"`
	IsCompleted      *bool     `json:"is_completed,omitempty"`
}

// APIError is a structured error response from the server.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d (%s): %s", e.Status, e.Code, e.Message)
}

// Client talks to a feattrack server.
type Client struct {
	baseURL string
	http    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// New creates a client for the server at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		apiErr := &APIError{Status: resp.StatusCode}
		var wrapper struct {
			Error struct {
				Code    string `json:"code"`
				Message string `json:"message"`
			} `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&wrapper); err == nil {
			apiErr.Code = wrapper.Error.Code
			apiErr.Message = wrapper.Error.Message
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	var wrapper struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&wrapper); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if err := json.Unmarshal(wrapper.Data, out); err != nil {
		return fmt.Errorf("decode response data: %w", err)
	}
	return nil
}

// ListProjects returns all projects.
func (c *Client) ListProjects(ctx context.Context) ([]*Project, error) {
	var out []*Project
	err := c.do(ctx, http.MethodGet, "/api/v1/projects", nil, &out)
	return out, err
}

// CreateProject creates a project.
func (c *Client) CreateProject(ctx context.Context, name, description string) (*Project, error) {
	body := map[string]string{"name": name, "description": description}
	var out Project
	if err := c.do(ctx, http.MethodPost, "/api/v1/projects", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetProject fetches a project by id.
func (c *Client) GetProject(ctx context.Context, id string) (*Project, error) {
	var out Project
	if err := c.do(ctx, http.MethodGet, "/api/v1/projects/"+id, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteProject deletes a project and all its features.
func (c *Client) DeleteProject(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/projects/"+id, nil, nil)
}

// ListFeatures returns a project's features as a flat sorted list.
func (c *Client) ListFeatures(ctx context.Context, projectID string) ([]*Feature, error) {
	var out []*Feature
	err := c.do(ctx, http.MethodGet, "/api/v1/features?project_id="+url.QueryEscape(projectID), nil, &out)
	return out, err
}

// CreateFeatureRequest is the payload for CreateFeature.
type CreateFeatureRequest struct {
	Title            string   `json:"title"`
	Description      string   `json:"description,omitempty"`
	ProjectID        string   `json:"project_id"`
	ParentID         string   `json:"parent_id,omitempty"`
	Images           []string `json:"images,omitempty"`
	Order            int      `json:"order,omitempty"`
	HasAccounting    *bool    `json:"has_accounting,omitempty"`
	IsAccountingDone *bool    `json:"is_accounting_done,omitempty"`
	IsCompleted      *bool    `json:"is_completed,omitempty"`
}

// CreateFeature creates a feature.
func (c *Client) CreateFeature(ctx context.Context, req *CreateFeatureRequest) (*Feature, error) {
	var out Feature
	if err := c.do(ctx, http.MethodPost, "/api/v1/features", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetFeature fetches a feature by id.
func (c *Client) GetFeature(ctx context.Context, id string) (*Feature, error) {
	var out Feature
	if err := c.do(ctx, http.MethodGet, "/api/v1/features/"+id, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateFeature applies a partial update and returns the updated feature.
func (c *Client) UpdateFeature(ctx context.Context, id string, update *FeatureUpdate) (*Feature, error) {
	var out Feature
	if err := c.do(ctx, http.MethodPut, "/api/v1/features/"+id, update, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteFeature deletes a feature and its subtree.
func (c *Client) DeleteFeature(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/features/"+id, nil, nil)
}

// ReorderFeatures assigns sibling order by list position.
func (c *Client) ReorderFeatures(ctx context.Context, featureIDs []string) error {
	body := map[string][]string{"feature_ids": featureIDs}
	return c.do(ctx, http.MethodPut, "/api/v1/features/reorder", body, nil)
}

// Tree fetches a project's feature hierarchy. status and query are optional;
// a non-empty query switches the response to a flat search result.
func (c *Client) Tree(ctx context.Context, projectID, status, query string) ([]*FeatureNode, error) {
	q := url.Values{}
	q.Set("project_id", projectID)
	if status != "" {
		q.Set("status", status)
	}
	if query != "" {
		q.Set("q", query)
	}
	var out []*FeatureNode
	err := c.do(ctx, http.MethodGet, "/api/v1/features/tree?"+q.Encode(), nil, &out)
	return out, err
}
