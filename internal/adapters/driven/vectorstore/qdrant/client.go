// Package qdrant provides vector index adapters backed by a Qdrant
// server's REST API.
package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/hanmaru-labs/hanrag/internal/core/domain"
)

// Default configuration values.
const (
	DefaultBaseURL = "http://localhost:6333"
	DefaultTimeout = 15 * time.Second
)

// Config holds connection settings shared by the Qdrant-backed indexes.
type Config struct {
	// BaseURL is the Qdrant REST endpoint (default: http://localhost:6333).
	BaseURL string

	// APIKey is sent as the api-key header when non-empty.
	APIKey string

	// Timeout is the per-request timeout (default: 15s).
	Timeout time.Duration
}

// Client is a minimal REST client to Qdrant. It assumes cosine distance
// and creates collections on demand. One client is shared by the chunk
// and ontology indexes.
type Client struct {
	client  *http.Client
	baseURL string
	apiKey  string
	log     *zap.Logger
}

// NewClient creates a Qdrant REST client.
func NewClient(cfg Config, log *zap.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		client:  &http.Client{Timeout: cfg.Timeout},
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		log:     log,
	}
}

// condition is one Qdrant filter clause. Exactly one of Match, Range,
// or HasID is set.
type condition struct {
	Key   string      `json:"key,omitempty"`
	Match *matchValue `json:"match,omitempty"`
	Range *rangeValue `json:"range,omitempty"`
	HasID []string    `json:"has_id,omitempty"`
}

type matchValue struct {
	Value any `json:"value"`
}

type rangeValue struct {
	GTE string `json:"gte,omitempty"`
}

// filter is a Qdrant boolean filter.
type filter struct {
	Must    []condition `json:"must,omitempty"`
	MustNot []condition `json:"must_not,omitempty"`
}

func (f *filter) empty() bool {
	return f == nil || (len(f.Must) == 0 && len(f.MustNot) == 0)
}

func matchCond(key string, value any) condition {
	return condition{Key: key, Match: &matchValue{Value: value}}
}

// point is the Qdrant point representation for upserts. Point ids are
// always UUID strings in this module.
type point struct {
	ID      string    `json:"id"`
	Vector  []float32 `json:"vector"`
	Payload any       `json:"payload"`
}

// scoredPoint is one search result.
type scoredPoint struct {
	ID      string          `json:"id"`
	Score   float64         `json:"score"`
	Payload json.RawMessage `json:"payload"`
}

// storedPoint is one scrolled or retrieved point.
type storedPoint struct {
	ID      string          `json:"id"`
	Payload json.RawMessage `json:"payload"`
	Vector  []float32       `json:"vector,omitempty"`
}

// EnsureCollection creates the collection with cosine distance if it
// does not exist yet. Existing collections are left untouched.
func (c *Client) EnsureCollection(ctx context.Context, name string, dims int) error {
	exists, err := c.collectionExists(ctx, name)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	body := map[string]any{
		"vectors": map[string]any{
			"size":     dims,
			"distance": "Cosine",
		},
	}
	if err := c.do(ctx, http.MethodPut, "/collections/"+name, body, nil); err != nil {
		return fmt.Errorf("create collection %s: %w", name, err)
	}
	c.log.Info("created vector collection",
		zap.String("collection", name),
		zap.Int("dimensions", dims))
	return nil
}

// DropCollection removes the collection. Dropping a missing collection
// is not an error.
func (c *Client) DropCollection(ctx context.Context, name string) error {
	err := c.do(ctx, http.MethodDelete, "/collections/"+name, nil, nil)
	if errors.Is(err, domain.ErrCollectionMissing) {
		return nil
	}
	return err
}

// CollectionInfo reports the point count and configured dimension.
func (c *Client) CollectionInfo(ctx context.Context, name string) (int, int, error) {
	var resp struct {
		Result struct {
			PointsCount int `json:"points_count"`
			Config      struct {
				Params struct {
					Vectors struct {
						Size int `json:"size"`
					} `json:"vectors"`
				} `json:"params"`
			} `json:"config"`
		} `json:"result"`
	}
	if err := c.do(ctx, http.MethodGet, "/collections/"+name, nil, &resp); err != nil {
		return 0, 0, err
	}
	return resp.Result.PointsCount, resp.Result.Config.Params.Vectors.Size, nil
}

// Upsert writes points, overwriting existing ids. The write waits for
// the change to be applied before returning.
func (c *Client) Upsert(ctx context.Context, collection string, points []point) error {
	if len(points) == 0 {
		return nil
	}
	body := map[string]any{"points": points}
	return c.do(ctx, http.MethodPut, "/collections/"+collection+"/points?wait=true", body, nil)
}

// Search returns the nearest points to vector, best first.
func (c *Client) Search(ctx context.Context, collection string, vector []float32, limit int, threshold float64, f *filter) ([]scoredPoint, error) {
	body := map[string]any{
		"vector":       vector,
		"limit":        limit,
		"with_payload": true,
	}
	if threshold > 0 {
		body["score_threshold"] = threshold
	}
	if !f.empty() {
		body["filter"] = f
	}

	var resp struct {
		Result []scoredPoint `json:"result"`
	}
	if err := c.do(ctx, http.MethodPost, "/collections/"+collection+"/points/search", body, &resp); err != nil {
		return nil, err
	}
	return resp.Result, nil
}

// Scroll pages through points matching the filter. offset "" starts
// from the beginning; the returned offset is "" once exhausted.
func (c *Client) Scroll(ctx context.Context, collection string, f *filter, limit int, offset string) ([]storedPoint, string, error) {
	body := map[string]any{
		"limit":        limit,
		"with_payload": true,
	}
	if !f.empty() {
		body["filter"] = f
	}
	if offset != "" {
		body["offset"] = offset
	}

	var resp struct {
		Result struct {
			Points         []storedPoint `json:"points"`
			NextPageOffset any           `json:"next_page_offset"`
		} `json:"result"`
	}
	if err := c.do(ctx, http.MethodPost, "/collections/"+collection+"/points/scroll", body, &resp); err != nil {
		return nil, "", err
	}

	next := ""
	if s, ok := resp.Result.NextPageOffset.(string); ok {
		next = s
	}
	return resp.Result.Points, next, nil
}

// Retrieve fetches points by id. Unknown ids are simply absent from the
// result.
func (c *Client) Retrieve(ctx context.Context, collection string, ids []string, withVector bool) ([]storedPoint, error) {
	body := map[string]any{
		"ids":          ids,
		"with_payload": true,
		"with_vector":  withVector,
	}
	var resp struct {
		Result []storedPoint `json:"result"`
	}
	if err := c.do(ctx, http.MethodPost, "/collections/"+collection+"/points", body, &resp); err != nil {
		return nil, err
	}
	return resp.Result, nil
}

// DeleteByFilter removes every point matching the filter. The write
// waits for the change to be applied before returning.
func (c *Client) DeleteByFilter(ctx context.Context, collection string, f *filter) error {
	body := map[string]any{"filter": f}
	return c.do(ctx, http.MethodPost, "/collections/"+collection+"/points/delete?wait=true", body, nil)
}

// Count returns the exact number of points matching the filter.
func (c *Client) Count(ctx context.Context, collection string, f *filter) (int, error) {
	body := map[string]any{"exact": true}
	if !f.empty() {
		body["filter"] = f
	}
	var resp struct {
		Result struct {
			Count int `json:"count"`
		} `json:"result"`
	}
	if err := c.do(ctx, http.MethodPost, "/collections/"+collection+"/points/count", body, &resp); err != nil {
		return 0, err
	}
	return resp.Result.Count, nil
}

// Ping validates the server is reachable.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/collections", nil, nil)
}

func (c *Client) collectionExists(ctx context.Context, name string) (bool, error) {
	err := c.do(ctx, http.MethodGet, "/collections/"+name, nil, nil)
	if errors.Is(err, domain.ErrCollectionMissing) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// do sends one JSON request and decodes the response into out when
// non-nil. 404 maps to domain.ErrCollectionMissing, transport failures
// to domain.ErrVectorStoreUnavailable.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("api-key", c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w: %v", method, path, domain.ErrVectorStoreUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%s %s: %w", method, path, domain.ErrCollectionMissing)
	}
	if resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, string(data))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
