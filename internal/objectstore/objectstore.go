// Package objectstore is an HTTP client for an S3-style storage service
// exposing buckets over a REST object API. It implements
// media.ObjectStorage.
package objectstore

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/soukly/storefront/internal/domain/media"
)

// Config holds the connection settings for the storage service.
type Config struct {
	// BaseURL is the storage API root, e.g. https://host/storage/v1.
	BaseURL string
	// Bucket is the bucket all objects go into.
	Bucket string
	// APIKey authorizes requests as a Bearer token.
	APIKey string
	// Prefix is prepended to every object path, e.g. "products".
	Prefix string
}

// Client talks to one bucket of the storage service.
type Client struct {
	cfg  Config
	http *http.Client
}

var _ media.ObjectStorage = (*Client)(nil)

// New creates a Client. The underlying transport is traced.
func New(cfg Config) *Client {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Client{
		cfg: cfg,
		http: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// Upload stores the file under a fresh unique path and returns its public
// URL together with the path needed to delete it later.
func (c *Client) Upload(ctx context.Context, u media.Upload) (*media.StoredObject, error) {
	objectPath := c.objectPath(u.Name)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.objectURL(objectPath), u.Body)
	if err != nil {
		return nil, fmt.Errorf("building upload request: %w", err)
	}
	c.authorize(req)
	if u.ContentType != "" {
		req.Header.Set("Content-Type", u.ContentType)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("uploading %q: %w", objectPath, err)
	}
	defer drain(resp)

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("uploading %q: unexpected status %s", objectPath, resp.Status)
	}

	return &media.StoredObject{
		URL:  c.publicURL(objectPath),
		Path: objectPath,
	}, nil
}

// Remove deletes the given object paths, one result per path. A 404 from
// the service marks the result NotFound rather than failing it: the object
// is gone either way.
func (c *Client) Remove(ctx context.Context, paths []string) ([]media.RemoveResult, error) {
	results := make([]media.RemoveResult, len(paths))
	for i, p := range paths {
		results[i] = media.RemoveResult{Path: p}

		req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.objectURL(p), nil)
		if err != nil {
			results[i].Err = fmt.Errorf("building delete request: %w", err)
			continue
		}
		c.authorize(req)

		resp, err := c.http.Do(req)
		if err != nil {
			results[i].Err = fmt.Errorf("deleting %q: %w", p, err)
			continue
		}

		switch {
		case resp.StatusCode == http.StatusNotFound:
			results[i].NotFound = true
		case resp.StatusCode >= 300:
			results[i].Err = fmt.Errorf("deleting %q: unexpected status %s", p, resp.Status)
		}
		drain(resp)
	}
	return results, nil
}

func (c *Client) objectPath(name string) string {
	ext := path.Ext(name)
	p := uuid.New().String() + ext
	if c.cfg.Prefix != "" {
		p = c.cfg.Prefix + "/" + p
	}
	return p
}

func (c *Client) objectURL(objectPath string) string {
	return c.cfg.BaseURL + "/object/" + c.cfg.Bucket + "/" + objectPath
}

func (c *Client) publicURL(objectPath string) string {
	return c.cfg.BaseURL + "/object/public/" + c.cfg.Bucket + "/" + objectPath
}

func (c *Client) authorize(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}
