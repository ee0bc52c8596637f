// Package assets talks to the image service that stores uploaded shop
// avatars and covers.
package assets

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/lnhoang/fumarket/internal/domain"
)

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, httpClient *http.Client) *Client {
	return &Client{baseURL: baseURL, httpClient: httpClient}
}

// DeleteVersions asks the image service to remove the stored versions of an
// uploaded file. It stops at the first transport failure; deciding whether
// to care is the caller's job.
func (c *Client) DeleteVersions(ctx context.Context, versions []domain.AssetVersion) error {
	for _, version := range versions {
		body, err := json.Marshal(map[string]string{"key": version.Key})
		if err != nil {
			return fmt.Errorf("marshal delete request: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/images", bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("create delete request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("delete image %s: %w", version.Key, err)
		}
		_ = resp.Body.Close()

		if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
			return fmt.Errorf("image service returned status %d for %s", resp.StatusCode, version.Key)
		}
	}

	return nil
}
