// Package catalog lists the workspace images available to launch. The
// authoritative source is a Gitea package registry; when it is unreachable
// or returns garbage, a small fallback catalog is served instead so the
// caller never sees the upstream failure.
package catalog

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const packagePrefix = "workspaces/"

type Image struct {
	Name  string `json:"name" yaml:"name"`
	Image string `json:"image" yaml:"image"`
	Tag   string `json:"tag" yaml:"tag"`
}

type Client struct {
	BaseURL      string
	Org          string
	Username     string
	Token        string
	FallbackPath string

	httpClient *http.Client
}

type Options struct {
	BaseURL       string
	Org           string
	Username      string
	Token         string
	FallbackPath  string
	SkipTLSVerify bool
}

func New(opts Options) *Client {
	transport := http.DefaultTransport
	if opts.SkipTLSVerify {
		// Self-hosted registries commonly run with internal CAs.
		transport = &http.Transport{TLSClientConfig: &tls.Config{InsecureSkipVerify: true}}
	}
	return &Client{
		BaseURL:      strings.TrimRight(opts.BaseURL, "/"),
		Org:          opts.Org,
		Username:     opts.Username,
		Token:        opts.Token,
		FallbackPath: opts.FallbackPath,
		httpClient: &http.Client{
			Timeout:   10 * time.Second,
			Transport: transport,
		},
	}
}

// Images returns the available workspace images. Upstream failures are
// logged and answered with the fallback catalog; this method never errors.
func (c *Client) Images(ctx context.Context) []Image {
	images, err := c.fetch(ctx)
	if err != nil {
		log.Printf("Catalog unavailable, using fallback: %v", err)
		return c.fallback()
	}
	return images
}

func (c *Client) fetch(ctx context.Context) ([]Image, error) {
	url := fmt.Sprintf("%s/api/v1/packages/%s", c.BaseURL, c.Org)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if c.Username != "" {
		req.SetBasicAuth(c.Username, c.Token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("query packages: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("query packages: status %d", resp.StatusCode)
	}

	var packages []struct {
		Name    string `json:"name"`
		Version string `json:"version"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&packages); err != nil {
		return nil, fmt.Errorf("decode packages: %w", err)
	}

	seen := make(map[string]bool)
	var images []Image
	for _, pkg := range packages {
		if !strings.HasPrefix(pkg.Name, packagePrefix) {
			continue
		}
		// Multiple versions of the same package appear as separate entries.
		if seen[pkg.Name] {
			continue
		}
		seen[pkg.Name] = true

		parts := strings.Split(pkg.Name, "/")
		display := parts[len(parts)-1]
		images = append(images, Image{Name: display, Image: display, Tag: "latest"})
	}

	sort.Slice(images, func(i, j int) bool { return images[i].Name < images[j].Name })
	return images, nil
}

func (c *Client) fallback() []Image {
	if c.FallbackPath != "" {
		data, err := os.ReadFile(c.FallbackPath)
		if err != nil {
			log.Printf("WARNING: fallback catalog %s unreadable: %v", c.FallbackPath, err)
		} else {
			var images []Image
			if err := yaml.Unmarshal(data, &images); err != nil {
				log.Printf("WARNING: fallback catalog %s invalid: %v", c.FallbackPath, err)
			} else if len(images) > 0 {
				return images
			}
		}
	}
	return []Image{
		{Name: "brave", Image: "brave", Tag: "latest"},
		{Name: "edge", Image: "edge", Tag: "latest"},
	}
}
