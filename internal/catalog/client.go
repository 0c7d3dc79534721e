// Package catalog is the client for the external read-only product listing
// service.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/singleflight"
)

const DefaultPageSize = 30

type Product struct {
	ID        int64           `json:"id"`
	Title     string          `json:"title"`
	Price     decimal.Decimal `json:"price"`
	Rating    float64         `json:"rating"`
	Thumbnail string          `json:"thumbnail"`
	Category  string          `json:"category"`
}

type Page struct {
	Products []Product `json:"products"`
	Total    int       `json:"total"`
	Skip     int       `json:"skip"`
	Limit    int       `json:"limit"`
}

// Last reports whether this page is the end of the list.
func (p *Page) Last() bool {
	return p.Skip+len(p.Products) >= p.Total
}

// Error is a non-2xx reply from the catalog.
type Error struct {
	StatusCode int
}

func (e *Error) Error() string {
	return fmt.Sprintf("catalog responded with status %d", e.StatusCode)
}

type Client struct {
	baseURL string
	http    *http.Client
	sfg     singleflight.Group // collapses concurrent fetches of the same page
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout:   15 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// Page fetches one page of products with the given limit and skip (offset).
func (c *Client) Page(ctx context.Context, limit, skip int) (*Page, error) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if skip < 0 {
		skip = 0
	}

	key := fmt.Sprintf("%d:%d", limit, skip)
	v, err, _ := c.sfg.Do(key, func() (interface{}, error) {
		return c.fetchPage(ctx, limit, skip)
	})
	if err != nil {
		return nil, err
	}

	return v.(*Page), nil
}

func (c *Client) fetchPage(ctx context.Context, limit, skip int) (*Page, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	q.Set("skip", strconv.Itoa(skip))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/products?%s", c.baseURL, q.Encode()), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build catalog request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("catalog request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &Error{StatusCode: resp.StatusCode}
	}

	var page Page
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("failed to decode catalog response: %w", err)
	}
	page.Skip = skip
	page.Limit = limit

	return &page, nil
}
