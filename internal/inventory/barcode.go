package inventory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// ErrProductNotFound means the upstream returned zero matches for a barcode.
var ErrProductNotFound = errors.New("product not found")

// Product is the subset of an upstream match returned to clients.
type Product struct {
	Name  string `json:"name"`
	Image string `json:"image"`
}

// BarcodeClient calls the barcode product database over HTTP.
type BarcodeClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewBarcodeClient(baseURL, apiKey string) *BarcodeClient {
	return &BarcodeClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{},
	}
}

// Lookup fetches the first product matching the barcode. Multiple matches
// are not disambiguated.
func (c *BarcodeClient) Lookup(ctx context.Context, barcode string) (*Product, error) {
	q := url.Values{}
	q.Set("barcode", barcode)
	q.Set("key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("barcode lookup: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("barcode lookup: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("barcode lookup returned %d: %s", resp.StatusCode, string(body))
	}

	var result struct {
		Products []struct {
			Title  string   `json:"title"`
			Images []string `json:"images"`
		} `json:"products"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("barcode lookup: decode: %w", err)
	}
	if len(result.Products) == 0 {
		return nil, ErrProductNotFound
	}

	match := result.Products[0]
	product := &Product{Name: match.Title}
	if product.Name == "" {
		product.Name = "Unknown Product"
	}
	if len(match.Images) > 0 {
		product.Image = match.Images[0]
	}
	return product, nil
}
