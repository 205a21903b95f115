package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"BrentLens/internal/model"
)

// Backend endpoint paths, relative to the base URL.
const (
	PricePath       = "/api/price_data"
	ChangePointPath = "/api/change_points"
	EventPath       = "/api/events"
	ImpactPath      = "/api/impact_analysis"
)

// HTTPFetcher implements Fetcher against the analysis backend's REST API.
type HTTPFetcher struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

// NewHTTPFetcher creates a fetcher with optional proxy support.
func NewHTTPFetcher(baseURL, apiKey, proxyURL string, timeout time.Duration) *HTTPFetcher {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPFetcher{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		Client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
	}
}

func (f *HTTPFetcher) Name() string { return "http" }

func (f *HTTPFetcher) FetchPrices(ctx context.Context) ([]model.PricePoint, error) {
	var out []model.PricePoint
	if err := f.getJSON(ctx, PricePath, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (f *HTTPFetcher) FetchChangePoints(ctx context.Context) ([]model.ChangePoint, error) {
	var out []model.ChangePoint
	if err := f.getJSON(ctx, ChangePointPath, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (f *HTTPFetcher) FetchEvents(ctx context.Context) ([]model.Event, error) {
	var out []model.Event
	if err := f.getJSON(ctx, EventPath, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (f *HTTPFetcher) FetchImpacts(ctx context.Context) ([]model.ImpactRecord, error) {
	var out []model.ImpactRecord
	if err := f.getJSON(ctx, ImpactPath, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (f *HTTPFetcher) getJSON(ctx context.Context, path string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.BaseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if f.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+f.APIKey)
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return fmt.Errorf("get %s: %w", path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("get %s: status %d, body: %s", path, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
