package sheet

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const (
	DefaultCSVURL     = "https://docs.google.com/spreadsheets/d/e/2PACX-1vQgcWwiuMgzw6tonNkr1ahkPOeJqBH1OcTSPQOC7lqVWUtue9CgksQQQn2MVmw89fWJ39c-helCid4v/pub?output=csv"
	DefaultPubHTMLURL = "https://docs.google.com/spreadsheets/d/e/2PACX-1vQgcWwiuMgzw6tonNkr1ahkPOeJqBH1OcTSPQOC7lqVWUtue9CgksQQQn2MVmw89fWJ39c-helCid4v/pubhtml"

	// maxExportBytes bounds how much of an export is read into memory.
	maxExportBytes = 16 << 20
)

var ErrExportTooLarge = errors.New("sheet export is too large")

// Client downloads published spreadsheet exports.
type Client struct {
	httpClient *http.Client
	maxBytes   int64
}

func NewClient(httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{httpClient: httpClient, maxBytes: maxExportBytes}
}

// Fetch returns the body of url as text. Any non-200 response is an error.
func (c *Client) Fetch(ctx context.Context, url string) (string, error) {
	if strings.TrimSpace(url) == "" {
		return "", fmt.Errorf("sheet url is required")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("sheet export returned status %d", resp.StatusCode)
	}

	limit := c.maxBytes
	if limit <= 0 {
		limit = maxExportBytes
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return "", err
	}
	if int64(len(body)) > limit {
		return "", fmt.Errorf("%w: more than %d bytes", ErrExportTooLarge, limit)
	}
	return string(body), nil
}
