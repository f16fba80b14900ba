package canvas

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/png" // tile payloads
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"tilelapse/internal/common"
	"tilelapse/internal/ratelimit"
)

const (
	// User agent
	UserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 tilelapse"

	// DefaultTimeout bounds a single tile request
	DefaultTimeout = 10 * time.Second
)

// ErrTransient marks a fetch failure that should be retried
var ErrTransient = errors.New("transient tile fetch failure")

// Outcome classifies a single tile fetch
type Outcome int

const (
	// Found means the tile payload decoded into an image
	Found Outcome = iota
	// Empty means the server reported not-found; the tile is a transparent placeholder
	Empty
)

func (o Outcome) String() string {
	switch o {
	case Found:
		return "found"
	case Empty:
		return "empty"
	default:
		return "unknown"
	}
}

// TileResult is the result of fetching one tile. Image is nil for Empty tiles.
type TileResult struct {
	Coord   common.TileCoordinate
	Outcome Outcome
	Image   *image.RGBA
}

// TileFetcher fetches one tile. Errors wrap ErrTransient.
type TileFetcher interface {
	FetchTile(ctx context.Context, coord common.TileCoordinate) (TileResult, error)
}

// Client fetches tiles from a canvas server over HTTP
type Client struct {
	httpClient  *http.Client
	urlTemplate string
}

// NewClient creates a new tile client with system proxy support.
// urlTemplate contains {x} and {y} placeholders.
func NewClient(urlTemplate string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
	}

	return &Client{
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		urlTemplate: urlTemplate,
	}
}

// TileURL returns the request URL for a coordinate
func (c *Client) TileURL(coord common.TileCoordinate) string {
	url := strings.Replace(c.urlTemplate, "{x}", strconv.Itoa(coord.X), 1)
	return strings.Replace(url, "{y}", strconv.Itoa(coord.Y), 1)
}

// FetchTile downloads and decodes one tile. A 404 is an Empty result, not an
// error. Network failures, other non-200 statuses and undecodable payloads
// are returned wrapped in ErrTransient.
func (c *Client) FetchTile(ctx context.Context, coord common.TileCoordinate) (TileResult, error) {
	result := TileResult{Coord: coord}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.TileURL(coord), nil)
	if err != nil {
		return result, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", UserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return result, fmt.Errorf("%w: network error while fetching tile %v: %v", ErrTransient, coord, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		result.Outcome = Empty
		return result, nil
	case ratelimit.IsRateLimited(resp.StatusCode):
		return result, fmt.Errorf("%w: tile %v rate limited (HTTP %d)", ErrTransient, coord, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return result, fmt.Errorf("%w: tile %v returned status %d", ErrTransient, coord, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return result, fmt.Errorf("%w: failed to read tile %v: %v", ErrTransient, coord, err)
	}

	img, err := common.DecodeRGBA(data)
	if err != nil {
		return result, fmt.Errorf("%w: failed to decode tile %v: %v", ErrTransient, coord, err)
	}

	result.Outcome = Found
	result.Image = img
	return result, nil
}
