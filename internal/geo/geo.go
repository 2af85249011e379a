// Package geo resolves addresses and coordinates for the location picker and
// computes store distances.
package geo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"storefront/internal/domain"

	"github.com/tidwall/gjson"
)

const earthRadiusKm = 6371.0

// HaversineKm is the great-circle distance between two coordinates.
func HaversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	rad := func(d float64) float64 { return d * math.Pi / 180 }
	dLat := rad(lat2 - lat1)
	dLng := rad(lng2 - lng1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rad(lat1))*math.Cos(rad(lat2))*math.Sin(dLng/2)*math.Sin(dLng/2)
	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

type Place struct {
	Description string  `json:"description"`
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
}

type Provider interface {
	Geocode(ctx context.Context, query string) ([]domain.Location, error)
	Reverse(ctx context.Context, lat, lng float64) (domain.Location, error)
	Autocomplete(ctx context.Context, input string) ([]Place, error)
}

var ErrNoResults = errors.New("geo: no results")

// Nominatim talks to a Nominatim-compatible geocoder.
type Nominatim struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
}

func NewNominatim(baseURL string, timeout time.Duration) *Nominatim {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Nominatim{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		userAgent:  "storefront-client/1.0",
	}
}

func (n *Nominatim) Geocode(ctx context.Context, query string) ([]domain.Location, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return nil, ErrNoResults
	}
	body, err := n.get(ctx, "/search", url.Values{
		"q": {q}, "format": {"jsonv2"}, "addressdetails": {"1"}, "limit": {"5"},
	})
	if err != nil {
		return nil, err
	}
	var out []domain.Location
	gjson.ParseBytes(body).ForEach(func(_, v gjson.Result) bool {
		out = append(out, toLocation(v, domain.LocationSearch))
		return true
	})
	if len(out) == 0 {
		return nil, ErrNoResults
	}
	return out, nil
}

func (n *Nominatim) Reverse(ctx context.Context, lat, lng float64) (domain.Location, error) {
	body, err := n.get(ctx, "/reverse", url.Values{
		"lat":    {strconv.FormatFloat(lat, 'f', 6, 64)},
		"lon":    {strconv.FormatFloat(lng, 'f', 6, 64)},
		"format": {"jsonv2"}, "addressdetails": {"1"},
	})
	if err != nil {
		return domain.Location{}, err
	}
	res := gjson.ParseBytes(body)
	if res.Get("error").Exists() || !res.Get("lat").Exists() {
		return domain.Location{}, ErrNoResults
	}
	return toLocation(res, domain.LocationCurrent), nil
}

func (n *Nominatim) Autocomplete(ctx context.Context, input string) ([]Place, error) {
	if len(strings.TrimSpace(input)) < 3 {
		return nil, nil
	}
	body, err := n.get(ctx, "/search", url.Values{"q": {input}, "format": {"jsonv2"}, "limit": {"5"}})
	if err != nil {
		return nil, err
	}
	var out []Place
	for _, v := range gjson.ParseBytes(body).Array() {
		out = append(out, Place{
			Description: v.Get("display_name").String(),
			Lat:         v.Get("lat").Float(),
			Lng:         v.Get("lon").Float(),
		})
	}
	return out, nil
}

func (n *Nominatim) get(ctx context.Context, path string, q url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("geo: build request: %w", err)
	}
	req.Header.Set("User-Agent", n.userAgent)
	req.Header.Set("Accept", "application/json")
	resp, err := n.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geo: request failed: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("geo: read body: %w", err)
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("geo: %s returned %d", path, resp.StatusCode)
	}
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("geo: invalid json from %s", path)
	}
	return body, nil
}

func toLocation(v gjson.Result, source string) domain.Location {
	addr := v.Get("address")
	city := firstNonEmpty(addr.Get("city").String(), addr.Get("town").String(), addr.Get("village").String(),
		addr.Get("suburb").String())
	return domain.Location{
		Pincode:     addr.Get("postcode").String(),
		City:        city,
		State:       addr.Get("state").String(),
		Country:     addr.Get("country").String(),
		FullAddress: v.Get("display_name").String(),
		Lat:         v.Get("lat").Float(),
		Lng:         v.Get("lon").Float(),
		Source:      source,
		UpdatedAt:   time.Now().UTC(),
	}
}

func firstNonEmpty(ss ...string) string {
	for _, s := range ss {
		if s != "" {
			return s
		}
	}
	return ""
}
