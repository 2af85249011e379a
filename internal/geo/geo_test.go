package geo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHaversineKm(t *testing.T) {
	assert.InDelta(t, 0, HaversineKm(12.97, 77.59, 12.97, 77.59), 1e-9)
	// Bengaluru MG Road -> Koramangala is roughly 4-5 km
	d := HaversineKm(12.9752, 77.6033, 12.9352, 77.6245)
	assert.InDelta(t, 5.0, d, 0.6)
}

func fakeNominatim(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		if r.URL.Query().Get("q") == "nowhere" {
			_, _ = w.Write([]byte(`[]`))
			return
		}
		_, _ = w.Write([]byte(`[{"lat":"12.9716","lon":"77.5946","display_name":"MG Road, Bengaluru",
			"address":{"road":"MG Road","city":"Bengaluru","state":"Karnataka","postcode":"560001","country":"India"}}]`))
	})
	mux.HandleFunc("/reverse", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"lat":"12.9352","lon":"77.6245","display_name":"Koramangala",
			"address":{"suburb":"Koramangala","state":"Karnataka","postcode":"560095","country":"India"}}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestNominatimGeocode(t *testing.T) {
	srv := fakeNominatim(t)
	p := NewNominatim(srv.URL, time.Second)

	locs, err := p.Geocode(context.Background(), "mg road")
	require.NoError(t, err)
	require.Len(t, locs, 1)
	assert.Equal(t, "560001", locs[0].Pincode)
	assert.Equal(t, "Bengaluru", locs[0].City)
	assert.Equal(t, "search", locs[0].Source)
	assert.InDelta(t, 12.9716, locs[0].Lat, 1e-6)

	_, err = p.Geocode(context.Background(), "nowhere")
	assert.ErrorIs(t, err, ErrNoResults)
}

func TestNominatimReverseFallsBackToSuburb(t *testing.T) {
	srv := fakeNominatim(t)
	loc, err := NewNominatim(srv.URL, time.Second).Reverse(context.Background(), 12.9352, 77.6245)
	require.NoError(t, err)
	assert.Equal(t, "Koramangala", loc.City)
	assert.Equal(t, "current", loc.Source)
}

func TestAutocompleteShortInput(t *testing.T) {
	srv := fakeNominatim(t)
	places, err := NewNominatim(srv.URL, time.Second).Autocomplete(context.Background(), "mg")
	require.NoError(t, err)
	assert.Empty(t, places)

	places, err = NewNominatim(srv.URL, time.Second).Autocomplete(context.Background(), "mg road")
	require.NoError(t, err)
	require.Len(t, places, 1)
	assert.Equal(t, "MG Road, Bengaluru", places[0].Description)
}
