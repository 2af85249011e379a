package deeplink

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	cases := map[string]struct {
		want Link
		ok   bool
	}{
		"app://store/s1":            {Link{Kind: StoreDetail, StoreID: "s1"}, true},
		"app://store-home/s1":       {Link{Kind: StoreSession, StoreID: "s1"}, true},
		"app://store/s1/":           {Link{Kind: StoreDetail, StoreID: "s1"}, true},
		"  APP://store-home/abc_2 ": {Link{Kind: StoreSession, StoreID: "abc_2"}, true},
		"app://store/":              {Link{}, false},
		"app://store":               {Link{}, false},
		"app://store/s1/extra":      {Link{}, false},
		"app://cart/s1":             {Link{}, false},
		"https://store/s1":          {Link{}, false},
		"app://store/bad%20id":      {Link{}, false},
		"app://store/s1?x=1":        {Link{}, false},
		"":                          {Link{}, false},
		"not a link":                {Link{}, false},
	}
	for in, tc := range cases {
		got, ok := Parse(in)
		assert.Equal(t, tc.ok, ok, in)
		assert.Equal(t, tc.want, got, in)
	}
}

func TestFormatRoundTrip(t *testing.T) {
	for _, l := range []Link{{Kind: StoreDetail, StoreID: "s1"}, {Kind: StoreSession, StoreID: "s-9"}} {
		got, ok := Parse(Format(l))
		assert.True(t, ok)
		assert.Equal(t, l, got)
	}
}
