// Package deeplink resolves app:// links (QR codes, shared URLs) into
// store navigation targets.
package deeplink

import (
	"net/url"
	"strings"

	"storefront/internal/validate"
)

const Scheme = "app"

type Kind int

const (
	// StoreDetail opens the store page (app://store/<id>).
	StoreDetail Kind = iota + 1
	// StoreSession enters the store's shopping session (app://store-home/<id>).
	StoreSession
)

func (k Kind) String() string {
	switch k {
	case StoreDetail:
		return "store"
	case StoreSession:
		return "store-home"
	}
	return "unknown"
}

type Link struct {
	Kind    Kind
	StoreID string
}

// Parse returns ok=false for anything that isn't exactly one of the two
// supported shapes with a valid store id.
func Parse(raw string) (Link, bool) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || !strings.EqualFold(u.Scheme, Scheme) || u.RawQuery != "" || u.Fragment != "" {
		return Link{}, false
	}
	var kind Kind
	switch strings.ToLower(u.Host) {
	case "store":
		kind = StoreDetail
	case "store-home":
		kind = StoreSession
	default:
		return Link{}, false
	}
	seg := strings.TrimSuffix(strings.TrimPrefix(u.Path, "/"), "/")
	if seg == "" || strings.Contains(seg, "/") {
		return Link{}, false
	}
	id, ok := validate.ID(seg)
	if !ok {
		return Link{}, false
	}
	return Link{Kind: kind, StoreID: id}, true
}

// Format builds the link Parse accepts.
func Format(l Link) string {
	return Scheme + "://" + l.Kind.String() + "/" + url.PathEscape(l.StoreID)
}
