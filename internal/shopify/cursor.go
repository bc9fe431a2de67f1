package shopify

import (
	"net/http"
	"net/url"
	"strings"
)

const defaultPageTokenParam = "page_info"

// CursorStrategy abstracts how the continuation cursor is carried between
// pages. The cursor itself is opaque and never inspected.
type CursorStrategy interface {
	// Next extracts the cursor for the following page from the response
	// headers. ok is false on the last page.
	Next(h http.Header) (string, bool)
	// Apply builds the next page request URL from the cursor
	Apply(base *url.URL, cursor string) (*url.URL, error)
}

// nextLink returns the rel="next" target of a Link header.
// A missing or malformed link is treated as end of pages.
func nextLink(h http.Header) (string, bool) {
	link := h.Get("Link")
	if link == "" {
		return "", false
	}
	for _, part := range strings.Split(link, ",") {
		if !strings.Contains(part, `rel="next"`) {
			continue
		}
		seg := strings.TrimSpace(strings.SplitN(part, ";", 2)[0])
		if !strings.HasPrefix(seg, "<") || !strings.HasSuffix(seg, ">") {
			continue
		}
		target := strings.Trim(seg, "<>")
		if target == "" {
			continue
		}
		return target, true
	}
	return "", false
}

// LinkHeaderStrategy follows the full rel="next" URL from the Link header
type LinkHeaderStrategy struct{}

func (LinkHeaderStrategy) Next(h http.Header) (string, bool) {
	return nextLink(h)
}

func (LinkHeaderStrategy) Apply(_ *url.URL, cursor string) (*url.URL, error) {
	return url.Parse(cursor)
}

// PageTokenStrategy extracts the page token from the rel="next" link and
// re-submits it as a query parameter on the original endpoint
type PageTokenStrategy struct {
	// Param is the token parameter name, page_info when empty
	Param string
}

func (s PageTokenStrategy) param() string {
	if s.Param == "" {
		return defaultPageTokenParam
	}
	return s.Param
}

func (s PageTokenStrategy) Next(h http.Header) (string, bool) {
	raw, ok := nextLink(h)
	if !ok {
		return "", false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", false
	}
	token := u.Query().Get(s.param())
	if token == "" {
		return "", false
	}
	return token, true
}

func (s PageTokenStrategy) Apply(base *url.URL, cursor string) (*url.URL, error) {
	// the api rejects filter parameters alongside a page token,
	// only the page size survives
	next := *base
	q := url.Values{}
	if limit := base.Query().Get("limit"); limit != "" {
		q.Set("limit", limit)
	}
	q.Set(s.param(), cursor)
	next.RawQuery = q.Encode()
	return &next, nil
}
