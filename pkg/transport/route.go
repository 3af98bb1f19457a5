package transport

import (
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// Param is a single query parameter. Parameters are kept as an ordered
// list rather than a map because Helix endpoints accept repeated keys
// (e.g. multiple id= entries on /games).
type Param struct {
	Key   string
	Value string
}

// String builds a percent-encoded string parameter.
func String(key, value string) Param {
	return Param{Key: key, Value: url.QueryEscape(value)}
}

// Int builds an integer parameter in its canonical base-10 form.
func Int(key string, value int) Param {
	return Param{Key: key, Value: strconv.Itoa(value)}
}

// Route identifies one logical Helix request: HTTP method, endpoint
// path, and query parameters in caller order.
type Route struct {
	Method string
	Path   string
	Params []Param
}

// NewRoute creates a route for the given method and path.
func NewRoute(method, path string, params ...Param) Route {
	return Route{Method: method, Path: path, Params: params}
}

// Signature returns the canonical identity of the route used for rate
// limit gate selection and response caching. Helix quotas are tracked
// per endpoint, so two requests with the same method, path, and
// parameter set must share a gate. The parameter pairs are sorted,
// which makes the signature invariant under permutation of the
// parameter list.
func (r Route) Signature() string {
	pairs := make([]string, 0, len(r.Params))
	for _, p := range r.Params {
		pairs = append(pairs, p.Key+"="+p.Value)
	}
	sort.Strings(pairs)

	var b strings.Builder
	b.WriteString(r.Method)
	b.WriteByte(':')
	b.WriteString(r.Path)
	b.WriteByte(':')
	b.WriteString(strings.Join(pairs, "&"))
	return b.String()
}

// URL renders the full request URL against the given base. Unlike
// Signature, the query string preserves the caller's parameter order.
func (r Route) URL(base string) string {
	u := base + r.Path
	if len(r.Params) == 0 {
		return u
	}
	pairs := make([]string, 0, len(r.Params))
	for _, p := range r.Params {
		pairs = append(pairs, url.QueryEscape(p.Key)+"="+p.Value)
	}
	return u + "?" + strings.Join(pairs, "&")
}
