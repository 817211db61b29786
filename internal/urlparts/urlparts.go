// Package urlparts splits a request URL into its syntactic components
// without validating any of them.
package urlparts

import (
	"strings"

	"github.com/cyra/proxylog/internal/parser"
)

// Parts holds the components of a URL. Missing components are empty.
// Query and Fragment keep their leading '?' and '#'. Domain keeps any port.
type Parts struct {
	Scheme   string
	UserName string
	Password string
	Domain   string
	Path     string
	Query    string
	Fragment string
}

// Split decomposes raw. The fragment is cut first, then the query, so a '#'
// inside a query belongs to the fragment.
func Split(raw string) Parts {
	var p Parts
	s := raw

	if i := strings.IndexByte(s, '#'); i >= 0 {
		p.Fragment, s = s[i:], s[:i]
	}
	if i := strings.IndexByte(s, '?'); i >= 0 {
		p.Query, s = s[i:], s[:i]
	}

	rest := s
	if scheme, after, ok := strings.Cut(s, "://"); ok {
		p.Scheme, rest = scheme, after
	}

	slash := strings.IndexByte(rest, '/')
	if at := strings.IndexByte(rest, '@'); at >= 0 && (slash < 0 || at < slash) {
		info := rest[:at]
		rest = rest[at+1:]
		if strings.Contains(info, "%") {
			info = parser.DecodeURL(info)
		}
		p.UserName, p.Password, _ = strings.Cut(info, ":")
		slash = strings.IndexByte(rest, '/')
	}

	if slash < 0 {
		p.Domain = rest
		return p
	}
	p.Domain, p.Path = rest[:slash], rest[slash:]
	return p
}
