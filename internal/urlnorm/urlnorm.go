// Package urlnorm contains utilities for turning arbitrary user input and
// blocklist lines into canonical domain and URL keys.
package urlnorm

import (
	"fmt"
	"net/netip"
	"net/url"
	"path"
	"strings"
	"unicode/utf8"

	"github.com/AdguardTeam/golibs/errors"
	"golang.org/x/net/idna"
)

const (
	// ErrMalformedInput is returned when the input cannot be parsed as a URL
	// either as is or with the default scheme prepended.
	ErrMalformedInput errors.Error = "malformed input"

	// ErrNoHostname is returned when the input is a valid URL without a host,
	// for example a mailto one.
	ErrNoHostname errors.Error = "no hostname"
)

// DefaultScheme is the scheme that is added to inputs without one.
const DefaultScheme = "https"

// Domain returns the canonical domain for s: the lowercased host without a
// port and a trailing dot.  IP addresses are returned in their canonical form
// without brackets.  Internationalized names are converted to ASCII.
func Domain(s string) (host string, err error) {
	u, err := parse(s)
	if err != nil {
		return "", err
	}

	return hostname(u)
}

// URL returns the canonical URL key for s: scheme, host, non-default port, and
// cleaned path.  Query, fragment, and user information are discarded.  Opaque
// URLs, such as mailto ones, are returned as scheme and opaque part.  URLs
// without a host, such as file ones, are returned as scheme and cleaned path,
// unless the scheme is http or https.
func URL(s string) (key string, err error) {
	_, key, _, err = Both(s)

	return key, err
}

// Both returns the canonical domain and URL keys for s parsing it only once.
// domainErr and urlErr are the same errors [Domain] and [URL] would return.
func Both(s string) (host, key string, domainErr, urlErr error) {
	u, err := parse(s)
	if err != nil {
		return "", "", err, err
	}

	host, domainErr = hostname(u)
	switch {
	case u.Opaque != "":
		key = u.Scheme + ":" + u.Opaque
	case errors.Is(domainErr, ErrNoHostname) && !isWebScheme(u.Scheme):
		// A hierarchical URL without a host, like "file:///etc/hosts".
		key = u.Scheme + "://" + cleanPath(u.EscapedPath())
	case domainErr != nil:
		urlErr = domainErr
	default:
		key = urlKey(u, host)
	}

	return host, key, domainErr, urlErr
}

// isWebScheme returns true if scheme requires a host.
func isWebScheme(scheme string) (ok bool) {
	return scheme == "http" || scheme == "https"
}

// parse parses s as an absolute URL, retrying with [DefaultScheme] if s has no
// scheme.
func parse(s string) (u *url.URL, err error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, ErrMalformedInput
	}

	u, err = url.Parse(s)
	if err == nil {
		switch {
		case u.Scheme != "":
			u.Scheme = strings.ToLower(u.Scheme)

			return u, nil
		case u.Host != "":
			// A scheme-relative reference, like "//example.com/path".
			u.Scheme = DefaultScheme

			return u, nil
		default:
			// Go on and retry with the default scheme.
		}
	}

	u, err = url.Parse(DefaultScheme + "://" + s)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedInput, err)
	}

	return u, nil
}

// hostname returns the canonical host of u.
func hostname(u *url.URL) (host string, err error) {
	if u.Opaque != "" {
		return "", ErrNoHostname
	}

	host = strings.TrimSuffix(strings.ToLower(u.Hostname()), ".")
	if host == "" {
		return "", ErrNoHostname
	}

	if ip, ipErr := netip.ParseAddr(host); ipErr == nil {
		return ip.String(), nil
	}

	if isASCII(host) {
		return host, nil
	}

	host, err = idna.Lookup.ToASCII(host)
	if err != nil {
		return "", fmt.Errorf("%w: idna: %w", ErrMalformedInput, err)
	}

	return strings.ToLower(host), nil
}

// urlKey returns the canonical URL key for a hierarchical u with the canonical
// host.
func urlKey(u *url.URL, host string) (key string) {
	b := &strings.Builder{}
	b.WriteString(u.Scheme)
	b.WriteString("://")
	writeHostPort(b, host, portString(u))
	b.WriteString(cleanPath(u.EscapedPath()))

	return b.String()
}

// portString returns the port of u or an empty string if the port is the
// default one for the scheme.
func portString(u *url.URL) (port string) {
	port = u.Port()
	switch {
	case
		port == "80" && u.Scheme == "http",
		port == "443" && u.Scheme == "https":
		return ""
	default:
		return port
	}
}

// writeHostPort writes host and, if not empty, port into b.  IPv6 addresses
// are enclosed in brackets.
func writeHostPort(b *strings.Builder, host, port string) {
	if strings.IndexByte(host, ':') >= 0 {
		b.WriteByte('[')
		b.WriteString(host)
		b.WriteByte(']')
	} else {
		b.WriteString(host)
	}

	if port != "" {
		b.WriteByte(':')
		b.WriteString(port)
	}
}

// cleanPath resolves dot segments and duplicate slashes in p.  An empty path
// becomes "/".  A trailing slash is kept.
func cleanPath(p string) (cleaned string) {
	if p == "" {
		return "/"
	}

	if p[0] != '/' {
		p = "/" + p
	}

	if !strings.Contains(p, "/.") && !strings.Contains(p, "//") {
		return p
	}

	cleaned = path.Clean(p)
	if cleaned != "/" && strings.HasSuffix(p, "/") {
		cleaned += "/"
	}

	return cleaned
}

// isASCII returns true if s contains only ASCII characters.
func isASCII(s string) (ok bool) {
	for i := range len(s) {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}

	return true
}
