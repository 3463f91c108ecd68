// Package urls parses loosely written URLs into a normalized form with an
// explicit scheme, ASCII host, port and path.
package urls

import (
	"errors"
	"fmt"
	"net/netip"
	"net/url"
	"strconv"
	"strings"

	"github.com/amp-labs/amp-kit/netaddr"
	"golang.org/x/net/idna"
)

const defaultScheme = "http"

var (
	ErrEmptyURL     = errors.New("empty url")
	ErrMissingHost  = errors.New("url has no host")
	ErrUnknownPort  = errors.New("no default port for scheme")
	ErrOddQueryArgs = errors.New("query arguments must come in key/value pairs")
)

var defaultPorts = map[string]uint16{ //nolint:gochecknoglobals
	"http":  80,
	"https": 443,
	"ws":    80,
	"wss":   443,
	"ftp":   21,
}

// URL is a parsed and normalized URL. Port is always set.
type URL struct {
	Scheme   string
	User     *url.Userinfo
	Host     string
	Port     uint16
	Path     string
	Query    url.Values
	Fragment string
}

// Parse normalizes raw:
//   - a missing scheme becomes http
//   - the scheme and host are lower-cased and the host is converted to its
//     ASCII (punycode) form
//   - a missing port is filled in from the scheme
//   - an empty path becomes "/"
func Parse(raw string) (*URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrEmptyURL
	}

	if !hasScheme(raw) {
		raw = defaultScheme + "://" + raw
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}

	if parsed.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrMissingHost, raw)
	}

	scheme := strings.ToLower(parsed.Scheme)

	hp, err := netaddr.ParseHostPort(parsed.Host)
	if err != nil {
		return nil, err
	}

	host, err := asciiHost(hp.Host)
	if err != nil {
		return nil, err
	}

	if hp.Port == 0 {
		port, ok := defaultPorts[scheme]
		if !ok {
			return nil, fmt.Errorf("%w %q", ErrUnknownPort, scheme)
		}

		hp.Port = port
	}

	path := parsed.Path
	if path == "" {
		path = "/"
	}

	return &URL{
		Scheme:   scheme,
		User:     parsed.User,
		Host:     host,
		Port:     hp.Port,
		Path:     path,
		Query:    parsed.Query(),
		Fragment: parsed.Fragment,
	}, nil
}

// hasScheme reports whether raw starts with "scheme://". Only the part before
// the first '/', '?' or '#' is considered, so a URL embedded in the path or
// query does not count.
func hasScheme(raw string) bool {
	i := strings.IndexAny(raw, "/?#")

	return i > 0 && raw[i-1] == ':' && strings.HasPrefix(raw[i:], "//")
}

// asciiHost lower-cases a domain and converts it to punycode. IP literals are
// returned as they are.
func asciiHost(host string) (string, error) {
	if _, err := netip.ParseAddr(host); err == nil {
		return host, nil
	}

	ascii, err := idna.Lookup.ToASCII(host)
	if err != nil {
		return "", fmt.Errorf("host %q: %w", host, err)
	}

	return ascii, nil
}

// HostPort returns the host and port.
func (u *URL) HostPort() netaddr.HostPort {
	return netaddr.HostPort{Host: u.Host, Port: u.Port}
}

// Origin is scheme://host[:port], leaving out the port when it is the
// scheme's default.
func (u *URL) Origin() string {
	return u.Scheme + "://" + u.authority()
}

func (u *URL) String() string {
	out := url.URL{
		Scheme:   u.Scheme,
		User:     u.User,
		Host:     u.authority(),
		Path:     u.Path,
		RawQuery: u.Query.Encode(),
		Fragment: u.Fragment,
	}

	return out.String()
}

func (u *URL) authority() string {
	hp := u.HostPort()
	if defaultPorts[u.Scheme] == u.Port {
		hp.Port = 0

		if strings.Contains(hp.Host, ":") {
			return "[" + hp.Host + "]"
		}
	}

	return hp.String()
}

// Join parses base and appends path elements to its path.
func Join(base string, elems ...string) (string, error) {
	u, err := Parse(base)
	if err != nil {
		return "", err
	}

	joined, err := url.JoinPath("/", append([]string{u.Path}, elems...)...)
	if err != nil {
		return "", err
	}

	u.Path = joined

	return u.String(), nil
}

// WithQuery parses raw and sets query parameters from alternating keys and
// values. Existing values for a key are replaced.
//
//	urls.WithQuery("api.example.com/v1/items", "page", "2", "limit", "50")
func WithQuery(raw string, kv ...any) (string, error) {
	if len(kv)%2 != 0 {
		return "", ErrOddQueryArgs
	}

	u, err := Parse(raw)
	if err != nil {
		return "", err
	}

	for i := 0; i < len(kv); i += 2 {
		u.Query.Set(fmt.Sprint(kv[i]), stringify(kv[i+1]))
	}

	return u.String(), nil
}

func stringify(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case int:
		return strconv.Itoa(val)
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprint(val)
	}
}
