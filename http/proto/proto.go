package proto

import (
	"strconv"
	"strings"

	"github.com/indigo-web/utils/uf"
)

type Protocol uint8

const (
	Unknown Protocol = 0
	HTTP10  Protocol = 1 << iota
	HTTP11

	HTTP1 = HTTP10 | HTTP11
)

func (p Protocol) String() string {
	lut := [...]string{HTTP10: "HTTP/1.0", HTTP11: "HTTP/1.1"}
	if int(p) >= len(lut) {
		return ""
	}

	return lut[p]
}

const httpScheme = "HTTP/"

// Version is a structured major.minor pair, as presented in the request line.
type Version struct {
	Major, Minor uint16
}

func (v Version) String() string {
	return httpScheme + strconv.FormatUint(uint64(v.Major), 10) + "." + strconv.FormatUint(uint64(v.Minor), 10)
}

// Protocol maps the version onto the protocols known to the server. Any version besides
// 1.0 and 1.1 results in Unknown.
func (v Version) Protocol() Protocol {
	if v.Major != 1 {
		return Unknown
	}

	switch v.Minor {
	case 0:
		return HTTP10
	case 1:
		return HTTP11
	default:
		return Unknown
	}
}

// FromBytes parses a version token in a form of HTTP/<digits>.<digits>. Both of the numbers
// must consist of at least one digit and fit into uint16.
func FromBytes(raw []byte) (v Version, ok bool) {
	if len(raw) < len(httpScheme) || uf.B2S(raw[:len(httpScheme)]) != httpScheme {
		return v, false
	}

	raw = raw[len(httpScheme):]
	v.Major, raw, ok = parseNumber(raw)
	if !ok || len(raw) == 0 || raw[0] != '.' {
		return Version{}, false
	}

	v.Minor, raw, ok = parseNumber(raw[1:])
	if !ok || len(raw) != 0 {
		return Version{}, false
	}

	return v, true
}

func parseNumber(raw []byte) (n uint16, rest []byte, ok bool) {
	var digits int

	for ; digits < len(raw); digits++ {
		char := raw[digits]
		if char < '0' || char > '9' {
			break
		}

		next := uint32(n)*10 + uint32(char-'0')
		if next > 0xffff {
			return 0, nil, false
		}

		n = uint16(next)
	}

	return n, raw[digits:], digits > 0
}

// AsNumber splits the raw version string by a slash and converts the suffix into a float
// number. In case there are not exactly 2 tokens or the suffix isn't a number, 0 is returned.
func AsNumber(raw string) float64 {
	tokens := strings.Split(raw, "/")
	if len(tokens) != 2 {
		return 0
	}

	number, err := strconv.ParseFloat(tokens[1], 64)
	if err != nil {
		return 0
	}

	return number
}
