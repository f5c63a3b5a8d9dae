// Package passhash parses password hashes stored in PHC string format:
//
//	$<id>[$v=<version>][$<param>=<value>(,<param>=<value>)*][$<salt>[$<hash>]]
//
// The server never computes hashes. It only needs to hand the salt of a
// stored hash back to the client, so this package reads the format without
// verifying anything.
package passhash

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	// ErrMalformed is returned for strings that are not valid PHC.
	ErrMalformed = errors.New("passhash: malformed PHC string")
	// ErrNoSalt is returned by Hash.SaltString when the hash has no salt.
	ErrNoSalt = errors.New("passhash: hash has no salt")
)

var (
	idRe    = regexp.MustCompile(`^[a-z0-9-]{1,32}$`)
	paramRe = regexp.MustCompile(`^[a-z0-9-]{1,32}$`)
	valueRe = regexp.MustCompile(`^[a-zA-Z0-9/+.-]+$`)
	b64Re   = regexp.MustCompile(`^[A-Za-z0-9+/.-]+$`)
)

// Param is one name=value pair of the parameter segment.
type Param struct {
	Name  string
	Value string
}

// Hash is a parsed PHC string. Salt and Digest keep their encoded form.
type Hash struct {
	Algorithm string
	Version   *int
	Params    []Param
	Salt      string
	Digest    string
}

// Parse decodes s into a Hash.
func Parse(s string) (*Hash, error) {
	if !strings.HasPrefix(s, "$") {
		return nil, fmt.Errorf("%w: must start with '$'", ErrMalformed)
	}

	fields := strings.Split(s[1:], "$")

	h := &Hash{Algorithm: fields[0]}
	if !idRe.MatchString(h.Algorithm) {
		return nil, fmt.Errorf("%w: bad algorithm id %q", ErrMalformed, h.Algorithm)
	}
	fields = fields[1:]

	if len(fields) > 0 && strings.HasPrefix(fields[0], "v=") {
		v, err := strconv.Atoi(strings.TrimPrefix(fields[0], "v="))
		if err != nil || v < 0 {
			return nil, fmt.Errorf("%w: bad version %q", ErrMalformed, fields[0])
		}
		h.Version = &v
		fields = fields[1:]
	}

	if len(fields) > 0 && strings.Contains(fields[0], "=") {
		params, err := parseParams(fields[0])
		if err != nil {
			return nil, err
		}
		h.Params = params
		fields = fields[1:]
	}

	switch len(fields) {
	case 0:
	case 1:
		h.Salt = fields[0]
	case 2:
		h.Salt, h.Digest = fields[0], fields[1]
	default:
		return nil, fmt.Errorf("%w: too many segments", ErrMalformed)
	}

	if len(fields) > 0 && !b64Re.MatchString(h.Salt) {
		return nil, fmt.Errorf("%w: bad salt encoding", ErrMalformed)
	}
	if len(fields) > 1 && !b64Re.MatchString(h.Digest) {
		return nil, fmt.Errorf("%w: bad hash encoding", ErrMalformed)
	}

	return h, nil
}

func parseParams(seg string) ([]Param, error) {
	parts := strings.Split(seg, ",")
	params := make([]Param, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))

	for _, p := range parts {
		name, value, ok := strings.Cut(p, "=")
		if !ok || !paramRe.MatchString(name) || !valueRe.MatchString(value) {
			return nil, fmt.Errorf("%w: bad parameter %q", ErrMalformed, p)
		}
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("%w: duplicate parameter %q", ErrMalformed, name)
		}
		seen[name] = struct{}{}
		params = append(params, Param{Name: name, Value: value})
	}
	return params, nil
}

// SaltString returns the salt segment exactly as stored.
func (h *Hash) SaltString() (string, error) {
	if h.Salt == "" {
		return "", ErrNoSalt
	}
	return h.Salt, nil
}

// Param returns the value of the named parameter.
func (h *Hash) Param(name string) (string, bool) {
	for _, p := range h.Params {
		if p.Name == name {
			return p.Value, true
		}
	}
	return "", false
}

// String re-encodes h in PHC form.
func (h *Hash) String() string {
	var b strings.Builder
	b.WriteString("$")
	b.WriteString(h.Algorithm)
	if h.Version != nil {
		fmt.Fprintf(&b, "$v=%d", *h.Version)
	}
	if len(h.Params) > 0 {
		b.WriteString("$")
		for i, p := range h.Params {
			if i > 0 {
				b.WriteString(",")
			}
			b.WriteString(p.Name + "=" + p.Value)
		}
	}
	if h.Salt != "" {
		b.WriteString("$" + h.Salt)
		if h.Digest != "" {
			b.WriteString("$" + h.Digest)
		}
	}
	return b.String()
}
