package vgrouter

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"
)

// segKind is the kind of an mpath segment.  The numeric order is the
// specificity order used when several patterns match the same path.
type segKind int

const (
	segWildcard segKind = iota // *rest, consumes the remaining tail
	segOptional                // :name?, zero or one segment
	segEnd                     // end of pattern, only used for scoring
	segParam                   // :name, exactly one non-empty segment
	segLiteral                 // static text
)

type mseg struct {
	kind  segKind
	value string // literal text (unescaped) or parameter name
}

// mpath is a matchable-path: a route pattern split into segments.
type mpath struct {
	pattern string
	segs    []mseg
	score   []segKind
}

// parseMpath compiles a pattern such as "/items/:id", "/docs/:page?" or
// "/files/*rest" into an mpath.  A bare "*" captures into the "*" parameter.
func parseMpath(p string) (mpath, error) {

	raw := splitPath(p)
	mp := mpath{
		pattern: "/" + strings.Join(raw, "/"),
		segs:    make([]mseg, 0, len(raw)),
		score:   make([]segKind, 0, len(raw)+1),
	}

	seen := make(map[string]bool, 2)
	addName := func(name string) error {
		if name == "" {
			return fmt.Errorf("%w: %q: empty parameter name", ErrInvalidPattern, p)
		}
		if seen[name] {
			return fmt.Errorf("%w: %q: duplicate parameter %q", ErrInvalidPattern, p, name)
		}
		seen[name] = true
		return nil
	}

	for i, s := range raw {

		var seg mseg

		switch {

		case strings.HasPrefix(s, "*"):
			if i != len(raw)-1 {
				return mpath{}, fmt.Errorf("%w: %q: wildcard must be the last segment", ErrInvalidPattern, p)
			}
			name := s[1:]
			if name == "" {
				name = "*"
			}
			seg = mseg{kind: segWildcard, value: name}

		case strings.HasPrefix(s, ":"):
			name := s[1:]
			seg = mseg{kind: segParam}
			if strings.HasSuffix(name, "?") {
				name = strings.TrimSuffix(name, "?")
				seg.kind = segOptional
			}
			seg.value = name

		case s == "":
			return mpath{}, fmt.Errorf("%w: %q: empty segment", ErrInvalidPattern, p)

		default:
			v, err := url.PathUnescape(s)
			if err != nil {
				return mpath{}, fmt.Errorf("%w: %q: %v", ErrInvalidPattern, p, err)
			}
			seg = mseg{kind: segLiteral, value: v}
		}

		if seg.kind != segLiteral {
			if err := addName(seg.value); err != nil {
				return mpath{}, err
			}
		}

		mp.segs = append(mp.segs, seg)
		mp.score = append(mp.score, seg.kind)
	}

	mp.score = append(mp.score, segEnd)

	return mp, nil
}

// splitPath splits a path into its segments.  The leading slash and a single
// trailing slash are ignored; the root path has no segments.
func splitPath(p string) []string {
	p = strings.TrimPrefix(p, "/")
	p = strings.TrimSuffix(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}

// String returns the normalized path pattern.
func (mp mpath) String() string {
	return mp.pattern
}

// paramNames will return the parameter names
// without the preceding colon or star, i.e. the path "/somewhere/:p1/*p2"
// will return []string{"p1","p2"}
func (mp mpath) paramNames() []string {
	var ret []string
	for _, s := range mp.segs {
		if s.kind != segLiteral {
			ret = append(ret, s.value)
		}
	}
	return ret
}

// match compares our mpath to the path segments provided and returns the
// decoded parameter values plus ok true if every segment matched.
func (mp mpath) match(segs []string) (params Params, ok bool) {
	params = make(Params, len(mp.segs))
	if !matchSegs(mp.segs, segs, params) {
		return nil, false
	}
	return params, true
}

func matchSegs(ms []mseg, in []string, params Params) bool {

	if len(ms) == 0 {
		return len(in) == 0
	}

	m := ms[0]

	switch m.kind {

	case segLiteral:
		if len(in) == 0 {
			return false
		}
		v, err := url.PathUnescape(in[0])
		if err != nil || v != m.value {
			return false
		}
		return matchSegs(ms[1:], in[1:], params)

	case segParam, segOptional:
		if len(in) > 0 && in[0] != "" {
			if v, err := url.PathUnescape(in[0]); err == nil {
				params[m.value] = v
				if matchSegs(ms[1:], in[1:], params) {
					return true
				}
				delete(params, m.value) // backtrack
			}
		}
		if m.kind == segOptional {
			return matchSegs(ms[1:], in, params)
		}
		return false

	case segWildcard:
		v, err := url.PathUnescape(strings.Join(in, "/"))
		if err != nil {
			return false
		}
		params[m.value] = v
		return true
	}

	return false
}

// compareScore compares the specificity of two patterns segment by segment.
// It returns a positive number if a is more specific than b.
func compareScore(a, b []segKind) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return int(a[i]) - int(b[i])
		}
	}
	return len(a) - len(b)
}

// merge will use the values provided for the path params and return the
// constructed path.  A missing required param causes ErrMissingParam to be
// returned, optional and wildcard params may be absent.
func (mp mpath) merge(v Params) (outPath string, reterr error) {

	var buf bytes.Buffer
	buf.Grow(64)

	for _, s := range mp.segs {

		switch s.kind {

		case segLiteral:
			buf.WriteByte('/')
			buf.WriteString(url.PathEscape(s.value))

		case segParam:
			pv := v[s.value]
			if pv == "" {
				return "", fmt.Errorf("%w %q for %s", ErrMissingParam, s.value, mp.pattern)
			}
			buf.WriteByte('/')
			buf.WriteString(url.PathEscape(pv))

		case segOptional:
			if pv := v[s.value]; pv != "" {
				buf.WriteByte('/')
				buf.WriteString(url.PathEscape(pv))
			}

		case segWildcard:
			pv := strings.Trim(v[s.value], "/")
			if pv == "" {
				continue
			}
			for _, part := range strings.Split(pv, "/") {
				buf.WriteByte('/')
				buf.WriteString(url.PathEscape(part))
			}
		}
	}

	if buf.Len() == 0 {
		return "/", nil
	}

	return buf.String(), nil
}
