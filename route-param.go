package vgrouter

import "strconv"

// Params holds decoded route parameters keyed by name (without the ":" or "*").
type Params map[string]string

// ByName returns the named parameter value or an empty string if not found.
func (ps Params) ByName(name string) string {
	return ps[name]
}

// Int parses the named parameter as a base 10 integer.
func (ps Params) Int(name string) (int, error) {
	v, ok := ps[name]
	if !ok {
		return 0, ErrMissingParam
	}
	return strconv.Atoi(v)
}

func (ps Params) clone() Params {
	ret := make(Params, len(ps))
	for k, v := range ps {
		ret[k] = v
	}
	return ret
}
