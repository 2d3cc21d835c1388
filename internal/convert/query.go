package convert

import (
	"net/url"
	"strings"
)

// Params is an ordered key/value collection for share-link query strings.
// Order is part of the output: clients and tests compare links byte for
// byte, so the encoder must not reshuffle keys the way url.Values does.
type Params struct {
	pairs []param
}

type param struct {
	key   string
	value string
}

// Set appends the pair. Empty values are dropped so absent optional
// fields never show up as "key=".
func (p *Params) Set(key, value string) {
	if value == "" {
		return
	}
	p.pairs = append(p.pairs, param{key: key, value: value})
}

// Get returns the value for key, or "" when unset.
func (p *Params) Get(key string) string {
	for _, kv := range p.pairs {
		if kv.key == key {
			return kv.value
		}
	}
	return ""
}

// Merge appends every pair of other, keeping insertion order.
func (p *Params) Merge(other Params) {
	p.pairs = append(p.pairs, other.pairs...)
}

// Encode serializes the pairs as key=value joined by '&', in insertion
// order, with percent-encoded values. No leading '?'.
func (p Params) Encode() string {
	var b strings.Builder
	for i, kv := range p.pairs {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(kv.key)
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(kv.value))
	}
	return b.String()
}
