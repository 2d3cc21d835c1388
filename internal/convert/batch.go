// Package convert turns Xray client configurations into share-link URIs
// (vless, vmess, trojan, shadowsocks). The whole pipeline is a pure
// in-memory computation: no I/O, no shared state, safe for concurrent use.
package convert

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Result carries the two ordered output lists of a batch conversion.
// Links and Errors are independent: a failing element contributes only
// to Errors and never aborts the remaining elements.
type Result struct {
	Links  []string `json:"links" yaml:"links"`
	Errors []string `json:"errors" yaml:"errors"`
}

// Convert parses raw text as a single configuration object or an array
// of them and converts each element independently. Only a top-level JSON
// parse failure short-circuits the whole batch.
func Convert(text string) Result {
	res := Result{Links: []string{}, Errors: []string{}}

	elements, err := splitConfigs(text)
	if err != nil {
		res.Errors = append(res.Errors, fmt.Sprintf("Invalid JSON input: %v.", err))
		return res
	}

	for i, raw := range elements {
		var cfg Config
		if err := json.Unmarshal(raw, &cfg); err != nil {
			res.Errors = append(res.Errors,
				fmt.Sprintf("Config #%d %q: Error — %v.", i+1, "Unnamed", err))
			continue
		}

		name := cfg.Remarks
		if name == "" {
			name = "Unnamed"
		}

		link, err := encodeConfig(&cfg, name)
		switch {
		case err == nil:
			res.Links = append(res.Links, link)
		case errors.Is(err, ErrUnsupported):
			res.Errors = append(res.Errors,
				fmt.Sprintf("Config #%d %q: Could not convert — unsupported protocol or missing data.", i+1, name))
		default:
			res.Errors = append(res.Errors,
				fmt.Sprintf("Config #%d %q: Error — %v.", i+1, name, err))
		}
	}

	return res
}

// splitConfigs normalizes the input into an ordered element list without
// decoding the elements themselves, so one malformed element surfaces as
// a per-item error instead of failing the batch.
func splitConfigs(text string) ([]json.RawMessage, error) {
	trimmed := strings.TrimSpace(text)
	if strings.HasPrefix(trimmed, "[") {
		var list []json.RawMessage
		if err := json.Unmarshal([]byte(trimmed), &list); err != nil {
			return nil, err
		}
		return list, nil
	}

	var single json.RawMessage
	if err := json.Unmarshal([]byte(trimmed), &single); err != nil {
		return nil, err
	}
	return []json.RawMessage{single}, nil
}

// Subscription renders links the way v2rayN-compatible clients fetch
// them: one link per line, base64 encoded as a whole.
func Subscription(links []string) string {
	var b strings.Builder
	for _, link := range links {
		b.WriteString(link)
		b.WriteString("\n")
	}
	return base64.StdEncoding.EncodeToString([]byte(b.String()))
}
