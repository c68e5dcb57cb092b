package simplecms

import (
	"encoding/json"
	"net/url"
	"strings"
)

// Wire payload decoding.
//
// Form-style requests carry array fields either as a JSON-encoded string
// (preferred, e.g. `["a","b"]`) or as a comma-separated string, and boolean
// fields as the strings "true"/"false". Decoding happens at the API
// boundary so the reconciler only ever sees typed data.

// DecodeStringList parses an array-valued form field. An empty string is an
// explicit empty list. Malformed JSON is rejected with an
// InvalidPayloadError naming the field.
func DecodeStringList(field, raw string) ([]string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return []string{}, nil
	}

	if strings.HasPrefix(trimmed, "[") {
		var out []string
		if err := json.Unmarshal([]byte(trimmed), &out); err != nil {
			return nil, &InvalidPayloadError{Field: field, Reason: "not a JSON string array"}
		}
		return out, nil
	}

	var out []string
	for _, part := range strings.Split(trimmed, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out, nil
}

// DecodeBool parses a boolean form field. Accepted encodings are the JSON
// literals "true" and "false"; anything else is rejected with an
// InvalidPayloadError naming the field.
func DecodeBool(field, raw string) (bool, error) {
	switch strings.TrimSpace(raw) {
	case "true":
		return true, nil
	case "false":
		return false, nil
	default:
		return false, &InvalidPayloadError{Field: field, Reason: "not a boolean"}
	}
}

// FilterAbsoluteURLs keeps only well-formed absolute http(s) URLs,
// preserving input order. Malformed entries are dropped, not rejected.
func FilterAbsoluteURLs(urls []string) []string {
	out := make([]string, 0, len(urls))
	for _, raw := range urls {
		u, err := url.Parse(strings.TrimSpace(raw))
		if err != nil || u.Host == "" {
			continue
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			continue
		}
		out = append(out, u.String())
	}
	return out
}
