// Package idigbio holds the pure parts of talking to iDigBio: the compact
// query-string encoding the search API expects, URL construction, and the
// shapes of API responses.
package idigbio

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// jsonObject preserves member order; encoding/json maps do not.
type jsonObject []jsonMember

type jsonMember struct {
	Key   string
	Value any
}

// EncodeParams encodes a JSON parameter object as the search API's compact
// query-string representation: members joined as key=value&key=value, values
// rendered as minimal JSON with empty containers stripped, and exactly the
// four characters the API cannot tolerate percent-escaped. The function is
// total over well-formed JSON objects.
func EncodeParams(obj json.RawMessage) (string, error) {
	members, err := parseObject(obj)
	if err != nil {
		return "", err
	}
	members, _ = pruneObject(members)

	var sb strings.Builder
	for i, m := range members {
		if i > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(m.Key)
		sb.WriteByte('=')
		renderValue(&sb, m.Value)
	}
	return PercentEncode(sb.String()), nil
}

// SanitizeBody strips empty containers from a JSON object at every nesting
// level, preserving member order. The API distinguishes an empty filter
// object from an absent one, so pruning happens before any request body is
// sent.
func SanitizeBody(obj json.RawMessage) (json.RawMessage, error) {
	members, err := parseObject(obj)
	if err != nil {
		return nil, err
	}
	members, _ = pruneObject(members)

	var buf bytes.Buffer
	renderJSON(&buf, jsonObject(members))
	return buf.Bytes(), nil
}

// percentEncoding escapes the four characters the API rejects in query
// strings. Everything else, including ':' ',' '[' ']', stays literal; the
// API tolerates them and full URL encoding would make logged URLs unreadable.
var percentEncoding = []struct{ plain, escaped string }{
	{"{", "%7B"},
	{"}", "%7D"},
	{`"`, "%22"},
	{" ", "%20"},
}

// PercentEncode applies the minimal escaping scheme.
func PercentEncode(s string) string {
	for _, codec := range percentEncoding {
		s = strings.ReplaceAll(s, codec.plain, codec.escaped)
	}
	return s
}

func parseObject(obj json.RawMessage) ([]jsonMember, error) {
	dec := json.NewDecoder(bytes.NewReader(obj))
	dec.UseNumber()
	v, err := parseValue(dec)
	if err != nil {
		return nil, fmt.Errorf("parse parameter object: %w", err)
	}
	members, ok := v.(jsonObject)
	if !ok {
		return nil, fmt.Errorf("parameter value must be a JSON object, got %T", v)
	}
	return members, nil
}

// parseValue reads one JSON value off the decoder, preserving object member
// order and exact number formatting.
func parseValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			var obj jsonObject
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				val, err := parseValue(dec)
				if err != nil {
					return nil, err
				}
				obj = append(obj, jsonMember{Key: keyTok.(string), Value: val})
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return obj, nil
		case '[':
			arr := []any{}
			for dec.More() {
				val, err := parseValue(dec)
				if err != nil {
					return nil, err
				}
				arr = append(arr, val)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return arr, nil
		default:
			return nil, fmt.Errorf("unexpected delimiter %q", t)
		}
	default:
		return tok, nil
	}
}

// prune drops empty objects, arrays, and strings recursively. The second
// return reports whether the value survived.
func prune(v any) (any, bool) {
	switch t := v.(type) {
	case jsonObject:
		members, ok := pruneObject(t)
		if !ok {
			return nil, false
		}
		return jsonObject(members), true
	case []any:
		out := make([]any, 0, len(t))
		for _, item := range t {
			if pruned, ok := prune(item); ok {
				out = append(out, pruned)
			}
		}
		if len(out) == 0 {
			return nil, false
		}
		return out, true
	case string:
		return t, t != ""
	default:
		return t, true
	}
}

func pruneObject(members []jsonMember) ([]jsonMember, bool) {
	out := make([]jsonMember, 0, len(members))
	for _, m := range members {
		if pruned, ok := prune(m.Value); ok {
			out = append(out, jsonMember{Key: m.Key, Value: pruned})
		}
	}
	return out, len(out) > 0
}

// renderValue writes the compact query-string form: objects and arrays with
// no whitespace, strings double-quoted without JSON escaping (the percent
// pass handles the reserved characters), numbers bare, and other scalars
// stringified inside quotes.
func renderValue(sb *strings.Builder, v any) {
	switch t := v.(type) {
	case jsonObject:
		sb.WriteByte('{')
		for i, m := range t {
			if i > 0 {
				sb.WriteByte(',')
			}
			sb.WriteByte('"')
			sb.WriteString(m.Key)
			sb.WriteString(`":`)
			renderValue(sb, m.Value)
		}
		sb.WriteByte('}')
	case []any:
		sb.WriteByte('[')
		for i, item := range t {
			if i > 0 {
				sb.WriteByte(',')
			}
			renderValue(sb, item)
		}
		sb.WriteByte(']')
	case string:
		sb.WriteByte('"')
		sb.WriteString(t)
		sb.WriteByte('"')
	case json.Number:
		sb.WriteString(t.String())
	case bool:
		fmt.Fprintf(sb, "%q", fmt.Sprint(t))
	case nil:
		sb.WriteString(`"null"`)
	default:
		fmt.Fprintf(sb, "%q", fmt.Sprint(t))
	}
}

// renderJSON writes standard JSON, preserving member order.
func renderJSON(buf *bytes.Buffer, v any) {
	switch t := v.(type) {
	case jsonObject:
		buf.WriteByte('{')
		for i, m := range t {
			if i > 0 {
				buf.WriteByte(',')
			}
			key, _ := json.Marshal(m.Key)
			buf.Write(key)
			buf.WriteByte(':')
			renderJSON(buf, m.Value)
		}
		buf.WriteByte('}')
	case []any:
		buf.WriteByte('[')
		for i, item := range t {
			if i > 0 {
				buf.WriteByte(',')
			}
			renderJSON(buf, item)
		}
		buf.WriteByte(']')
	case json.Number:
		buf.WriteString(t.String())
	default:
		b, _ := json.Marshal(t)
		buf.Write(b)
	}
}
