package query

import (
	"bytes"
	"encoding/json"
	"fmt"
)

type member struct {
	field string
	value Value
}

// Query is a validated iDigBio record query (the "rq" object). Members keep
// their source order so serialization is deterministic. The zero value is an
// empty query, which the API treats as a wildcard.
type Query struct {
	members []member
}

// MediaQuery is a validated iDigBio media query (the "mq" object).
type MediaQuery struct {
	members []member
}

// UnmarshalJSON validates the object against the record field registry.
func (q *Query) UnmarshalJSON(data []byte) error {
	members, err := parseMembers(data, RecordField, "record")
	if err != nil {
		return err
	}
	q.members = members
	return nil
}

// MarshalJSON renders the query in member order.
func (q Query) MarshalJSON() ([]byte, error) { return marshalMembers(q.members) }

// IsEmpty reports whether the query has no filters.
func (q Query) IsEmpty() bool { return len(q.members) == 0 }

// Len returns the number of filter members.
func (q Query) Len() int { return len(q.members) }

// Fields returns the filtered field names in member order.
func (q Query) Fields() []string { return memberFields(q.members) }

// Get returns the value filtering the named field.
func (q Query) Get(name string) (Value, bool) { return memberValue(q.members, name) }

// UnmarshalJSON validates the object against the media field registry.
func (m *MediaQuery) UnmarshalJSON(data []byte) error {
	members, err := parseMembers(data, MediaField, "media")
	if err != nil {
		return err
	}
	m.members = members
	return nil
}

// MarshalJSON renders the query in member order.
func (m MediaQuery) MarshalJSON() ([]byte, error) { return marshalMembers(m.members) }

// IsEmpty reports whether the query has no filters.
func (m MediaQuery) IsEmpty() bool { return len(m.members) == 0 }

// Fields returns the filtered field names in member order.
func (m MediaQuery) Fields() []string { return memberFields(m.members) }

// Get returns the value filtering the named field.
func (m MediaQuery) Get(name string) (Value, bool) { return memberValue(m.members, name) }

// MustParse parses a record query literal and panics on failure. Intended for
// hand-authored values such as prompt examples and test fixtures.
func MustParse(literal string) Query {
	var q Query
	if err := json.Unmarshal([]byte(literal), &q); err != nil {
		panic(fmt.Sprintf("query.MustParse(%q): %v", literal, err))
	}
	return q
}

// MustParseMedia parses a media query literal and panics on failure.
func MustParseMedia(literal string) MediaQuery {
	var m MediaQuery
	if err := json.Unmarshal([]byte(literal), &m); err != nil {
		panic(fmt.Sprintf("query.MustParseMedia(%q): %v", literal, err))
	}
	return m
}

// parseMembers decodes a JSON object member-by-member, preserving source
// order and validating each value against the field registry.
func parseMembers(data []byte, lookup func(string) (Field, bool), format string) ([]member, error) {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, errorf("", "malformed %s query: %v", format, err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, errorf("", "%s query must be a JSON object", format)
	}

	var members []member
	seen := make(map[string]bool)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, errorf("", "malformed %s query: %v", format, err)
		}
		key := keyTok.(string)

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, errorf(key, "malformed value: %v", err)
		}

		f, ok := lookup(key)
		if !ok {
			return nil, errorf(key, "unrecognized %s query field", format)
		}
		if seen[key] {
			return nil, errorf(key, "field appears more than once")
		}
		seen[key] = true

		v, err := parseValue(f, raw)
		if err != nil {
			return nil, err
		}
		members = append(members, member{field: key, value: v})
	}

	if _, err := dec.Token(); err != nil {
		return nil, errorf("", "malformed %s query: %v", format, err)
	}
	return members, nil
}

func marshalMembers(members []member) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, m := range members {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(m.field)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(m.value)
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func memberFields(members []member) []string {
	fields := make([]string, len(members))
	for i, m := range members {
		fields[i] = m.field
	}
	return fields
}

func memberValue(members []member, name string) (Value, bool) {
	for _, m := range members {
		if m.field == name {
			return m.value, true
		}
	}
	return Value{}, false
}
