package idigbio

import (
	"encoding/json"
	"fmt"
)

// SearchResult is the response shape of the records and media search
// endpoints.
type SearchResult struct {
	ItemCount int    `json:"itemCount"`
	Items     []Item `json:"items"`
}

// Item is one returned record. Only the parts the agent inspects are typed;
// the full record travels in the artifact URL, not in replies.
type Item struct {
	UUID       string         `json:"uuid"`
	IndexTerms map[string]any `json:"indexTerms"`
}

// AccessURI returns the media access URI indexed for the item, if any.
func (it Item) AccessURI() string {
	s, _ := it.IndexTerms["accessuri"].(string)
	return s
}

// Format returns the indexed media format, if any.
func (it Item) Format() string {
	s, _ := it.IndexTerms["format"].(string)
	return s
}

// TopCounts is the parsed response of the records summary endpoint.
type TopCounts struct {
	// ItemCount is the total number of records matching the query.
	ItemCount int
	// Field is the breakdown field keying the response.
	Field string
	// Counts holds per-value record counts in the order the API ranked
	// them, largest first.
	Counts []TopCount
}

// TopCount is the record count for one unique breakdown value.
type TopCount struct {
	Value string
	Count int
}

// ParseTopCounts decodes a summary API response. The breakdown field is the
// first member other than itemCount; value order is preserved because the
// ranking is the payload.
func ParseTopCounts(body []byte) (TopCounts, error) {
	members, err := parseObject(body)
	if err != nil {
		return TopCounts{}, fmt.Errorf("parse summary response: %w", err)
	}

	var tc TopCounts
	for _, m := range members {
		if m.Key == "itemCount" {
			n, ok := m.Value.(json.Number)
			if !ok {
				return TopCounts{}, fmt.Errorf("summary response itemCount is not a number")
			}
			count, err := n.Int64()
			if err != nil {
				return TopCounts{}, fmt.Errorf("summary response itemCount: %w", err)
			}
			tc.ItemCount = int(count)
			continue
		}
		if tc.Field != "" {
			continue
		}
		values, ok := m.Value.(jsonObject)
		if !ok {
			return TopCounts{}, fmt.Errorf("summary response %q is not an object", m.Key)
		}
		tc.Field = m.Key
		for _, v := range values {
			entry, ok := v.Value.(jsonObject)
			if !ok {
				return TopCounts{}, fmt.Errorf("summary count for %q is not an object", v.Key)
			}
			count := 0
			for _, e := range entry {
				if e.Key != "itemCount" {
					continue
				}
				if n, ok := e.Value.(json.Number); ok {
					c, err := n.Int64()
					if err != nil {
						return TopCounts{}, fmt.Errorf("summary count for %q: %w", v.Key, err)
					}
					count = int(c)
				}
			}
			tc.Counts = append(tc.Counts, TopCount{Value: v.Key, Count: count})
		}
	}
	return tc, nil
}
