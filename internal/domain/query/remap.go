package query

// keywordReplacements corrects a mismatch between human-facing field names
// and iDigBio's indexing: these fields are tokenized by word, so breaking
// counts down by the plain field would group by word instead of by full
// value. The ".keyword" variants are indexed verbatim.
var keywordReplacements = map[string]string{
	"collector":   "collector.keyword",
	"locality":    "locality.keyword",
	"highertaxon": "highertaxon.keyword",
}

// Keyword rewrites a breakdown field name to its keyword-indexed variant.
// Names without a keyword variant, including already-rewritten names, pass
// through unchanged.
func Keyword(field string) string {
	if replacement, ok := keywordReplacements[field]; ok {
		return replacement
	}
	return field
}

// KeywordAll rewrites each field name independently.
func KeywordAll(fields []string) []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = Keyword(f)
	}
	return out
}
