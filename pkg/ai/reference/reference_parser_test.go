package reference

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseResponse(t *testing.T) {
	tests := []struct {
		name         string
		response     string
		wantLanguage string
		wantRTL      bool
		wantRefs     []Reference
	}{
		{
			name:         "language, direction, duplicates and range",
			response:     "Language: ur:RTL; 2:255, 2:255, 1:1-3",
			wantLanguage: "ur",
			wantRTL:      true,
			wantRefs:     []Reference{{1, 1}, {1, 2}, {1, 3}, {2, 255}},
		},
		{
			name:         "left to right marker",
			response:     "Language: en:LTR; 108:1, 8:12",
			wantLanguage: "en",
			wantRTL:      false,
			wantRefs:     []Reference{{8, 12}, {108, 1}},
		},
		{
			name:         "language without direction",
			response:     "Language: fr; 3:7",
			wantLanguage: "fr",
			wantRTL:      false,
			wantRefs:     []Reference{{3, 7}},
		},
		{
			name:         "missing marker falls back",
			response:     "See 36:1",
			wantLanguage: FallbackLanguage,
			wantRTL:      false,
			wantRefs:     []Reference{{36, 1}},
		},
		{
			name:         "direction compare is exact",
			response:     "Language: ar:rtl; 1:1",
			wantLanguage: "ar",
			wantRTL:      false,
			wantRefs:     []Reference{{1, 1}},
		},
		{
			name:         "verbose surah form",
			response:     "Language: en:LTR; Surah: 112, Ayat: 1",
			wantLanguage: "en",
			wantRTL:      false,
			wantRefs:     []Reference{{112, 1}},
		},
		{
			name:         "parenthesised range",
			response:     "Language: en:LTR; (62:9-11)",
			wantLanguage: "en",
			wantRTL:      false,
			// "9-11" is also read by the bare pair pattern as 9:11.
			wantRefs: []Reference{{9, 11}, {62, 9}, {62, 10}, {62, 11}},
		},
		{
			name:         "reversed range expands to nothing",
			response:     "Language: en:LTR; 5:9-3",
			wantLanguage: "en",
			wantRTL:      false,
			// only the pair patterns contribute: 5:9 and the bare 9-3.
			wantRefs: []Reference{{5, 9}, {9, 3}},
		},
		{
			name:         "no references",
			response:     "Language: en:LTR; nothing relevant",
			wantLanguage: "en",
			wantRTL:      false,
			wantRefs:     []Reference{},
		},
		{
			name:         "zero components dropped",
			response:     "Language: en:LTR; 0:5, 4:0, 4:4",
			wantLanguage: "en",
			wantRTL:      false,
			wantRefs:     []Reference{{4, 4}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseResponse(tt.response)

			assert.Equal(t, tt.wantLanguage, got.Language)
			assert.Equal(t, tt.wantRTL, got.RTL)
			assert.Equal(t, tt.wantRefs, got.References)
		})
	}
}

func TestExtractReferencesKeepsDuplicates(t *testing.T) {
	refs := ExtractReferences("2:255, 2:255")

	// The pair pattern matches twice; nothing else matches.
	assert.Equal(t, []Reference{{2, 255}, {2, 255}}, refs)
}

func TestExtractReferencesOverlappingPatterns(t *testing.T) {
	refs := ExtractReferences("(3:4)")

	// Both the bare and the parenthesised pair pattern produce 3:4.
	assert.Equal(t, []Reference{{3, 4}, {3, 4}}, refs)
}

func TestRangeExpansionIsBounded(t *testing.T) {
	refs := ExtractReferences("2:1-999999")

	count := 0
	for _, r := range refs {
		if r.Collection == 2 {
			count++
		}
	}
	// one from the pair pattern (2:1) plus the bounded expansion.
	assert.Equal(t, MaxRangeSpan+1, count)
}

func TestCanonicalize(t *testing.T) {
	in := []Reference{{2, 1}, {1, 9}, {2, 1}, {1, 2}}
	out := Canonicalize(in)

	assert.Equal(t, []Reference{{1, 2}, {1, 9}, {2, 1}}, out)
	// input untouched
	assert.Equal(t, Reference{2, 1}, in[0])
	assert.Empty(t, Canonicalize(nil))
}
