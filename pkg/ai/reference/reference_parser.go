package reference

import (
	"regexp"
	"strconv"
	"strings"
)

const (
	// FallbackLanguage is used when the response carries no language marker.
	FallbackLanguage = "arabic"

	// DirectionRTL is the only direction marker that turns on right-to-left output.
	DirectionRTL = "RTL"

	// MaxRangeSpan bounds how many items a single "n:a-b" range may expand to.
	MaxRangeSpan = 1000
)

// ParsedResponse is what the AI free text boils down to.
type ParsedResponse struct {
	Language   string
	RTL        bool
	References []Reference // canonical: deduplicated, ascending
}

// Language marker: "Language: code[:direction];"
var languagePattern = regexp.MustCompile(`Language:\s*(\w+)(?::(\w+))?;`)

// Reference patterns, applied independently and in this order. They overlap
// on purpose: the upstream text has no guaranteed shape, so every match from
// every pattern is kept and duplicates are removed afterwards.
//
// The bare "n-m" pattern has no collection qualifier and will also read two
// unrelated numbers as a pair (for example the tail of "1:1-3" becomes 1:3).
// That over-matching is known and kept.
var referencePatterns = []*regexp.Regexp{
	regexp.MustCompile(`Surah\s*:\s*(\d+)\s*,\s*Ayat\s*:\s*(\d+)`),
	regexp.MustCompile(`(\d+)\s*:\s*(\d+)`),
	regexp.MustCompile(`(\d+)\s*:\s*(\d+)\s*-\s*(\d+)`),
	regexp.MustCompile(`\((\d+)\s*:\s*(\d+)\)`),
	regexp.MustCompile(`\((\d+)\s*:\s*(\d+)\s*-\s*(\d+)\)`),
	regexp.MustCompile(`(\d+)\s*-\s*(\d+)`),
}

// ParseResponse extracts the language marker and the canonical reference set
// from an AI answer.
func ParseResponse(text string) *ParsedResponse {
	result := &ParsedResponse{
		Language: FallbackLanguage,
	}

	remaining := text
	if m := languagePattern.FindStringSubmatchIndex(text); m != nil {
		result.Language = text[m[2]:m[3]]
		if m[4] >= 0 {
			result.RTL = text[m[4]:m[5]] == DirectionRTL
		}
		remaining = text[:m[0]] + text[m[1]:]
	}

	result.References = Canonicalize(ExtractReferences(remaining))
	return result
}

// ExtractReferences runs every pattern over text and returns all matches in
// pattern order, duplicates included.
func ExtractReferences(text string) []Reference {
	var refs []Reference
	for _, pattern := range referencePatterns {
		for _, match := range pattern.FindAllStringSubmatch(text, -1) {
			refs = append(refs, expandMatch(match[1:])...)
		}
	}
	return refs
}

// expandMatch turns captured groups into references: two numbers are a
// single pair, three numbers are a collection plus an inclusive item range.
func expandMatch(groups []string) []Reference {
	nums := make([]int, 0, len(groups))
	for _, g := range groups {
		n, err := strconv.Atoi(strings.TrimSpace(g))
		if err != nil || n <= 0 {
			return nil
		}
		nums = append(nums, n)
	}

	switch len(nums) {
	case 2:
		return []Reference{{Collection: nums[0], Item: nums[1]}}
	case 3:
		start, end := nums[1], nums[2]
		// start > end expands to nothing.
		if end-start+1 > MaxRangeSpan {
			end = start + MaxRangeSpan - 1
		}
		var refs []Reference
		for item := start; item <= end; item++ {
			refs = append(refs, Reference{Collection: nums[0], Item: item})
		}
		return refs
	default:
		return nil
	}
}
