package parser

import (
	"regexp"
	"strings"
)

// Delimiter is the column separator a table was read with.
type Delimiter string

const (
	DelimiterTab    Delimiter = "tab"
	DelimiterComma  Delimiter = "comma"
	DelimiterSpaces Delimiter = "spaces"
	DelimiterHTML   Delimiter = "html"
)

const sampleLines = 3

var (
	spaceRunRe   = regexp.MustCompile(` {2,}`)
	spaceSplitRe = regexp.MustCompile(`\t| {2,}`)
)

// DetectDelimiter samples the first non-empty lines and picks the separator
// seen most often. Ties go tab, then comma, then runs of spaces; text with no
// separators at all reads as tab separated.
func DetectDelimiter(text string) Delimiter {
	var tabs, commas, spaces int
	for _, line := range nonEmptyLines(text, sampleLines) {
		tabs += strings.Count(line, "\t")
		commas += strings.Count(line, ",")
		spaces += len(spaceRunRe.FindAllStringIndex(strings.TrimSpace(line), -1))
	}

	switch {
	case tabs >= commas && tabs >= spaces:
		return DelimiterTab
	case commas >= spaces:
		return DelimiterComma
	default:
		return DelimiterSpaces
	}
}

func nonEmptyLines(text string, limit int) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		out = append(out, line)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}
