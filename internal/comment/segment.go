// Package comment turns the raw doxygen text attached to one declaration into
// an ordered sequence of command blocks. Segmentation first folds physical
// comment lines into logical lines (continuation-merged, decoration-stripped),
// then grouping assigns each logical line to a named command or to the
// anonymous description.
package comment

import "strings"

type blockKind uint8

const (
	blockNone blockKind = iota
	blockVerbatim
	blockCode
	blockList
	blockParagraph
)

var decorationReplacer = strings.NewReplacer("/**", "", "/*!", "", "/*", "", "*/", "")

// stripDecoration removes comment decoration from one physical line: leading
// ///<, //!<, /// prefixes, block-style markers anywhere in the line, and the
// leading/trailing asterisk column. Interior asterisks survive.
func stripDecoration(line string) string {
	line = strings.TrimSpace(line)
	switch {
	case strings.HasPrefix(line, "//!<") || strings.HasPrefix(line, "///<"):
		line = line[4:]
	case strings.HasPrefix(line, "///"):
		line = line[3:]
	default:
		line = decorationReplacer.Replace(line)
	}
	return strings.Trim(line, "*")
}

// sliceFrom returns s with its first n bytes removed, or "" when s is shorter.
func sliceFrom(s string, n int) string {
	if n <= 0 {
		return s
	}
	if n >= len(s) {
		return ""
	}
	return s[n:]
}

// tagColumn locates the column of a verbatim/code opening tag in the original
// line, so the same positional prefix can be removed from each line inside
// the region.
func tagColumn(original, tag string) int {
	col := strings.Index(original, "@"+tag)
	if backslash := strings.Index(original, `\`+tag); backslash > col {
		col = backslash
	}
	return col
}

// terminatorIndex locates the first @tag or \tag occurrence in the line, or
// -1 when neither form appears.
func terminatorIndex(line, tag string) int {
	at := strings.Index(line, "@"+tag)
	backslash := strings.Index(line, `\`+tag)
	switch {
	case at < 0:
		return backslash
	case backslash < 0:
		return at
	case backslash < at:
		return backslash
	}
	return at
}

// startsNewBlock reports whether a stripped line terminates a paragraph or
// list-item accumulation: a command tag, a list marker, or a blank line.
func startsNewBlock(s string) bool {
	if s == "" {
		return true
	}
	switch s[0] {
	case '\\', '@', '-', '+', '*':
		return true
	}
	return false
}

// Segment folds physical comment lines into logical lines. Paragraphs and
// list items are continuation-merged with single spaces; verbatim and code
// regions become one newline-joined logical line; blank lines become the
// "@blank" boundary sentinel (but only after some content has been emitted).
// List items are rewritten as synthetic "@li ..." lines.
func Segment(lines []string) []string {
	var result []string
	var cur string
	kind := blockNone
	column := 0

	flush := func() {
		result = append(result, cur)
		cur = ""
		kind = blockNone
	}

	for _, line := range lines {
		original := line

		if kind == blockVerbatim || kind == blockCode {
			endTag := "endverbatim"
			if kind == blockCode {
				endTag = "endcode"
			}
			if at := terminatorIndex(line, endTag); at >= 0 {
				// Text after the terminator on the same line is discarded.
				if before := sliceFrom(line[:at], column); before != "" {
					cur = cur + "\n" + before
				}
				flush()
			} else {
				bodyLine := sliceFrom(line, column)
				if cur != "" {
					cur = cur + "\n" + bodyLine
				} else {
					cur = bodyLine
				}
			}
			continue
		}

		stripped := stripDecoration(line)
		fullyStripped := strings.TrimLeft(stripped, " \t")

		if kind == blockParagraph || kind == blockList {
			if startsNewBlock(fullyStripped) {
				flush()
			} else {
				if cur != "" {
					cur = cur + " " + fullyStripped
				} else {
					cur = fullyStripped
				}
				continue
			}
		}

		if fullyStripped == "" {
			if len(result) > 0 {
				result = append(result, "@blank")
			}
			continue
		}

		switch {
		case strings.HasPrefix(fullyStripped, `\verbatim`) || strings.HasPrefix(fullyStripped, "@verbatim"):
			kind = blockVerbatim
			column = tagColumn(original, "verbatim")
			cur = fullyStripped
		case strings.HasPrefix(fullyStripped, `\code`) || strings.HasPrefix(fullyStripped, "@code"):
			kind = blockCode
			column = tagColumn(original, "code")
			cur = fullyStripped
		case fullyStripped[0] == '-' || fullyStripped[0] == '+' || fullyStripped[0] == '*':
			kind = blockList
			cur = "@li " + stripped
		default:
			kind = blockParagraph
			cur = fullyStripped
		}
	}

	if cur != "" {
		result = append(result, cur)
	}
	return result
}
