package comment

import (
	"strings"

	"github.com/projectd/projectd/internal/docmodel"
)

// splitKeyword splits a logical line into its command keyword and the rest of
// the line. The keyword runs from the leading tag character to the first
// space or embedded newline; lines without a leading tag yield an empty
// keyword.
func splitKeyword(line string) (keyword, rest string) {
	if !strings.HasPrefix(line, `\`) && !strings.HasPrefix(line, "@") {
		return "", line
	}
	if i := strings.IndexAny(line, " \n"); i >= 0 {
		return line[1:i], line[i+1:]
	}
	return line[1:], ""
}

// Group assigns logical lines to commands. Commands are emitted in the order
// first touched and never merged: repeated tags stay separate entries. The
// single anonymous command collects all untagged prose; "@blank" boundaries
// reset the current command to it without contributing content. Commands that
// end up with neither a name nor content are dropped.
func Group(lines []string) []*docmodel.CommandDoc {
	var commands []*docmodel.CommandDoc
	appended := make(map[*docmodel.CommandDoc]bool)

	anonymous := docmodel.NewCommandDoc("")
	cur := anonymous

	touch := func() {
		if !appended[cur] {
			appended[cur] = true
			commands = append(commands, cur)
		}
	}

	for _, line := range lines {
		touch()

		keyword, rest := splitKeyword(line)
		switch keyword {
		case "blank":
			cur = anonymous
		case "":
			cur = anonymous
			cur.Doc.Append(rest, docmodel.ElementText)
		case "verbatim":
			cur.Doc.Append(rest, docmodel.ElementVerbatim)
		case "code":
			cur.Doc.Append(rest, docmodel.ElementCode)
		case "li":
			cur.Doc.Append(rest, docmodel.ElementText)
		default:
			cur = docmodel.NewCommandDoc(keyword)
			if rest != "" {
				cur.Doc.Append(rest, docmodel.ElementText)
			}
		}
	}
	touch()

	out := commands[:0]
	for _, cmd := range commands {
		if cmd.Name != "" || !cmd.Doc.Empty() {
			out = append(out, cmd)
		}
	}
	return out
}

// Parse runs segmentation and grouping over one declaration's raw comment
// text. An empty comment yields no commands.
func Parse(raw string) []*docmodel.CommandDoc {
	if raw == "" {
		return nil
	}
	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	return Group(Segment(strings.Split(raw, "\n")))
}
