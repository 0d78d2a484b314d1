// Package segment splits raw vendor-list text into candidate entry blocks.
//
// Entries are separated by two or more consecutive blank lines. A single
// blank line inside an entry (for example between a name and an address)
// does not split it.
package segment

import (
	"strings"

	"github.com/sells-group/vendor-intake/internal/model"
)

// MinBlockLength is the trimmed length a block must exceed to be kept.
const MinBlockLength = 10

// splitBlankLines is the number of consecutive blank lines that ends a block.
const splitBlankLines = 2

var lineBreaks = strings.NewReplacer(
	"\r\n", "\n",
	"\r", "\n",
	"\u2028", "\n",
	"\u2029", "\n",
)

// Result holds the retained blocks and the number of source lines read.
type Result struct {
	Blocks     []model.RawBlock
	TotalLines int
}

// Normalize makes text line-terminator independent and drops a leading BOM.
func Normalize(text string) string {
	text = strings.TrimPrefix(text, "\ufeff")
	return lineBreaks.Replace(text)
}

// Segment normalizes text and splits it into blocks. Block order follows the
// source, and blocks whose trimmed text is MinBlockLength characters or
// shorter are dropped.
func Segment(text string) Result {
	text = Normalize(text)
	if text == "" {
		return Result{}
	}

	lines := strings.Split(text, "\n")
	// A trailing newline does not start another line.
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	var (
		blocks  []model.RawBlock
		current []string
		start   int
		blanks  int
	)

	flush := func() {
		if len(current) == 0 {
			return
		}
		joined := strings.Join(current, "\n")
		if len([]rune(strings.TrimSpace(joined))) > MinBlockLength {
			blocks = append(blocks, model.RawBlock{
				Index:     len(blocks),
				Text:      joined,
				Lines:     current,
				StartLine: start,
			})
		}
		current = nil
	}

	for i, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" {
			blanks++
			if blanks == splitBlankLines {
				flush()
			}
			continue
		}

		blanks = 0
		if len(current) == 0 {
			start = i + 1
		}
		current = append(current, line)
	}
	flush()

	return Result{Blocks: blocks, TotalLines: len(lines)}
}
