// Package metadata locates and parses the :dotsctl: blocks embedded in
// source files.
//
// A block starts on the first line containing the marker token and runs
// until a terminator line. The marker's byte offset on its own line gives
// the strip-prefix length: that many leading characters (conventionally
// the comment prefix) are removed from every following line, so the same
// block syntax works inside shell scripts, vimrc files, or anything else
// with a line-comment convention.
package metadata

import (
	"bytes"
	"strings"
	"unicode/utf8"
)

const (
	// Marker is the literal token that opens a metadata block
	Marker = ":dotsctl:"

	// Terminator ends a metadata block, compared after de-indenting
	Terminator = "..."

	// DefaultScanWindow is how many leading lines are searched for the
	// marker, basically one page
	DefaultScanWindow = 30
)

// Block is the raw de-indented metadata text found in one file
type Block struct {
	// Prefix is the strip-prefix length inferred from the marker line
	Prefix int

	// Lines are the de-indented block lines, terminator excluded
	Lines []string

	// Terminated is false when input ended before the terminator line.
	// The accumulated lines are still usable; callers may warn.
	Terminated bool
}

// Text returns the block as a single string, ready for YAML parsing
func (b *Block) Text() string {
	return strings.Join(b.Lines, "\n")
}

// Extract scans the leading lines of content for a metadata block and
// returns it de-indented. It returns nil when no marker is found within
// the window or when the content does not look like text; most files
// simply carry no metadata and that is not an error.
func Extract(content []byte, window int) *Block {
	if window <= 0 {
		window = DefaultScanWindow
	}

	if !isText(content) {
		return nil
	}

	lines := strings.Split(string(content), "\n")

	markerLine := -1
	prefix := 0
	limit := window
	if len(lines) < limit {
		limit = len(lines)
	}
	for i := 0; i < limit; i++ {
		if idx := strings.Index(lines[i], Marker); idx >= 0 {
			markerLine = i
			prefix = idx
			break
		}
	}
	if markerLine < 0 {
		return nil
	}

	block := &Block{Prefix: prefix}
	for _, line := range lines[markerLine+1:] {
		line = deindent(line, prefix)
		if line == Terminator {
			block.Terminated = true
			break
		}
		block.Lines = append(block.Lines, line)
	}
	return block
}

// deindent drops up to prefix leading bytes, fewer when the line is
// shorter, then trims trailing whitespace
func deindent(line string, prefix int) string {
	if len(line) > prefix {
		line = line[prefix:]
	} else {
		line = ""
	}
	return strings.TrimRight(line, " \t\r")
}

// isText reports whether content looks like a text file. Binary files
// are skipped the same way the extractor skips files without a marker.
func isText(content []byte) bool {
	if bytes.IndexByte(content, 0) >= 0 {
		return false
	}
	return utf8.Valid(content)
}
