package issue

// PositionAt converts a byte offset in text to a 1-based line/column
// position. Offsets past the end clamp to the end of text.
func PositionAt(text string, offset int) Position {
	if offset > len(text) {
		offset = len(text)
	}
	if offset < 0 {
		offset = 0
	}

	line, col := 1, 1
	for i := 0; i < offset; i++ {
		if text[i] == '\n' {
			line++
			col = 1
			continue
		}
		col++
	}

	return Position{Line: line, Column: col}
}
