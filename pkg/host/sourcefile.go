package host

// SourceFile is the compiler's in-memory view of one source file.
//
// A source file produced for an embedded document may carry a real end:
// the offset where genuine document content stops and synthesized content
// begins. Consumers use RealEnd instead of len(Text) as the limit of
// line-mapped content.
type SourceFile struct {
	FileName string
	Text     string
	Kind     ScriptKind

	realEnd    int
	hasRealEnd bool
	guarded    bool
}

// NewSourceFile creates a source file with its kind derived from fileName.
func NewSourceFile(fileName, text string) *SourceFile {
	return &SourceFile{
		FileName: fileName,
		Text:     text,
		Kind:     KindFromName(fileName),
	}
}

// RealEnd returns the end of genuine content: the tagged boundary when
// present, otherwise len(Text).
func (f *SourceFile) RealEnd() int {
	if f.hasRealEnd {
		return f.realEnd
	}
	return len(f.Text)
}

// HasRealEnd reports whether the file is tagged with a synthetic boundary.
func (f *SourceFile) HasRealEnd() bool {
	return f.hasRealEnd
}

// SetRealEnd tags the file with a synthetic boundary. A nil offset clears it.
func (f *SourceFile) SetRealEnd(offset *int) {
	if offset == nil {
		f.realEnd, f.hasRealEnd = 0, false
		return
	}
	f.realEnd, f.hasRealEnd = *offset, true
}

// IsSynthetic reports whether offset lies in fabricated content.
func (f *SourceFile) IsSynthetic(offset int) bool {
	return f.hasRealEnd && offset >= f.realEnd
}

// Guarded reports whether a one-shot rewrite has already been applied.
func (f *SourceFile) Guarded() bool {
	return f.guarded
}

// MarkGuarded records that the one-shot rewrite has been applied.
func (f *SourceFile) MarkGuarded() {
	f.guarded = true
}
