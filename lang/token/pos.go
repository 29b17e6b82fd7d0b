package token

import "sort"

// Pos is a byte offset into a source file; the zero value is the offset
// of the file's first byte.
type Pos int

// Span is a half-open character range [Begin, End) identifying the text
// consumed to produce a token or tree node.
type Span struct {
	Begin, End Pos
}

// Merge returns the span that starts where a starts and ends where b ends,
// e.g. to compute the span of a binary expression from its operands.
func Merge(a, b Span) Span {
	return Span{Begin: a.Begin, End: b.End}
}

// Len reports the number of bytes covered by the span.
func (s Span) Len() int { return int(s.End - s.Begin) }

// Position is a human-readable line/column location, as recovered from a
// File's line-break table.
type Position struct {
	Filename string
	Offset   int // byte offset, 0-based
	Line     int // 1-based
	Column   int // 1-based, in bytes
}

func (p Position) String() string {
	if p.Filename == "" {
		return posString(p.Line, p.Column)
	}
	return p.Filename + ":" + posString(p.Line, p.Column)
}

func posString(line, col int) string {
	if line <= 0 {
		return "-"
	}
	b := []byte{}
	b = appendInt(b, line)
	if col > 0 {
		b = append(b, ':')
		b = appendInt(b, col)
	}
	return string(b)
}

func appendInt(b []byte, n int) []byte {
	if n == 0 {
		return append(b, '0')
	}
	start := len(b)
	for n > 0 {
		b = append(b, byte('0'+n%10))
		n /= 10
	}
	// reverse the digits just appended
	for i, j := start, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
	return b
}

// File records the name and size of a source file along with the byte
// offset at which every line after the first one begins, so that a Pos can
// be translated back to a (line, column) pair by binary search.
//
// lineBreaks[i] is the offset at which line i+2 starts; line 1 always
// starts at offset 0, matching the lexer's LexerResult.line_breaks
// contract.
type File struct {
	name       string
	size       int
	lineBreaks []int
}

// NewFile creates a File for a source of the given name and byte size. Size
// must match the length of the source passed to the scanner.
func NewFile(name string, size int) *File {
	return &File{name: name, size: size}
}

// Name returns the file's name.
func (f *File) Name() string { return f.name }

// Size returns the file's byte size.
func (f *File) Size() int { return f.size }

// AddLine records that a new line begins at the given byte offset. Offsets
// must be added in increasing order; offsets that are not strictly greater
// than the previously recorded one, or that exceed the file size, are
// ignored.
func (f *File) AddLine(offset int) {
	if offset <= 0 || offset > f.size {
		return
	}
	n := len(f.lineBreaks)
	if n > 0 && f.lineBreaks[n-1] >= offset {
		return
	}
	f.lineBreaks = append(f.lineBreaks, offset)
}

// LineCount returns the number of lines recorded so far (at least 1).
func (f *File) LineCount() int { return len(f.lineBreaks) + 1 }

// Position translates a byte offset within the file into a line/column
// pair by binary-searching the line-break table.
func (f *File) Position(offset Pos) Position {
	o := int(offset)
	// line is 1 plus the count of line breaks at or before o
	line := sort.Search(len(f.lineBreaks), func(i int) bool {
		return f.lineBreaks[i] > o
	}) + 1
	lineStart := 0
	if line > 1 {
		lineStart = f.lineBreaks[line-2]
	}
	return Position{
		Filename: f.name,
		Offset:   o,
		Line:     line,
		Column:   o - lineStart + 1,
	}
}

// FileSet groups the Files of a multi-file compilation so that drivers (out
// of the core's scope) can report positions uniformly; the core compiler
// only ever deals with a single File at a time.
type FileSet struct {
	files []*File
}

// NewFileSet creates an empty FileSet.
func NewFileSet() *FileSet { return &FileSet{} }

// AddFile creates, registers and returns a new File in the set.
func (fs *FileSet) AddFile(name string, size int) *File {
	f := NewFile(name, size)
	fs.files = append(fs.files, f)
	return f
}

// Files returns the files registered in the set, in registration order.
func (fs *FileSet) Files() []*File { return fs.files }
