package token

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMerge(t *testing.T) {
	a := Span{Begin: 3, End: 7}
	b := Span{Begin: 10, End: 14}
	got := Merge(a, b)
	require.Equal(t, Span{Begin: 3, End: 14}, got)
	require.Equal(t, 4, a.Len())
}

func TestFilePosition(t *testing.T) {
	// source: "abc\nde\nfghi" -> lines start at 0, 4, 7
	f := NewFile("test.th", 11)
	f.AddLine(4)
	f.AddLine(7)

	require.Equal(t, 3, f.LineCount())

	cases := []struct {
		off  Pos
		want Position
	}{
		{0, Position{Filename: "test.th", Offset: 0, Line: 1, Column: 1}},
		{3, Position{Filename: "test.th", Offset: 3, Line: 1, Column: 4}},
		{4, Position{Filename: "test.th", Offset: 4, Line: 2, Column: 1}},
		{6, Position{Filename: "test.th", Offset: 6, Line: 2, Column: 3}},
		{7, Position{Filename: "test.th", Offset: 7, Line: 3, Column: 1}},
		{10, Position{Filename: "test.th", Offset: 10, Line: 3, Column: 4}},
	}
	for _, c := range cases {
		got := f.Position(c.off)
		require.Equal(t, c.want, got, "offset %d", c.off)
	}
}

func TestFileAddLineIgnoresOutOfOrder(t *testing.T) {
	f := NewFile("t", 10)
	f.AddLine(5)
	f.AddLine(3) // out of order, ignored
	f.AddLine(5) // not strictly greater, ignored
	f.AddLine(20) // past size, ignored
	require.Equal(t, 2, f.LineCount())
}

func TestPositionString(t *testing.T) {
	require.Equal(t, "a.th:2:3", Position{Filename: "a.th", Line: 2, Column: 3}.String())
	require.Equal(t, "2:3", Position{Line: 2, Column: 3}.String())
}

func TestFileSet(t *testing.T) {
	fs := NewFileSet()
	f1 := fs.AddFile("a.th", 5)
	f2 := fs.AddFile("b.th", 9)
	require.Equal(t, []*File{f1, f2}, fs.Files())
}
