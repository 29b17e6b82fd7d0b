package scanner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mna/theta/lang/token"
)

func scanString(t *testing.T, src string) []TokenValue {
	t.Helper()
	fs := token.NewFileSet()
	f := fs.AddFile("test.theta", len(src))
	res, err := Scan(f, []byte(src))
	require.Nil(t, err)
	return res.Tokens
}

func toks(tvs []TokenValue) []token.Token {
	out := make([]token.Token, len(tvs))
	for i, tv := range tvs {
		out[i] = tv.Tok
	}
	return out
}

func TestScanPunctuationAndOperators(t *testing.T) {
	tvs := scanString(t, "( ) { } , . - + ; / * : -> ! != = == < <= > >=")
	assert.Equal(t, []token.Token{
		token.LPAREN, token.RPAREN, token.LBRACE, token.RBRACE, token.COMMA,
		token.DOT, token.MINUS, token.PLUS, token.SEMI, token.SLASH, token.STAR,
		token.COLON, token.ARROW, token.BANG, token.BANG_EQ, token.EQ, token.EQ_EQ,
		token.LT, token.LT_EQ, token.GT, token.GT_EQ, token.EOF,
	}, toks(tvs))
}

func TestScanKeywordsAndIdent(t *testing.T) {
	tvs := scanString(t, "let fun foobar if else while return true false print")
	assert.Equal(t, []token.Token{
		token.LET, token.FUN, token.IDENT, token.IF, token.ELSE, token.WHILE,
		token.RETURN, token.TRUE, token.FALSE, token.PRINT, token.EOF,
	}, toks(tvs))
	assert.Equal(t, "foobar", tvs[2].Raw)
}

func TestScanIntAndFloat(t *testing.T) {
	tvs := scanString(t, "42 3.14 7.")
	require.Len(t, tvs, 4)
	assert.Equal(t, token.INT, tvs[0].Tok)
	assert.EqualValues(t, 42, tvs[0].Int)
	assert.Equal(t, token.FLOAT, tvs[1].Tok)
	assert.InDelta(t, 3.14, tvs[1].Float, 0.0001)
	assert.Equal(t, token.FLOAT, tvs[2].Tok)
	assert.InDelta(t, 7.0, tvs[2].Float, 0.0001)
}

func TestScanIntOverflowIsFatal(t *testing.T) {
	fs := token.NewFileSet()
	f := fs.AddFile("test.theta", len("99999999999"))
	_, err := Scan(f, []byte("99999999999"))
	require.NotNil(t, err)
	assert.Equal(t, UnexpectedInput, err.Kind)
}

func TestScanString(t *testing.T) {
	tvs := scanString(t, `"hello world"`)
	require.Len(t, tvs, 2)
	assert.Equal(t, token.STRING, tvs[0].Tok)
	assert.Equal(t, "hello world", tvs[0].Str)
}

func TestScanUnterminatedString(t *testing.T) {
	fs := token.NewFileSet()
	f := fs.AddFile("test.theta", len(`"hello`))
	_, err := Scan(f, []byte(`"hello`))
	require.NotNil(t, err)
	assert.Equal(t, UnterminatedString, err.Kind)
}

func TestScanLineComment(t *testing.T) {
	tvs := scanString(t, "1 // a comment\n2")
	assert.Equal(t, []token.Token{token.INT, token.INT, token.EOF}, toks(tvs))
}

func TestScanNestedBlockComment(t *testing.T) {
	tvs := scanString(t, "1 /* outer /* inner */ still outer */ 2")
	assert.Equal(t, []token.Token{token.INT, token.INT, token.EOF}, toks(tvs))
}

func TestScanUnterminatedBlockComment(t *testing.T) {
	fs := token.NewFileSet()
	f := fs.AddFile("test.theta", len("/* never closed"))
	_, err := Scan(f, []byte("/* never closed"))
	require.NotNil(t, err)
	assert.Equal(t, UnexpectedEOF, err.Kind)
}

func TestScanExtraCommentTermination(t *testing.T) {
	fs := token.NewFileSet()
	f := fs.AddFile("test.theta", len("1 */ 2"))
	_, err := Scan(f, []byte("1 */ 2"))
	require.NotNil(t, err)
	assert.Equal(t, ExtraCommentTermination, err.Kind)
}

func TestScanUnexpectedInput(t *testing.T) {
	fs := token.NewFileSet()
	f := fs.AddFile("test.theta", len("@"))
	_, err := Scan(f, []byte("@"))
	require.NotNil(t, err)
	assert.Equal(t, UnexpectedInput, err.Kind)
}

func TestScanTracksLineBreaks(t *testing.T) {
	fs := token.NewFileSet()
	src := "1\n2\n3"
	f := fs.AddFile("test.theta", len(src))
	_, err := Scan(f, []byte(src))
	require.Nil(t, err)
	assert.Equal(t, 3, f.LineCount())
}
