package token

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTokenString(t *testing.T) {
	for tok := Token(0); tok < maxToken; tok++ {
		require.NotEmpty(t, tok.String())
	}
	require.Equal(t, "illegal token", Token(-1).String())
	require.Equal(t, "illegal token", maxToken.String())
}

func TestTokenGoString(t *testing.T) {
	require.Equal(t, "'+'", PLUS.GoString())
	require.Equal(t, "and", AND.GoString())
}

func TestLookup(t *testing.T) {
	for tok := AND; tok < maxToken; tok++ {
		require.Equal(t, tok, Lookup(tokenNames[tok]))
	}
	require.Equal(t, IDENT, Lookup("notAKeyword"))
	require.Equal(t, IDENT, Lookup("x"))
}

func TestIsComparison(t *testing.T) {
	for _, tok := range []Token{BANG_EQ, EQ_EQ, GT, GT_EQ, LT, LT_EQ} {
		require.True(t, tok.IsComparison(), tok)
	}
	for _, tok := range []Token{PLUS, MINUS, EQ, AND, IDENT} {
		require.False(t, tok.IsComparison(), tok)
	}
}

func TestIsBinary(t *testing.T) {
	for _, tok := range []Token{PLUS, MINUS, STAR, SLASH, BANG_EQ, EQ_EQ, GT, GT_EQ, LT, LT_EQ} {
		require.True(t, tok.IsBinary(), tok)
	}
	for _, tok := range []Token{EQ, BANG, AND, OR, IDENT} {
		require.False(t, tok.IsBinary(), tok)
	}
}
