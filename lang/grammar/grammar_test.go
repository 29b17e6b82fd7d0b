package grammar

import (
	"os"
	"testing"

	"golang.org/x/exp/ebnf"
)

// TestEBNF verifies that theta.ebnf — the machine-checkable rendering of
// the grammar in this repo's specification — is itself well-formed: every
// production is defined and reachable from Program.
func TestEBNF(t *testing.T) {
	f, err := os.Open("theta.ebnf")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	g, err := ebnf.Parse("theta.ebnf", f)
	if err != nil {
		t.Fatal(err)
	}
	if err := ebnf.Verify(g, "Program"); err != nil {
		t.Fatal(err)
	}
}
