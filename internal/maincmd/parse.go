package maincmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/mna/mainer"
	"github.com/mna/theta/lang/ast"
	"github.com/mna/theta/lang/parser"
)

func (c *Cmd) Parse(ctx context.Context, stdio mainer.Stdio, args []string) error {
	var failed bool
	for _, name := range args {
		if err := parseFile(stdio, name); err != nil {
			fmt.Fprintln(stdio.Stderr, err)
			failed = true
		}
	}
	if failed {
		return fmt.Errorf("parse: one or more files failed")
	}
	return nil
}

func parseFile(stdio mainer.Stdio, name string) error {
	src, err := os.ReadFile(name)
	if err != nil {
		return err
	}
	_, prog, err := parser.ParseFile(name, src)
	if prog != nil {
		printProgram(stdio.Stdout, prog)
	}
	return err
}

// printProgram writes one line per node, indented by nesting depth, using
// every Node's fmt.Formatter implementation.
func printProgram(w io.Writer, prog *ast.Program) {
	depth := 0
	var visit ast.VisitorFunc
	visit = func(n ast.Node, dir ast.VisitDirection) ast.Visitor {
		if dir == ast.VisitExit {
			depth--
			return nil
		}
		fmt.Fprintf(w, "%*s%v\n", depth*2, "", n)
		depth++
		return visit
	}
	for _, item := range prog.Items {
		ast.Walk(visit, item)
	}
}
