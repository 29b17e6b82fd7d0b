package maincmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/mainer"
	"github.com/mna/theta/lang/scanner"
	"github.com/mna/theta/lang/token"
)

func (c *Cmd) Tokenize(ctx context.Context, stdio mainer.Stdio, args []string) error {
	var failed bool
	for _, name := range args {
		if err := tokenizeFile(stdio, name); err != nil {
			fmt.Fprintln(stdio.Stderr, err)
			failed = true
		}
	}
	if failed {
		return fmt.Errorf("tokenize: one or more files failed")
	}
	return nil
}

func tokenizeFile(stdio mainer.Stdio, name string) error {
	src, err := os.ReadFile(name)
	if err != nil {
		return err
	}
	fs := token.NewFileSet()
	file := fs.AddFile(name, len(src))

	res, lexErr := scanner.Scan(file, src)
	if lexErr != nil {
		return lexErr
	}
	for _, tv := range res.Tokens {
		pos := file.Position(tv.Span.Begin)
		fmt.Fprintf(stdio.Stdout, "%s: %s %q\n", pos, tv.Tok, tv.Raw)
	}
	return nil
}
