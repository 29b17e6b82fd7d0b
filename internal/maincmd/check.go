package maincmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/mainer"
	"github.com/mna/theta/lang/parser"
	"github.com/mna/theta/lang/typecheck"
)

func (c *Cmd) Check(ctx context.Context, stdio mainer.Stdio, args []string) error {
	var failed bool
	for _, name := range args {
		if err := checkFile(name); err != nil {
			fmt.Fprintln(stdio.Stderr, err)
			failed = true
		}
	}
	if failed {
		return fmt.Errorf("check: one or more files failed")
	}
	return nil
}

func checkFile(name string) error {
	src, err := os.ReadFile(name)
	if err != nil {
		return err
	}
	fs, prog, err := parser.ParseFile(name, src)
	if err != nil {
		return err
	}
	file := fs.Files()[0]
	return typecheck.Check(file, prog)
}
