package maincmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mna/mainer"
	"github.com/mna/theta/lang/bitstream"
	"github.com/mna/theta/lang/compiler"
	"github.com/mna/theta/lang/parser"
	"github.com/mna/theta/lang/typecheck"
)

func (c *Cmd) Build(ctx context.Context, stdio mainer.Stdio, args []string) error {
	var failed bool
	for _, name := range args {
		if err := buildFile(name); err != nil {
			fmt.Fprintln(stdio.Stderr, err)
			failed = true
		}
	}
	if failed {
		return fmt.Errorf("build: one or more files failed")
	}
	return nil
}

// assembleFile runs the full pipeline (scan, parse with inline resolution,
// type check, emit, assemble) and returns the resulting bitstream bytes.
func assembleFile(name string) ([]byte, error) {
	src, err := os.ReadFile(name)
	if err != nil {
		return nil, err
	}
	fs, prog, err := parser.ParseFile(name, src)
	if err != nil {
		return nil, err
	}
	if err := typecheck.Check(fs.Files()[0], prog); err != nil {
		return nil, err
	}
	fns, err := compiler.CompileProgram(prog)
	if err != nil {
		return nil, err
	}
	return bitstream.Assemble(fns)
}

func buildFile(name string) error {
	data, err := assembleFile(name)
	if err != nil {
		return err
	}
	out := strings.TrimSuffix(name, filepath.Ext(name)) + ".thb"
	return os.WriteFile(out, data, 0o644)
}
