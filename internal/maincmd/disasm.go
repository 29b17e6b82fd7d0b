package maincmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/mna/mainer"
	"github.com/mna/theta/lang/bitstream"
)

func (c *Cmd) Disasm(ctx context.Context, stdio mainer.Stdio, args []string) error {
	var failed bool
	for _, name := range args {
		if err := disasmFile(stdio, name); err != nil {
			fmt.Fprintln(stdio.Stderr, err)
			failed = true
		}
	}
	if failed {
		return fmt.Errorf("disasm: one or more files failed")
	}
	return nil
}

func disasmFile(stdio mainer.Stdio, name string) error {
	data, err := os.ReadFile(name)
	if err != nil {
		return err
	}
	// A .theta source is first built in memory so a single command works on
	// either a source file or an already-built .thb bitstream.
	if !strings.HasSuffix(name, ".thb") {
		data, err = assembleFile(name)
		if err != nil {
			return err
		}
	}
	var d bitstream.StringDisassembler
	out, err := d.Disassemble(data)
	if err != nil {
		return err
	}
	fmt.Fprint(stdio.Stdout, out)
	return nil
}
