package maincmd

import (
	"context"
	"fmt"

	"github.com/caarlos0/env/v6"
	"github.com/mna/mainer"
	"github.com/mna/theta/lang/machine"
)

// runConfig holds the VM's sandboxing toggles, read from the environment
// rather than flags: an operator guarding a shared runner wants to cap
// runaway scripts without every invocation having to pass a flag for it.
type runConfig struct {
	MaxSteps         int64 `env:"THETA_MAX_STEPS" envDefault:"0"`
	DisableRecursion bool  `env:"THETA_DISABLE_RECURSION_CHECK" envDefault:"false"`
}

func (c *Cmd) Run(ctx context.Context, stdio mainer.Stdio, args []string) error {
	var cfg runConfig
	if err := env.Parse(&cfg); err != nil {
		fmt.Fprintln(stdio.Stderr, err)
		return err
	}

	var failed bool
	for _, name := range args {
		if err := runFile(stdio, name, cfg); err != nil {
			fmt.Fprintln(stdio.Stderr, err)
			failed = true
		}
	}
	if failed {
		return fmt.Errorf("run: one or more files failed")
	}
	return nil
}

func runFile(stdio mainer.Stdio, name string, cfg runConfig) error {
	data, err := assembleFile(name)
	if err != nil {
		return err
	}
	vm := machine.New()
	vm.Stdout = stdio.Stdout
	vm.MaxSteps = cfg.MaxSteps
	vm.DisableRecursion = cfg.DisableRecursion
	if err := vm.Load(data); err != nil {
		return err
	}
	return vm.Run()
}
