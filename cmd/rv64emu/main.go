// Command rv64emu loads a flat RV64I program image, runs it to completion,
// and dumps the final register file.
package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rasteiro11/rv64emu/pkg/cpu"
)

var (
	trace bool
	step  bool
)

func main() {
	root := &cobra.Command{
		Use:   "rv64emu <image>",
		Short: "run a flat RV64I binary image to completion",
		Args:  cobra.ExactArgs(1),
		RunE:  run,
	}
	root.Flags().BoolVarP(&trace, "trace", "t", false, "log each fetched instruction and its disassembly")
	root.Flags().BoolVarP(&step, "step", "d", false, "pause for Enter before executing each instruction")
	root.SilenceUsage = true

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(_ *cobra.Command, args []string) error {
	log := zap.NewNop()
	if trace {
		l, err := zap.NewDevelopment()
		if err != nil {
			return errors.Wrap(err, "rv64emu: failed to initialize logger")
		}
		log = l
	}
	defer log.Sync()

	image, err := os.ReadFile(args[0])
	if err != nil {
		return errors.Wrap(err, "rv64emu: failed to read image")
	}

	machine, err := cpu.New(image, log)
	if err != nil {
		return errors.Wrap(err, "rv64emu: failed to initialize machine")
	}

	for {
		pc := machine.PC()
		if trace {
			log.Sugar().Infof("pc=0x%x", pc)
		}
		if step {
			fmt.Fprint(os.Stderr, "rv64emu: paused, press enter to continue...")
			fmt.Scanln()
		}
		err := machine.Step()
		if err == nil {
			continue
		}

		// Fetch/memory/decode faults and a normal halt are all clean
		// terminations per the interpreter's contract: the dump still
		// happens and the process still exits zero. Only host-level
		// failures (reading the image, setting up the machine, or
		// writing the dump) exit nonzero.
		if trace {
			log.Sugar().Infof("halted: %s", err)
		}
		break
	}

	if err := machine.Dump(os.Stdout); err != nil {
		return errors.Wrap(err, "rv64emu: failed to write register dump")
	}
	return nil
}
