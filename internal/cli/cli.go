// Package cli handles command line interface logic
package cli

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/retroenv/retrochip8/internal/frontend"
	"github.com/retroenv/retrochip8/internal/options"
)

// ParseFlags parses command line flags and returns the program options.
func ParseFlags() (options.Program, error) {
	return parseArgs(os.Args)
}

func parseArgs(osArgs []string) (options.Program, error) {
	flags := flag.NewFlagSet(osArgs[0], flag.ContinueOnError)
	var opts options.Program
	readOptionFlags(flags, &opts)

	err := flags.Parse(osArgs[1:])
	args := flags.Args()
	if err != nil || (len(args) == 0 && opts.Input == "") {
		return opts, &UsageError{flags: flags}
	}

	if err := validateArgs(flags, args); err != nil {
		return opts, err
	}
	if len(args) > 0 {
		opts.Input = args[0]
	}

	if err := normalizeOptions(&opts); err != nil {
		return opts, err
	}
	return opts, nil
}

// UsageError represents an error that should show usage information
type UsageError struct {
	flags *flag.FlagSet
	msg   string
}

func (e *UsageError) Error() string {
	return e.msg
}

func (e *UsageError) ShowUsage() {
	if e.msg != "" {
		fmt.Printf("%s\n\n", e.msg)
	}
	fmt.Printf("usage: retrochip8 [options] <ROM file>\n\n")
	e.flags.PrintDefaults()
	fmt.Println()
}

// validateArgs checks if arguments are in correct order
func validateArgs(flags *flag.FlagSet, args []string) error {
	for i, arg := range args {
		if i > 0 && arg != "" && arg[0] == '-' {
			return &UsageError{
				flags: flags,
				msg:   fmt.Sprintf("Potential argument %s found after ROM file, please pass the ROM file as last argument", arg),
			}
		}
	}
	return nil
}

// normalizeOptions normalizes and validates option values
func normalizeOptions(opts *options.Program) error {
	opts.Frontend = strings.ToLower(opts.Frontend)
	if opts.Frontend != "" {
		if _, ok := frontend.KindFromString(opts.Frontend); !ok {
			return fmt.Errorf("unsupported frontend: %s. Valid options: %s, %s, %s",
				opts.Frontend, frontend.SDL, frontend.Terminal, frontend.Headless)
		}
	}

	opts.Quirks = strings.ToLower(opts.Quirks)
	if _, err := options.QuirksProfile(opts.Quirks); err != nil {
		return err
	}

	switch {
	case opts.InstructionsPerFrame < 1:
		return fmt.Errorf("instructions per frame must be at least 1, got %d", opts.InstructionsPerFrame)
	case opts.FrameRate < 0:
		return fmt.Errorf("frame rate must not be negative, got %d", opts.FrameRate)
	case opts.Frames < 0:
		return fmt.Errorf("frame count must not be negative, got %d", opts.Frames)
	case opts.Scale < 1:
		return fmt.Errorf("scale must be at least 1, got %d", opts.Scale)
	}
	return nil
}

func readOptionFlags(flags *flag.FlagSet, opts *options.Program) {
	flags.StringVar(&opts.Input, "i", "", "name of the input ROM file")
	flags.StringVar(&opts.Frontend, "frontend", "", "frontend to use (sdl, terminal, headless) - auto-detected if not given")
	flags.IntVar(&opts.InstructionsPerFrame, "ipf", options.DefaultInstructionsPerFrame, "instructions executed per frame")
	flags.IntVar(&opts.FrameRate, "fps", options.DefaultFrameRate, "frames per second, 0 runs unthrottled")
	flags.IntVar(&opts.Frames, "frames", 0, "stop after the given number of frames, 0 runs until quit")
	flags.StringVar(&opts.Quirks, "quirks", options.QuirksDefault, "quirks profile of the emulated interpreter (default, vip, schip)")
	flags.BoolVar(&opts.ShiftUsesVY, "shift-vy", false, "shift instructions read Vy instead of Vx")
	flags.IntVar(&opts.Scale, "scale", options.DefaultScale, "window scale factor of the sdl frontend")
	flags.BoolVar(&opts.Debug, "debug", false, "enable debugging options for extended logging")
	flags.BoolVar(&opts.Trace, "trace", false, "log every executed instruction, implies -debug")
	flags.BoolVar(&opts.Quiet, "q", false, "perform operations quietly")
	flags.BoolVar(&opts.List, "list", false, "print an instruction listing of the ROM instead of running it")
}
