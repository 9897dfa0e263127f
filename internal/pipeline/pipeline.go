// Package pipeline orchestrates the stages of running a ROM.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/retroenv/retrochip8/internal/app"
	"github.com/retroenv/retrochip8/internal/detector"
	"github.com/retroenv/retrochip8/internal/frontend"
	"github.com/retroenv/retrochip8/internal/frontend/headless"
	"github.com/retroenv/retrochip8/internal/frontend/sdl"
	"github.com/retroenv/retrochip8/internal/frontend/terminal"
	"github.com/retroenv/retrochip8/internal/listing"
	"github.com/retroenv/retrochip8/internal/loader"
	"github.com/retroenv/retrochip8/internal/machine"
	"github.com/retroenv/retrochip8/internal/options"
	"github.com/retroenv/retrochip8/internal/runner"
	"github.com/retroenv/retrogolib/log"
)

// Pipeline orchestrates the complete workflow of running a ROM.
type Pipeline struct {
	logger   *log.Logger
	detector *detector.Detector
	loader   *loader.Loader
	output   io.Writer // receives the final frame of the headless frontend
}

// New creates a new pipeline.
func New(logger *log.Logger) *Pipeline {
	return &Pipeline{
		logger:   logger,
		detector: detector.New(logger),
		loader:   loader.New(logger),
		output:   os.Stdout,
	}
}

// Execute loads the ROM of the options and runs it in the detected frontend,
// or writes its instruction listing if requested.
func (p *Pipeline) Execute(ctx context.Context, opts options.Program) error {
	rom, err := p.loader.Load(opts.Input)
	if err != nil {
		return fmt.Errorf("loading ROM: %w", err)
	}

	if opts.List {
		if err := listing.Write(p.output, rom.Data); err != nil {
			return fmt.Errorf("writing listing: %w", err)
		}
		return nil
	}

	kind, err := p.detector.Detect(opts)
	if err != nil {
		return fmt.Errorf("detecting frontend: %w", err)
	}

	fe, err := p.createFrontend(kind, rom, opts)
	if err != nil {
		return fmt.Errorf("creating %s frontend: %w", kind, err)
	}

	app.PrintInfo(p.logger, opts, rom)
	return p.ExecuteWithROM(ctx, rom, opts, fe)
}

// ExecuteWithROM runs a pre-loaded ROM in the given frontend and closes the
// frontend afterwards. This is useful for testing and programmatic usage.
func (p *Pipeline) ExecuteWithROM(ctx context.Context, rom loader.ROM, opts options.Program,
	fe frontend.Frontend) (err error) {

	defer func() {
		if closeErr := fe.Close(); closeErr != nil {
			if err == nil {
				err = fmt.Errorf("closing frontend: %w", closeErr)
				return
			}
			p.logger.Error("Closing frontend failed", log.Err(closeErr))
		}
	}()

	m, err := p.createMachine(rom, opts)
	if err != nil {
		return err
	}

	r := runner.New(p.logger, m, fe, opts.Emulation)
	if err := r.Run(ctx); err != nil {
		return fmt.Errorf("running %s: %w", rom.Name, err)
	}
	return nil
}

// createMachine creates the machine for the quirks of the options and loads the ROM.
func (p *Pipeline) createMachine(rom loader.ROM, opts options.Program) (*machine.Machine, error) {
	machineOpts, err := options.NewMachine(opts)
	if err != nil {
		return nil, fmt.Errorf("creating machine options: %w", err)
	}

	m := machine.New(p.logger, machineOpts, nil)
	if err := m.Load(rom.Data); err != nil {
		return nil, fmt.Errorf("loading program: %w", err)
	}
	return m, nil
}

// createFrontend creates the frontend of the given kind.
func (p *Pipeline) createFrontend(kind frontend.Kind, rom loader.ROM, opts options.Program) (frontend.Frontend, error) {
	switch kind {
	case frontend.SDL:
		window, err := sdl.New(p.logger, app.Name+" - "+rom.Name, opts.Scale)
		if err != nil {
			return nil, err
		}
		return window, nil
	case frontend.Terminal:
		tty, err := terminal.New(p.logger)
		if err != nil {
			return nil, err
		}
		return tty, nil
	case frontend.Headless:
		return headless.New(p.output), nil
	default:
		return nil, fmt.Errorf("unsupported frontend '%s'", kind)
	}
}
