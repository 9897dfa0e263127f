// Package app provides the main application helpers for the interpreter.
package app

import (
	"github.com/retroenv/retrochip8/internal/loader"
	"github.com/retroenv/retrochip8/internal/options"
	"github.com/retroenv/retrogolib/buildinfo"
	"github.com/retroenv/retrogolib/log"
)

// Name of the application.
const Name = "retrochip8"

// PrintBanner logs the application name and version.
func PrintBanner(logger *log.Logger, opts options.Program, version, commit, date string) {
	if opts.Quiet {
		return
	}
	logger.Info(Name, log.String("version", buildinfo.Version(version, commit, date)))
}

// PrintInfo logs information about the ROM and the emulation settings.
func PrintInfo(logger *log.Logger, opts options.Program, rom loader.ROM) {
	if opts.Quiet {
		return
	}

	logger.Info("Running CHIP-8 ROM",
		log.String("file", opts.Input),
		log.String("rom", rom.Name),
		log.Int("size", len(rom.Data)),
		log.String("quirks", opts.Quirks),
		log.Int("ipf", opts.InstructionsPerFrame),
		log.Int("fps", opts.FrameRate),
	)
}
