// Package options contains the program options.
package options

import (
	"fmt"
	"strings"
)

// Default emulation settings.
const (
	DefaultInstructionsPerFrame = 10
	DefaultFrameRate            = 60
	DefaultScale                = 20
)

// Parameters contains file path options.
type Parameters struct {
	Input string `flag:"i" usage:"input ROM file"`
}

// Flags contains behavior options.
type Flags struct {
	Frontend string `flag:"frontend" usage:"frontend: sdl, terminal, headless (default: auto-detect)"`
	Debug    bool   `flag:"debug" usage:"enable debug logging"`
	Trace    bool   `flag:"trace" usage:"log every executed instruction, implies -debug"`
	Quiet    bool   `flag:"q" usage:"quiet mode"`
	List     bool   `flag:"list" usage:"print an instruction listing of the ROM instead of running it"`
}

// Emulation contains options that control the host loop and the machine.
type Emulation struct {
	InstructionsPerFrame int    `flag:"ipf" usage:"instructions executed per frame" default:"10"`
	FrameRate            int    `flag:"fps" usage:"frames per second, 0 runs unthrottled" default:"60"`
	Frames               int    `flag:"frames" usage:"stop after the given number of frames, 0 runs until quit"`
	Quirks               string `flag:"quirks" usage:"quirks profile: default, vip, schip" default:"default"`
	ShiftUsesVY          bool   `flag:"shift-vy" usage:"shift instructions read Vy instead of Vx"`
	Scale                int    `flag:"scale" usage:"window scale factor of the sdl frontend" default:"20"`
}

// Program options of the interpreter.
type Program struct {
	Parameters
	Flags
	Emulation
}

// DrawRows defines how the height nibble of a draw instruction maps to the
// number of sprite rows that are read from memory.
type DrawRows int

const (
	// DrawRowsInclusive reads rows 0..n, n+1 rows in total.
	DrawRowsInclusive DrawRows = iota
	// DrawRowsExact reads n rows, a height of 0 draws nothing.
	DrawRowsExact
	// DrawRowsZeroIs16 reads n rows, a height of 0 reads 16 rows.
	DrawRowsZeroIs16
)

// Quirks selects between behavioral variations of different CHIP-8 interpreter revisions.
type Quirks struct {
	ShiftUsesVY       bool     // 8xy6/8xyE shift Vy and store the result in Vx
	LogicResetsVF     bool     // 8xy1/8xy2/8xy3 clear VF
	MemoryIncrementsI bool     // Fx55/Fx65 leave I pointing after the last accessed byte
	DrawRows          DrawRows // sprite row count interpretation
}

// Machine defines options to control the virtual machine.
type Machine struct {
	Quirks Quirks
	Trace  bool // log every executed instruction
}

// Quirks profile names.
const (
	QuirksDefault = "default"
	QuirksVIP     = "vip"
	QuirksSCHIP   = "schip"
)

var quirksProfiles = map[string]Quirks{
	QuirksDefault: {},
	QuirksVIP: {
		ShiftUsesVY:       true,
		LogicResetsVF:     true,
		MemoryIncrementsI: true,
		DrawRows:          DrawRowsExact,
	},
	QuirksSCHIP: {
		DrawRows: DrawRowsZeroIs16,
	},
}

// QuirksProfile returns the quirks of the named profile.
func QuirksProfile(name string) (Quirks, error) {
	quirks, ok := quirksProfiles[strings.ToLower(name)]
	if !ok {
		return Quirks{}, fmt.Errorf("unsupported quirks profile '%s'", name)
	}
	return quirks, nil
}

// NewMachine returns the machine options for the given program options.
func NewMachine(opts Program) (Machine, error) {
	quirks, err := QuirksProfile(opts.Quirks)
	if err != nil {
		return Machine{}, err
	}
	if opts.ShiftUsesVY {
		quirks.ShiftUsesVY = true
	}

	return Machine{
		Quirks: quirks,
		Trace:  opts.Trace,
	}, nil
}
