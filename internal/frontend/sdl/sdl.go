// Package sdl implements a window frontend using SDL2.
package sdl

import (
	"fmt"
	"runtime"

	"github.com/retroenv/retrochip8/internal/frontend"
	"github.com/retroenv/retrochip8/internal/machine"
	"github.com/retroenv/retrogolib/log"
	"github.com/veandco/go-sdl2/sdl"
)

var _ frontend.Frontend = (*SDL)(nil)

// Colors of lit and unlit pixels.
var (
	foreground = sdl.Color{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
	background = sdl.Color{R: 0x00, G: 0x00, B: 0x00, A: 0xFF}
)

// SDL is a frontend that renders into a window.
type SDL struct {
	logger   *log.Logger
	window   *sdl.Window
	renderer *sdl.Renderer
	scale    int32
	keys     frontend.Keypad
}

// New creates a window sized to the display scaled by the given factor.
func New(logger *log.Logger, title string, scale int) (*SDL, error) {
	if scale < 1 {
		return nil, fmt.Errorf("invalid window scale %d", scale)
	}

	runtime.LockOSThread()

	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		return nil, fmt.Errorf("initializing SDL2: %w", err)
	}

	width := int32(machine.DisplayWidth * scale)
	height := int32(machine.DisplayHeight * scale)
	window, err := sdl.CreateWindow(title, sdl.WINDOWPOS_CENTERED, sdl.WINDOWPOS_CENTERED,
		width, height, sdl.WINDOW_SHOWN)
	if err != nil {
		sdl.Quit()
		return nil, fmt.Errorf("creating window: %w", err)
	}

	renderer, err := sdl.CreateRenderer(window, -1, sdl.RENDERER_ACCELERATED|sdl.RENDERER_PRESENTVSYNC)
	if err != nil {
		_ = window.Destroy()
		sdl.Quit()
		return nil, fmt.Errorf("creating renderer: %w", err)
	}

	logger.Debug("SDL window created",
		log.Int("width", int(width)),
		log.Int("height", int(height)))

	return &SDL{
		logger:   logger,
		window:   window,
		renderer: renderer,
		scale:    int32(scale),
	}, nil
}

// Poll handles all pending window events.
func (s *SDL) Poll(keys *frontend.Keypad) (bool, error) {
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch e := event.(type) {
		case *sdl.QuitEvent:
			return true, nil

		case *sdl.KeyboardEvent:
			if e.Keysym.Sym == sdl.K_ESCAPE {
				return true, nil
			}
			key, ok := frontend.KeyForRune(rune(e.Keysym.Sym))
			if !ok {
				continue
			}
			s.keys[key] = e.Type == sdl.KEYDOWN
		}
	}

	*keys = s.keys
	return false, nil
}

// Present draws the frame into the window.
func (s *SDL) Present(frame frontend.Frame) error {
	if err := s.setDrawColor(background); err != nil {
		return err
	}
	if err := s.renderer.Clear(); err != nil {
		return fmt.Errorf("clearing window: %w", err)
	}

	if rects := pixelRects(frame.Pixels, s.scale); len(rects) > 0 {
		if err := s.setDrawColor(foreground); err != nil {
			return err
		}
		if err := s.renderer.FillRects(rects); err != nil {
			return fmt.Errorf("drawing pixels: %w", err)
		}
	}

	s.renderer.Present()
	return nil
}

// Close destroys the window and shuts down SDL2.
func (s *SDL) Close() error {
	defer sdl.Quit()

	if err := s.renderer.Destroy(); err != nil {
		s.logger.Warn("Destroying renderer failed", log.Err(err))
	}
	if err := s.window.Destroy(); err != nil {
		return fmt.Errorf("destroying window: %w", err)
	}
	return nil
}

func (s *SDL) setDrawColor(c sdl.Color) error {
	if err := s.renderer.SetDrawColor(c.R, c.G, c.B, c.A); err != nil {
		return fmt.Errorf("setting draw color: %w", err)
	}
	return nil
}

// pixelRects returns the window rectangles of all lit pixels.
func pixelRects(pixels [machine.DisplaySize]bool, scale int32) []sdl.Rect {
	var rects []sdl.Rect
	for i, lit := range pixels {
		if !lit {
			continue
		}
		x := int32(i % machine.DisplayWidth)
		y := int32(i / machine.DisplayWidth)
		rects = append(rects, sdl.Rect{X: x * scale, Y: y * scale, W: scale, H: scale})
	}
	return rects
}
