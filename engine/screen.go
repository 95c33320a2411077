package engine

import (
	"fmt"

	"github.com/Zyko0/go-sdl3/img"
	"github.com/Zyko0/go-sdl3/sdl"
	"github.com/Zyko0/go-sdl3/ttf"
)

const (
	CrossSize   = 20
	lineSpacing = 1.5
)

// Screen is the operator/participant window. It shows a fixation cross while
// blocks run, status text between stages, and the manual set prompt.
type Screen struct {
	Renderer *sdl.Renderer
	Font     *ttf.Font
	Config   *Config
}

func (s *Screen) clear() {
	c := s.Config.BGColor
	s.Renderer.SetDrawColor(c.R, c.G, c.B, c.A)
	s.Renderer.Clear()
}

// Show clears the window and centers lines of text on it.
func (s *Screen) Show(lines ...string) {
	s.clear()
	s.drawText(lines)
	s.Renderer.Present()
}

// Fixation draws the fixation cross, or a blank screen when disabled.
func (s *Screen) Fixation() {
	s.clear()
	if s.Config.UseFixation {
		drawFixationCross(s.Renderer, s.Config.ScreenWidth, s.Config.ScreenHeight, s.Config.FixationColor)
	}
	s.Renderer.Present()
}

// Update follows the run state: fixation while a block is about to run,
// a status line otherwise.
func (s *Screen) Update(st RunState) {
	switch {
	case st.Stage == StageInitialDelay:
		s.Show("Please wait", "The experiment will start shortly")
	case st.Stage == StageFinalize:
		s.Show("Thank you", fmt.Sprintf("Experiment %s", st.Outcome))
	case st.Block > 0:
		s.Fixation()
	}
}

// Confirm implements Confirmer: Enter or Space starts the set, Escape or
// closing the window declines it.
func (s *Screen) Confirm(set, total int) bool {
	s.Show(
		fmt.Sprintf("Manual set %d of %d", set, total),
		"Press ENTER to start, ESC to stop the experiment",
	)
	for {
		var event sdl.Event
		if err := sdl.WaitEvent(&event); err != nil {
			return false
		}
		switch event.Type {
		case sdl.EVENT_QUIT:
			return false
		case sdl.EVENT_KEY_DOWN:
			switch event.KeyboardEvent().Key {
			case sdl.K_RETURN, sdl.K_SPACE:
				return true
			case sdl.K_ESCAPE:
				return false
			}
		}
	}
}

// Splash shows an image until a key is pressed. It reports false if the
// window was closed. An empty or unreadable path is skipped.
func (s *Screen) Splash(filePath string) bool {
	if filePath == "" {
		return true
	}
	tex, err := img.LoadTexture(s.Renderer, filePath)
	if err != nil {
		return true
	}
	defer tex.Destroy()

	tw, th, _ := tex.Size()
	screenW, screenH := float32(s.Config.ScreenWidth), float32(s.Config.ScreenHeight)
	dst := sdl.FRect{X: (screenW - tw) / 2.0, Y: (screenH - th) / 2.0, W: tw, H: th}

	s.clear()
	s.Renderer.RenderTexture(tex, nil, &dst)
	s.Renderer.Present()

	for {
		var event sdl.Event
		if err := sdl.WaitEvent(&event); err != nil {
			break
		}
		if event.Type == sdl.EVENT_QUIT {
			return false
		}
		if event.Type == sdl.EVENT_KEY_DOWN {
			break
		}
	}
	return true
}

func (s *Screen) drawText(lines []string) {
	if s.Font == nil {
		return
	}
	type rendered struct {
		tex  *sdl.Texture
		w, h float32
	}
	var parts []rendered
	var total float32
	for _, line := range lines {
		surf, err := s.Font.RenderTextBlended(line, s.Config.TextColor)
		if err != nil || surf == nil {
			continue
		}
		tex, err := s.Renderer.CreateTextureFromSurface(surf)
		w, h := float32(surf.W), float32(surf.H)
		surf.Destroy()
		if err != nil {
			continue
		}
		parts = append(parts, rendered{tex, w, h})
		total += h * lineSpacing
	}

	y := (float32(s.Config.ScreenHeight) - total) / 2
	for _, p := range parts {
		r := sdl.FRect{X: (float32(s.Config.ScreenWidth) - p.w) / 2, Y: y, W: p.w, H: p.h}
		s.Renderer.RenderTexture(p.tex, nil, &r)
		p.tex.Destroy()
		y += p.h * lineSpacing
	}
}

func drawFixationCross(renderer *sdl.Renderer, w, h int, color sdl.Color) {
	renderer.SetDrawColor(color.R, color.G, color.B, color.A)
	mx, my := float32(w)/2, float32(h)/2
	renderer.RenderLine(mx-CrossSize, my, mx+CrossSize, my)
	renderer.RenderLine(mx, my-CrossSize, mx, my+CrossSize)
}
