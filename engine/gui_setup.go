package engine

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/Zyko0/go-sdl3/sdl"
	"github.com/Zyko0/go-sdl3/ttf"

	"github.com/prakash-kavi/Triggers/trigger"
)

type setupField struct {
	label  string
	target *string
	browse func(window *sdl.Window)
}

type setupToggle struct {
	label  string
	target *bool
}

// RunSubjectSetup shows the setup window where the operator enters the
// subject code and checks device and directories. It returns false if the
// window was closed without starting.
func RunSubjectSetup(cfg *Config) bool {
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		slog.Error("SDL_Init", "err", err)
		return false
	}
	defer sdl.Quit()

	if err := ttf.Init(); err != nil {
		slog.Error("TTF_Init", "err", err)
		return false
	}
	defer ttf.Quit()

	window, renderer, err := sdl.CreateWindowAndRenderer("Oddball setup", 800, 580, 0)
	if err != nil {
		slog.Error("CreateWindowAndRenderer", "err", err)
		return false
	}
	defer window.Destroy()
	defer renderer.Destroy()

	fontPath := cfg.FontFile
	if fontPath == "" {
		fontPath = GetDefaultFontPath()
	}
	if fontPath == "" {
		slog.Error("no font found for setup screen")
		return false
	}
	guiFont, err := ttf.OpenFont(fontPath, 18)
	if err != nil {
		slog.Error("load setup font", "path", fontPath, "err", err)
		return false
	}
	defer guiFont.Close()

	folder := func(target *string) func(*sdl.Window) {
		return func(w *sdl.Window) {
			cb := sdl.NewDialogFileCallback(func(fileList []string, filter int32) {
				if len(fileList) > 0 {
					*target = fileList[0]
				}
			})
			sdl.ShowOpenFolderDialog(cb, w, "", false)
		}
	}
	fields := []setupField{
		{label: "Subject code:", target: &cfg.Subject},
		{label: "Trigger device (" + strings.Join(trigger.Kinds(), ", ") + "):", target: &cfg.TriggerDevice},
		{label: "Stimuli directory:", target: &cfg.StimuliDir, browse: folder(&cfg.StimuliDir)},
		{label: "Results directory:", target: &cfg.OutputDir, browse: folder(&cfg.OutputDir)},
	}
	toggles := []setupToggle{
		{"Show fixation cross", &cfg.UseFixation},
		{"Fullscreen mode", &cfg.Fullscreen},
		{"Write timing log", &cfg.TimingLog},
	}

	const (
		fieldX, fieldW, fieldH = 50, 650, 30
		fieldTop, fieldStep    = 50, 70
		toggleTop, toggleStep  = 350, 40
	)
	startBtn := sdl.FRect{X: 350, Y: 500, W: 100, H: 40}
	black := sdl.Color{R: 0, G: 0, B: 0, A: 255}
	white := sdl.Color{R: 255, G: 255, B: 255, A: 255}
	red := sdl.Color{R: 200, G: 0, B: 0, A: 255}
	inside := func(x, y float32, r sdl.FRect) bool {
		return x >= r.X && x <= r.X+r.W && y >= r.Y && y <= r.Y+r.H
	}
	fieldBox := func(i int) sdl.FRect {
		return sdl.FRect{X: fieldX, Y: float32(fieldTop + i*fieldStep), W: fieldW, H: fieldH}
	}
	browseBox := func(i int) sdl.FRect {
		return sdl.FRect{X: fieldX + fieldW + 10, Y: float32(fieldTop + i*fieldStep), W: 70, H: fieldH}
	}
	toggleBox := func(i int) sdl.FRect {
		return sdl.FRect{X: fieldX, Y: float32(toggleTop + i*toggleStep), W: 20, H: 20}
	}

	text := func(s string, color sdl.Color, x, y float32) {
		if s == "" {
			return
		}
		surf, err := guiFont.RenderTextBlended(s, color)
		if err != nil || surf == nil {
			return
		}
		defer surf.Destroy()
		tex, err := renderer.CreateTextureFromSurface(surf)
		if err != nil {
			return
		}
		r := sdl.FRect{X: x, Y: y, W: float32(surf.W), H: float32(surf.H)}
		renderer.RenderTexture(tex, nil, &r)
		tex.Destroy()
	}

	focus := 0
	message := ""

	window.StartTextInput()
	defer window.StopTextInput()

	for {
		var e sdl.Event
		for sdl.PollEvent(&e) {
			switch e.Type {
			case sdl.EVENT_QUIT:
				return false
			case sdl.EVENT_MOUSE_BUTTON_DOWN:
				me := e.MouseButtonEvent()
				mx, my := me.X, me.Y
				focus = -1
				for i, f := range fields {
					if inside(mx, my, fieldBox(i)) {
						focus = i
					}
					if f.browse != nil && inside(mx, my, browseBox(i)) {
						f.browse(window)
					}
				}
				for i, t := range toggles {
					if inside(mx, my, toggleBox(i)) {
						*t.target = !*t.target
					}
				}
				if inside(mx, my, startBtn) {
					if strings.TrimSpace(cfg.Subject) == "" {
						message = "Enter a subject code first"
						continue
					}
					cfg.Subject = strings.TrimSpace(cfg.Subject)
					return true
				}
			case sdl.EVENT_TEXT_INPUT:
				if focus >= 0 {
					*fields[focus].target += e.TextInputEvent().Text
				}
			case sdl.EVENT_KEY_DOWN:
				switch e.KeyboardEvent().Key {
				case sdl.K_BACKSPACE:
					if focus >= 0 {
						t := fields[focus].target
						if len(*t) > 0 {
							*t = (*t)[:len(*t)-1]
						}
					}
				case sdl.K_TAB:
					focus = (focus + 1) % len(fields)
				}
			}
		}

		renderer.SetDrawColor(240, 240, 240, 255)
		renderer.Clear()

		for i, f := range fields {
			box := fieldBox(i)
			text(f.label, black, fieldX, box.Y-30)
			renderer.SetDrawColor(255, 255, 255, 255)
			renderer.RenderFillRect(&box)
			if focus == i {
				renderer.SetDrawColor(0, 120, 255, 255)
			} else {
				renderer.SetDrawColor(180, 180, 180, 255)
			}
			renderer.RenderRect(&box)
			text(*f.target, black, box.X+5, box.Y+5)

			if f.browse != nil {
				btn := browseBox(i)
				renderer.SetDrawColor(200, 200, 200, 255)
				renderer.RenderFillRect(&btn)
				renderer.SetDrawColor(0, 0, 0, 255)
				renderer.RenderRect(&btn)
				text("...", black, btn.X+25, btn.Y+5)
			}
		}

		for i, t := range toggles {
			check := toggleBox(i)
			renderer.SetDrawColor(255, 255, 255, 255)
			renderer.RenderFillRect(&check)
			renderer.SetDrawColor(0, 0, 0, 255)
			renderer.RenderRect(&check)
			if *t.target {
				mark := sdl.FRect{X: check.X + 4, Y: check.Y + 4, W: 12, H: 12}
				renderer.SetDrawColor(0, 150, 0, 255)
				renderer.RenderFillRect(&mark)
			}
			text(t.label, black, check.X+30, check.Y)
		}

		text(message, red, fieldX, startBtn.Y-40)
		text(fmt.Sprintf("%d automatic blocks, %d manual sets of %d blocks, SOA %v",
			cfg.AutoBlocks, cfg.ManualSets, cfg.BlocksPerSet, cfg.SOA), black, fieldX, toggleTop-40)

		renderer.SetDrawColor(0, 150, 0, 255)
		renderer.RenderFillRect(&startBtn)
		text("START", white, startBtn.X+25, startBtn.Y+10)

		renderer.Present()
		sdl.Delay(10)
	}
}
