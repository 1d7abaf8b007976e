package main

import (
	"errors"
	"flag"
	"fmt"
	"image/color"
	"io/fs"
	"os"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/retroenv/retrogolib/log"

	"chip8console/pkg/beeper"
	"chip8console/pkg/chip8"
	"chip8console/pkg/config"
	"chip8console/pkg/display"
	"chip8console/pkg/inspect"
	"chip8console/pkg/keypad"
	"chip8console/pkg/scheduler"
	"chip8console/pkg/statsview"
	"chip8console/pkg/utils"
)

// Debug font cell size.
const (
	charWidth  = 6
	lineHeight = 16
)

const (
	memoryColumns   = 44
	panelGap        = 4
	panelLines      = 18
	indicatorRadius = 5
)

var hexKeys = map[ebiten.Key]string{
	ebiten.Key0: "0", ebiten.Key1: "1", ebiten.Key2: "2", ebiten.Key3: "3",
	ebiten.Key4: "4", ebiten.Key5: "5", ebiten.Key6: "6", ebiten.Key7: "7",
	ebiten.Key8: "8", ebiten.Key9: "9", ebiten.KeyA: "A", ebiten.KeyB: "B",
	ebiten.KeyC: "C", ebiten.KeyD: "D", ebiten.KeyE: "E", ebiten.KeyF: "F",
}

var controlKeys = map[ebiten.Key]scheduler.Action{
	ebiten.KeyF5: scheduler.StartPause,
	ebiten.KeyF6: scheduler.Step,
	ebiten.KeyF7: scheduler.Reset,
	ebiten.KeyF8: scheduler.Turbo,
}

// stagedSurface holds the latest framebuffer until Draw uploads it to the
// GPU image.
type stagedSurface struct {
	pix   []byte
	fresh bool
}

func (s *stagedSurface) WritePixels(pix []byte) {
	if s.pix == nil {
		s.pix = make([]byte, len(pix))
	}
	copy(s.pix, pix)
	s.fresh = true
}

type Game struct {
	logger  *log.Logger
	cfg     config.Config
	machine *chip8.Machine
	sched   *scheduler.Scheduler
	mapper  *keypad.Mapper
	beeper  *beeper.Beeper

	surface  *stagedSurface
	frameImg *ebiten.Image
	panel    *inspect.Panel
	notices  *scheduler.NoticeLog

	indicators map[string]bool
	start      time.Time
}

func newGame(logger *log.Logger, cfg config.Config) *Game {
	g := &Game{
		logger:     logger,
		cfg:        cfg,
		machine:    chip8.NewMachine(),
		surface:    &stagedSurface{},
		panel:      &inspect.Panel{},
		notices:    scheduler.NewNoticeLog(8),
		indicators: map[string]bool{},
		start:      time.Now(),
	}

	opts := cfg.SchedulerOptions()
	opts.Surface = g.surface
	opts.Convention = display.TopLeft
	opts.Memory = g.panel
	opts.Registers = g.panel
	opts.Notifier = g.notices
	opts.Indicator = func(name string, on bool) { g.indicators[name] = on }
	g.sched = scheduler.New(logger, g.machine, opts)
	g.mapper = keypad.NewMapper(keypad.DefaultBindings, g.machine)
	return g
}

func (g *Game) loadROM(relPath string) {
	name, file, err := utils.OpenROM(relPath)
	if err != nil {
		g.notices.Notify(scheduler.Notice{Level: scheduler.LevelError, Message: err.Error()})
		return
	}
	_ = g.sched.Dispatch(scheduler.Command{Action: scheduler.LoadROM, ROMName: name, ROM: file})
}

// droppedROMs turns every regular file at the root of fsys into a load
// command. Files are read by the scheduler and closed there.
func droppedROMs(fsys fs.FS) ([]scheduler.Command, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, err
	}
	var cmds []scheduler.Command
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		file, err := fsys.Open(entry.Name())
		if err != nil {
			return cmds, err
		}
		cmds = append(cmds, scheduler.Command{Action: scheduler.LoadROM, ROMName: entry.Name(), ROM: file})
	}
	return cmds, nil
}

func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}

	if dropped := ebiten.DroppedFiles(); dropped != nil {
		cmds, err := droppedROMs(dropped)
		if err != nil {
			g.notices.Notify(scheduler.Notice{Level: scheduler.LevelError, Message: err.Error()})
		}
		for _, cmd := range cmds {
			_ = g.sched.Dispatch(cmd)
		}
	}

	for key, action := range controlKeys {
		if inpututil.IsKeyJustPressed(key) {
			_ = g.sched.Dispatch(scheduler.Command{Action: action})
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF9) && g.cfg.ROM != "" {
		g.loadROM(g.cfg.ROM)
	}

	for key, symbol := range hexKeys {
		switch {
		case inpututil.IsKeyJustPressed(key):
			g.mapper.KeyDown(symbol)
		case inpututil.IsKeyJustReleased(key):
			g.mapper.KeyUp(symbol)
		}
	}

	g.sched.OnFrame(time.Since(g.start))

	if g.beeper != nil {
		g.beeper.Update(g.machine.SoundTimer() > 0)
	}
	return nil
}

func (g *Game) drawFramebuffer(screen *ebiten.Image) {
	if g.frameImg == nil {
		g.frameImg = ebiten.NewImage(display.Width, display.Height)
	}
	if g.surface.fresh {
		g.frameImg.WritePixels(g.surface.pix)
		g.surface.fresh = false
	}

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(g.cfg.Scale), float64(g.cfg.Scale))
	screen.DrawImage(g.frameImg, op)
}

func (g *Game) drawIndicator(screen *ebiten.Image, x, y int, label string, on bool) {
	clr := color.RGBA{R: 0x40, G: 0x40, B: 0x40, A: 0xFF}
	if on {
		clr = color.RGBA{R: chip8.PixelOn[0], G: chip8.PixelOn[1], B: chip8.PixelOn[2], A: 0xFF}
	}
	vector.DrawFilledCircle(screen, float32(x+indicatorRadius), float32(y+lineHeight/2), indicatorRadius, clr, true)
	ebitenutil.DebugPrintAt(screen, label, x+3*indicatorRadius, y)
}

func (g *Game) Draw(screen *ebiten.Image) {
	g.drawFramebuffer(screen)

	top := display.Height * g.cfg.Scale
	g.drawIndicator(screen, panelGap, top, "RUN", g.indicators[scheduler.IndicatorRunning])
	g.drawIndicator(screen, panelGap+60, top, "TURBO", g.indicators[scheduler.IndicatorTurbo])
	rom := g.sched.ROMName()
	if rom == "" {
		rom = "drop a ROM onto the window"
	}
	ebitenutil.DebugPrintAt(screen, rom, panelGap+140, top)

	top += lineHeight + panelGap
	for i, line := range g.panel.MemoryLines() {
		ebitenutil.DebugPrintAt(screen, line, panelGap, top+i*lineHeight)
	}
	regX := panelGap + memoryColumns*charWidth
	for i, line := range g.panel.RegisterLines() {
		ebitenutil.DebugPrintAt(screen, line, regX, top+i*lineHeight)
	}

	top += panelLines * lineHeight
	if n, ok := g.notices.Last(); ok {
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("[%s] %s", n.Level, n.Message), panelGap, top)
	}
	ebitenutil.DebugPrintAt(screen, "F5 run  F6 step  F7 reset  F8 turbo  F9 reload  0-F keypad", panelGap, top+lineHeight)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return layoutSize(g.cfg.Scale)
}

// layoutSize is the logical screen size for a display scale: the framebuffer
// on top, then the status row, the inspector panels and two text rows.
func layoutSize(scale int) (int, int) {
	width := max(display.Width*scale, 2*panelGap+(memoryColumns+32)*charWidth)
	height := display.Height*scale + lineHeight + panelGap + panelLines*lineHeight + 2*lineHeight
	return width, height
}

func loadBeepSample(cfg config.Config) (*beeper.Sample, error) {
	if cfg.Beep == "" {
		return beeper.SquareTone(beeper.DefaultFrequency, beeper.SampleRate), nil
	}
	fullPath, _, err := utils.GetPathInfo(cfg.Beep)
	if err != nil {
		return nil, err
	}
	return beeper.LoadSample(fullPath)
}

func main() {
	flags := flag.NewFlagSet("desktop", flag.ExitOnError)
	stats := flags.Bool("statsview", false, "serve runtime charts on "+statsview.DefaultAddress)
	cfg, err := config.Parse(flags, os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(2)
	}
	logger := config.CreateLogger(cfg.Debug, cfg.Quiet)

	if *stats {
		statsview.Launch(os.Stdout, statsview.DefaultAddress)
	}

	game := newGame(logger, cfg)
	if cfg.ROM != "" {
		game.loadROM(cfg.ROM)
	}

	sample, err := loadBeepSample(cfg)
	if err != nil {
		logger.Error("Loading beep sample failed, using a square tone", log.Err(err))
		sample = beeper.SquareTone(beeper.DefaultFrequency, beeper.SampleRate)
	}
	if b, err := beeper.New(audio.NewContext(beeper.SampleRate), sample); err != nil {
		logger.Error("Audio unavailable", log.Err(err))
	} else {
		game.beeper = b
		defer b.Close()
	}

	width, height := layoutSize(cfg.Scale)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(width, height)
	ebiten.SetWindowTitle("CHIP-8 Console")

	if err := ebiten.RunGame(game); err != nil && !errors.Is(err, ebiten.Termination) {
		logger.Fatal("Game loop failed", log.Err(err))
	}
}
