// Package terminal renders the trial engine in a terminal and forwards key
// presses and mouse clicks into it.
package terminal

import (
	"context"
	"fmt"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"

	"waitroom/internal/engine"
)

// Cue is played when a stimulus appears.
type Cue interface {
	Play()
}

// Silent is a Cue that does nothing.
type Silent struct{}

func (Silent) Play() {}

// quitSignal asks the event loop to return.
type quitSignal struct{}

const (
	boxWidth  = 20
	boxHeight = 5
)

var (
	styleText     = tcell.StyleDefault
	styleDim      = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleTitle    = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	styleGo       = tcell.StyleDefault.Background(tcell.ColorGreen).Foreground(tcell.ColorBlack).Bold(true)
	styleNoGo     = tcell.StyleDefault.Background(tcell.ColorRed).Foreground(tcell.ColorWhite).Bold(true)
	styleFinished = tcell.StyleDefault.Foreground(tcell.ColorGreen)
)

// Shell drives one engine from one terminal screen.
type Shell struct {
	screen tcell.Screen
	engine *engine.Engine
	log    *zap.Logger
	cue    Cue

	mouseDown bool
	lastPhase engine.Phase
}

func New(screen tcell.Screen, eng *engine.Engine, log *zap.Logger, cue Cue) *Shell {
	if cue == nil {
		cue = Silent{}
	}
	return &Shell{
		screen:    screen,
		engine:    eng,
		log:       log,
		cue:       cue,
		lastPhase: engine.PhaseIdle,
	}
}

// Run processes screen events until the user quits or ctx is cancelled.
// The screen must already be initialized; the caller finalizes it.
func (s *Shell) Run(ctx context.Context) error {
	unsubscribe := s.engine.OnChange(func(engine.Snapshot) {
		// Timer-driven transitions arrive off the event loop; redraw on it.
		_ = s.screen.PostEvent(tcell.NewEventInterrupt(nil))
	})
	defer unsubscribe()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = s.screen.PostEvent(tcell.NewEventInterrupt(quitSignal{}))
		case <-done:
		}
	}()

	s.Draw()
	for {
		ev := s.screen.PollEvent()
		if ev == nil {
			return nil
		}
		if !s.HandleEvent(ev) {
			s.log.Debug("Terminal shell stopped")
			return nil
		}
	}
}

// HandleEvent applies one screen event and reports whether the loop should continue.
func (s *Shell) HandleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return false
		case tcell.KeyEnter:
			s.engine.Start()
		case tcell.KeyRune:
			switch ev.Rune() {
			case 'q', 'Q':
				return false
			case 's', 'S':
				s.engine.Start()
			case 'r', 'R':
				s.engine.Reset()
			case ' ':
				s.click()
			}
		}
	case *tcell.EventMouse:
		// Only the press edge counts; held buttons repeat while the mouse moves.
		pressed := ev.Buttons()&tcell.Button1 != 0
		if pressed && !s.mouseDown {
			s.click()
		}
		s.mouseDown = pressed
	case *tcell.EventInterrupt:
		if _, ok := ev.Data().(quitSignal); ok {
			return false
		}
	case *tcell.EventResize:
		s.screen.Sync()
	}

	s.Draw()
	return true
}

func (s *Shell) click() {
	outcome := s.engine.RegisterClick(s.engine.Now())
	s.log.Debug("Terminal click", zap.String("outcome", string(outcome)))
}

// Draw renders the current snapshot.
func (s *Shell) Draw() {
	snap := s.engine.Snapshot()
	if snap.Phase == engine.PhaseStimulus && s.lastPhase != engine.PhaseStimulus {
		s.cue.Play()
	}
	s.lastPhase = snap.Phase

	s.screen.Clear()
	width, height := s.screen.Size()

	drawText(s.screen, 2, 1, styleTitle, "Waiting room reaction test")
	drawText(s.screen, 2, 3, styleText, fmt.Sprintf("Round %d / %d", snap.CurrentRound, snap.TotalRounds))
	drawText(s.screen, 2, 4, styleText, snap.Message)

	boxX := (width - boxWidth) / 2
	boxY := height/2 - boxHeight/2
	if snap.Phase == engine.PhaseStimulus && snap.TrialType != nil {
		if *snap.TrialType == engine.TrialNoGo {
			drawBox(s.screen, boxX, boxY, styleNoGo, "STOP")
		} else {
			drawBox(s.screen, boxX, boxY, styleGo, "GO")
		}
	}

	statsY := height - 4
	statsStyle := styleText
	if snap.Phase == engine.PhaseFinished {
		statsStyle = styleFinished
	}
	drawText(s.screen, 2, statsY, statsStyle, fmt.Sprintf("Hits %d   Misses %d   False clicks %d", snap.Hits, snap.Misses, snap.FalseClicks))
	drawText(s.screen, 2, statsY+1, statsStyle, fmt.Sprintf("Average %d ms   Accuracy %.0f%%", snap.AvgReactionTimeMs, snap.AccuracyRate*100))
	drawText(s.screen, 2, height-1, styleDim, "s start   space/click respond   r reset   q quit")

	s.screen.Show()
}

func drawText(screen tcell.Screen, x, y int, style tcell.Style, text string) {
	for _, r := range text {
		screen.SetContent(x, y, r, nil, style)
		x++
	}
}

func drawBox(screen tcell.Screen, x, y int, style tcell.Style, label string) {
	for row := 0; row < boxHeight; row++ {
		for col := 0; col < boxWidth; col++ {
			screen.SetContent(x+col, y+row, ' ', nil, style)
		}
	}
	drawText(screen, x+(boxWidth-len(label))/2, y+boxHeight/2, style, label)
}
