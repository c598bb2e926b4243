package main

import (
	"os/signal"
	"syscall"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"waitroom/internal/terminal"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play the game in this terminal",
	RunE:  runPlay,
}

func runPlay(cmd *cobra.Command, args []string) error {
	// The screen owns stdout, so logs go to files only.
	conf, log, eng, err := bootstrap(false)
	if err != nil {
		return err
	}
	defer log.Sync()

	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()
	if conf.Terminal.Mouse {
		screen.EnableMouse()
	}

	var cue terminal.Cue = terminal.Silent{}
	if conf.Terminal.Sound {
		beepCue, err := terminal.NewBeepCue()
		if err != nil {
			// Non-fatal, the game runs without sound
			log.Warn("Audio initialization failed", zap.Error(err))
		} else {
			cue = beepCue
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shell := terminal.New(screen, eng, log, cue)
	err = shell.Run(ctx)
	eng.Reset()
	return err
}
