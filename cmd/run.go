package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"intervaltimer/internal/audio"
	"intervaltimer/internal/core/session"
	xlog "intervaltimer/internal/log"
	"intervaltimer/internal/platform"
	"intervaltimer/internal/ui/preferences"
	"intervaltimer/internal/ui/terminal"

	"github.com/spf13/cobra"
)

func newRunCmd(env *environment) *cobra.Command {
	var leadIn int
	var mute bool

	cmd := &cobra.Command{
		Use:   "run <schema>",
		Short: "Run a schema in the terminal",
		Long:  "Run a schema in the terminal. The schema is matched by id, id prefix or name.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			schema, err := env.schemaStore().Find(args[0])
			if err != nil {
				return err
			}

			settings := env.settings()
			if leadIn >= 0 {
				settings.LeadIn = min(time.Duration(leadIn)*time.Second, preferences.MaxLeadIn)
			}
			if mute {
				settings.SoundEnabled = false
			}

			restoreLogs := env.redirectLogs()
			defer restoreLogs()

			logger := xlog.WithComponent("run")
			player := terminalPlayer(settings)
			defer func() {
				_ = player.Close()
			}()

			options := session.Options{
				Config:   settings.SessionConfig(),
				Player:   player,
				WakeLock: platform.NewWakeLock(appName),
			}
			history, err := env.openHistory()
			if err != nil {
				logger.Warn().Err(err).Str("event", "history.unavailable").Msg("session will not be recorded")
			} else {
				defer func() {
					_ = history.Close()
				}()
				options.History = history
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			current := session.New(schema, options)
			runErr := terminal.Run(ctx, current, current.Updates(), current.Snapshot())
			current.Close()
			if runErr != nil && !errors.Is(runErr, context.Canceled) && !errors.Is(ctx.Err(), context.Canceled) {
				return runErr
			}

			final := current.Snapshot()
			if final.Phase.Finished() {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", final.Title(), final.Summary())
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&leadIn, "lead-in", -1, "lead-in seconds, overrides the saved setting")
	cmd.Flags().BoolVar(&mute, "mute", false, "disable sound cues")
	return cmd
}

// terminalPlayer falls back to the terminal bell when no sound command is
// installed.
func terminalPlayer(settings preferences.Settings) audio.Player {
	if !settings.SoundEnabled {
		return audio.Mute{}
	}
	player, err := audio.NewPlayer(settings.Volume)
	if err != nil {
		return audio.NewBellPlayer(os.Stderr)
	}
	return player
}
