package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/MarcoPoloResearchLab/studyhub/internal/server"
	"github.com/MarcoPoloResearchLab/studyhub/internal/sessions"
	"github.com/MarcoPoloResearchLab/studyhub/internal/ui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type studyCommand int

const (
	studyTogglePause studyCommand = iota
	studyEnd
)

func newStudyCommand(state *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "study [subject]",
		Short: "Time a study session in the terminal",
		Long:  "Starts the study timer. Type p and Enter to pause or resume, e or q to end and record the session.",
		Args:  cobra.MaximumNArgs(1),
		RunE: state.withApp(func(cmd *cobra.Command, args []string) error {
			subject := ""
			if len(args) == 1 {
				subject = args[0]
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runStudy(ctx, state, subject, cmd.InOrStdin(), cmd.OutOrStdout())
		}),
	}
}

func runStudy(ctx context.Context, state *cli, subject string, in io.Reader, out io.Writer) error {
	timer := state.app.Timer

	ticks, unsubscribe := state.app.Dispatcher.Subscribe(ctx)
	defer unsubscribe()

	if _, err := timer.Start(subject); err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	fmt.Fprintf(out, "\r%s", ui.FormatTimer(timer.Snapshot()))

	readCtx, stopReading := context.WithCancel(ctx)
	defer stopReading()
	commands := readStudyCommands(readCtx, in)
	for {
		select {
		case <-ctx.Done():
			return finishStudy(state, out)
		case event := <-ticks:
			if event.Type != server.EventSessionTick {
				continue
			}
			if snapshot, ok := event.Payload.(sessions.Snapshot); ok {
				fmt.Fprintf(out, "\r%s", ui.FormatTimer(snapshot))
			}
		case command, ok := <-commands:
			if !ok || command == studyEnd {
				return finishStudy(state, out)
			}
			if _, paused := timer.Pause(); !paused {
				if _, err := timer.Start(subject); err != nil {
					return fmt.Errorf("failed to resume session: %w", err)
				}
			}
			fmt.Fprintf(out, "\r%s", ui.FormatTimer(timer.Snapshot()))
		}
	}
}

// finishStudy records the session with a fresh context so an interrupt still
// saves the elapsed time.
func finishStudy(state *cli, out io.Writer) error {
	session, ended, err := state.app.Timer.End(context.Background())
	fmt.Fprintln(out)
	if err != nil {
		return fmt.Errorf("failed to record session: %w", err)
	}
	if ended {
		state.logger.Debug("study session recorded", zap.String("session_id", session.ID))
		fmt.Fprintln(out, ui.Success(session.Summary()))
	}
	return nil
}

// readStudyCommands turns input lines into timer commands. The channel closes
// at end of input; lines read after ctx is done are dropped.
func readStudyCommands(ctx context.Context, in io.Reader) <-chan studyCommand {
	commands := make(chan studyCommand)
	go func() {
		defer close(commands)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			var command studyCommand
			switch strings.ToLower(strings.TrimSpace(scanner.Text())) {
			case "p", "pause", "r", "resume":
				command = studyTogglePause
			case "e", "end", "q", "quit":
				command = studyEnd
			default:
				continue
			}
			select {
			case commands <- command:
			case <-ctx.Done():
				return
			}
			if command == studyEnd {
				return
			}
		}
	}()
	return commands
}
