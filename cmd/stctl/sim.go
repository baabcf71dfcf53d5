package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/itohio/goshot/pkg/detector"
	"github.com/itohio/goshot/pkg/display"
	"github.com/itohio/goshot/pkg/log"
	"github.com/itohio/goshot/pkg/timer"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

type simFlags struct {
	duration time.Duration
	shots    int
	period   time.Duration
	set      []string
}

func newSimCmd(root *rootFlags) *cobra.Command {
	flags := &simFlags{}

	cmd := &cobra.Command{
		Use:   "sim",
		Short: "Run a simulated shot timer in the terminal",
		Long: `Run the timer against a simulated microphone that fires shots periodically.
The display is drawn in the terminal and the shot string is printed when the run ends.`,
		Example: `  stctl sim --shots 5 --set g_delay_time=2
  stctl sim --duration 30s --period 700ms`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if flags.shots < 0 || flags.shots > timer.MaxShots {
				return fmt.Errorf("--shots must be between 0 and %d", timer.MaxShots)
			}
			return runSim(cmd.Context(), cmd.OutOrStdout(), root, flags)
		},
	}

	cmd.Flags().DurationVar(&flags.duration, "duration", 15*time.Second, "Stop the run after this long")
	cmd.Flags().IntVar(&flags.shots, "shots", 0, "Stop after this many shots (0 = run for --duration)")
	cmd.Flags().DurationVar(&flags.period, "period", 0, "Simulated shot period (overrides config)")
	cmd.Flags().StringArrayVar(&flags.set, "set", nil, "Override a setting for this run (name=value)")

	return cmd
}

func runSim(ctx context.Context, out io.Writer, root *rootFlags, flags *simFlags) error {
	e, err := loadEnv(root)
	if err != nil {
		return err
	}
	s, _, err := loadSettings(ctx, e)
	if err != nil {
		return err
	}
	if err := applyAssignments(&s, flags.set); err != nil {
		return err
	}

	mockCfg := e.cfg.Mock
	if flags.period > 0 {
		mockCfg.ShotPeriod = flags.period
	}

	// Progress logs would break the in-place redraw
	logger := log.WithComponent("timer")
	if !root.verbose {
		logger = logger.Level(zerolog.WarnLevel)
	}

	term := display.NewTerminal(out, e.cfg.Display.Rows, e.cfg.Display.Cols)
	source := detector.NewMock(&mockCfg)
	if err := source.Connect(); err != nil {
		return fmt.Errorf("failed to connect to mocked detector: %w", err)
	}
	defer source.Close()

	shots := detector.NewShotDetector(s.Sensitivity, e.cfg.Detector.Holdoff)(source.Samples())
	t := timer.New(&s, source, term,
		timer.WithRefresh(e.cfg.Display.Refresh),
		timer.WithLogger(logger),
	)

	full := make(chan struct{}, 1)
	t.OnUpdate(func(snap timer.Snapshot) {
		if flags.shots > 0 && len(snap.Shots) >= flags.shots {
			select {
			case full <- struct{}{}:
			default:
			}
		}
	})

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()
	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		t.Run(runCtx, shots)
	}()
	defer func() {
		cancel()
		<-done
	}()

	if err := t.Start(); err != nil {
		return err
	}

	ticker := time.NewTicker(e.cfg.Display.Refresh)
	defer ticker.Stop()
	deadline := time.After(flags.duration)

loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case <-deadline:
			break loop
		case <-full:
			break loop
		case <-ticker.C:
			if err := term.Flush(); err != nil {
				return err
			}
		}
	}

	t.Stop()
	if err := term.Flush(); err != nil {
		return err
	}
	printShots(out, t.Shots())
	return nil
}

func printShots(w io.Writer, shots []timer.ShotRecord) {
	if len(shots) == 0 {
		fmt.Fprintln(w, dimStyle.Render("no shots"))
		return
	}
	for _, rec := range shots {
		split := rec.Split.Milliseconds()
		total := rec.Elapsed.Milliseconds()
		fmt.Fprintf(w, "%s  split %02d.%03d  total %02d:%02d.%03d  level %4d\n",
			nameStyle.Render(fmt.Sprintf("Shot #%02d", rec.Number)),
			split/1000%100, split%1000,
			total/60000%100, total/1000%60, total%1000,
			rec.Level)
	}
}
