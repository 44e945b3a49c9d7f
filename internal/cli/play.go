package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/tessro/speck/internal/tail"
	"github.com/tessro/speck/pkg/speck"
)

var (
	playPassword  string
	playVolume    int
	playSeek      uint32
	playPaused    bool
	playFollow    bool
	playNoEmoji   bool
	playTimestamp bool
	playFormat    string
)

var playCmd = &cobra.Command{
	Use:   "play <track>",
	Short: "Play a track and print player events",
	Long: `Log in, start a player, and load a track. The track may be a 22
character base62 id or a spotify:track: URI.

Events are printed until the track starts playing. With --follow they
are printed until the track ends or Ctrl+C is pressed.`,
	Example: `  speck play 4uLU6hMCjMI75M1A2tKUQC
  speck play spotify:track:4uLU6hMCjMI75M1A2tKUQC --seek 60000 --follow
  speck play 4uLU6hMCjMI75M1A2tKUQC --format '{{.Time}} {{.Kind}} {{.Position}}'`,
	Args: cobra.ExactArgs(1),
	RunE: runPlay,
}

func init() {
	playCmd.Flags().StringVarP(&playPassword, "password", "p", "", "password (default: $SPECK_PASSWORD or prompt)")
	playCmd.Flags().IntVar(&playVolume, "volume", -1, "set volume (0-100) before loading")
	playCmd.Flags().Uint32Var(&playSeek, "seek", 0, "seek to this position in milliseconds after loading")
	playCmd.Flags().BoolVar(&playPaused, "paused", false, "pause once the track is loaded")
	playCmd.Flags().BoolVarP(&playFollow, "follow", "f", false, "keep printing events until the track ends")
	playCmd.Flags().BoolVar(&playNoEmoji, "no-emoji", false, "disable emoji output")
	playCmd.Flags().BoolVarP(&playTimestamp, "timestamp", "t", false, "show timestamps")
	playCmd.Flags().StringVar(&playFormat, "format", "", "custom format template")

	rootCmd.AddCommand(playCmd)
}

func runPlay(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	c, err := openCore()
	if err != nil {
		return err
	}
	defer func() { _ = c.Close() }()

	if err := mustLogin(ctx, c, "", playPassword); err != nil {
		return err
	}
	if err := c.InitPlayer(); err != nil {
		return err
	}
	if playVolume >= 0 {
		if err := c.SetVolume(playVolume); err != nil {
			return err
		}
	}
	if err := c.LoadTrack(args[0]); err != nil {
		return err
	}
	if playSeek > 0 {
		if err := c.Seek(playSeek); err != nil {
			return err
		}
	}
	if playPaused {
		if err := c.Pause(); err != nil {
			return err
		}
	}

	return follow(ctx, c, stopKinds())
}

func stopKinds() tail.StopFunc {
	if playFollow {
		return tail.StopOn(speck.EventEndOfTrack, speck.EventUnavailable, speck.EventStopped)
	}
	want := speck.EventPlaying
	if playPaused {
		want = speck.EventPaused
	}
	return tail.StopOn(want, speck.EventEndOfTrack, speck.EventUnavailable)
}

// follow prints events from c until stop matches or ctx is cancelled.
func follow(ctx context.Context, c *speck.Core, stop tail.StopFunc) error {
	formatter := tail.NewFormatter(
		tail.WithEmoji(!playNoEmoji),
		tail.WithTimestamp(playTimestamp),
		tail.WithTemplate(playFormat),
	)

	watcher := tail.NewWatcher(c, stop)

	errCh := make(chan error, 1)
	go func() {
		errCh <- watcher.Start(ctx)
	}()

	enc := json.NewEncoder(stdout)
	for entry := range watcher.Events() {
		if JSONOutput() {
			if err := enc.Encode(entry.Event); err != nil {
				return err
			}
			continue
		}
		_, _ = fmt.Fprintln(stdout, formatter.Format(entry))
	}

	err := <-errCh
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
