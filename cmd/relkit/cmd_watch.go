package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"relkit/internal/version"
	"relkit/internal/watch"
)

// watchCmd re-validates the marker file on every write until interrupted.
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the version marker and validate on change",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		path := versionFilePath()
		if _, err := version.ReadFile(path); err != nil {
			return err
		}

		w, err := watch.New(path, func(v version.Version) {
			fmt.Printf("marker now %s\n", v)
		})
		if err != nil {
			return err
		}
		if err := w.Start(ctx); err != nil {
			return err
		}
		defer w.Stop()

		fmt.Printf("watching %s (ctrl-c to stop)\n", path)
		<-ctx.Done()

		stats := w.Stats()
		fmt.Printf("\n%d writes, %d valid, %d invalid\n", stats.Writes, stats.ValidParses, stats.ParseFailures)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
