// Package cmd implements the uberkb CLI surface: a single root command that
// grabs a keyboard device and runs the remap engine until signaled, plus a
// version subcommand. Grounded on cmd/root.go (bnema-waymon) for the cobra
// wiring shape, trimmed from its server/client/test subcommand tree since
// uberkb has exactly one mode of operation.
package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/alexveden/uberkb-sub001/internal/config"
	"github.com/alexveden/uberkb-sub001/internal/engine"
	"github.com/alexveden/uberkb-sub001/internal/logger"
	"github.com/alexveden/uberkb-sub001/internal/remap"
)

var (
	// Version is set during build.
	Version = "0.1.0-dev"

	debugFlag bool

	rootCmd = &cobra.Command{
		Use:   "uberkb <device-path|keyboard-name>",
		Short: "uberkb - keyboard remapper and time-accelerated mouse emulator",
		Long: `uberkb grabs a physical keyboard device exclusively and rewrites its
event stream through a virtual keyboard and virtual mouse, according to a
configured keymap. A single held key can switch the whole board into a
modifier overlay or into a mouse-by-keyboard mode with a time-accelerated
motion ramp.`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE:         runEngine,
	}
)

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate(`{{with .Name}}{{printf "%s " .}}{{end}}{{printf "version %s\n" .Version}}`)

	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "enable debug logging")

	rootCmd.AddCommand(versionCmd)
}

func runEngine(cmd *cobra.Command, args []string) error {
	if debugFlag {
		logger.SetLevel("DEBUG")
	}

	if os.Geteuid() != 0 {
		return fmt.Errorf("uberkb requires root privileges to grab input devices and create uinput devices\nPlease run with: sudo uberkb %s", args[0])
	}

	profile, err := config.Init()
	if err != nil {
		return fmt.Errorf("failed to load keymap config: %w", err)
	}
	if profile.Debug {
		logger.SetLevel("DEBUG")
	}
	logger.Info("loaded keymap config", "path", config.GetConfigPath())

	km, err := remap.NewKeyMap(*profile)
	if err != nil {
		return fmt.Errorf("invalid keymap: %w", err)
	}

	e, err := engine.Create(km, args[0])
	if err != nil {
		return exitCodeError(err)
	}
	defer func() {
		if err := e.Destroy(); err != nil {
			logger.Warnf("shutdown: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received signal, shutting down", "signal", sig.String())
		e.Stop()
	}()

	logger.Info("uberkb running", "device", args[0])
	if err := e.Run(); err != nil {
		return exitCodeError(err)
	}
	return nil
}

// exitCodeError names the failing operation and error kind from the
// engine's tagged-variant errors so the top-level failure message matches
// spec.md §7's taxonomy instead of a bare wrapped error string.
func exitCodeError(err error) error {
	engErr, ok := err.(*engine.Error)
	if !ok {
		return err
	}
	return fmt.Errorf("%s (%s): %w", engErr.Op, engErr.Kind, engErr.Err)
}
