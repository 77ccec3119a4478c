package main

import (
	"context"
	"log"
	"os"

	"github.com/spf13/cobra"

	"pkt.systems/psi"
	"pkt.systems/pslog"
)

func main() {
	psi.Run(submain)
}

func submain(ctx context.Context) int {
	logger := pslog.LoggerFromEnv(
		pslog.WithEnvWriter(os.Stderr),
		pslog.WithEnvOptions(pslog.Options{Mode: pslog.ModeConsole}),
	)
	ctx = pslog.ContextWithLogger(ctx, logger)
	log.SetOutput(pslog.LogLogger(logger).Writer())
	log.SetFlags(0)

	root := newRootCmd()
	root.SetArgs(os.Args[1:])

	if err := root.ExecuteContext(ctx); err != nil {
		pslog.Ctx(ctx).With("err", err).Error("canopy command failed")
		return 1
	}
	return 0
}

// rootFlags are shared by every subcommand that starts a frame pump.
type rootFlags struct {
	configPath string
	stats      bool
}

func newRootCmd() *cobra.Command {
	var flags rootFlags
	root := &cobra.Command{
		Use:           "canopy",
		Short:         "Adaptive frame pump demo for an immediate-mode UI",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "config file (default is the user config dir)")
	root.PersistentFlags().BoolVar(&flags.stats, "stats", false, "show the frame stats overlay")

	root.AddCommand(newRunCmd(&flags))
	root.AddCommand(newTermCmd(&flags))
	root.AddCommand(newSnapshotCmd(&flags))
	root.AddCommand(newConfigCmd(&flags))

	return root
}
