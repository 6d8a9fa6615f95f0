package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a := &app{}
	if err := run(ctx, a, newRootCommand(a)); err != nil {
		fmt.Fprintf(os.Stderr, "grocer: %v\n", err)
		stop()
		os.Exit(1)
	}
}

// run executes cmd and closes whatever a opened, whether or not the command
// succeeded.
func run(ctx context.Context, a *app, cmd *cobra.Command) (err error) {
	defer func() {
		if cerr := a.close(); err == nil {
			err = cerr
		}
	}()
	return cmd.ExecuteContext(ctx)
}

func newRootCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "grocer",
		Short: "Household grocery list",
		Long: `grocer keeps a household grocery list on this machine. Items have a priority
(high, medium or low); medium items can be set to become high priority after a
number of days, and a background sweep promotes them when that time comes.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.open(cmd.ErrOrStderr())
		},
	}
	cmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "Config file (default: $XDG_CONFIG_HOME/grocer/config.yaml)")
	cmd.AddCommand(
		newRegisterCmd(a),
		newLoginCmd(a),
		newLogoutCmd(a),
		newWhoamiCmd(a),
		newAddCmd(a),
		newListCmd(a),
		newEditCmd(a),
		newToggleCmd(a),
		newRemoveCmd(a),
		newSweepCmd(a),
		newWatchCmd(a),
		newExportCmd(a),
		newImportCmd(a),
		newBackupCmd(a),
	)
	return cmd
}
