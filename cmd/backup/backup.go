// Package backup handles exporting, restoring and resetting the ledger data.
package backup

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"uhb/trade-ledger/cmd/root"
	ledgerbackup "uhb/trade-ledger/internal/backup"
)

// Cmd represents the backup command
var Cmd = NewCmd()

// NewCmd builds the backup command tree.
func NewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Export, restore or reset the ledger data",
		Long: `A backup is a JSON document holding every stored collection verbatim.
Restoring one replaces all current data.`,
	}
	cmd.AddCommand(newExportCmd(), newImportCmd(), newResetCmd())
	return cmd
}

func newExportCmd() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write UHB_Backup_<date>.json",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := root.GetContainer()
			if err != nil {
				return err
			}
			path, err := c.GetBackup().ExportToFile(dir, time.Now())
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Backup written to %s\n", path)
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", ".", "Directory for the backup file")
	return cmd
}

func newImportCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "import <backup.json>",
		Short: "Replace all data with a backup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := root.GetContainer()
			if err != nil {
				return err
			}
			confirm := root.Confirm(cmd.InOrStdin(), cmd.OutOrStdout(), "This will overwrite current data. Continue?", yes)
			err = c.GetBackup().ImportFile(args[0], confirm)
			if errors.Is(err, ledgerbackup.ErrCancelled) {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Import cancelled")
				return nil
			}
			if err != nil {
				return err
			}
			c.GetStore().Reload()
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Data restored")
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}

func newResetCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete all data and start from the defaults",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := root.GetContainer()
			if err != nil {
				return err
			}
			confirm := root.Confirm(cmd.InOrStdin(), cmd.OutOrStdout(), "This deletes every transaction, contact and setting. Continue?", yes)
			err = c.GetBackup().Reset(confirm)
			if errors.Is(err, ledgerbackup.ErrCancelled) {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Reset cancelled")
				return nil
			}
			if err != nil {
				return err
			}
			c.GetStore().Reload()
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "All data deleted")
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}
