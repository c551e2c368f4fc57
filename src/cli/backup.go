package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func newBackupCmd(stdout, stderr io.Writer) *cobra.Command {
	var domain string
	var drive string
	var full bool
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Back up a guest's disks to the external drive",
		Long: `Back up a guest's disk images to the external drive without stopping it.

A full backup flattens the guest's overlay chain, freezes the base images
under a fresh snapshot overlay, and copies the bases to the drive root. An
incremental backup (the default) copies the frozen snapshot overlays into a
timestamped subdirectory and needs a prior full backup.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newRunnerEnv(cmd, stderr, domain, drive)
			if err != nil {
				return err
			}
			defer env.close()

			ctx := commandContext(cmd)
			if full {
				err = env.runner.FullBackup(ctx)
			} else {
				err = env.runner.IncrementalBackup(ctx)
			}
			if err != nil {
				env.log.Error("backup failed", "domain", domain, "error", err)
				return err
			}
			fmt.Fprintln(stdout, "Backup completed successfully")
			return nil
		},
	}
	cmd.Flags().StringVar(&domain, "domain", "", "Name of the guest to back up")
	cmd.Flags().StringVar(&drive, "drive", "", "Mount path of the external drive")
	cmd.Flags().BoolVar(&full, "full", false, "Perform a full backup instead of an incremental one")
	cmd.MarkFlagRequired("domain")
	cmd.MarkFlagRequired("drive")
	return cmd
}
