package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"virt-otg/src/safety"
)

func newTransferInCmd(stdout, stderr io.Writer) *cobra.Command {
	var domain string
	var drive string
	cmd := &cobra.Command{
		Use:   "transfer-in",
		Short: "Replace a guest's disks with the copies on the external drive and start it",
		RunE: func(cmd *cobra.Command, args []string) error {
			question := fmt.Sprintf("Replace the disks of guest %s with the copies on %s?", domain, drive)
			ok, err := safety.Confirm(getSafetyOptions(cmd), cmd.InOrStdin(), stdout, question)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(stdout, "Aborted.")
				return nil
			}

			env, err := newRunnerEnv(cmd, stderr, domain, drive)
			if err != nil {
				return err
			}
			defer env.close()

			if err := env.runner.TransferIn(commandContext(cmd)); err != nil {
				env.log.Error("transfer in failed", "domain", domain, "error", err)
				return err
			}
			fmt.Fprintln(stdout, "Transfer completed successfully.")
			return nil
		},
	}
	cmd.Flags().StringVar(&domain, "domain", "", "Name of the guest to transfer")
	cmd.Flags().StringVar(&drive, "drive", "", "Mount path of the external drive")
	cmd.MarkFlagRequired("domain")
	cmd.MarkFlagRequired("drive")
	return cmd
}
