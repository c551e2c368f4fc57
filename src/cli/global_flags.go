package cli

import (
	"github.com/spf13/cobra"

	"virt-otg/src/config"
	"virt-otg/src/safety"
)

// addGlobalFlags adds the persistent flags shared by all commands.
func addGlobalFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().String("config", config.DefaultPath, "Path to the YAML config file")
	cmd.PersistentFlags().String("log-file", "", "Log file path (overrides the config file)")
	cmd.PersistentFlags().StringP("connect", "c", "", "Libvirt connection URI passed to virsh")
	cmd.PersistentFlags().BoolP("yes", "y", false, "Assume 'yes' to prompts and run non-interactively")
}

// getSafetyOptions reads the prompt-related global flags.
func getSafetyOptions(cmd *cobra.Command) safety.Options {
	yes, _ := cmd.Root().PersistentFlags().GetBool("yes")
	return safety.Options{Yes: yes}
}
