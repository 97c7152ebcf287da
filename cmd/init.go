package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/labelkit/internal/config"
)

var initDefaults bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize labelkit configuration with an interactive wizard",
	Long:  `Runs an interactive wizard to configure the labelkit daemon and generates a .labelkit.yml file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if initDefaults {
			cfg := config.DefaultConfig()
			if err := cfg.Save(cfgFile); err != nil {
				return err
			}
			fmt.Printf("Wrote default configuration to %s\n", cfgFile)
			return nil
		}
		_, err := config.RunWizard(cfgFile)
		return err
	},
}

func init() {
	initCmd.Flags().BoolVar(&initDefaults, "defaults", false, "write the default configuration without prompting")
	rootCmd.AddCommand(initCmd)
}
