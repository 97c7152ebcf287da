package cmd

import (
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "labelkit",
	Short: "Label templates for web pages, filled in and printed from the browser",
	Long: `labelkit stores printable label templates and the site rules that offer
them on matching web pages. It runs a local daemon that the browser
extension's popup and options pages talk to, and provides commands to
inspect, import and export templates and sites.`,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", ".labelkit.yml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
