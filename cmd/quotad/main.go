// quotad is the admission-control daemon: it fronts the API with
// per-IP, per-user and per-action quota enforcement backed by a shared
// Redis counter store.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:          "quotad",
	Short:        "Quota admission-control service",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "configs/quotad.yaml", "config file path")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(resetDailyCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
