package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "regdocctl",
	Short: "Regdocctl is a command line tool for the regdoc classification service",
	Long: `regdocctl is the command-line interface for the RegDoc batch document
classification service.

RegDoc accepts batches of documents over HTTP, runs each one through an
extraction, detection and classification pipeline on a shared worker pool,
and exposes per-document progress for polling.

Common workflows:

  Submit a batch of documents:
    regdocctl submit report.txt policy.txt contract.txt

  Check the status of a batch:
    regdocctl status <job-id>

  Watch a batch until it finishes:
    regdocctl status <job-id> --watch

  List every tracked batch:
    regdocctl jobs

Configuration:
  Set the API endpoint via environment variables or a config file:
    REGDOC_URL    API endpoint (default: http://localhost:8000)`,
}

func Execute() error {
	return rootCmd.Execute()
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		// Search config in home directory with name ".regdocctl"
		viper.AddConfigPath(home)
		viper.SetConfigName(".regdocctl")
		viper.SetConfigType("yaml")
	}

	// Read environment variables that match "REGDOC_VARNAME"
	viper.SetEnvPrefix("REGDOC")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Println("Using config file:", viper.ConfigFileUsed())
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.regdocctl.yaml)")

	rootCmd.PersistentFlags().String("url", "http://localhost:8000", "RegDoc API URL")
	viper.BindPFlag("url", rootCmd.PersistentFlags().Lookup("url"))
}
