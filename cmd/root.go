package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/khanhnv2901/domainscan/internal/shared/constants"
)

var cfgFile string
var logger *zap.SugaredLogger
var resultsDir string
var cacheDir string

var rootCmd = &cobra.Command{
	Use:   "domainscan",
	Short: "Scan a set of domains with pluggable probes, locally or on Lambda",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// init config
		if cfgFile != "" {
			viper.SetConfigFile(cfgFile)
		} else {
			viper.AddConfigPath("$HOME")
			viper.SetConfigName(".domainscan")
			viper.SetConfigType("yaml")
		}

		_ = viper.ReadInConfig()
		if resultsDir == "" {
			resultsDir = viper.GetString("results_dir")
		}
		if resultsDir == "" {
			resultsDir = "./results"
		}
		if cacheDir == "" {
			cacheDir = viper.GetString("cache_dir")
		}
		if cacheDir == "" {
			cacheDir = "./cache"
		}

		for _, dir := range []string{resultsDir, cacheDir} {
			if err := os.MkdirAll(dir, constants.DefaultDirPerm); err != nil {
				return fmt.Errorf("failed to create directory %s: %s", dir, err.Error())
			}
		}

		// init logger
		l, _ := zap.NewProduction()
		logger = l.Sugar()

		// Make paths absolute (for clarity in logs)
		if abs, err := filepath.Abs(resultsDir); err == nil {
			resultsDir = abs
		}
		if abs, err := filepath.Abs(cacheDir); err == nil {
			cacheDir = abs
		}

		logger.Infof("results_dir=%s cache_dir=%s", resultsDir, cacheDir)

		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.domainscan.yaml)")
	rootCmd.PersistentFlags().StringVar(&resultsDir, "output", "", "results directory (default ./results)")
	rootCmd.PersistentFlags().StringVar(&cacheDir, "cache-dir", "", "cache directory (default ./cache)")

	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(versionCmd)
}
