package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"lendex/config"
	"lendex/core"

	"github.com/mitchellh/go-homedir"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	cfgFile   string
	cfg       core.Config
	debugMode bool
)

var rootCmd = cobra.Command{
	Use:           "lendex",
	Short:         "lending protocol event indexer",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setupLogging(debugMode)

		file, err := configFile(cfgFile)
		if err != nil {
			return err
		}

		if file != "" {
			logrus.Debugln("use config file", file)
		}

		return config.Load(file, &cfg)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file. default is ~/.lendex.yaml")
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "enable or disable debug model")
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute(ver string) {
	rootCmd.Version = ver
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// configFile explicit file, else ~/.lendex.yaml when it exists
func configFile(explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}

	dir, err := homedir.Dir()
	if err != nil {
		return "", err
	}

	filename := filepath.Join(dir, ".lendex.yaml")
	if info, err := os.Stat(filename); err == nil && !info.IsDir() {
		return filename, nil
	}

	return "", nil
}

func setupLogging(debug bool) {
	level := logrus.InfoLevel
	if debug {
		level = logrus.DebugLevel
	}

	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
}
