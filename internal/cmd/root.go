/*
Copyright 2023 The yvcweb Authors
SPDX-License-Identifier: Apache-2.0
*/

package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"sigs.k8s.io/release-utils/log"
	"sigs.k8s.io/release-utils/version"

	"github.com/yvc-project/yvcweb/internal/config"
)

// exitVulnerable matches yvc's own exit status when it reports something.
const exitVulnerable = 2

// errVulnerable is returned by commands that found vulnerabilities. It is
// turned into exitVulnerable instead of being printed.
var errVulnerable = errors.New("vulnerable packages found")

type commandLineOptions struct {
	logLevel   string
	configFile string
}

var commandLineOpts = commandLineOptions{}

var rootCmd = &cobra.Command{
	Use:   "yvcweb",
	Short: "A web and command line front end for the yvc vulnerability checker",
	Long: `yvcweb hands package-version names to the yvc(1) vulnerability checker
and presents what it reports: as a web page, as SARIF or OpenVEX documents,
or in an interactive terminal view.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: initLogging,
}

func Execute() {
	os.Exit(run(rootCmd))
}

func run(cmd *cobra.Command) int {
	err := cmd.Execute()
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errVulnerable):
		return exitVulnerable
	default:
		logrus.Error(err)
		return 1
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&commandLineOpts.logLevel,
		"log-level",
		"info",
		fmt.Sprintf("the logging verbosity, either %s", log.LevelNames()),
	)

	rootCmd.PersistentFlags().StringVar(
		&commandLineOpts.configFile,
		"config",
		"",
		fmt.Sprintf("config file (YAML); settings can also be given as %s_* environment variables", config.EnvPrefix),
	)

	addServe(rootCmd)
	addCheck(rootCmd)
	addTriage(rootCmd)
	rootCmd.AddCommand(version.WithFont("starwars"))
}

func initLogging(*cobra.Command, []string) error {
	return log.SetupGlobalLogger(commandLineOpts.logLevel)
}

// loadConfig binds the command's flags and reads the effective configuration.
func loadConfig(cmd *cobra.Command, flags map[string]string) (config.Config, error) {
	v := config.New()
	if err := config.BindFlags(v, cmd.Flags(), flags); err != nil {
		return config.Config{}, err
	}

	return config.Load(v, commandLineOpts.configFile)
}
