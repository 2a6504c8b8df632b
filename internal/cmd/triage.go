/*
Copyright 2023 The yvcweb Authors
SPDX-License-Identifier: Apache-2.0
*/

package cmd

import (
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/yvc-project/yvcweb/internal/triage"
	"github.com/yvc-project/yvcweb/pkg/formats"
	"github.com/yvc-project/yvcweb/pkg/formats/grypejson"
	"github.com/yvc-project/yvcweb/pkg/formats/yvctext"
)

const (
	formatYVC       = "yvc"
	formatGrypeJSON = "grype-json"
)

func addTriage(parentCmd *cobra.Command) {
	var format string

	cmd := &cobra.Command{
		Use:   "triage FILE",
		Short: "Browse a saved scan report in the terminal",
		Long: `Browse a saved scan report in the terminal.

FILE is either saved yvc output (yvc < packages > FILE) or a Grype JSON
report. Use "-" to read standard input.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// resolve input file

			var in io.Reader = cmd.InOrStdin()
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}

			parsed, err := parseReport(in, format)
			if err != nil {
				return err
			}

			// start app

			p := tea.NewProgram(triage.New(parsed.Normalized()), programOptions(args[0])...)
			if _, err := p.Run(); err != nil {
				return err
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", formatYVC, fmt.Sprintf("report format, either %s or %s", formatYVC, formatGrypeJSON))

	parentCmd.AddCommand(cmd)
}

// programOptions reads keys from the terminal when stdin carries the report.
func programOptions(file string) []tea.ProgramOption {
	opts := []tea.ProgramOption{tea.WithAltScreen()}
	if file == "-" {
		opts = append(opts, tea.WithInputTTY())
	}

	return opts
}

func parseReport(in io.Reader, format string) (formats.Format, error) {
	switch format {
	case formatYVC:
		return yvctext.Parse(in)
	case formatGrypeJSON:
		return grypejson.Parse(in)
	default:
		return nil, fmt.Errorf("unknown report format %q", format)
	}
}
