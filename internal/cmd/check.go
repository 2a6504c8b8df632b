/*
Copyright 2023 The yvcweb Authors
SPDX-License-Identifier: Apache-2.0
*/

package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yvc-project/yvcweb/internal/config"
	"github.com/yvc-project/yvcweb/internal/web"
	"github.com/yvc-project/yvcweb/pkg/checker"
	"github.com/yvc-project/yvcweb/pkg/formats"
	"github.com/yvc-project/yvcweb/pkg/formats/openvex"
	"github.com/yvc-project/yvcweb/pkg/formats/sarif"
	"github.com/yvc-project/yvcweb/pkg/formats/yvctext"
)

const (
	outputText    = "text"
	outputJSON    = "json"
	outputHTML    = "html"
	outputSARIF   = "sarif"
	outputOpenVEX = "openvex"
)

var outputFormats = []string{outputText, outputJSON, outputHTML, outputSARIF, outputOpenVEX}

type checkOptions struct {
	output string
	filter string
}

func (o checkOptions) Validate() error {
	for _, f := range outputFormats {
		if o.output == f {
			return nil
		}
	}

	return fmt.Errorf("unknown output format %q, must be one of %s", o.output, strings.Join(outputFormats, ", "))
}

func addCheck(parentCmd *cobra.Command) {
	opts := checkOptions{}

	cmd := &cobra.Command{
		Use:   "check [package-version ...]",
		Short: "Check packages once and print the vulnerable ones",
		Long: `Check packages once and print the vulnerable ones.

Package-version names are taken from the arguments or, when there are none
or the only argument is "-", from standard input. The exit status is 2 when
vulnerable packages were found.`,
		Example: `  yvcweb check perl-5.8.5_13 openssl-0.9.8
  rpm -qa | yvcweb check --output sarif > yvc.sarif`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.Validate(); err != nil {
				return err
			}

			flags := map[string]string{"author": config.KeyVEXAuthor}
			for k, v := range checkerFlags {
				flags[k] = v
			}

			cfg, err := loadConfig(cmd, flags)
			if err != nil {
				return err
			}

			raw := strings.Join(args, "\n")
			if len(args) == 0 || (len(args) == 1 && args[0] == "-") {
				in, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("reading packages from stdin: %w", err)
				}
				raw = string(in)
			}

			report, err := runCheck(cmd, cfg.Checker, raw)
			if err != nil {
				return err
			}

			report = report.Filter(opts.filter)
			if err := writeReport(cmd.OutOrStdout(), report, opts.output, cfg); err != nil {
				return err
			}

			if len(report.Matches) > 0 {
				return errVulnerable
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", outputText, fmt.Sprintf("output format, one of %s", strings.Join(outputFormats, ", ")))
	cmd.Flags().StringVar(&opts.filter, "filter", "", "only report vulnerabilities whose package, type or URL contains this text")
	cmd.Flags().String("author", "yvcweb", "author recorded in OpenVEX documents")
	addCheckerFlags(cmd)

	parentCmd.AddCommand(cmd)
}

func runCheck(cmd *cobra.Command, c checker.Checker, raw string) (formats.Normalized, error) {
	query := checker.ParseQuery(raw)
	if len(query) == 0 {
		return formats.Normalized{}, errors.New("no packages given")
	}

	out, err := c.Check(cmd.Context(), query)
	if err != nil {
		if errors.Is(err, checker.ErrStart) {
			return formats.Normalized{}, err
		}
		logrus.WithError(err).Warn("checker failed, reporting partial output")
	}

	parsed, err := yvctext.Parse(bytes.NewReader(out))
	if err != nil {
		return formats.Normalized{}, err
	}

	return parsed.Normalized(), nil
}

func writeReport(w io.Writer, report formats.Normalized, output string, cfg config.Config) error {
	switch output {
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	case outputHTML:
		return web.Render(w, web.Page{Checked: true, Matches: report.Matches})
	case outputSARIF:
		return sarif.Write(w, report)
	case outputOpenVEX:
		return openvex.Write(w, report, openvex.Options{Author: cfg.VEXAuthor})
	default:
		for _, m := range report.Matches {
			if _, err := fmt.Fprintf(w, "Package %s has a %s vulnerability, see: %s\n",
				m.Package.Identifier(), m.Vulnerability.Type, m.Vulnerability.URL); err != nil {
				return err
			}
		}
		return nil
	}
}
