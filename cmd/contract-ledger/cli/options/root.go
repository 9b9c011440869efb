// Copyright 2025 The Contract Ledger Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package options defines the command-line options and flags for the
// contract-ledger CLI.
package options

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/kapilvgit/contract-ledger/pkg/logging"
)

// FlagAdder is implemented by any flag group that can register itself
// to a cobra command.
type FlagAdder interface {
	AddFlags(cmd *cobra.Command)
}

// RootOptions defines flags available globally across all subcommands.
type RootOptions struct {
	// OutputFile redirects command output to a file instead of stdout.
	OutputFile string
	// LogLevel sets the minimum log level (debug, info, warn, error, silent).
	LogLevel string
}

// AddFlags adds root-level flags to the cobra command.
func (o *RootOptions) AddFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&o.OutputFile, "output-file", "",
		"redirect command output to a file")
	cmd.PersistentFlags().StringVar(&o.LogLevel, "log-level", "info",
		"set the minimum log level (debug, info, warn, error, silent)")
}

// NewLogger creates a logger honoring the root options. Logs go to
// stderr so they never mix with redirected command output.
func (o *RootOptions) NewLogger() logging.Logger {
	return logging.NewLoggerTo(os.Stderr, logging.ParseLogLevel(o.LogLevel))
}
