/*
 * Copyright 2020 grant@lastweekend.com.au
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Command integration-tester-server serves a project's test pages for browser based
// integration tests.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/lwoggardner/integrationtester/internal/log"
	"github.com/lwoggardner/integrationtester/internal/server"
)

// Exit codes
const (
	ExitCodeSuccess   = 0
	ExitCodeError     = 1
	ExitCodePortInUse = 2
)

var version = "dev"

type options struct {
	configPath string
	host       string
	port       int
	root       string
	index      string
	pidFile    string
	logLevel   string
	logFormat  string
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "integration-tester-server",
		Short: "Serve test pages for integration tests",
		Long: `integration-tester-server serves the files under a root directory, answering every
other route with the test index page, and writes its pid to a file once listening.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, cmd.Flags(), opts, cmd.ErrOrStderr())
		},
	}

	bindFlags(cmd.Flags(), opts)
	return cmd
}

func bindFlags(flags *pflag.FlagSet, opts *options) {
	flags.StringVar(&opts.configPath, "config", "", "YAML configuration file")
	flags.StringVar(&opts.host, "host", "", "host to bind (default all interfaces)")
	flags.IntVarP(&opts.port, "port", "p", server.DefaultPort, "port to listen on")
	flags.StringVar(&opts.root, "root", server.DefaultRoot, "directory to serve")
	flags.StringVar(&opts.index, "index", server.DefaultIndex, "page served for routes that are not files, relative to root")
	flags.StringVar(&opts.pidFile, "pid-file", server.DefaultPIDFile, "file to write the pid to, relative to root (empty to disable)")
	flags.StringVar(&opts.logLevel, "log-level", "info", "log level: debug, info, warn or error")
	flags.StringVar(&opts.logFormat, "log-format", "text", "log format: text or json")
}

// loadConfig reads the config file and applies the flags that were set explicitly.
func loadConfig(flags *pflag.FlagSet, opts *options) (*server.Config, error) {
	cfg, err := server.Load(opts.configPath)
	if err != nil {
		return nil, err
	}

	if flags.Changed("host") {
		cfg.Host = opts.host
	}
	if flags.Changed("port") {
		cfg.Port = opts.port
	}
	if flags.Changed("root") {
		cfg.Root = opts.root
	}
	if flags.Changed("index") {
		cfg.Index = opts.index
	}
	if flags.Changed("pid-file") {
		cfg.PIDFile = opts.pidFile
	}

	// LOG_LEVEL and LOG_FORMAT beat the config file, flags beat both
	env := log.FromEnv()
	if os.Getenv("LOG_LEVEL") != "" {
		cfg.Log.Level = env.Level
	}
	if os.Getenv("LOG_FORMAT") != "" {
		cfg.Log.Format = string(env.Format)
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = strings.ToLower(opts.logLevel)
	}
	if flags.Changed("log-format") {
		cfg.Log.Format = strings.ToLower(opts.logFormat)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func run(ctx context.Context, flags *pflag.FlagSet, opts *options, logOutput io.Writer) error {
	cfg, err := loadConfig(flags, opts)
	if err != nil {
		return err
	}

	logCfg := log.FromEnv()
	logCfg.Level = cfg.Log.Level
	logCfg.Format = log.Format(cfg.Log.Format)
	logCfg.Output = logOutput
	logger := log.New(logCfg)

	if err := server.New(cfg, logger).Run(ctx); err != nil {
		logger.Error("server failed", log.Error(err))
		return err
	}
	return nil
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return ExitCodeSuccess
	case errors.Is(err, server.ErrPortInUse):
		return ExitCodePortInUse
	default:
		return ExitCodeError
	}
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}
