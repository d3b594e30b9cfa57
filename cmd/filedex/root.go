package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/jamesainslie/filedex/pkg/filedex/config"
	"github.com/jamesainslie/filedex/pkg/filedex/logging"
)

// app carries per-invocation state shared by the subcommands.
type app struct {
	cfgFile string
	verbose bool
	quiet   bool

	v      *viper.Viper
	cfg    *config.Config
	logger *logging.Logger

	stdout io.Writer
	stderr io.Writer
}

func newRootCmd(stdout, stderr io.Writer) (*cobra.Command, *app) {
	a := &app{stdout: stdout, stderr: stderr, logger: logging.Discard()}

	rootCmd := &cobra.Command{
		Use:   "filedex",
		Short: "Index and search the file lists of backup manifests",
		Long: `filedex builds a compact, searchable index of the file paths listed in a
backup manifest and answers substring queries against it.

Examples:
  filedex create filelist.json               # writes index.fdx.gz
  filedex create filelist.json backup.fdx.zst --compression zstd
  filedex search index.fdx.gz mydoc          # print matching paths
  filedex search index.fdx.gz .mp4 -o json   # machine-readable output
  filedex export index.fdx.gz paths.txt      # back to plain text
  filedex info index.fdx.gz                  # archive metadata`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	rootCmd.SetGlobalNormalizationFunc(normalizeFlag)

	rootCmd.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default: ~/.config/filedex/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "debug output")
	rootCmd.PersistentFlags().BoolVarP(&a.quiet, "quiet", "q", false, "minimal output")

	rootCmd.AddCommand(
		newCreateCmd(a),
		newSearchCmd(a),
		newExportCmd(a),
		newInfoCmd(a),
		newConfigCmd(a),
		newVersionCmd(a),
	)
	return rootCmd, a
}

// setup loads configuration and builds the logger before any subcommand runs.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	a.v = config.New(a.cfgFile)
	cfg, err := config.Read(a.v)
	if err != nil {
		return err
	}
	a.cfg = cfg

	level := cfg.Logging.Level
	switch {
	case a.verbose:
		level = logging.LevelDebug.String()
	case a.quiet:
		level = logging.LevelError.String()
	}

	logger, err := logging.New(logging.Config{
		Level:  level,
		Output: a.stderr,
		Path:   cfg.Logging.Path,
	})
	if err != nil {
		return err
	}
	a.logger = logger
	a.logger.Component("cli").Debug("configuration loaded",
		"file", a.v.ConfigFileUsed(),
		"command", cmd.CommandPath())
	return nil
}

// normalizeFlag accepts config-style spellings such as --ignore_case.
func normalizeFlag(_ *pflag.FlagSet, name string) pflag.NormalizedName {
	return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
}

func (a *app) close() {
	_ = a.logger.Close()
}

// Execute runs the root command against the process arguments.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return run(ctx, os.Args[1:], os.Stdout, os.Stderr)
}

// run executes one invocation and reports a failure as a single
// "Error: ..." line on stderr.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	rootCmd, a := newRootCmd(stdout, stderr)
	rootCmd.SetArgs(args)

	err := rootCmd.ExecuteContext(ctx)
	a.close()
	if err != nil {
		printError(stderr, "%v", err)
	}
	return err
}

// printInfo prints a message to stdout unless quiet mode is enabled.
func (a *app) printInfo(format string, args ...interface{}) {
	if !a.quiet {
		fmt.Fprintf(a.stdout, format+"\n", args...)
	}
}

// printError prints an error message to w.
func printError(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintf(w, "Error: "+format+"\n", args...)
}
