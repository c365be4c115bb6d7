package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"line-splicer/internal/config"
	"line-splicer/internal/errors"
	"line-splicer/internal/filesystem"
	"line-splicer/internal/lock"
	"line-splicer/internal/logger"
	"line-splicer/internal/service"
)

// app carries the state shared by the root command and its subcommands.
type app struct {
	cfg    *config.Config
	log    *slog.Logger
	closer io.Closer
	stdout io.Writer
}

// Execute runs linesplice with the process arguments and exits with the
// status mapped from the outcome.
func Execute() {
	os.Exit(Run(os.Args[1:], os.Stdout, os.Stderr))
}

// Run executes linesplice with args and returns the exit status.
func Run(args []string, stdout, stderr io.Writer) int {
	a := &app{cfg: config.NewDefaultConfig(), log: logger.Discard(), stdout: stdout}
	root := a.newRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.Execute()
	if a.closer != nil {
		a.closer.Close()
	}
	if err != nil {
		fmt.Fprintf(stderr, "linesplice: %v\n", err)
		return errors.MapErrorToExitCode(err)
	}
	return errors.ExitOK
}

func (a *app) newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "linesplice",
		Short: "Replace a fixed line range of a text file with a replacement block",
		Long: `linesplice removes lines [start, end) of a file and inserts a replacement
block in their place. Offsets are 0-based and end is exclusive.

Without --descriptor the built-in kitchen block swap edit is applied.
Offsets are positional: re-running an edit against an already patched file
changes different lines. Pin the removed content with expect_hash (see the
hash subcommand) to make a stale re-run fail instead.`,
		Args:              noArgs,
		SilenceErrors:     true,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		RunE:              a.runApply,
	}
	root.Flags().StringVar(&a.cfg.DescriptorPath, "descriptor", "", "Edit descriptor (.toml, .yaml or .yml); defaults to the built-in edit")
	a.cfg.BindFlags(root.PersistentFlags())
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return errors.NewInvalidParamsError(err.Error(), nil)
	})

	root.AddCommand(a.newHashCmd())
	return root
}

func noArgs(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		return errors.NewInvalidParamsError(fmt.Sprintf("unexpected argument %q for %q", args[0], cmd.CommandPath()), nil)
	}
	return nil
}

// setup validates the configuration and opens the logger.
func (a *app) setup(_ *cobra.Command, _ []string) error {
	if err := a.cfg.Validate(); err != nil {
		return errors.NewInvalidParamsError(fmt.Sprintf("configuration error: %v", err), nil)
	}
	log, closer, err := logger.New(a.cfg.LoggerConfig())
	if err != nil {
		return err
	}
	a.log = log
	a.closer = closer
	a.log.Debug("configuration",
		"descriptor", a.cfg.DescriptorPath,
		"max_file_size_mb", a.cfg.MaxFileSizeMB,
		"lock_timeout_sec", a.cfg.LockTimeoutSec)
	return nil
}

func (a *app) newService() (*service.DefaultSpliceService, error) {
	svc, err := service.NewDefaultSpliceService(filesystem.NewDefaultFileSystemAdapter(), lock.NewLockManager(), a.cfg, a.log)
	if err != nil {
		return nil, errors.NewInternalError("failed to initialize splice service", err)
	}
	return svc, nil
}

func (a *app) runApply(cmd *cobra.Command, _ []string) error {
	var (
		d   *config.Descriptor
		err error
	)
	if a.cfg.DescriptorPath == "" {
		d, err = config.BuiltinDescriptor()
	} else {
		d, err = config.LoadDescriptor(cmd.Context(), a.cfg.DescriptorPath)
	}
	if err != nil {
		return errors.NewInvalidParamsError(err.Error(), nil)
	}
	a.log.Debug("descriptor loaded", "source", d.Source)

	svc, err := a.newService()
	if err != nil {
		return err
	}
	req := d.Request()
	resp, errDetail := svc.Splice(req)
	if errDetail != nil {
		return errDetail
	}
	fmt.Fprintf(a.stdout, "spliced %s [%d, %d): removed %d, inserted %d, lines %d -> %d\n",
		req.Path, req.Start, req.End, resp.RemovedLines, resp.InsertedLines, resp.OriginalTotalLines, resp.NewTotalLines)
	return nil
}
