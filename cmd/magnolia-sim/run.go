package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"

	"github.com/magnolia-os/magnolia-go/host"
	"github.com/magnolia-os/magnolia-go/hostfuncs"
	"github.com/magnolia-os/magnolia-go/jobs"
)

// mountPoints are created in a scratch root so jobs find the device's
// usual directories.
var mountPoints = []string{"flash", "spiffs"}

type runOptions struct {
	root      string
	heapPages uint32
	stdin     bool
	metrics   bool
	report    bool
}

func newRunCommand(global *globalOptions) *cobra.Command {
	opts := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run <job> [args...]",
		Short: "Run a built-in job",
		Long: "Run a built-in job with the given arguments. argv[0] is the job name.\n" +
			"The command exits with the job's status.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runJob(cmd, global, opts, args)
		},
	}
	cmd.Flags().SetInterspersed(false)
	cmd.Flags().StringVar(&opts.root, "root", "", "host directory the job's filesystem lives in (default: a scratch directory)")
	cmd.Flags().Uint32Var(&opts.heapPages, "heap-pages", 0, "cap the job heap at this many 64 KiB pages")
	cmd.Flags().BoolVar(&opts.stdin, "stdin", false, "connect the job's descriptor 0 to standard input")
	cmd.Flags().BoolVar(&opts.metrics, "metrics", false, "print syscall metrics after the run")
	cmd.Flags().BoolVar(&opts.report, "report", false, "print a run summary after the job's output")
	return cmd
}

func runJob(cmd *cobra.Command, global *globalOptions, opts *runOptions, args []string) error {
	job, ok := jobs.Lookup(args[0])
	if !ok {
		return fmt.Errorf("unknown job %q (available: %s)", args[0], strings.Join(jobs.Names(), ", "))
	}
	p, err := global.loadProfile()
	if err != nil {
		return err
	}
	logger, err := global.logger(cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	root := opts.root
	if root == "" {
		root, err = os.MkdirTemp("", "magnolia-sim-")
		if err != nil {
			return err
		}
		defer os.RemoveAll(root)
		for _, dir := range mountPoints {
			if err := os.Mkdir(filepath.Join(root, dir), 0o755); err != nil {
				return err
			}
		}
	}

	execOpts := []host.Option{
		host.WithProfile(p),
		host.WithRoot(root),
		host.WithLogger(logger),
	}
	if opts.heapPages > 0 {
		execOpts = append(execOpts, host.WithHeapLimit(opts.heapPages))
	}
	if opts.stdin {
		execOpts = append(execOpts, host.WithStdin(cmd.InOrStdin()))
	}
	reg := prometheus.NewRegistry()
	if opts.metrics {
		m, err := hostfuncs.NewMetricsObserver(reg)
		if err != nil {
			return err
		}
		execOpts = append(execOpts, host.WithMetrics(m))
	}

	ctx := cmd.Context()
	e, err := host.NewExecutor(ctx, execOpts...)
	if err != nil {
		return err
	}
	defer e.Close(ctx)

	res, err := e.Run(ctx, job, args...)
	if err != nil {
		return err
	}

	_, _ = io.WriteString(cmd.OutOrStdout(), res.Stdout)
	_, _ = io.WriteString(cmd.ErrOrStderr(), res.Stderr)
	if opts.report {
		fmt.Fprintf(cmd.OutOrStdout(), "job %s: status=%d outcome=%s leaked_bytes=%d leaked_files=%d duration=%s\n",
			res.JobID, res.Status, res.Outcome(), res.LeakedBytes, res.LeakedFiles, res.Duration)
	}
	if opts.metrics {
		if err := writeMetrics(cmd.OutOrStdout(), reg); err != nil {
			return err
		}
	}

	if res.Status != 0 {
		return &exitError{status: res.Status}
	}
	return nil
}

func writeMetrics(w io.Writer, reg *prometheus.Registry) error {
	families, err := reg.Gather()
	if err != nil {
		return err
	}
	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return err
		}
	}
	return nil
}

func newJobsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "jobs",
		Short: "List the built-in jobs",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			for _, name := range jobs.Names() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
		},
	}
}
