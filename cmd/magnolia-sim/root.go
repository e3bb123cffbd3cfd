package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/magnolia-os/magnolia-go/application/profile"
	"github.com/magnolia-os/magnolia-go/domain/entities"
)

// exitError carries a job's status out of cobra.
type exitError struct {
	status int32
}

func (e *exitError) Error() string { return fmt.Sprintf("job exited with status %d", e.status) }

type globalOptions struct {
	profilePath string
	logLevel    string
}

func newRootCommand() *cobra.Command {
	opts := &globalOptions{}
	cmd := &cobra.Command{
		Use:           "magnolia-sim",
		Short:         "Run Magnolia jobs on a simulated host",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.profilePath, "profile", "", "host profile YAML (default: built-in "+profile.DefaultName+")")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "host log level: debug, info, warn or error")

	cmd.AddCommand(
		newRunCommand(opts),
		newJobsCommand(),
		newProfileCommand(opts),
	)
	return cmd
}

// loadProfile returns the profile named by --profile, or the built-in one.
func (o *globalOptions) loadProfile() (*entities.HostProfile, error) {
	if o.profilePath == "" {
		return profile.Default(), nil
	}
	loader, err := profile.NewLoader()
	if err != nil {
		return nil, err
	}
	return loader.LoadFile(o.profilePath)
}

func (o *globalOptions) logger(w io.Writer) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(o.logLevel)); err != nil {
		return nil, fmt.Errorf("invalid --log-level %q", o.logLevel)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})), nil
}
