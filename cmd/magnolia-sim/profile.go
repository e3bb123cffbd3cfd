package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/magnolia-os/magnolia-go/application/profile"
	"github.com/magnolia-os/magnolia-go/application/schema"
)

func newProfileCommand(global *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Inspect host profiles",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the active profile as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := global.loadProfile()
			if err != nil {
				return err
			}
			out, err := profile.Marshal(p)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "schema",
		Short: "Print the profile JSON schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, err := schema.ProfileSchema()
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return err
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "validate <file>",
		Short: "Check a profile file against the schema and semantic rules",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loader, err := profile.NewLoader()
			if err != nil {
				return err
			}
			p, err := loader.LoadFile(args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s: ok (%s, word size %d, %d error codes)\n",
				args[0], p.Name, p.WordSize, len(p.Errno))
			return err
		},
	})
	return cmd
}
