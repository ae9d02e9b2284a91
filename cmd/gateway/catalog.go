package main

import (
	"fmt"
	"strings"

	"github.com/aussiebroadwan/bankgate/internal/gateway/app"
	"github.com/aussiebroadwan/bankgate/internal/gateway/catalog"
	"github.com/spf13/cobra"
)

func catalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Manage the bank catalog",
	}
	cmd.AddCommand(catalogImportCmd())
	cmd.AddCommand(catalogCheckCmd())
	cmd.AddCommand(catalogListCmd())
	return cmd
}

func catalogImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import [file]",
		Short: "Validate a YAML catalog seed and write it to the database",
		Long: `Validate a YAML catalog seed and write it to the database.

Every handler name is resolved against the registered protocol handlers
before anything is written. Banks not named in the file are left as they are.

Examples:
  gateway catalog import banks.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := app.LoadConfig()

			f, err := catalog.ParseFile(args[0])
			if err != nil {
				return err
			}

			reg, dialer, err := app.NewRegistry(cfg)
			if err != nil {
				return err
			}
			defer dialer.Close()

			db, err := app.OpenStore(cfg.DatabaseFile)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := catalog.Import(cmd.Context(), db, reg, f); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d banks from %s\n", len(f.Banks), args[0])
			return nil
		},
	}
}

func catalogCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check [file]",
		Short: "Validate a YAML catalog seed without writing it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := catalog.ParseFile(args[0])
			if err != nil {
				return err
			}

			reg, dialer, err := app.NewRegistry(app.LoadConfig())
			if err != nil {
				return err
			}
			defer dialer.Close()

			if err := f.Check(reg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d banks ok\n", args[0], len(f.Banks))
			return nil
		},
	}
}

func catalogListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the banks stored in the database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := app.LoadConfig()

			reg, dialer, err := app.NewRegistry(cfg)
			if err != nil {
				return err
			}
			defer dialer.Close()

			db, err := app.OpenStore(cfg.DatabaseFile)
			if err != nil {
				return err
			}
			defer db.Close()

			cat, err := catalog.Load(cmd.Context(), db, reg)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, b := range cat.Banks() {
				var kinds []string
				for _, k := range cat.Actions(b.ID) {
					kinds = append(kinds, string(k))
				}
				fmt.Fprintf(out, "%s\t%s\t%s\t%s\n", b.ID, b.Protocol, b.Endpoint, strings.Join(kinds, ","))
			}
			return nil
		},
	}
}
