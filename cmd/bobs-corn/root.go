package main

import (
	"fmt"

	"github.com/joel110399/bobs-corn-api/api"
	"github.com/joel110399/bobs-corn-api/config"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	v := config.New()

	root := &cobra.Command{
		Use:           "bobs-corn",
		Short:         "API de compras do Bob's Corn (1 compra por minuto por cliente)",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), v)
		},
	}

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Sobe o servidor HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), v)
		},
	}

	// persistentes: `bobs-corn --port 4000` e `bobs-corn serve --port 4000`
	flags := root.PersistentFlags()
	flags.Int("port", 3001, "porta HTTP (env PORT)")
	flags.String("host", "", "host de escuta (env HOST)")
	flags.String("log-level", "info", "nível de log: debug, info, warn, error (env LOG_LEVEL)")
	_ = v.BindPFlag("port", flags.Lookup("port"))
	_ = v.BindPFlag("host", flags.Lookup("host"))
	_ = v.BindPFlag("log_level", flags.Lookup("log-level"))

	root.AddCommand(serve, newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Mostra a versão",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), buildVersion())
		},
	}
}

func buildVersion() string {
	v := api.ServiceName + " " + api.ServiceVersion
	if commit != "" {
		v += " (" + commit + ")"
	}
	if date != "" {
		v += " " + date
	}
	return v
}
