package cmd

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/quizrr/quizrr/internal/auth"
	"github.com/quizrr/quizrr/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup(cmd, os.Stderr)
		if err != nil {
			return err
		}
		defer e.Close()

		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			e.cfg.Server.Addr = addr
		}

		opts := server.Options{
			Service:        e.svc,
			Log:            e.log,
			AllowedOrigins: e.cfg.Server.AllowedOrigins,
			Version:        version,
			RequestTimeout: e.cfg.Server.WriteTimeout,
		}

		authSvc, err := auth.New(e.cfg.Auth)
		switch {
		case err == nil:
			opts.Auth = authSvc
			if !authSvc.GoogleEnabled() {
				e.log.Info("Google sign-in disabled; set QUIZRR_GOOGLE_CLIENT_ID and QUIZRR_GOOGLE_CLIENT_SECRET to enable it")
			}
		case errors.Is(err, auth.ErrNoSecret):
			e.log.Warn("QUIZRR_JWT_SECRET not set; serving anonymous requests only")
		default:
			return err
		}

		return server.Run(cmd.Context(), e.cfg.Server.Addr, server.NewRouter(opts),
			e.cfg.Server.ReadTimeout, e.cfg.Server.WriteTimeout, e.log)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides server.addr)")
}
