package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/philocompass/compass/internal/app"
	"github.com/philocompass/compass/internal/nav"
	"github.com/philocompass/compass/internal/oauth"
	"github.com/philocompass/compass/internal/result"
)

// runApp opens the store, builds dependencies, and launches the TUI.
func runApp(cmd *cobra.Command) error {
	d, err := openDeps(cmd)
	if err != nil {
		return err
	}
	defer d.Close()

	listener := oauth.NewListener(d.cfg.OAuth.CallbackAddr, d.logger.Named("oauth"))
	machine := nav.New(nav.Deps{
		Sessions:  d.sessions,
		Accounts:  d.client,
		Results:   result.New(d.client, d.sessions, d.logger.Named("result")),
		OAuth:     listener,
		Logger:    d.logger.Named("nav"),
		Timeout:   d.cfg.RequestTimeout(),
		OAuthWait: d.cfg.OAuthWait(),
	})

	d.logger.Info("starting", zap.String("version", version))
	return app.Run(cmd.Context(), app.Options{
		Machine:   machine,
		Pinger:    d.client,
		GoogleURL: d.client.GoogleAuthURL(),
		Logger:    d.logger.Named("app"),
	})
}
