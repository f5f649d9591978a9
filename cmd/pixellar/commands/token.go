package commands

import (
	"github.com/dyluth/pixellar/internal/auth"
	"github.com/dyluth/pixellar/internal/printer"
	"github.com/dyluth/pixellar/pkg/canvas"
	"github.com/spf13/cobra"
)

var tokenCmd = &cobra.Command{
	Use:   "token PAINTER",
	Short: "Mint a bearer token for a painter",
	Long: `Mint an HS256 bearer token proving the given painter identity.

The token is signed with the configured auth secret and is valid for
auth.token_ttl. Pass it to the HTTP API as "Authorization: Bearer <token>".`,
	Args: cobra.ExactArgs(1),
	RunE: runToken,
}

func init() {
	rootCmd.AddCommand(tokenCmd)
}

func runToken(cmd *cobra.Command, args []string) error {
	if err := cfg.RequireSecret(); err != nil {
		return printer.Error("no auth secret", err.Error(), []string{
			"Set auth.secret in pixellar.yml or PIXELLAR_AUTH_SECRET",
		})
	}

	issuer, err := auth.NewTokenIssuer(cfg.Auth.Secret, cfg.Auth.TokenTTL)
	if err != nil {
		return printer.Error("invalid auth settings", err.Error(), nil)
	}

	token, err := issuer.Issue(canvas.Identity(args[0]))
	if err != nil {
		return printer.Error("failed to mint token", err.Error(), nil)
	}

	printer.Info("%s\n", token)
	return nil
}
