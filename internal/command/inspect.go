package command

import (
	"time"

	"github.com/urfave/cli/v2"

	"github.com/tagora/backend/internal/credential"
	"github.com/tagora/backend/internal/crypto"
)

type InspectOutput struct {
	Subject   string         `json:"subject"`
	ExpiresAt time.Time      `json:"expiresAt"`
	Expired   bool           `json:"expired"`
	Claims    map[string]any `json:"claims"`
}

// inspectCommand verifies a token's signature offline and reports whether it
// has expired. It never contacts the API, so the token stays redeemable.
func inspectCommand() *cli.Command {
	return &cli.Command{
		Name:      "inspect",
		Usage:     "Verify an admin token locally without redeeming it",
		ArgsUsage: "<token>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "secret",
				Usage:   "signing secret shared with the API",
				EnvVars: []string{"ADMIN_TOKEN_SECRET"},
			},
			&cli.StringFlag{
				Name:    "issuer",
				Usage:   "expected token issuer",
				EnvVars: []string{"ADMIN_TOKEN_ISSUER"},
				Value:   credential.DefaultIssuer,
			},
		},
		OnUsageError: usageError,
		Action: func(c *cli.Context) error {
			token := c.Args().First()
			if token == "" {
				return cli.Exit("token argument required", exitUsage)
			}
			if c.String("secret") == "" {
				return cli.Exit("--secret or ADMIN_TOKEN_SECRET required", exitUsage)
			}

			key, err := crypto.DeriveSigningKey(c.String("secret"))
			if err != nil {
				return cli.Exit(err.Error(), exitUsage)
			}
			minter, err := credential.NewMinter(key, c.String("issuer"))
			if err != nil {
				return err
			}

			verified, err := minter.Inspect(token)
			if err != nil {
				return cli.Exit(err.Error(), exitRejected)
			}

			return printJSON(c.App.Writer, InspectOutput{
				Subject:   verified.Subject,
				ExpiresAt: verified.ExpiresAt,
				Expired:   !time.Now().Before(verified.ExpiresAt),
				Claims:    verified.Claims,
			})
		},
	}
}
