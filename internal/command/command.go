// Package command implements admintoken, the operator tool for the out-of-band
// admin login flow.
package command

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/urfave/cli/v2"
)

var Version = "dev"

const (
	exitRejected = 1
	exitUsage    = 2
)

func App() *cli.App {
	return &cli.App{
		Name:    "admintoken",
		Usage:   "Request, redeem and inspect out-of-band admin tokens",
		Version: Version,

		OnUsageError: usageError,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "server",
				Aliases: []string{"s"},
				Usage:   "Tagora API base URL",
				EnvVars: []string{"TAGORA_API_URL"},
				Value:   "http://localhost:5000",
			},
		},
		Commands: []*cli.Command{
			requestCommand(),
			validateCommand(),
			statsCommand(),
			inspectCommand(),
		},
	}
}

func clientFrom(c *cli.Context) *Client {
	return NewClient(c.String("server"))
}

func requestCommand() *cli.Command {
	return &cli.Command{
		Name:  "request",
		Usage: "Issue a new admin token and send it to the configured channel",

		OnUsageError: usageError,
		Action: func(c *cli.Context) error {
			resp, err := clientFrom(c).RequestToken(c.Context)
			if err != nil {
				return err
			}
			if err := printJSON(c.App.Writer, resp); err != nil {
				return err
			}
			if !resp.Success {
				return cli.Exit(resp.Message, exitRejected)
			}
			return nil
		},
	}
}

func validateCommand() *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Usage:     "Redeem an admin token (single use)",
		ArgsUsage: "<token>",

		OnUsageError: usageError,
		Action: func(c *cli.Context) error {
			token := c.Args().First()
			if token == "" {
				return cli.Exit("token argument required", exitUsage)
			}

			resp, err := clientFrom(c).Validate(c.Context, token)
			if err != nil {
				return err
			}
			if err := printJSON(c.App.Writer, resp); err != nil {
				return err
			}
			if !resp.Valid {
				return cli.Exit(resp.Message, exitRejected)
			}
			return nil
		},
	}
}

func statsCommand() *cli.Command {
	return &cli.Command{
		Name:  "stats",
		Usage: "Show active and total issued admin tokens",

		OnUsageError: usageError,
		Action: func(c *cli.Context) error {
			resp, err := clientFrom(c).Stats(c.Context)
			if err != nil {
				return err
			}
			return printJSON(c.App.Writer, resp)
		},
	}
}

// usageError turns flag parsing failures into exit code 2.
func usageError(_ *cli.Context, err error, _ bool) error {
	return cli.Exit(err.Error(), exitUsage)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}
