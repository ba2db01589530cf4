package main

import (
	"context"
	"fmt"

	"github.com/arredohq/arredo/internal/services"
	"github.com/arredohq/arredo/internal/shared"
	"github.com/urfave/cli/v3"
)

// AuthLogin authenticates against the CRM with username/password and saves
// the issued token pair for later commands.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	curlCmd := cmd.String("curl")
	curlFile := cmd.String("curl-file")
	if curlCmd != "" || curlFile != "" {
		return r.loginFromCurl(curlCmd, curlFile)
	}

	username := cmd.StringArg("username")
	password := cmd.String("password")

	if username == "" {
		return fmt.Errorf("%w: username is required", shared.ErrMissingArgument)
	}
	if password == "" {
		return fmt.Errorf("%w: --password is required", shared.ErrMissingArgument)
	}

	r.logger.Infof("logging in as %v", username)

	pair, err := r.crm.Login(ctx, username, password)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}

	token := services.PairToken(pair)
	if err := r.store.Save(token); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}

	r.api.SetTokenSource(services.NewTokenSource(r.config.API.BaseURL, r.httpClient, r.store, token))

	r.logger.Info("authentication successful")
	r.writePlain("✓ Logged in as %s\n", pair.User.Email)
	return nil
}

// loginFromCurl imports credentials from a cURL command copied out of the
// browser's DevTools, for accounts without a usable password flow.
func (r *Runner) loginFromCurl(curlCmd, curlFile string) error {
	if curlCmd != "" && curlFile != "" {
		return fmt.Errorf("%w: cannot specify both --curl and --curl-file", shared.ErrInvalidArgument)
	}

	var creds *shared.CurlCredentials
	var err error

	if curlFile != "" {
		creds, err = shared.ParseCurlFile(curlFile)
		if err != nil {
			return fmt.Errorf("failed to parse cURL file: %w", err)
		}
		r.logger.Info("parsed cURL from file", "file", curlFile)
	} else {
		creds, err = shared.ParseCurlCommand([]byte(curlCmd))
		if err != nil {
			return fmt.Errorf("failed to parse cURL command: %w", err)
		}
		r.logger.Info("parsed cURL command")
	}

	token := services.StaticToken(creds.BearerToken)
	if err := r.store.Save(token); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}

	r.api.SetTokenSource(services.NewTokenSource(r.config.API.BaseURL, r.httpClient, r.store, token))

	r.writePlain("✓ Credentials imported\n")
	if creds.TenantID != "" && creds.TenantID != r.config.API.TenantID {
		r.writePlain("Note: cURL tenant %q differs from configured tenant %q\n", creds.TenantID, r.config.API.TenantID)
	}
	return nil
}

// AuthRegister creates a new CRM account and logs in.
func (r *Runner) AuthRegister(ctx context.Context, cmd *cli.Command) error {
	name := cmd.String("name")
	email := cmd.String("email")
	password := cmd.String("password")

	if email == "" || password == "" {
		return fmt.Errorf("%w: --email and --password are required", shared.ErrMissingArgument)
	}

	pair, err := r.crm.Register(ctx, name, email, password)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}

	if err := r.store.Save(services.PairToken(pair)); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}

	r.writePlain("✓ Account created for %s\n", pair.User.Email)
	return nil
}

// AuthWhoami prints the authenticated user's profile.
func (r *Runner) AuthWhoami(ctx context.Context, cmd *cli.Command) error {
	user, err := r.crm.CurrentUser(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(user, cmd.Bool("pretty"))
	}

	r.writePlain("User: %s\n", user.Name)
	r.writePlain("Email: %s\n", user.Email)
	r.writePlain("ID: %s\n", user.ID)
	return nil
}

// AuthLogout clears the saved token.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	if err := r.store.Clear(); err != nil {
		return fmt.Errorf("failed to clear token: %w", err)
	}
	r.writePlain("✓ Logged out\n")
	return nil
}

// authCommand handles authentication operations
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage authentication",
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Authenticate with the CRM and save the token",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "username"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "password",
						Aliases: []string{"p"},
						Usage:   "Account password",
					},
					&cli.StringFlag{
						Name:  "curl",
						Usage: "cURL command from browser DevTools (Copy as cURL)",
					},
					&cli.StringFlag{
						Name:  "curl-file",
						Usage: "Path to .sh file containing cURL command",
					},
				},
				Action: r.AuthLogin,
			},
			{
				Name:  "register",
				Usage: "Create a new account",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Usage: "Display name"},
					&cli.StringFlag{Name: "email", Usage: "Account email", Required: true},
					&cli.StringFlag{Name: "password", Aliases: []string{"p"}, Usage: "Account password", Required: true},
				},
				Action: r.AuthRegister,
			},
			{
				Name:  "whoami",
				Usage: "Show the authenticated user",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "json", Usage: "Output raw JSON"},
					&cli.BoolFlag{Name: "pretty", Usage: "Pretty-print output", Value: true},
				},
				Action: r.AuthWhoami,
			},
			{
				Name:   "logout",
				Usage:  "Forget the saved token",
				Action: r.AuthLogout,
			},
		},
	}
}
