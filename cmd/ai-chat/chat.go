package main

import (
	"os"
	"time"

	"github.com/iamvkosarev/ai-chat-web/internal/client"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

type chatOptions struct {
	url            string
	name           string
	email          string
	password       string
	signUp         bool
	timeout        time.Duration
	revealInterval time.Duration
}

func newChatCommand() *cobra.Command {
	var opts chatOptions
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Chat with the server from the terminal",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.email == "" || opts.password == "" {
				return errors.New("--email and --password are required")
			}
			ctx := cmd.Context()
			api, err := client.NewAPI(opts.url, opts.timeout)
			if err != nil {
				return err
			}
			if opts.signUp {
				err = api.SignUp(ctx, opts.name, opts.email, opts.password)
			} else {
				err = api.LogIn(ctx, opts.email, opts.password)
			}
			if err != nil {
				return errors.Wrap(err, "failed to authenticate")
			}

			console := client.NewConsole(
				client.NewSession(api), cmd.OutOrStdout(), client.ConsoleConfig{
					RevealInterval: opts.revealInterval,
					TypingInterval: 500 * time.Millisecond,
				},
			)
			return console.Run(ctx, os.Stdin)
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&opts.url, "url", "http://localhost:8080", "server base url")
	flags.StringVar(&opts.name, "name", "", "display name, used with --signup")
	flags.StringVar(&opts.email, "email", "", "account email")
	flags.StringVar(&opts.password, "password", "", "account password")
	flags.BoolVar(&opts.signUp, "signup", false, "create the account before chatting")
	flags.DurationVar(&opts.timeout, "timeout", 2*time.Minute, "request timeout")
	flags.DurationVar(&opts.revealInterval, "reveal-interval", 30*time.Millisecond, "delay between revealed words, 0 prints replies at once")
	return cmd
}
