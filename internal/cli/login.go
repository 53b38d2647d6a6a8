package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/pokrova/contentctl/internal/auth"
)

var loginToken string

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Acquire and store the repository credential",
	Long: `Authenticate against the hosting provider and store the resulting
bearer token in the workspace.

Without flags the OAuth device flow is used: a one-time code is shown and
the command polls until you approve it in the browser. A personal access
token can be supplied directly with --token instead.`,
	Args: cobra.NoArgs,
	Run:  runLogin,
}

func init() {
	loginCmd.Flags().StringVar(&loginToken, "token", "", "Store a personal access token directly")
}

func runLogin(cmd *cobra.Command, args []string) {
	c := initContext()
	ctx := context.Background()

	token := loginToken
	if token == "" {
		var err error
		token, err = auth.DeviceLogin(ctx, c.Config.ClientID, func(userCode, verificationURI string) {
			fmt.Printf("Open %s and enter the code: ", verificationURI)
			color.New(color.Bold).Println(userCode)
			fmt.Println("Waiting for approval...")
		})
		if err != nil {
			exitError("%v", err)
		}
	}

	store := auth.NewTokenStore(c.Config.TokenPath())

	login, err := auth.Validate(ctx, c.Config.APIBaseURL, token)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidToken) {
			store.Clear()
			exitError("token rejected; create a new one and log in again")
		}
		exitError("%v", err)
	}

	if err := store.Save(token); err != nil {
		exitError("%v", err)
	}

	color.New(color.FgGreen).Printf("Logged in as %s\n", login)
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Clear the stored credential",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		c := initContext()
		if err := auth.NewTokenStore(c.Config.TokenPath()).Clear(); err != nil {
			exitError("%v", err)
		}
		fmt.Println("Logged out.")
	},
}
