package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roamchat/roam/internal/auth"
	"github.com/roamchat/roam/internal/models"
)

var signupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Create an account and sign in",
	Long: `Create a Roam account and sign in.

Prompts for a display name, email and password. The session token is
stored locally so subsequent commands stay signed in.

Examples:
  roam signup`,
	Args: cobra.NoArgs,
	RunE: runSignup,
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to an existing account",
	Args:  cobra.NoArgs,
	RunE:  runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and discard the stored session token",
	Args:  cobra.NoArgs,
	RunE:  runLogout,
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in account",
	Args:  cobra.NoArgs,
	RunE:  runWhoami,
}

func runSignup(cmd *cobra.Command, args []string) error {
	name, err := promptLine("Name: ")
	if err != nil {
		return err
	}
	email, err := promptLine("Email: ")
	if err != nil {
		return err
	}
	password, err := promptPassword("Password: ")
	if err != nil {
		return err
	}

	if err := authSession.SignUp(cmd.Context(), email, password, name); err != nil {
		return err
	}

	fmt.Printf("Welcome to Roam, %s!\n", name)
	return nil
}

func runLogin(cmd *cobra.Command, args []string) error {
	email, err := promptLine("Email: ")
	if err != nil {
		return err
	}
	password, err := promptPassword("Password: ")
	if err != nil {
		return err
	}

	if err := authSession.SignIn(cmd.Context(), email, password); err != nil {
		return err
	}

	user, _ := authSession.User()
	fmt.Printf("Signed in as %s\n", user.Email)
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	if _, ok := authSession.User(); !ok {
		fmt.Println("Not signed in.")
		return nil
	}

	if err := authSession.SignOut(cmd.Context()); err != nil {
		return err
	}

	fmt.Println("Signed out.")
	return nil
}

func runWhoami(cmd *cobra.Command, args []string) error {
	snap := authSession.Current()
	if snap.State != auth.StateAuthenticated {
		fmt.Println("Not signed in. Use 'roam login' or 'roam signup'.")
		return nil
	}

	fmt.Printf("%s <%s>\n", snap.User.Name, snap.User.Email)
	if verbose {
		fmt.Printf("id: %s\n", models.MustRecordIDString(snap.User.ID))
	}
	return nil
}
