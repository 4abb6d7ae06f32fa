package cli

import (
	"flag"
	"fmt"
	"os"

	"github.com/jdebolt/fable-export/internal/config"
	"github.com/jdebolt/fable-export/internal/credstore"
	"github.com/jdebolt/fable-export/internal/entities"
)

// AuthCommand stores (or removes) Fable credentials in the encrypted
// local credential database.
type AuthCommand struct {
	UserID    string
	AuthToken string
	Email     string
	DBPath    string
	Delete    bool
}

func NewAuthCommand() *AuthCommand {
	return &AuthCommand{}
}

func (cmd *AuthCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("auth", flag.ExitOnError)

	fs.StringVar(&cmd.UserID, "user-id", "", "Fable user id (required)")
	fs.StringVar(&cmd.AuthToken, "token", "", "Fable auth token, with or without the JWT prefix")
	fs.StringVar(&cmd.Email, "email", "", "Account email, stored for reference")
	fs.StringVar(&cmd.DBPath, "db", config.DefaultCredentialsPath, "Path to the credential database")
	fs.BoolVar(&cmd.Delete, "delete", false, "Remove the stored credentials for this user id")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s auth -user-id <id> -token <token> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Store Fable API credentials encrypted on disk so later exports can run\n")
		fmt.Fprintf(os.Stderr, "without any flags or environment variables.\n\n")
		fmt.Fprintf(os.Stderr, "The user id and token can be captured from the browser: log into\n")
		fmt.Fprintf(os.Stderr, "fable.co, open devtools, and copy the Authorization header and user id\n")
		fmt.Fprintf(os.Stderr, "from any api.fable.co request.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.UserID == "" {
		return fmt.Errorf("required flag -user-id not provided")
	}
	if !cmd.Delete && cmd.AuthToken == "" {
		return fmt.Errorf("required flag -token not provided")
	}
	return nil
}

func (cmd *AuthCommand) Run() error {
	store, err := credstore.New(credstore.Config{DatabasePath: cmd.DBPath})
	if err != nil {
		return fmt.Errorf("failed to open credential store: %w", err)
	}
	defer store.Close()

	if cmd.Delete {
		if err := store.Delete(cmd.UserID); err != nil {
			return err
		}
		fmt.Printf("Removed credentials for user %s\n", cmd.UserID)
		return nil
	}

	cred := &entities.DecryptedCredential{
		UserID:    cmd.UserID,
		AuthToken: cmd.AuthToken,
		Email:     cmd.Email,
	}
	if err := store.Save(cred); err != nil {
		return err
	}

	fmt.Printf("Stored credentials for user %s in %s\n", cmd.UserID, cmd.DBPath)
	return nil
}
