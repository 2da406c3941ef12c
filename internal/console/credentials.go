package console

import (
	"context"
	"strings"

	"github.com/hpungsan/delgists/internal/config"
	"github.com/hpungsan/delgists/internal/errors"
)

// PromptCredentials asks for a username and a secret. The secret is read
// without echo when input is a terminal.
func (c *Console) PromptCredentials(ctx context.Context) (config.Credentials, error) {
	c.Println("You didn't set your GitHub credentials yet!")

	user, err := c.ReadLine(ctx, "Username: ")
	if err != nil {
		return config.Credentials{}, err
	}
	secret, err := c.ReadSecret(ctx, "Password or token: ")
	if err != nil {
		return config.Credentials{}, err
	}

	creds := config.Credentials{User: strings.TrimSpace(user), Secret: strings.TrimSpace(secret)}
	if !creds.Valid() {
		return config.Credentials{}, errors.NewInvalidRequest("username and password or token are required")
	}
	return creds, nil
}
