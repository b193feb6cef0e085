package commands

import (
	"context"
	"fmt"

	"github.com/clarkmarket/marketctl/internal/api"
)

type LoginCmd struct {
	clientFlags
	Email    string `help:"Account email" required:""`
	Password string `help:"Account password" env:"MARKETCTL_PASSWORD" required:""`
}

func (l *LoginCmd) Run(ctx context.Context, globals *Globals) error {
	_, manager, err := l.setup()
	if err != nil {
		return err
	}

	user, err := manager.LoginWithCredentials(ctx, l.Email, l.Password)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	fmt.Printf("Logged in as %s <%s>\n", user.Username, user.Email)
	return nil
}

type LogoutCmd struct {
	clientFlags
}

func (l *LogoutCmd) Run(ctx context.Context, globals *Globals) error {
	_, manager, err := l.setup()
	if err != nil {
		return err
	}

	manager.Logout()

	fmt.Println("Logged out")
	return nil
}

type RegisterCmd struct {
	clientFlags
	Username string `help:"Account username" required:""`
	Email    string `help:"Account email" required:""`
	Password string `help:"Account password" env:"MARKETCTL_PASSWORD" required:""`
	Role     string `help:"Requested role"`
}

func (r *RegisterCmd) Run(ctx context.Context, globals *Globals) error {
	client, _, err := r.setup()
	if err != nil {
		return err
	}

	req := api.RegisterRequest{
		Username: r.Username,
		Email:    r.Email,
		Password: r.Password,
		Role:     r.Role,
	}

	if _, err := client.Register(ctx, req); err != nil {
		return fmt.Errorf("registration failed: %w", err)
	}

	fmt.Printf("Registered %s, you can now log in\n", r.Email)
	return nil
}
