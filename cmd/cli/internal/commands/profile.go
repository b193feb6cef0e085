package commands

import (
	"context"
	"fmt"
)

type WhoamiCmd struct {
	clientFlags
}

func (w *WhoamiCmd) Run(ctx context.Context, globals *Globals) error {
	_, manager, err := w.hydrated(ctx)
	if err != nil {
		return err
	}

	user, err := manager.FetchProfile(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch profile: %w", err)
	}

	fmt.Printf("ID:       %s\n", user.ID)
	fmt.Printf("Username: %s\n", user.Username)
	fmt.Printf("Email:    %s\n", user.Email)
	fmt.Printf("Role:     %s\n", user.Role)
	return nil
}

type ProfileCmd struct {
	Update UpdateProfileCmd `cmd:"" help:"Update profile fields"`
}

type UpdateProfileCmd struct {
	clientFlags
	Username string `help:"New username"`
	Email    string `help:"New email"`
}

func (u *UpdateProfileCmd) Run(ctx context.Context, globals *Globals) error {
	_, manager, err := u.hydrated(ctx)
	if err != nil {
		return err
	}

	patch := map[string]any{}
	if u.Username != "" {
		patch["username"] = u.Username
	}
	if u.Email != "" {
		patch["email"] = u.Email
	}
	if len(patch) == 0 {
		return fmt.Errorf("nothing to update")
	}

	user, err := manager.UpdateProfile(ctx, patch)
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}

	fmt.Printf("Profile updated: %s <%s>\n", user.Username, user.Email)
	return nil
}
