package commands

import (
	"context"
	"fmt"

	"github.com/spec-kit/lottery-auth/internal/domain"
)

type RegisterCmd struct {
	Username string `arg:"" help:"Account name"`
	Password string `help:"Account password" required:"" env:"AUTHCTL_PASSWORD"`
	Role     string `help:"Account role" enum:"user,moderator,admin" default:"user"`
}

func (r *RegisterCmd) Run(ctx context.Context, globals *Globals) error {
	env, err := openEnvironment(ctx, globals)
	if err != nil {
		return err
	}
	defer env.Close()

	user, err := env.auth.Register(ctx, r.Username, r.Password, domain.Role(r.Role))
	if err != nil {
		return fmt.Errorf("register %s: %w", r.Username, err)
	}
	fmt.Fprintf(globals.Out, "registered %s (%s) id=%s\n", user.Username, user.Role, user.ID)
	return nil
}
