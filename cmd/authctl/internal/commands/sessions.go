package commands

import (
	"context"
	"fmt"
)

type SessionsCmd struct{}

func (s *SessionsCmd) Run(ctx context.Context, globals *Globals) error {
	env, err := openEnvironment(ctx, globals)
	if err != nil {
		return err
	}
	defer env.Close()

	stats, err := env.auth.SessionStats(ctx)
	if err != nil {
		return err
	}
	users, err := env.auth.UserCount(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(globals.Out, "users=%d sessions=%d active=%d\n", users, stats.Total, stats.Active)
	return nil
}

type PurgeSessionsCmd struct{}

func (p *PurgeSessionsCmd) Run(ctx context.Context, globals *Globals) error {
	env, err := openEnvironment(ctx, globals)
	if err != nil {
		return err
	}
	defer env.Close()

	purged, err := env.auth.PurgeExpiredSessions(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(globals.Out, "purged %d lapsed sessions\n", purged)
	return nil
}
