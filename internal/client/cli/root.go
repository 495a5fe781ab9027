package cli

import (
	"context"
	"fmt"
)

func (a *App) getStatus() string {
	if a.userName == "" {
		return ""
	}
	return fmt.Sprintf("(%s) ", a.userName)
}

// Root runs the interactive REPL until the user exits.
func (a *App) Root(ctx context.Context) error {
	fmt.Fprintf(a.out, "Welcome to credvault CLI, server %s (type 'help' for commands)\n", a.config.ServerURL)
	runREPL(ctx, a, a.getStatus, a.reader, a.out)
	return nil
}
