package main

import (
	"context"
	"os"

	"github.com/dmitrijs2005/credvault/internal/client/cli"
)

func main() {

	ctx := context.Background()

	if err := cli.NewRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}

}
