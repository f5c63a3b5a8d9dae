package main

import (
	"context"
	"log"

	"github.com/mnln/accounts/internal/client/cli"
	"github.com/mnln/accounts/internal/client/config"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()
	app, err := cli.NewApp(ctx, cfg)

	if err != nil {
		log.Fatalf("%v", err)
	}

	app.Run(ctx)

}
