package main

import (
	"context"
	"log"
	"os"

	"github.com/rantsmith/backend/internal/app"
)

func main() {
	ctx := context.Background()
	if err := app.Run(ctx, os.Args[1:]); err != nil {
		log.Fatal(err)
	}
}
