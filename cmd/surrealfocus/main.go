package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/surrealdb/surrealdb.go/contrib/surrealfocus/pkg/surrealfocus"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := surrealfocus.Main(ctx, os.Args[1:]); err != nil {
		log.Fatal(err)
	}
}
