package main

import (
	"context"
	"log"

	"github.com/fcl-labs/fcl-commerce/internal/app/api"
)

func main() {
	if err := api.Run(context.Background()); err != nil {
		log.Fatalf("commerce API failed: %v", err)
	}
}
