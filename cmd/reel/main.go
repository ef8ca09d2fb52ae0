package main

import (
	"log"

	"github.com/MrSnakeDoc/reel/internal/app"
)

func main() {
	a, err := app.New()
	if err != nil {
		log.Fatalf("❌ reel failed to start: %v", err)
	}
	if err := a.Run(); err != nil {
		log.Fatalf("❌ reel stopped with error: %v", err)
	}
}
