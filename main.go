package main

import (
	"log"
	"os"

	"eventhall-backend/cmd"

	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("failed to load .env: %v", err)
	}
	cmd.Execute()
}
