package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/KyleBrandon/vzero-dashboard/pkg/server"
	_ "github.com/lib/pq"
)

func main() {
	// parse the command-line flags
	flag.Parse()

	config, err := server.InitializeServer()
	if err != nil {
		slog.Error("failed to initialize the server", "error", err)
		os.Exit(1)
	}

	// start the server
	config.RunServer()
}
