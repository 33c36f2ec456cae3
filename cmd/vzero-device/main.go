package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/KyleBrandon/vzero-dashboard/pkg/device"
	_ "github.com/lib/pq"
)

func main() {
	flag.Parse()

	ds, err := device.InitializeDevice()
	if err != nil {
		slog.Error("failed to initialize the device", "error", err)
		os.Exit(1)
	}

	ds.RunServer()
}
