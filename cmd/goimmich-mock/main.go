package main

// goimmich-mock runs a small Immich-compatible server backed by SQLite.
// It exists for local development and manual testing of the uploader; it
// answers the ping endpoint and accepts multipart asset uploads, turning
// repeats of the same asset into 409 responses.

import (
	"flag"
	"fmt"
	"os"

	"github.com/ascheel/goimmich/internal/mockserver"
)

func main() {
	var (
		listen  string
		saveDir string
		dbFile  string
		apiKey  string
	)
	flag.StringVar(&listen, "listen", "localhost:2283", "Address to listen on")
	flag.StringVar(&saveDir, "savedir", "./assets", "Directory to store uploaded files")
	flag.StringVar(&dbFile, "db", "./goimmich-mock.db", "SQLite database file")
	flag.StringVar(&apiKey, "key", "dev", "API key clients must send")
	flag.Parse()

	if err := os.MkdirAll(saveDir, 0755); err != nil {
		fmt.Printf("Error creating save directory: %s\n", err.Error())
		os.Exit(1)
	}

	store, err := mockserver.OpenStore(dbFile)
	if err != nil {
		fmt.Printf("Error opening database: %s\n", err.Error())
		os.Exit(1)
	}
	defer store.Close()

	server := mockserver.New(store, apiKey, saveDir)
	fmt.Printf("Mock Immich server listening on %s (api key %q)\n", listen, apiKey)
	if err := server.Router().Run(listen); err != nil {
		fmt.Printf("Server error: %s\n", err.Error())
		os.Exit(1)
	}
}
