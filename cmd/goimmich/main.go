package main

// goimmich uploads photos and videos from a directory tree to an
// Immich-compatible server, and manages the stored server/API-key profiles
// it uploads with.

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var Version = "dev"

// Flags shared by the subcommands. Precedence over config-file values
// follows the profile store: explicit --server/--key beat --user, which
// beats the current profile.
var (
	flagConfig     string
	flagServer     string
	flagKey        string
	flagUser       string
	flagConcurrent int
)

func main() {
	// A .env next to the binary may supply GOIMMICH_SERVER / GOIMMICH_API_KEY.
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:           "goimmich",
		Short:         "Upload media to an Immich server",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flagConfig, "config", "", "path to config file (default ~/.goimmich.yml)")
	root.PersistentFlags().StringVarP(&flagServer, "server", "s", "", "server URL, e.g. http://192.168.1.10:2283 (overrides config)")
	root.PersistentFlags().StringVarP(&flagKey, "key", "k", "", "API key (overrides config)")
	root.PersistentFlags().StringVarP(&flagUser, "user", "u", "", "use a named user from the config")
	root.PersistentFlags().IntVarP(&flagConcurrent, "concurrent", "c", 10, "number of concurrent uploads")

	root.AddCommand(newUploadCmd())
	root.AddCommand(newUserCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err.Error())
		os.Exit(1)
	}
}

// envDefault fills a flag value from the environment when the flag was not
// given on the command line.
func envDefault(flagValue, envName string) string {
	if flagValue != "" {
		return flagValue
	}
	return os.Getenv(envName)
}
