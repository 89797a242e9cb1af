package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ascheel/goimmich/internal/uploadengine"
)

func newUploadCmd() *cobra.Command {
	var (
		recursive bool
		exifDates bool
	)

	cmd := &cobra.Command{
		Use:   "upload <directory>",
		Short: "Upload photos and videos from a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUpload(cmd.Context(), args[0], recursive, exifDates)
		},
	}
	cmd.Flags().BoolVarP(&recursive, "recursive", "r", true, "scan subdirectories recursively")
	cmd.Flags().BoolVar(&exifDates, "exif-dates", false, "read capture dates from EXIF metadata (requires exiftool)")
	return cmd
}

func runUpload(ctx context.Context, directory string, recursive, exifDates bool) error {
	// A bad limit fails before any network or filesystem work happens.
	if flagConcurrent < 1 {
		return fmt.Errorf("%w (got %d)", uploadengine.ErrInvalidConcurrency, flagConcurrent)
	}

	config, err := uploadengine.LoadConfig(flagConfig)
	if err != nil {
		return err
	}

	server := envDefault(flagServer, "GOIMMICH_SERVER")
	key := envDefault(flagKey, "GOIMMICH_API_KEY")
	creds, err := config.Resolve(server, key, flagUser)
	if err != nil {
		if errors.Is(err, uploadengine.ErrNoCredentials) {
			return fmt.Errorf("%w; use 'goimmich user add' to configure one, or pass --server and --key", err)
		}
		return err
	}

	client := uploadengine.NewClient(creds.Server, creds.APIKey)

	// Connectivity is a precondition: nothing is scanned or read before the
	// server answers the ping.
	if err := client.Ping(ctx); err != nil {
		return fmt.Errorf("unable to connect to server %s: %w", creds.Server, err)
	}

	fmt.Printf("Scanning directory: %s\n", directory)
	files, err := uploadengine.ScanMedia(directory, recursive)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Printf("No supported media files found in %s\n", directory)
		return nil
	}

	engine := uploadengine.NewEngine(client)
	if exifDates {
		exif, err := uploadengine.NewExiftool()
		if err != nil {
			return fmt.Errorf("--exif-dates: %w", err)
		}
		defer exif.Close()
		engine.Exif = exif
	}

	fmt.Printf("Found %d files to upload. Starting upload with concurrency %d...\n", len(files), flagConcurrent)
	progress := uploadengine.NewProgress(len(files), os.Stdout)

	// Per-file failures are reported by the progress lines and do not change
	// the exit status; only a bad concurrency limit fails here.
	return engine.UploadAll(ctx, files, flagConcurrent, progress)
}
