package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/philipparndt/meshscan/internal/config"
	"github.com/philipparndt/meshscan/internal/replay"
	"github.com/philipparndt/meshscan/internal/server"
	"github.com/philipparndt/meshscan/pkg/scan"
)

var (
	serveWatchDir string
	serveDelayMs  int
)

var serveCmd = &cobra.Command{
	Use:   "serve [stream file]",
	Short: "Run the engine with a read-only HTTP projection",
	Long: `Serve runs the scanning engine against a fragment source and exposes the
live reading and session state over HTTP (GET /api/reading, /api/session).

The source is either a recorded stream file replayed with --delay pacing,
or a directory of fragment JSON files watched for changes via --watch.
Settings come from MESHSCAN_* environment variables.`,
	Args: cobra.MaximumNArgs(1),
	Run:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveWatchDir, "watch", "", "watch a directory of fragment JSON files instead of replaying")
	serveCmd.Flags().IntVar(&serveDelayMs, "delay", 100, "delay between replayed events in milliseconds")
}

func runServe(cmd *cobra.Command, args []string) {
	cfg := config.Load()

	engine := scan.NewEngine(scan.Config{
		RecomputeEvery: cfg.RecomputeEvery,
		MinCaptureArea: cfg.MinCaptureArea,
		UnitScale:      cfg.UnitScale,
	})
	if err := engine.StartScanning(); err != nil {
		log.Fatalf("start session: %v", err)
	}

	switch {
	case serveWatchDir != "":
		watcher, err := replay.NewDirWatcher(serveWatchDir, engine, 200*time.Millisecond)
		if err != nil {
			log.Fatalf("watch %s: %v", serveWatchDir, err)
		}
		defer watcher.Close()
		if err := watcher.Start(); err != nil {
			log.Fatalf("watch %s: %v", serveWatchDir, err)
		}
		log.Printf("Watching %s for fragment files", serveWatchDir)

	case len(args) == 1:
		file, err := os.Open(args[0])
		if err != nil {
			log.Fatalf("open stream: %v", err)
		}
		go func() {
			defer file.Close()
			delay := time.Duration(serveDelayMs) * time.Millisecond
			stats, err := replay.Play(context.Background(), file, engine, delay)
			if err != nil {
				log.Printf("replay stopped: %v", err)
				return
			}
			log.Printf("Replay finished: %d events, %d skipped", stats.Events, stats.Skipped)
		}()
		log.Printf("Replaying %s", args[0])

	default:
		fmt.Fprintln(os.Stderr, "Error: provide a stream file or --watch directory")
		os.Exit(1)
	}

	srv := server.New(engine)
	addr := fmt.Sprintf(":%s", cfg.Port)
	log.Printf("Starting meshscan projection on %s", addr)
	if err := srv.Listen(addr); err != nil {
		log.Fatalf("serve: %v", err)
	}
}
