package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/philipparndt/meshscan/internal/config"
	"github.com/philipparndt/meshscan/internal/store"
)

var sessionsDBPath string

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List saved scan sessions from a measurement store",
	Args:  cobra.NoArgs,
	Run:   runSessions,
}

func init() {
	rootCmd.AddCommand(sessionsCmd)

	sessionsCmd.Flags().StringVar(&sessionsDBPath, "db", config.Load().DBPath, "SQLite database to read")
}

func runSessions(cmd *cobra.Command, args []string) {
	db, err := store.OpenSQLite(sessionsDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening store: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	ctx := context.Background()
	sessions, err := db.Sessions(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error listing sessions: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Saved Sessions")
	fmt.Println("==============")
	if len(sessions) == 0 {
		fmt.Println("(none)")
		return
	}

	for _, sess := range sessions {
		fmt.Printf("\n%s  %s\n", sess.SavedAt.Format("2006-01-02 15:04:05"), sess.ID)
		fmt.Printf("  Total: %.6f sq units in %d area(s)\n", sess.TotalArea, sess.AreaCount)

		areas, err := db.Areas(ctx, sess.ID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading areas: %v\n", err)
			os.Exit(1)
		}
		for _, area := range areas {
			fmt.Printf("  - %-20s %10.6f sq units, %d boundary vertices\n",
				area.Label, area.Area, len(area.Boundary))
		}
	}
}
