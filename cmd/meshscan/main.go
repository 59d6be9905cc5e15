package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/philipparndt/meshscan/version"
)

var rootCmd = &cobra.Command{
	Use:   "meshscan",
	Short: "Real-time mesh-to-area scanning engine",
	Long: `meshscan consumes a live stream of 3D surface-mesh fragments from a
depth-sensing device, classifies surface regions, measures floor area
incrementally, and reduces captured areas to compact boundary polygons.

Recorded streams (one JSON event per line) or directories of fragment
files stand in for the sensing device.`,
	Version: version.GetVersion(),
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
