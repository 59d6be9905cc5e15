package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/philipparndt/meshscan/pkg/geometry"
)

var hullCmd = &cobra.Command{
	Use:   "hull [points file]",
	Short: "Reduce a 2D point dump to its convex boundary polygon",
	Long: `Hull reads horizontal-plane points (one "x z" pair per line, blank lines
and # comments ignored) and prints the convex boundary polygon together
with the area it encloses.`,
	Args: cobra.ExactArgs(1),
	Run:  runHull,
}

func init() {
	rootCmd.AddCommand(hullCmd)
}

func runHull(cmd *cobra.Command, args []string) {
	filename := args[0]

	file, err := os.Open(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening points file: %v\n", err)
		os.Exit(1)
	}
	defer file.Close()

	points, skipped, err := readPoints(file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading points: %v\n", err)
		os.Exit(1)
	}

	hull := geometry.ConvexHull(points)

	fmt.Println("Boundary Polygon")
	fmt.Println("================")
	fmt.Printf("File: %s\n\n", filename)
	fmt.Printf("Points read:    %d\n", len(points))
	fmt.Printf("Lines skipped:  %d\n", skipped)
	fmt.Printf("Hull vertices:  %d\n\n", len(hull))

	for _, p := range hull {
		fmt.Printf("  (%.6f, %.6f)\n", p.X, p.Y)
	}
	fmt.Printf("\nEnclosed area: %.6f sq units\n", geometry.PolygonArea(hull))
}

// readPoints parses one "x z" pair per line; malformed lines are counted
// and skipped
func readPoints(r io.Reader) ([]geometry.Point2, int, error) {
	var points []geometry.Point2
	skipped := 0

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 2 {
			skipped++
			continue
		}
		x, errX := strconv.ParseFloat(fields[0], 64)
		y, errY := strconv.ParseFloat(fields[1], 64)
		if errX != nil || errY != nil {
			skipped++
			continue
		}
		points = append(points, geometry.Point2{X: x, Y: y})
	}

	if err := scanner.Err(); err != nil {
		return nil, skipped, fmt.Errorf("read points: %w", err)
	}
	return points, skipped, nil
}
