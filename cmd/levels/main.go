// Command levels checks, summarizes and solves Sokoban level pack files.
//
// Subcommands:
//   - validate FILE...               parse each pack and report the first error
//   - analyze FILE...                per-level size, box and goal counts
//   - solve [--max-states N] FILE [LEVEL]  shortest solution in LURD notation
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/urfave/cli/v3"
	"github.com/wricardo/mcp-training/sokoban/game/engine"
)

// ValidationResult captures the outcome of validating a single pack file.
type ValidationResult struct {
	File   string
	Title  string
	Levels int
	Err    error
}

// Valid reports whether the pack parsed cleanly
func (r ValidationResult) Valid() bool {
	return r.Err == nil
}

// LevelReport summarizes one level of a pack.
type LevelReport struct {
	Number       int
	Width        int
	Height       int
	Boxes        int
	Goals        int
	BoxesOnGoals int
	Solved       bool
}

var errInvalidPacks = errors.New("one or more packs are invalid")

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:  "levels",
		Usage: "inspect Sokoban level packs",
		Commands: []*cli.Command{
			{
				Name:      "validate",
				Usage:     "parse packs and report errors",
				ArgsUsage: "FILE...",
				Action:    runValidate,
			},
			{
				Name:      "analyze",
				Usage:     "print per-level statistics",
				ArgsUsage: "FILE...",
				Action:    runAnalyze,
			},
			{
				Name:      "solve",
				Usage:     "print the shortest solution of a level",
				ArgsUsage: "FILE [LEVEL]",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "max-states",
						Value: engine.DefaultSolverStates,
						Usage: "give up after exploring this many positions",
					},
				},
				Action: runSolve,
			},
		},
	}
}

func runValidate(ctx context.Context, cmd *cli.Command) error {
	files := cmd.Args().Slice()
	if len(files) == 0 {
		return fmt.Errorf("validate needs at least one FILE")
	}
	out := cmd.Root().Writer

	failed := 0
	for _, file := range files {
		result := validatePack(file)
		if result.Valid() {
			fmt.Fprintf(out, "✅ %s: %d levels", result.File, result.Levels)
			if result.Title != "" {
				fmt.Fprintf(out, " (%s)", result.Title)
			}
			fmt.Fprintln(out)
			continue
		}
		failed++
		fmt.Fprintf(out, "❌ %s: %v\n", result.File, result.Err)
	}

	fmt.Fprintf(out, "\n%d of %d packs valid\n", len(files)-failed, len(files))
	if failed > 0 {
		return errInvalidPacks
	}
	return nil
}

// validatePack loads and parses one pack file.
func validatePack(path string) ValidationResult {
	result := ValidationResult{File: filepath.Base(path)}

	pack, err := engine.LoadCollection(path)
	if err != nil {
		result.Err = err
		return result
	}
	if pack.Len() == 0 {
		result.Err = engine.ErrEmptyCollection
		return result
	}

	result.Title = pack.Title
	result.Levels = pack.Len()
	return result
}

func runAnalyze(ctx context.Context, cmd *cli.Command) error {
	files := cmd.Args().Slice()
	if len(files) == 0 {
		return fmt.Errorf("analyze needs at least one FILE")
	}
	out := cmd.Root().Writer

	for _, file := range files {
		pack, err := engine.LoadCollection(file)
		if err != nil {
			return fmt.Errorf("%s: %w", file, err)
		}

		fmt.Fprintf(out, "\n=== Analyzing %s ===\n", filepath.Base(file))
		if pack.Title != "" {
			fmt.Fprintf(out, "Title: %s\n", pack.Title)
		}
		fmt.Fprintf(out, "Levels: %d\n", pack.Len())

		for _, report := range analyzePack(pack) {
			fmt.Fprintln(out, report)
		}
	}
	return nil
}

// analyzePack reports every level of pack in order.
func analyzePack(pack *engine.Collection) []LevelReport {
	reports := make([]LevelReport, 0, pack.Len())
	for i, level := range pack.All() {
		reports = append(reports, analyzeLevel(i+1, level))
	}
	return reports
}

func analyzeLevel(number int, level *engine.Level) LevelReport {
	report := LevelReport{
		Number: number,
		Width:  level.Width(),
		Height: level.Height(),
		Goals:  len(level.Goals()),
		Solved: level.IsSolved(),
	}
	for _, box := range level.Boxes() {
		report.Boxes++
		if tile, ok := level.Tile(box); ok && tile.Kind == engine.Goal {
			report.BoxesOnGoals++
		}
	}
	return report
}

func (r LevelReport) String() string {
	s := fmt.Sprintf("  Level %d: %dx%d, %d boxes, %d goals, %d already placed",
		r.Number, r.Width, r.Height, r.Boxes, r.Goals, r.BoxesOnGoals)
	if r.Boxes != r.Goals {
		s += " ⚠️  box and goal counts differ"
	}
	if r.Solved {
		s += " (solved as given)"
	}
	return s
}

func runSolve(ctx context.Context, cmd *cli.Command) error {
	args := cmd.Args()
	if args.Len() < 1 || args.Len() > 2 {
		return fmt.Errorf("solve needs FILE and an optional LEVEL")
	}

	number := 1
	if args.Len() == 2 {
		n, err := strconv.Atoi(args.Get(1))
		if err != nil {
			return fmt.Errorf("invalid level number %q", args.Get(1))
		}
		number = n
	}

	pack, err := engine.LoadCollection(args.Get(0))
	if err != nil {
		return err
	}

	solution, err := solveLevel(ctx, pack, number, int(cmd.Int("max-states")))
	if err != nil {
		return err
	}

	writeSolution(cmd.Root().Writer, number, solution)
	return nil
}

// solveLevel solves the 1-based level number of pack.
func solveLevel(ctx context.Context, pack *engine.Collection, number, maxStates int) ([]engine.Direction, error) {
	level, err := pack.Level(number - 1)
	if err != nil {
		return nil, err
	}
	return engine.Solve(ctx, level, maxStates)
}

func writeSolution(w io.Writer, number int, solution []engine.Direction) {
	if len(solution) == 0 {
		fmt.Fprintf(w, "Level %d is already solved\n", number)
		return
	}
	fmt.Fprintf(w, "Level %d: %d moves\n%s\n", number, len(solution), engine.FormatMoves(solution))
}
