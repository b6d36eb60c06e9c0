package engine

import (
	"context"
	"fmt"
	"slices"
	"strings"
)

// solverNode is one explored position in the search tree
type solverNode struct {
	level  *Level
	parent int
	dir    Direction
}

// Solve runs a breadth-first search for the shortest move sequence that
// solves the level. A state is the pusher position plus the box layout.
// maxStates <= 0 uses DefaultSolverStates.
func Solve(ctx context.Context, level *Level, maxStates int) ([]Direction, error) {
	if maxStates <= 0 {
		maxStates = DefaultSolverStates
	}
	if level.IsSolved() {
		return []Direction{}, nil
	}

	nodes := []solverNode{{level: level.Clone(), parent: -1}}
	seen := map[string]bool{stateKey(level): true}

	for head := 0; head < len(nodes); head++ {
		if head%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		current := nodes[head].level
		for _, d := range Directions {
			if !current.CanMove(d) {
				continue
			}
			next := current.Clone()
			next.MovePusher(d)

			key := stateKey(next)
			if seen[key] {
				continue
			}
			seen[key] = true

			nodes = append(nodes, solverNode{level: next, parent: head, dir: d})
			if next.IsSolved() {
				return unwind(nodes, len(nodes)-1), nil
			}
			if len(seen) > maxStates {
				return nil, fmt.Errorf("%w: explored %d states", ErrSearchLimit, len(seen))
			}
		}
		// Parents are only needed for unwinding; drop the grid.
		nodes[head].level = nil
	}

	return nil, ErrNoSolution
}

func unwind(nodes []solverNode, i int) []Direction {
	var path []Direction
	for ; nodes[i].parent >= 0; i = nodes[i].parent {
		path = append(path, nodes[i].dir)
	}
	slices.Reverse(path)
	return path
}

func stateKey(l *Level) string {
	var b strings.Builder
	p := l.Pusher()
	fmt.Fprintf(&b, "%d,%d", p.X, p.Y)
	for _, box := range l.Boxes() {
		fmt.Fprintf(&b, ";%d,%d", box.X, box.Y)
	}
	return b.String()
}
