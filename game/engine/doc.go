// Package engine provides the core puzzle logic for the Sokoban server.
//
// The engine package implements:
//   - Level text parsing into a two-layer tile grid (terrain + occupant)
//   - The push rule: one move step, box pushes, wall and box collisions
//   - Level collections with replayable, index-addressed access
//   - A breadth-first solver for hints and pack analysis
//   - GameEngine, a play session over one collection
//
// Level Format:
//
// A pack is plain text. Any line with at least two '#' is a puzzle row;
// any other line (blank, title, comment) separates levels.
//
//	#  wall           @ p  pusher          + P  pusher on goal
//	$ b  box          * B  box on goal     .    goal
//	- _  floor inside the walls, padding before the first wall
//
// Usage:
//
//	pack, err := engine.LoadCollection("levels/microban.txt")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	level, _ := pack.Level(0)
//	if pos, ok := level.MovePusher(engine.Right); ok {
//		fmt.Println("pusher now at", pos)
//	}
//	fmt.Println(level.IsSolved())
//
// Rules:
//
// The pusher steps onto an empty tile, or pushes a single box one tile
// further if the tile behind it is empty. A box against a wall or another box
// cannot move. Blocked moves change nothing. Floor and goal terrain are both
// walkable; a level is solved when every goal holds a box.
package engine
