package engine

import (
	"bufio"
	"fmt"
	"io"
	"iter"
	"os"
	"strconv"
	"strings"
)

// Collection is an ordered set of pristine levels parsed from one pack.
// Every accessor hands out a copy, so a level can always be replayed.
type Collection struct {
	// Title is the first non-blank line before the first puzzle block, if any
	Title  string
	levels []*Level
}

// ParseCollection scans concatenated level blocks separated by non-puzzle lines
func ParseCollection(r io.Reader) (*Collection, error) {
	collection := &Collection{}
	var block []string
	seenPuzzle := false

	flush := func() error {
		if len(block) == 0 {
			return nil
		}
		level, err := ParseLevel(block)
		if err != nil {
			return fmt.Errorf("level %d: %w", len(collection.levels)+1, err)
		}
		collection.levels = append(collection.levels, level)
		block = nil
		return nil
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if IsPuzzleLine(line) {
			seenPuzzle = true
			block = append(block, line)
			continue
		}
		if !seenPuzzle && collection.Title == "" && !isLevelNumber(line) {
			collection.Title = strings.TrimSpace(strings.TrimLeft(line, ";"))
		}
		if err := flush(); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read levels: %w", err)
	}
	if err := flush(); err != nil {
		return nil, err
	}

	return collection, nil
}

// isLevelNumber matches numbering comments such as "; 12"
func isLevelNumber(line string) bool {
	_, err := strconv.Atoi(strings.TrimSpace(strings.TrimLeft(line, ";")))
	return err == nil
}

// NewCollection parses a pack held in memory
func NewCollection(text string) (*Collection, error) {
	return ParseCollection(strings.NewReader(text))
}

// LoadCollection parses the pack file at path
func LoadCollection(path string) (*Collection, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return ParseCollection(f)
}

// Len returns the number of levels
func (c *Collection) Len() int {
	return len(c.levels)
}

// Level returns a fresh copy of level i (0-based)
func (c *Collection) Level(i int) (*Level, error) {
	if i < 0 || i >= len(c.levels) {
		return nil, fmt.Errorf("%w: %d of %d", ErrLevelOutOfRange, i, len(c.levels))
	}
	return c.levels[i].Clone(), nil
}

// All yields a fresh copy of every level in file order
func (c *Collection) All() iter.Seq2[int, *Level] {
	return func(yield func(int, *Level) bool) {
		for i, level := range c.levels {
			if !yield(i, level.Clone()) {
				return
			}
		}
	}
}

// String renders every level, separated by blank lines
func (c *Collection) String() string {
	var b strings.Builder
	if c.Title != "" {
		b.WriteString("; " + c.Title + "\n\n")
	}
	for i, level := range c.levels {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "; %d\n%s\n", i+1, level.String())
	}
	return b.String()
}

// Cursor walks a collection forward, one level at a time
type Cursor struct {
	collection *Collection
	index      int
	current    *Level
}

// Cursor returns a cursor positioned before the first level
func (c *Collection) Cursor() *Cursor {
	return &Cursor{collection: c, index: -1}
}

// Next advances to the following level and returns a copy of it
func (cur *Cursor) Next() (*Level, bool) {
	if cur.index+1 >= cur.collection.Len() {
		return nil, false
	}
	cur.index++
	cur.current, _ = cur.collection.Level(cur.index)
	return cur.current, true
}

// Current returns the level most recently handed out, or nil before Next
func (cur *Cursor) Current() *Level {
	return cur.current
}

// Index returns the 0-based index of the current level, -1 before Next
func (cur *Cursor) Index() int {
	return cur.index
}

// Restart replaces the current level with a fresh copy
func (cur *Cursor) Restart() (*Level, bool) {
	if cur.index < 0 {
		return nil, false
	}
	cur.current, _ = cur.collection.Level(cur.index)
	return cur.current, true
}
