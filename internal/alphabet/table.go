package alphabet

import (
	"bufio"
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

//go:embed data/alphabet.jsonl
var defaultData []byte

// Table is an immutable, ordered set of characters.
type Table struct {
	chars   []Character
	byGlyph map[string]int
	byPron  map[string]int
}

var defaultTable = sync.OnceValues(func() (*Table, error) {
	return Load(bytes.NewReader(defaultData))
})

// Default returns the built-in table. It is parsed once per process.
func Default() (*Table, error) {
	return defaultTable()
}

// LoadFromFile loads a table from a JSONL file with one character per line.
func LoadFromFile(path string) (*Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening alphabet file: %w", err)
	}
	defer file.Close()

	t, err := Load(file)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return t, nil
}

// Load parses JSONL character records. Blank lines and lines starting
// with '#' are ignored. The result is validated before it is returned.
func Load(r io.Reader) (*Table, error) {
	var chars []Character

	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		var c Character
		if err := json.Unmarshal([]byte(line), &c); err != nil {
			return nil, fmt.Errorf("parsing line %d: %w", lineNum, err)
		}
		chars = append(chars, c)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading alphabet: %w", err)
	}

	return New(chars)
}

// New builds a table from chars after validating them. Glyphs must be
// unique; pronunciations may repeat (the first entry wins on lookup).
func New(chars []Character) (*Table, error) {
	if len(chars) == 0 {
		return nil, fmt.Errorf("alphabet is empty")
	}

	t := &Table{
		chars:   make([]Character, len(chars)),
		byGlyph: make(map[string]int, len(chars)),
		byPron:  make(map[string]int, len(chars)),
	}
	copy(t.chars, chars)

	for i, c := range t.chars {
		if err := c.validate(); err != nil {
			return nil, err
		}
		if _, dup := t.byGlyph[c.Glyph]; dup {
			return nil, fmt.Errorf("duplicate glyph %s", c.Glyph)
		}
		t.byGlyph[c.Glyph] = i
		key := strings.ToLower(c.Pronunciation)
		if _, ok := t.byPron[key]; !ok {
			t.byPron[key] = i
		}
	}

	return t, nil
}

// Len returns the number of characters.
func (t *Table) Len() int {
	return len(t.chars)
}

// At returns the i-th character in table order.
func (t *Table) At(i int) Character {
	return t.chars[i]
}

// All returns a copy of every character in table order.
func (t *Table) All() []Character {
	out := make([]Character, len(t.chars))
	copy(out, t.chars)
	return out
}

// Filter returns the characters of the given category. The zero
// Category returns everything.
func (t *Table) Filter(cat Category) []Character {
	if cat == "" {
		return t.All()
	}
	var out []Character
	for _, c := range t.chars {
		if c.Category == cat {
			out = append(out, c)
		}
	}
	return out
}

// Count returns the number of characters in a category.
func (t *Table) Count(cat Category) int {
	if cat == "" {
		return len(t.chars)
	}
	n := 0
	for _, c := range t.chars {
		if c.Category == cat {
			n++
		}
	}
	return n
}

// Lookup finds a character by glyph, or failing that by pronunciation.
// Trailing tsheg marks are ignored so "ཀ་" finds "ཀ".
func (t *Table) Lookup(key string) (Character, bool) {
	key = strings.TrimSpace(key)
	if i, ok := t.byGlyph[key]; ok {
		return t.chars[i], true
	}
	if i, ok := t.byGlyph[strings.TrimSuffix(key, "་")]; ok {
		return t.chars[i], true
	}
	if i, ok := t.byGlyph[key+"་"]; ok {
		return t.chars[i], true
	}
	if i, ok := t.byPron[strings.ToLower(key)]; ok {
		return t.chars[i], true
	}
	return Character{}, false
}

// Index returns the position of the glyph in the table, or -1.
func (t *Table) Index(glyph string) int {
	if i, ok := t.byGlyph[glyph]; ok {
		return i
	}
	return -1
}
