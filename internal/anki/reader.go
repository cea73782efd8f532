// Package anki reads and writes Anki .apkg decks for the alphabet.
package anki

import (
	"archive/zip"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite"
)

// fieldSeparator joins note fields in the flds column.
const fieldSeparator = "\x1f"

// Package is an opened .apkg file.
type Package struct {
	path    string
	tempDir string
	db      *sql.DB

	Models map[int64]*Model
	Decks  map[int64]*Deck
	Notes  []*Note
	Cards  []*Card
	Media  map[string]string // zip entry name -> media file name
}

// Model is an Anki note type.
type Model struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	Type      int        `json:"type"` // 0 = standard, 1 = cloze
	Mod       int64      `json:"mod"`
	USN       int        `json:"usn"`
	SortField int        `json:"sortf"`
	DeckID    int64      `json:"did"`
	Fields    []Field    `json:"flds"`
	Templates []Template `json:"tmpls"`
	CSS       string     `json:"css"`
	Tags      []string   `json:"tags"`
	Req       [][]any    `json:"req"`
}

// Field is one field of a note type.
type Field struct {
	Name   string `json:"name"`
	Ord    int    `json:"ord"`
	Sticky bool   `json:"sticky"`
	RTL    bool   `json:"rtl"`
	Font   string `json:"font"`
	Size   int    `json:"size"`
}

// Template is a card template of a note type.
type Template struct {
	Name  string `json:"name"`
	Ord   int    `json:"ord"`
	QFmt  string `json:"qfmt"`
	AFmt  string `json:"afmt"`
	BQFmt string `json:"bqfmt"`
	BAFmt string `json:"bafmt"`
}

// Deck is an Anki deck.
type Deck struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Desc string `json:"desc"`
	Mod  int64  `json:"mod"`
	USN  int    `json:"usn"`
	Dyn  int    `json:"dyn"`
	Conf int64  `json:"conf"`
}

// Note is an Anki note.
type Note struct {
	ID      int64
	GUID    string
	ModelID int64
	Mod     int64
	Tags    string
	Fields  []string
	SFLD    string
	CSum    int64
}

// Card is an Anki card. Scheduling columns are not loaded.
type Card struct {
	ID     int64
	NoteID int64
	DeckID int64
	Ord    int
	Due    int
}

// OpenPackage extracts and loads an .apkg file. Close removes the
// extracted files.
func OpenPackage(path string) (*Package, error) {
	pkg := &Package{
		path:   path,
		Models: make(map[int64]*Model),
		Decks:  make(map[int64]*Deck),
		Media:  make(map[string]string),
	}

	tempDir, err := os.MkdirTemp("", "kakha-anki-*")
	if err != nil {
		return nil, fmt.Errorf("creating temp dir: %w", err)
	}
	pkg.tempDir = tempDir

	if err := pkg.load(); err != nil {
		pkg.Close()
		return nil, err
	}
	return pkg, nil
}

func (p *Package) load() error {
	if err := p.extract(); err != nil {
		return err
	}

	dbPath := filepath.Join(p.tempDir, "collection.anki21")
	if _, err := os.Stat(dbPath); err != nil {
		dbPath = filepath.Join(p.tempDir, "collection.anki2")
	}
	if _, err := os.Stat(dbPath); err != nil {
		return fmt.Errorf("package has no collection: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	p.db = db

	if err := p.loadCollection(); err != nil {
		return err
	}
	if err := p.loadNotes(); err != nil {
		return err
	}
	if err := p.loadCards(); err != nil {
		return err
	}
	return p.loadMedia()
}

func (p *Package) extract() error {
	r, err := zip.OpenReader(p.path)
	if err != nil {
		return fmt.Errorf("opening zip: %w", err)
	}
	defer r.Close()

	root := filepath.Clean(p.tempDir) + string(os.PathSeparator)
	for _, f := range r.File {
		fpath := filepath.Join(p.tempDir, f.Name)
		if !strings.HasPrefix(fpath, root) {
			return fmt.Errorf("illegal file path: %s", f.Name)
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(fpath, 0o755); err != nil {
				return err
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(fpath), 0o755); err != nil {
			return err
		}
		if err := extractFile(f, fpath); err != nil {
			return fmt.Errorf("extracting %s: %w", f.Name, err)
		}
	}
	return nil
}

func extractFile(f *zip.File, dest string) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func (p *Package) loadCollection() error {
	var models, decks string
	if err := p.db.QueryRow("SELECT models, decks FROM col").Scan(&models, &decks); err != nil {
		return fmt.Errorf("reading collection: %w", err)
	}

	var modelsMap map[string]json.RawMessage
	if err := json.Unmarshal([]byte(models), &modelsMap); err != nil {
		return fmt.Errorf("parsing models: %w", err)
	}
	for _, raw := range modelsMap {
		var m Model
		if err := json.Unmarshal(raw, &m); err != nil {
			continue // Skip malformed models
		}
		p.Models[m.ID] = &m
	}

	var decksMap map[string]json.RawMessage
	if err := json.Unmarshal([]byte(decks), &decksMap); err != nil {
		return fmt.Errorf("parsing decks: %w", err)
	}
	for _, raw := range decksMap {
		var d Deck
		if err := json.Unmarshal(raw, &d); err != nil {
			continue
		}
		p.Decks[d.ID] = &d
	}
	return nil
}

func (p *Package) loadNotes() error {
	rows, err := p.db.Query("SELECT id, guid, mid, mod, tags, flds, sfld, csum FROM notes ORDER BY id")
	if err != nil {
		return fmt.Errorf("querying notes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			n    Note
			flds string
		)
		if err := rows.Scan(&n.ID, &n.GUID, &n.ModelID, &n.Mod, &n.Tags, &flds, &n.SFLD, &n.CSum); err != nil {
			return fmt.Errorf("scanning note: %w", err)
		}
		n.Fields = strings.Split(flds, fieldSeparator)
		p.Notes = append(p.Notes, &n)
	}
	return rows.Err()
}

func (p *Package) loadCards() error {
	rows, err := p.db.Query("SELECT id, nid, did, ord, due FROM cards ORDER BY id")
	if err != nil {
		return fmt.Errorf("querying cards: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var c Card
		if err := rows.Scan(&c.ID, &c.NoteID, &c.DeckID, &c.Ord, &c.Due); err != nil {
			return fmt.Errorf("scanning card: %w", err)
		}
		p.Cards = append(p.Cards, &c)
	}
	return rows.Err()
}

func (p *Package) loadMedia() error {
	data, err := os.ReadFile(filepath.Join(p.tempDir, "media"))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading media index: %w", err)
	}
	if err := json.Unmarshal(data, &p.Media); err != nil {
		return fmt.Errorf("parsing media index: %w", err)
	}
	return nil
}

// FieldValue returns the named field of a note, or "" if the note's
// model has no such field.
func (p *Package) FieldValue(note *Note, name string) string {
	m := p.Models[note.ModelID]
	if m == nil {
		return ""
	}
	for _, f := range m.Fields {
		if strings.EqualFold(f.Name, name) && f.Ord < len(note.Fields) {
			return note.Fields[f.Ord]
		}
	}
	return ""
}

// MediaFiles returns the media file names in sorted order.
func (p *Package) MediaFiles() []string {
	names := make([]string, 0, len(p.Media))
	for _, name := range p.Media {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Close cleans up resources.
func (p *Package) Close() error {
	var err error
	if p.db != nil {
		err = p.db.Close()
	}
	if p.tempDir != "" {
		err = errors.Join(err, os.RemoveAll(p.tempDir))
	}
	return err
}

// Summary describes the package contents.
func (p *Package) Summary() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Anki Package: %s\n", p.path))
	sb.WriteString(fmt.Sprintf("  Decks: %d\n", len(p.Decks)))
	for _, name := range sortedNames(p.Decks, func(d *Deck) string { return d.Name }) {
		sb.WriteString(fmt.Sprintf("    - %s\n", name))
	}
	sb.WriteString(fmt.Sprintf("  Note Types: %d\n", len(p.Models)))
	for _, m := range p.Models {
		sb.WriteString(fmt.Sprintf("    - %s (%d fields, %d templates)\n", m.Name, len(m.Fields), len(m.Templates)))
	}
	sb.WriteString(fmt.Sprintf("  Notes: %d\n", len(p.Notes)))
	sb.WriteString(fmt.Sprintf("  Cards: %d\n", len(p.Cards)))
	sb.WriteString(fmt.Sprintf("  Media: %d\n", len(p.Media)))

	return sb.String()
}

func sortedNames[T any](m map[int64]T, name func(T) string) []string {
	out := make([]string, 0, len(m))
	for _, v := range m {
		out = append(out, name(v))
	}
	sort.Strings(out)
	return out
}
