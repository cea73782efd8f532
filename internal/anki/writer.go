package anki

import (
	"archive/zip"
	"crypto/sha1"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/f3rmion/kakha/internal/alphabet"
)

// DeckFields are the fields of the exported note type, in order.
var DeckFields = []string{
	"Letter",
	"Sound",
	"Kind",
	"Example",
	"Meaning",
	"Audio",
	"Picture",
}

const (
	defaultDeckName = "Tibetan Alphabet"
	modelName       = "Kakha Letter"

	frontTemplate = `<div class="letter">{{Letter}}</div>`
	backTemplate  = `{{FrontSide}}<hr id="answer">
<div class="sound">{{Sound}}</div>
<div class="example">{{Example}}</div>
<div class="meaning">{{Meaning}}</div>
{{Picture}}
{{Audio}}`

	deckCSS = `.card { font-family: sans-serif; text-align: center; }
.letter { font-size: 96px; }
.sound { font-size: 32px; color: #c0392b; }
.example { font-size: 40px; }
.meaning { font-size: 20px; color: #555; }`
)

// ExportOptions configures Export.
type ExportOptions struct {
	DeckName  string
	AssetsDir string // Root for audio and image paths; media is skipped when empty
	Language  string // Meaning language: en, fr or zh
	Now       func() time.Time
}

// ExportResult summarizes an export.
type ExportResult struct {
	Notes        int
	Media        int
	MissingMedia []string
}

// Export writes one note (and one card) per character to an .apkg file.
// Audio and picture files referenced by the characters are bundled when
// they exist under AssetsDir.
func Export(outputPath string, chars []alphabet.Character, opts ExportOptions) (*ExportResult, error) {
	if len(chars) == 0 {
		return nil, fmt.Errorf("nothing to export")
	}
	if opts.DeckName == "" {
		opts.DeckName = defaultDeckName
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	tempDir, err := os.MkdirTemp("", "kakha-export-*")
	if err != nil {
		return nil, fmt.Errorf("creating temp dir: %w", err)
	}
	defer os.RemoveAll(tempDir)

	e := &exporter{
		opts:   opts,
		now:    opts.Now(),
		media:  make(map[string]string),
		result: &ExportResult{},
	}

	dbPath := filepath.Join(tempDir, "collection.anki2")
	if err := e.writeCollection(dbPath, chars); err != nil {
		return nil, err
	}
	if err := e.writeZip(outputPath, dbPath); err != nil {
		return nil, err
	}
	return e.result, nil
}

type exporter struct {
	opts   ExportOptions
	now    time.Time
	media  map[string]string // media file name -> source path
	order  []string
	result *ExportResult
}

const schema = `
CREATE TABLE col (
	id integer primary key, crt integer not null, mod integer not null,
	scm integer not null, ver integer not null, dty integer not null,
	usn integer not null, ls integer not null, conf text not null,
	models text not null, decks text not null, dconf text not null, tags text not null
);
CREATE TABLE notes (
	id integer primary key, guid text not null, mid integer not null,
	mod integer not null, usn integer not null, tags text not null,
	flds text not null, sfld integer not null, csum integer not null,
	flags integer not null, data text not null
);
CREATE TABLE cards (
	id integer primary key, nid integer not null, did integer not null,
	ord integer not null, mod integer not null, usn integer not null,
	type integer not null, queue integer not null, due integer not null,
	ivl integer not null, factor integer not null, reps integer not null,
	lapses integer not null, left integer not null, odue integer not null,
	odid integer not null, flags integer not null, data text not null
);
CREATE TABLE revlog (
	id integer primary key, cid integer not null, usn integer not null,
	ease integer not null, ivl integer not null, lastIvl integer not null,
	factor integer not null, time integer not null, type integer not null
);
CREATE TABLE graves (usn integer not null, oid integer not null, type integer not null);
`

func (e *exporter) writeCollection(dbPath string, chars []alphabet.Character) error {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}

	base := e.now.UnixMilli()
	deckID := base
	modelID := base + 1

	models, decks, err := e.collectionJSON(modelID, deckID)
	if err != nil {
		return err
	}

	sec := e.now.Unix()
	if _, err := db.Exec(
		`INSERT INTO col VALUES (1, ?, ?, ?, 11, 0, 0, 0, '{}', ?, ?, '{}', '{}')`,
		sec, base, base, models, decks,
	); err != nil {
		return fmt.Errorf("writing collection: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for i, c := range chars {
		fields := e.noteFields(c)
		noteID := base + 100 + int64(i)

		if _, err := tx.Exec(
			`INSERT INTO notes VALUES (?, ?, ?, ?, -1, ?, ?, ?, ?, 0, '')`,
			noteID, guid(c.Glyph), modelID, sec, " "+string(c.Category)+" ",
			strings.Join(fields, fieldSeparator), fields[0], checksum(fields[0]),
		); err != nil {
			return fmt.Errorf("writing note %s: %w", c.Glyph, err)
		}
		if _, err := tx.Exec(
			`INSERT INTO cards VALUES (?, ?, ?, 0, ?, -1, 0, 0, ?, 0, 0, 0, 0, 0, 0, 0, 0, '')`,
			noteID, noteID, deckID, sec, i+1,
		); err != nil {
			return fmt.Errorf("writing card %s: %w", c.Glyph, err)
		}
		e.result.Notes++
	}

	return tx.Commit()
}

func (e *exporter) collectionJSON(modelID, deckID int64) (string, string, error) {
	fields := make([]Field, len(DeckFields))
	for i, name := range DeckFields {
		fields[i] = Field{Name: name, Ord: i, Font: "Arial", Size: 20}
	}

	model := Model{
		ID:        modelID,
		Name:      modelName,
		Mod:       e.now.Unix(),
		USN:       -1,
		DeckID:    deckID,
		Fields:    fields,
		Templates: []Template{{Name: "Recognize", QFmt: frontTemplate, AFmt: backTemplate}},
		CSS:       deckCSS,
		Tags:      []string{},
		Req:       [][]any{{0, "all", []int{0}}},
	}
	deck := Deck{ID: deckID, Name: e.opts.DeckName, Mod: e.now.Unix(), USN: -1, Conf: 1}

	models, err := json.Marshal(map[string]Model{strconv.FormatInt(modelID, 10): model})
	if err != nil {
		return "", "", fmt.Errorf("marshaling models: %w", err)
	}
	decks, err := json.Marshal(map[string]Deck{strconv.FormatInt(deckID, 10): deck})
	if err != nil {
		return "", "", fmt.Errorf("marshaling decks: %w", err)
	}
	return string(models), string(decks), nil
}

func (e *exporter) noteFields(c alphabet.Character) []string {
	meaning := c.ExampleMeaning
	switch e.opts.Language {
	case "fr":
		if c.ExampleMeaningFr != "" {
			meaning = c.ExampleMeaningFr
		}
	case "zh":
		if c.ExampleMeaningZh != "" {
			meaning = c.ExampleMeaningZh
		}
	}

	var audio, picture string
	if name := e.addMedia(c.AudioPath); name != "" {
		audio = "[sound:" + name + "]"
	}
	if name := e.addMedia(c.ImagePath); name != "" {
		picture = `<img src="` + html.EscapeString(name) + `">`
	}

	return []string{
		html.EscapeString(c.Glyph),
		html.EscapeString(c.Pronunciation),
		string(c.Category),
		html.EscapeString(c.ExampleWord),
		html.EscapeString(meaning),
		audio,
		picture,
	}
}

// addMedia registers a referenced asset and returns its media file name,
// or "" when the asset is not available.
func (e *exporter) addMedia(ref string) string {
	if ref == "" || e.opts.AssetsDir == "" {
		return ""
	}
	rel := strings.TrimPrefix(path.Clean("/"+ref), "/")
	src := filepath.Join(e.opts.AssetsDir, filepath.FromSlash(rel))
	if info, err := os.Stat(src); err != nil || info.IsDir() {
		e.result.MissingMedia = append(e.result.MissingMedia, ref)
		return ""
	}

	name := strings.ReplaceAll(rel, "/", "_")
	if _, ok := e.media[name]; !ok {
		e.media[name] = src
		e.order = append(e.order, name)
	}
	return name
}

func (e *exporter) writeZip(outputPath, dbPath string) (err error) {
	if dir := filepath.Dir(outputPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating output dir: %w", err)
		}
	}

	out, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer func() {
		if cerr := out.Close(); err == nil {
			err = cerr
		}
	}()

	zw := zip.NewWriter(out)
	if err := addFile(zw, "collection.anki2", dbPath); err != nil {
		return err
	}

	index := make(map[string]string, len(e.order))
	for i, name := range e.order {
		entry := strconv.Itoa(i)
		if err := addFile(zw, entry, e.media[name]); err != nil {
			return err
		}
		index[entry] = name
	}
	e.result.Media = len(index)

	w, err := zw.Create("media")
	if err != nil {
		return err
	}
	if err := json.NewEncoder(w).Encode(index); err != nil {
		return fmt.Errorf("writing media index: %w", err)
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("creating zip: %w", err)
	}
	return nil
}

func addFile(zw *zip.Writer, name, src string) error {
	f, err := os.Open(src)
	if err != nil {
		return err
	}
	defer f.Close()

	w, err := zw.Create(name)
	if err != nil {
		return err
	}
	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("adding %s: %w", name, err)
	}
	return nil
}

// checksum is the first 8 hex digits of the SHA1 of the sort field, as
// Anki computes it.
func checksum(sortField string) int64 {
	sum := sha1.Sum([]byte(sortField))
	csum, _ := strconv.ParseInt(hex.EncodeToString(sum[:4]), 16, 64)
	return csum
}

func guid(glyph string) string {
	sum := sha1.Sum([]byte("kakha:" + glyph))
	return hex.EncodeToString(sum[:5])
}
