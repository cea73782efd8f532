package alphabet

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultTableInvariants(t *testing.T) {
	table, err := Default()
	if err != nil {
		t.Fatalf("Default() error = %v", err)
	}

	if table.Len() != 34 {
		t.Errorf("Len() = %d, want 34", table.Len())
	}

	for _, c := range table.All() {
		if c.Category != Consonant && c.Category != Vowel {
			t.Errorf("%s: category = %q", c.Glyph, c.Category)
		}
		if c.Glyph == "" || c.Pronunciation == "" {
			t.Errorf("empty glyph or pronunciation: %+v", c)
		}
	}

	consonants := table.Count(Consonant)
	vowels := table.Count(Vowel)
	if consonants != 30 || vowels != 4 {
		t.Errorf("consonants = %d, vowels = %d, want 30 and 4", consonants, vowels)
	}
	if consonants+vowels != table.Len() {
		t.Errorf("categories do not partition the table")
	}
}

func TestDefaultIsShared(t *testing.T) {
	a, _ := Default()
	b, _ := Default()
	if a != b {
		t.Error("Default() returned different tables")
	}
}

func TestLookup(t *testing.T) {
	table, err := Default()
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name      string
		key       string
		wantGlyph string
		wantOK    bool
	}{
		{name: "glyph", key: "ཀ", wantGlyph: "ཀ", wantOK: true},
		{name: "glyph with tsheg", key: "ཀ་", wantGlyph: "ཀ", wantOK: true},
		{name: "vowel without tsheg", key: "ཨི", wantGlyph: "ཨི་", wantOK: true},
		{name: "pronunciation", key: "kha", wantGlyph: "ཁ", wantOK: true},
		{name: "pronunciation case", key: "KHA", wantGlyph: "ཁ", wantOK: true},
		{name: "repeated pronunciation picks first", key: "a", wantGlyph: "འ", wantOK: true},
		{name: "unknown", key: "zz", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, ok := table.Lookup(tt.key)
			if ok != tt.wantOK {
				t.Fatalf("Lookup(%q) ok = %v, want %v", tt.key, ok, tt.wantOK)
			}
			if ok && c.Glyph != tt.wantGlyph {
				t.Errorf("Lookup(%q) = %s, want %s", tt.key, c.Glyph, tt.wantGlyph)
			}
		})
	}
}

func TestKaEntry(t *testing.T) {
	table, _ := Default()
	c, ok := table.Lookup("ཀ")
	if !ok {
		t.Fatal("ཀ missing")
	}
	if c.Pronunciation != "ka" || c.AudioPath != "/audio/ka.mp3" {
		t.Errorf("ཀ = %+v", c)
	}
	if c.ClipID() != "ka" {
		t.Errorf("ClipID() = %q, want ka", c.ClipID())
	}
	if !c.HasExample() || c.ExampleMeaning != "Pillar" {
		t.Errorf("ཀ example = %q (%q)", c.ExampleWord, c.ExampleMeaning)
	}
}

func TestFilter(t *testing.T) {
	table, _ := Default()

	for _, c := range table.Filter(Vowel) {
		if c.Category != Vowel {
			t.Errorf("Filter(Vowel) returned %s", c.Glyph)
		}
	}
	if got := len(table.Filter("")); got != table.Len() {
		t.Errorf("Filter(\"\") len = %d, want %d", got, table.Len())
	}
}

func TestAllReturnsCopy(t *testing.T) {
	table, _ := Default()
	all := table.All()
	all[0].Glyph = "x"
	if table.At(0).Glyph == "x" {
		t.Error("All() exposed internal storage")
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		errText string
	}{
		{
			name:    "empty",
			input:   "\n# only a comment\n",
			errText: "alphabet is empty",
		},
		{
			name:    "malformed line",
			input:   `{"glyph": "ཀ"` + "\n",
			errText: "parsing line 1",
		},
		{
			name:    "missing pronunciation",
			input:   `{"glyph": "ཀ", "category": "consonant"}`,
			errText: "empty pronunciation",
		},
		{
			name:    "bad category",
			input:   `{"glyph": "ཀ", "pronunciation": "ka", "category": "tone"}`,
			errText: "invalid category",
		},
		{
			name: "duplicate glyph",
			input: `{"glyph": "ཀ", "pronunciation": "ka", "category": "consonant"}
{"glyph": "ཀ", "pronunciation": "ga", "category": "consonant"}`,
			errText: "duplicate glyph",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tt.input))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.errText) {
				t.Errorf("error = %q, want it to contain %q", err, tt.errText)
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.jsonl")
	data := `# custom table
{"glyph": "ཀ", "pronunciation": "ka", "category": "consonant"}

{"glyph": "ཨི་", "pronunciation": "i", "category": "vowel"}
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	table, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}
	if table.Len() != 2 {
		t.Errorf("Len() = %d, want 2", table.Len())
	}
	if table.Index("ཨི་") != 1 {
		t.Errorf("Index(ཨི་) = %d, want 1", table.Index("ཨི་"))
	}

	if _, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.jsonl")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestParseCategory(t *testing.T) {
	tests := []struct {
		in      string
		want    Category
		wantErr bool
	}{
		{in: "", want: ""},
		{in: "all", want: ""},
		{in: "Consonants", want: Consonant},
		{in: "vowel", want: Vowel},
		{in: "tones", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseCategory(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseCategory(%q) error = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseCategory(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
