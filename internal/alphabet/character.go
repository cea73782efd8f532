// Package alphabet holds the Tibetan character reference table.
package alphabet

import (
	"fmt"
	"strings"
)

// Category partitions the alphabet into consonants and vowels.
type Category string

const (
	Consonant Category = "consonant"
	Vowel     Category = "vowel"
)

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	return c == Consonant || c == Vowel
}

// ParseCategory parses a category filter. An empty string or "all" yields
// the zero Category, which Filter treats as "no filter".
func ParseCategory(s string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return "", nil
	case "consonant", "consonants":
		return Consonant, nil
	case "vowel", "vowels":
		return Vowel, nil
	}
	return "", fmt.Errorf("unknown category %q (want all, consonant or vowel)", s)
}

// Character is a single alphabet glyph and its learning material.
type Character struct {
	Glyph            string   `json:"glyph"`                        // The Tibetan grapheme (e.g., "ཀ")
	Pronunciation    string   `json:"pronunciation"`                // Romanized reading, also the quiz answer key
	Category         Category `json:"category"`                     // consonant or vowel
	ExampleWord      string   `json:"example_word,omitempty"`       // Word that uses the glyph
	ExampleMeaning   string   `json:"example_meaning,omitempty"`    // English meaning of the example word
	ExampleMeaningFr string   `json:"example_meaning_fr,omitempty"` // French meaning
	ExampleMeaningZh string   `json:"example_meaning_zh,omitempty"` // Chinese meaning
	AudioPath        string   `json:"audio_path,omitempty"`         // Clip locator for the glyph (e.g., "/audio/ka.mp3")
	ExampleAudioPath string   `json:"example_audio_path,omitempty"` // Clip locator for the example word
	ImagePath        string   `json:"image_path,omitempty"`         // Illustration reference
}

// HasExample reports whether the character carries an example word.
func (c Character) HasExample() bool {
	return c.ExampleWord != ""
}

// ClipID returns the base name of the glyph clip without extension,
// e.g. "ka" for "/audio/ka.mp3".
func (c Character) ClipID() string {
	p := c.AudioPath
	if i := strings.LastIndex(p, "/"); i >= 0 {
		p = p[i+1:]
	}
	if i := strings.LastIndex(p, "."); i >= 0 {
		p = p[:i]
	}
	return p
}

func (c Character) validate() error {
	if strings.TrimSpace(c.Glyph) == "" {
		return fmt.Errorf("empty glyph")
	}
	if strings.TrimSpace(c.Pronunciation) == "" {
		return fmt.Errorf("character %s: empty pronunciation", c.Glyph)
	}
	if !c.Category.Valid() {
		return fmt.Errorf("character %s: invalid category %q", c.Glyph, c.Category)
	}
	return nil
}
