// Package pinyin annotates the Chinese example meanings with readings.
package pinyin

import (
	"strconv"
	"strings"
	"unicode"

	gopinyin "github.com/mozillazg/go-pinyin"
)

// Annotator converts Han characters to tone-marked pinyin.
type Annotator struct {
	args gopinyin.Args
}

// NewAnnotator creates an annotator that returns tone marks (zhōng).
func NewAnnotator() *Annotator {
	args := gopinyin.NewArgs()
	args.Style = gopinyin.Tone
	return &Annotator{args: args}
}

// Readings returns every reading of a single character.
func (a *Annotator) Readings(char string) []string {
	args := a.args
	args.Heteronym = true
	result := gopinyin.Pinyin(char, args)
	if len(result) == 0 {
		return nil
	}
	return result[0]
}

// Annotate returns the pinyin of text, one syllable per Han character,
// separated by spaces. Other runes are kept as they are.
func (a *Annotator) Annotate(text string) string {
	var parts []string
	var other strings.Builder

	flush := func() {
		if s := strings.TrimSpace(other.String()); s != "" {
			parts = append(parts, s)
		}
		other.Reset()
	}

	for _, r := range text {
		if !unicode.Is(unicode.Han, r) {
			other.WriteRune(r)
			continue
		}
		flush()
		if readings := gopinyin.SinglePinyin(r, a.args); len(readings) > 0 {
			parts = append(parts, readings[0])
		} else {
			parts = append(parts, string(r))
		}
	}
	flush()

	return strings.Join(parts, " ")
}

var toneMarks = map[rune]struct {
	base rune
	tone int
}{
	'ā': {'a', 1}, 'á': {'a', 2}, 'ǎ': {'a', 3}, 'à': {'a', 4},
	'ē': {'e', 1}, 'é': {'e', 2}, 'ě': {'e', 3}, 'è': {'e', 4},
	'ī': {'i', 1}, 'í': {'i', 2}, 'ǐ': {'i', 3}, 'ì': {'i', 4},
	'ō': {'o', 1}, 'ó': {'o', 2}, 'ǒ': {'o', 3}, 'ò': {'o', 4},
	'ū': {'u', 1}, 'ú': {'u', 2}, 'ǔ': {'u', 3}, 'ù': {'u', 4},
	'ǖ': {'ü', 1}, 'ǘ': {'ü', 2}, 'ǚ': {'ü', 3}, 'ǜ': {'ü', 4},
}

// Tone returns the tone (1-4, 5 for neutral) of a tone-marked syllable
// and the syllable without its mark.
func Tone(syllable string) (int, string) {
	tone := 5
	var plain strings.Builder
	for _, r := range syllable {
		if mark, ok := toneMarks[r]; ok {
			plain.WriteRune(mark.base)
			tone = mark.tone
		} else {
			plain.WriteRune(r)
		}
	}
	return tone, plain.String()
}

// Numbered rewrites tone marks as trailing digits: "zhù zi" becomes
// "zhu4 zi5".
func Numbered(annotated string) string {
	fields := strings.Fields(annotated)
	for i, f := range fields {
		if !isPinyin(f) {
			continue
		}
		tone, plain := Tone(f)
		fields[i] = plain + strconv.Itoa(tone)
	}
	return strings.Join(fields, " ")
}

func isPinyin(s string) bool {
	for _, r := range s {
		if _, ok := toneMarks[r]; ok {
			continue
		}
		if r != 'ü' && (r < 'a' || r > 'z') {
			return false
		}
	}
	return s != ""
}
