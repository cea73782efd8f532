package pinyin

import "testing"

func TestAnnotate(t *testing.T) {
	a := NewAnnotator()

	tests := []struct {
		in   string
		want string
	}{
		{in: "水", want: "shuǐ"},
		{in: "山", want: "shān"},
		{in: "茶", want: "chá"},
		{in: "", want: ""},
		{in: "I / Me", want: "I / Me"},
	}

	for _, tt := range tests {
		if got := a.Annotate(tt.in); got != tt.want {
			t.Errorf("Annotate(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestAnnotateWord(t *testing.T) {
	got := NewAnnotator().Annotate("天空")
	if got != "tiān kōng" {
		t.Errorf("Annotate(天空) = %q", got)
	}
}

func TestReadings(t *testing.T) {
	readings := NewAnnotator().Readings("长")
	if len(readings) < 2 {
		t.Errorf("Readings(长) = %v, want both readings", readings)
	}
	if got := NewAnnotator().Readings("x"); len(got) != 0 {
		t.Errorf("Readings(x) = %v", got)
	}
}

func TestTone(t *testing.T) {
	tests := []struct {
		in        string
		wantTone  int
		wantPlain string
	}{
		{in: "shān", wantTone: 1, wantPlain: "shan"},
		{in: "chá", wantTone: 2, wantPlain: "cha"},
		{in: "shuǐ", wantTone: 3, wantPlain: "shui"},
		{in: "lǜ", wantTone: 4, wantPlain: "lü"},
		{in: "zi", wantTone: 5, wantPlain: "zi"},
	}

	for _, tt := range tests {
		tone, plain := Tone(tt.in)
		if tone != tt.wantTone || plain != tt.wantPlain {
			t.Errorf("Tone(%q) = %d, %q, want %d, %q", tt.in, tone, plain, tt.wantTone, tt.wantPlain)
		}
	}
}

func TestNumbered(t *testing.T) {
	if got := Numbered("tiān kōng"); got != "tian1 kong1" {
		t.Errorf("Numbered() = %q", got)
	}
	if got := Numbered("I / Me"); got != "I / Me" {
		t.Errorf("Numbered() changed non-pinyin text: %q", got)
	}
}
