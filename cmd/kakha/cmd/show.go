package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/f3rmion/kakha/internal/alphabet"
	"github.com/f3rmion/kakha/internal/pinyin"
)

var showCmd = &cobra.Command{
	Use:   "show <letter>",
	Short: "Show one letter",
	Long: `Show a letter with its sound, example word and meanings.

The letter can be given as the glyph or its pronunciation.

Examples:
  kakha show ཀ
  kakha show kha`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	table, err := loadTable(cfg)
	if err != nil {
		return err
	}

	c, ok := table.Lookup(args[0])
	if !ok {
		return fmt.Errorf("unknown letter %q", args[0])
	}
	fmt.Print(formatCharacter(c))
	return nil
}

func formatCharacter(c alphabet.Character) string {
	row := func(label, value string) string {
		if value == "" {
			return ""
		}
		return labelStyle.Render(label) + value + "\n"
	}

	s := "\n  " + glyphStyle.Render(c.Glyph) + "  " + headerStyle.Render(c.Pronunciation) + "\n\n"
	s += row("Kind:", string(c.Category))
	s += row("Audio:", c.AudioPath)
	if c.HasExample() {
		s += row("Example:", c.ExampleWord)
		s += row("Meaning:", c.ExampleMeaning)
		s += row("Sens:", c.ExampleMeaningFr)
		if c.ExampleMeaningZh != "" {
			s += row("含义:", fmt.Sprintf("%s (%s)", c.ExampleMeaningZh, pinyin.NewAnnotator().Annotate(c.ExampleMeaningZh)))
		}
		s += row("Example audio:", c.ExampleAudioPath)
		s += row("Picture:", c.ImagePath)
	}
	return s
}
