package cmd

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/f3rmion/kakha/internal/alphabet"
	"github.com/f3rmion/kakha/internal/anki"
)

var ankiCmd = &cobra.Command{
	Use:   "anki",
	Short: "Export and inspect Anki decks",
	Long:  `Commands for writing the alphabet to an Anki .apkg deck and reading decks back.`,
}

var ankiExportCmd = &cobra.Command{
	Use:   "export <file.apkg>",
	Short: "Export the alphabet as an Anki deck",
	Long: `Write one note per letter to an Anki .apkg file. Audio clips and
pictures found under audio.assets_dir are bundled into the deck.

Examples:
  kakha anki export tibetan.apkg
  kakha anki export vowels.apkg --category vowel --lang fr`,
	Args: cobra.ExactArgs(1),
	RunE: runAnkiExport,
}

var ankiInspectCmd = &cobra.Command{
	Use:   "inspect <file.apkg>",
	Short: "Inspect an Anki deck",
	Long: `Inspect an Anki .apkg file to see its structure:
  - Decks
  - Note types (models) and their fields
  - Sample notes

Example:
  kakha anki inspect tibetan.apkg`,
	Args: cobra.ExactArgs(1),
	RunE: runAnkiInspect,
}

var (
	ankiInspectLimit int
	ankiExportDeck   string
	ankiExportLang   string
	ankiExportCat    string
)

func init() {
	rootCmd.AddCommand(ankiCmd)
	ankiCmd.AddCommand(ankiExportCmd)
	ankiCmd.AddCommand(ankiInspectCmd)

	ankiInspectCmd.Flags().IntVarP(&ankiInspectLimit, "limit", "n", 5, "Number of sample notes to show")

	ankiExportCmd.Flags().StringVarP(&ankiExportDeck, "deck", "d", "", "Deck name (default \"Tibetan Alphabet\")")
	ankiExportCmd.Flags().StringVarP(&ankiExportLang, "lang", "l", "", "Meaning language: en, fr or zh (default from config)")
	ankiExportCmd.Flags().StringVarP(&ankiExportCat, "category", "c", "", "Only export consonants or vowels")
}

func runAnkiExport(cmd *cobra.Command, args []string) error {
	cat, err := alphabet.ParseCategory(ankiExportCat)
	if err != nil {
		return err
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	table, err := loadTable(cfg)
	if err != nil {
		return err
	}

	lang := ankiExportLang
	if lang == "" {
		lang = cfg.UI.MeaningLanguage
	}

	res, err := anki.Export(args[0], table.Filter(cat), anki.ExportOptions{
		DeckName:  ankiExportDeck,
		AssetsDir: cfg.Audio.AssetsDir,
		Language:  lang,
	})
	if err != nil {
		return fmt.Errorf("exporting deck: %w", err)
	}

	size := ""
	if fi, err := os.Stat(args[0]); err == nil {
		size = " (" + humanize.Bytes(uint64(fi.Size())) + ")"
	}
	fmt.Printf("Wrote %s%s\n", args[0], size)
	fmt.Printf("  Notes: %d\n", res.Notes)
	fmt.Printf("  Media: %d\n", res.Media)
	if n := len(res.MissingMedia); n > 0 {
		fmt.Println(warnStyle.Render(fmt.Sprintf("  Missing media: %d (not found under %s)", n, cfg.Audio.AssetsDir)))
		for i, m := range res.MissingMedia {
			if i == 5 {
				fmt.Printf("    ... and %d more\n", n-i)
				break
			}
			fmt.Printf("    - %s\n", m)
		}
	}
	return nil
}

func runAnkiInspect(cmd *cobra.Command, args []string) error {
	path := args[0]

	fmt.Printf("Opening: %s\n\n", path)

	pkg, err := anki.OpenPackage(path)
	if err != nil {
		return fmt.Errorf("opening package: %w", err)
	}
	defer pkg.Close()

	fmt.Print(pkg.Summary())
	fmt.Println()

	fmt.Println("Field Details:")
	for _, model := range pkg.Models {
		fmt.Printf("  %s:\n", model.Name)
		for _, field := range model.Fields {
			fmt.Printf("    [%d] %s\n", field.Ord, field.Name)
		}
	}
	fmt.Println()

	if files := pkg.MediaFiles(); len(files) > 0 {
		fmt.Printf("Media Files: %s\n\n", strings.Join(files, ", "))
	}

	fmt.Printf("Sample Notes (first %d):\n", ankiInspectLimit)
	for i, note := range pkg.Notes {
		if i >= ankiInspectLimit {
			break
		}

		modelName := "unknown"
		var fieldNames []string
		if model := pkg.Models[note.ModelID]; model != nil {
			modelName = model.Name
			for _, f := range model.Fields {
				fieldNames = append(fieldNames, f.Name)
			}
		}

		fmt.Printf("\n  Note %d (Model: %s):\n", note.ID, modelName)
		for j, value := range note.Fields {
			fieldName := fmt.Sprintf("Field %d", j)
			if j < len(fieldNames) {
				fieldName = fieldNames[j]
			}
			displayValue := stripHTML(value)
			if r := []rune(displayValue); len(r) > 100 {
				displayValue = string(r[:100]) + "..."
			}
			fmt.Printf("    %s: %s\n", fieldName, displayValue)
		}
	}

	return nil
}

var htmlTagRe = regexp.MustCompile(`<[^>]*>`)

// stripHTML removes HTML tags from a field value.
func stripHTML(s string) string {
	return strings.TrimSpace(htmlTagRe.ReplaceAllString(s, ""))
}
