package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/f3rmion/kakha/internal/alphabet"
)

var (
	glyphStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF6B6B"))
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#626262"))
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#A0A0A0")).Width(14)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFB86C"))
)

var alphabetCmd = &cobra.Command{
	Use:   "alphabet",
	Short: "List the letters of the alphabet",
	Long: `List the Tibetan letters with their pronunciation and example word.

Examples:
  kakha alphabet
  kakha alphabet --category vowel
  kakha alphabet --json`,
	Args: cobra.NoArgs,
	RunE: runAlphabet,
}

var (
	alphabetCategory string
	alphabetJSON     bool
)

func init() {
	rootCmd.AddCommand(alphabetCmd)
	alphabetCmd.Flags().StringVarP(&alphabetCategory, "category", "c", "", "consonant or vowel (default all)")
	alphabetCmd.Flags().BoolVar(&alphabetJSON, "json", false, "output JSON")
}

func runAlphabet(cmd *cobra.Command, args []string) error {
	cat, err := alphabet.ParseCategory(alphabetCategory)
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
	chars := table.Filter(cat)

	if alphabetJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(chars)
	}

	fmt.Println(headerStyle.Render(fmt.Sprintf("%-6s %-8s %-10s %s", "Letter", "Sound", "Kind", "Example")))
	for _, c := range chars {
		example := mutedStyle.Render("-")
		if c.HasExample() {
			example = fmt.Sprintf("%s %s", c.ExampleWord, mutedStyle.Render(c.ExampleMeaning))
		}
		fmt.Printf("%s %s %s %s\n",
			glyphStyle.Render(runewidth.FillRight(c.Glyph, 6)),
			runewidth.FillRight(c.Pronunciation, 8),
			runewidth.FillRight(string(c.Category), 10),
			example,
		)
	}

	fmt.Println()
	fmt.Println(mutedStyle.Render(summaryLine(table, cat)))
	return nil
}

func summaryLine(table *alphabet.Table, cat alphabet.Category) string {
	if cat != "" {
		return fmt.Sprintf("%d %ss", table.Count(cat), cat)
	}
	parts := []string{
		fmt.Sprintf("%d letters", table.Len()),
		fmt.Sprintf("%d consonants", table.Count(alphabet.Consonant)),
		fmt.Sprintf("%d vowels", table.Count(alphabet.Vowel)),
	}
	return strings.Join(parts, ", ")
}
