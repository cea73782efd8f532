package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/f3rmion/kakha/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize kakha configuration",
	Long: `Write a config.yaml with the default settings to your config directory.

Edit it to point audio.assets_dir at your recorded clips, pick a speech
engine or change the quiz length.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().Bool("force", false, "overwrite existing configuration")
}

func runInit(cmd *cobra.Command, args []string) error {
	force, _ := cmd.Flags().GetBool("force")
	path := configPath()

	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("config file already exists: %s\nUse --force to overwrite", path)
	}

	if err := config.Save(path, config.Default()); err != nil {
		return err
	}

	fmt.Printf("Created %s\n\n", path)
	fmt.Println("Next steps:")
	fmt.Println("  1. Set audio.assets_dir to the folder holding audio/ka.mp3 and friends")
	fmt.Println("  2. Run 'kakha doctor' to check audio and speech")
	fmt.Println("  3. Run 'kakha' to start learning")
	return nil
}
