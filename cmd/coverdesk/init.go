package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ShayCichocki/coverdesk/internal/config"
	"github.com/ShayCichocki/coverdesk/internal/faq"
	"github.com/ShayCichocki/coverdesk/internal/state"
)

var (
	initForce    bool
	initSeedFile string
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Set up the database, demo records and FAQs",
	Long: `Prepare coverdesk for use:
  - Writes a default user config if none exists
  - Creates and migrates the SQLite database
  - Loads customer records (built-in demo records, or --seed)
  - Loads the FAQ knowledge base (faq.path, or the built-in FAQs)

Examples:
  coverdesk init
  coverdesk init --seed ./records.yaml
  coverdesk init --force    # overwrite the user config with defaults`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing user config")
	initCmd.Flags().StringVar(&initSeedFile, "seed", "", "YAML file of customer records to load")
}

func runInit(cmd *cobra.Command, args []string) error {
	userConfig := config.GetUserConfigPath()
	if _, err := os.Stat(userConfig); os.IsNotExist(err) || initForce {
		if err := config.Save(config.Default()); err != nil {
			printStatus(os.Stdout, "✗", "Could not write "+userConfig, color.FgRed)
			return err
		}
		printStatus(os.Stdout, "✓", "Wrote "+userConfig, color.FgGreen)
	} else {
		printStatus(os.Stdout, "✓", "Using "+userConfig, color.FgGreen)
	}

	if _, err := config.GetAPIKey(cfg); err != nil && !cfg.Anthropic.Bedrock {
		printStatus(os.Stdout, "⚠", "ANTHROPIC_API_KEY not set (you can set it later)", color.FgYellow)
	} else {
		printStatus(os.Stdout, "✓", "Anthropic credentials found", color.FgGreen)
	}

	db, err := openDB(cfg)
	if err != nil {
		printStatus(os.Stdout, "✗", "Database setup failed", color.FgRed)
		return err
	}
	defer db.Close()
	printStatus(os.Stdout, "✓", fmt.Sprintf("Database ready at %s (%s)", db.Path(), db.Driver()), color.FgGreen)

	seed, err := loadSeed()
	if err != nil {
		return err
	}
	counts, err := db.ApplySeed(seed)
	if err != nil {
		printStatus(os.Stdout, "✗", "Loading records failed", color.FgRed)
		return err
	}
	printStatus(os.Stdout, "✓", fmt.Sprintf("Loaded %d new records (%d customers, %d policies, %d claims)",
		counts.Total(), counts.Customers, counts.Policies, counts.Claims), color.FgGreen)

	entries, err := loadFAQEntries(cfg)
	if err != nil {
		return err
	}
	n, err := faq.NewStore(db).Replace(entries)
	if err != nil {
		printStatus(os.Stdout, "✗", "Loading FAQs failed", color.FgRed)
		return err
	}
	printStatus(os.Stdout, "✓", fmt.Sprintf("Loaded %d FAQs", n), color.FgGreen)

	if cfg.FAQ.Embedding.Provider == "gemini" {
		if _, err := config.GetEmbeddingKey(cfg); err != nil {
			printStatus(os.Stdout, "⚠", "GEMINI_API_KEY not set; FAQ reranking will be skipped", color.FgYellow)
		}
	}

	fmt.Println("\nReady. Try: coverdesk ask \"What is my deductible on POL000001?\"")
	return nil
}

func loadSeed() (*state.Seed, error) {
	if initSeedFile != "" {
		return state.LoadSeed(initSeedFile)
	}
	return state.DefaultSeed()
}
