package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ShayCichocki/coverdesk/internal/faq"
)

var faqTopK int

var faqCmd = &cobra.Command{
	Use:   "faq",
	Short: "Search or reload the FAQ knowledge base",
}

var faqSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Show the FAQs the general help specialist would see",
	Long: `Search the FAQ knowledge base the same way general help does,
including embedding reranking when faq.embedding.provider is set.

Examples:
  coverdesk faq search "what is a deductible"
  coverdesk faq search --top-k 5 term life`,
	Args: cobra.MinimumNArgs(1),
	RunE: runFAQSearch,
}

var faqLoadCmd = &cobra.Command{
	Use:   "load [file]",
	Short: "Replace the stored FAQs",
	Long: `Replace every stored FAQ with the entries of a YAML file.
Without a file, loads faq.path, or the built-in FAQs when it is unset.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runFAQLoad,
}

func init() {
	faqSearchCmd.Flags().IntVar(&faqTopK, "top-k", 0, "Results to show (default faq.top_k)")
	faqCmd.AddCommand(faqSearchCmd)
	faqCmd.AddCommand(faqLoadCmd)
}

func runFAQSearch(cmd *cobra.Command, args []string) error {
	db, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	d := &desk{cfg: cfg, logger: logger, db: db, faqs: faq.NewStore(db)}
	if err := d.ensureKnowledge(); err != nil {
		return err
	}

	topK := faqTopK
	if topK <= 0 {
		topK = cfg.FAQ.TopK
	}
	results, err := d.searcher(cmd.Context()).Search(cmd.Context(), strings.Join(args, " "), topK)
	if err != nil {
		return err
	}
	if len(results) == 0 {
		fmt.Println("No matching FAQs.")
		return nil
	}

	q := color.New(color.Bold)
	for i, r := range results {
		q.Printf("%d. %s", i+1, r.Question)
		fmt.Printf("  (score %.3f)\n   %s\n", r.Score, r.Answer)
	}
	return nil
}

func runFAQLoad(cmd *cobra.Command, args []string) error {
	db, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	var entries []faq.Entry
	if len(args) == 1 {
		entries, err = faq.LoadFile(args[0])
	} else {
		entries, err = loadFAQEntries(cfg)
	}
	if err != nil {
		return err
	}

	n, err := faq.NewStore(db).Replace(entries)
	if err != nil {
		return err
	}
	printStatus(os.Stdout, "✓", fmt.Sprintf("Loaded %d FAQs", n), color.FgGreen)
	return nil
}
