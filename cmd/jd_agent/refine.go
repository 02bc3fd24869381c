package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/jd-refiner/internal/config"
	"github.com/jonathan/jd-refiner/internal/ingestion"
	"github.com/jonathan/jd-refiner/internal/llm"
	"github.com/jonathan/jd-refiner/internal/observability"
	"github.com/jonathan/jd-refiner/internal/session"
	"github.com/jonathan/jd-refiner/internal/types"
)

var (
	refineJob        string
	refineJobURL     string
	refineConfig     string
	refineUseBrowser bool
	refineVerbose    bool
)

var refineCmd = &cobra.Command{
	Use:   "refine",
	Short: "Interactively refine a job description",
	Long: `Refine a job description through three question rounds.

The posting is read from --job (file), --job-url (fetched and cleaned), or
pasted on stdin (finish with a line containing only "."). The command then
extracts the twelve canonical fields, asks gap-filling questions, a
generalized improvement round, and a follow-up round, and prints the final
refined document as JSON.`,
	RunE: runRefine,
}

func init() {
	refineCmd.Flags().StringVar(&refineJob, "job", "", "path to a job posting text file")
	refineCmd.Flags().StringVar(&refineJobURL, "job-url", "", "URL to fetch the job posting from")
	refineCmd.Flags().StringVar(&refineConfig, "config", "", "path to a JSON config file")
	refineCmd.Flags().BoolVar(&refineUseBrowser, "use-browser", false, "use a headless browser for SPA job boards")
	refineCmd.Flags().BoolVar(&refineVerbose, "verbose", false, "print detailed progress")
	rootCmd.AddCommand(refineCmd)
}

func runRefine(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if refineConfig != "" {
		cfg, err := config.LoadConfig(refineConfig)
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		applyConfig(cfg)
	}

	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return fmt.Errorf("GEMINI_API_KEY environment variable is required")
	}

	client, err := llm.NewClient(ctx, llm.DefaultConfig(), apiKey)
	if err != nil {
		return fmt.Errorf("failed to create LLM client: %w", err)
	}
	defer func() { _ = client.Close() }()

	text, err := loadJobText(ctx)
	if err != nil {
		return err
	}

	printer := observability.NewPrinter(os.Stdout)
	reader := bufio.NewReader(os.Stdin)
	sess := session.New(client)

	fmt.Println("Extracting entities and generating questions...")
	if err := sess.SubmitDescription(ctx, text); err != nil {
		return err
	}
	reportFieldSet(printer, "Extracted entities", sess.Entities(), sess.Notice())

	// Gap, generalized, and follow-up rounds share one collection loop.
	for {
		if refineVerbose {
			printer.PrintQuestions(sess.Round(), sess.Questions())
		}
		if err := collectAnswers(reader, sess); err != nil {
			return err
		}

		if sess.Round() == types.RoundFollowUp {
			break
		}

		fmt.Println("\nPreparing the next round...")
		if err := sess.AdvanceRound(ctx); err != nil {
			return err
		}
		if sess.Round() == types.RoundGeneralized {
			reportFieldSet(printer, "Refined job description", sess.Generalized(), sess.Notice())
		}
	}

	fmt.Println("\nFinalizing job description...")
	if err := sess.Finalize(ctx); err != nil {
		return err
	}
	if refineVerbose {
		printer.PrintAnswers(sess.Answers())
	}

	fmt.Println(sess.Final().ToJSON())
	return nil
}

// applyConfig merges config file values under explicitly set flags.
func applyConfig(cfg *config.Config) {
	if refineJob == "" {
		refineJob = cfg.Job
	}
	if refineJobURL == "" {
		refineJobURL = cfg.JobURL
	}
	refineUseBrowser = refineUseBrowser || cfg.UseBrowser
	refineVerbose = refineVerbose || cfg.Verbose
	if cfg.APIKey != "" && os.Getenv("GEMINI_API_KEY") == "" {
		_ = os.Setenv("GEMINI_API_KEY", cfg.APIKey)
	}
}

// loadJobText resolves the posting text from flag sources or stdin.
func loadJobText(ctx context.Context) (string, error) {
	switch {
	case refineJob != "" && refineJobURL != "":
		return "", fmt.Errorf("--job and --job-url are mutually exclusive")
	case refineJob != "":
		return ingestion.FromFile(refineJob)
	case refineJobURL != "":
		fmt.Printf("Fetching job posting from %s...\n", refineJobURL)
		return ingestion.FromURL(ctx, refineJobURL, refineUseBrowser, refineVerbose)
	default:
		return readPastedText(os.Stdin)
	}
}

// readPastedText reads a multi-line posting from the terminal, terminated by
// a line containing only "." or by EOF.
func readPastedText(in io.Reader) (string, error) {
	fmt.Println(`Paste the job description; finish with a line containing only "."`)
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var lines []string
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "." {
			break
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("failed to read job description: %w", err)
	}

	text := ingestion.CleanText(strings.Join(lines, "\n"))
	if text == "" {
		return "", fmt.Errorf("no job description entered")
	}
	return text, nil
}

// collectAnswers walks the active question list, prompting for one answer
// per non-empty question. Empty questions are skipped by the machine.
func collectAnswers(reader *bufio.Reader, sess *session.Session) error {
	total := len(sess.Questions())
	if total == 0 {
		fmt.Println("No questions for this round.")
		return nil
	}

	fmt.Printf("\n--- %s round: %d question(s) ---\n", sess.Round().Tag(), total)
	for {
		question, index, ok := sess.ActiveQuestion()
		if !ok {
			return nil
		}

		fmt.Printf("\n[%d/%d] %s\n> ", index+1, total, question)
		answer, err := reader.ReadString('\n')
		if err != nil && err != io.EOF {
			return fmt.Errorf("failed to read answer: %w", err)
		}
		if submitErr := sess.SubmitAnswer(strings.TrimRight(answer, "\r\n")); submitErr != nil {
			return submitErr
		}
		if err == io.EOF {
			return fmt.Errorf("input closed before the round completed")
		}
	}
}

// reportFieldSet prints a field set, preferring the box format in verbose
// mode and flagging any recoverable failure notice.
func reportFieldSet(printer *observability.Printer, title string, fs types.FieldSet, notice string) {
	if notice != "" {
		fmt.Printf("Warning: %s\n", notice)
	}
	if refineVerbose {
		printer.PrintFieldSet(title, fs)
		return
	}
	fmt.Printf("%s: %s\n", title, fs.Summary())
}
