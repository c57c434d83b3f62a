package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/imcalledaditi/MomCare-AI-Assistant/internal/config"
	"github.com/imcalledaditi/MomCare-AI-Assistant/internal/extraction"
	"github.com/imcalledaditi/MomCare-AI-Assistant/internal/models"
)

var (
	format     string
	showCorpus bool
)

// extractCmd represents the extract command
var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract text from your medical documents",
	Long: `Log in, list the medical documents bucket and run OCR and PDF text
extraction over every document. Prints a report in text, json or yaml.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		switch format {
		case "text", "json", "yaml":
		default:
			return fmt.Errorf("unsupported format %q (use text, json or yaml)", format)
		}

		cfg, err := config.LoadConfig()
		if err != nil {
			return err
		}
		svc := newServices(cfg)

		ctx := cmd.Context()
		login, logout, err := svc.login(ctx)
		if err != nil {
			return err
		}
		defer logout()

		report := svc.engine.Session(login.User).LoadDocuments(ctx, login.Secret)
		return writeReport(cmd.OutOrStdout(), report)
	},
}

func init() {
	extractCmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text, json, yaml")
	extractCmd.Flags().BoolVar(&showCorpus, "corpus", false, "Include the extracted text in text output")
	rootCmd.AddCommand(extractCmd)
}

func writeReport(w io.Writer, report extraction.Report) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(report)
	}

	levelColor := map[extraction.NoticeLevel]*color.Color{
		extraction.NoticeInfo:    color.New(color.FgCyan),
		extraction.NoticeSuccess: color.New(color.FgGreen, color.Bold),
		extraction.NoticePartial: color.New(color.FgYellow),
		extraction.NoticeFailure: color.New(color.FgRed, color.Bold),
	}
	c, ok := levelColor[report.Notice.Level]
	if !ok {
		c = color.New(color.Reset)
	}
	c.Fprintln(w, report.Notice.Text)
	fmt.Fprintf(w, "Succeeded: %d  Failed: %d  Skipped: %d\n", report.Succeeded, report.Failed, report.Skipped)

	red := color.New(color.FgRed).SprintFunc()
	for _, r := range report.Results {
		line := fmt.Sprintf("  %-9s %s", r.Status, r.DocumentID)
		if r.Status == models.ExtractionFailed {
			line += " " + red(r.Error)
		}
		fmt.Fprintln(w, line)
	}

	if showCorpus && report.Corpus != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, report.Corpus)
	}
	return nil
}
