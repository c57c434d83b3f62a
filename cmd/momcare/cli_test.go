package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"github.com/imcalledaditi/MomCare-AI-Assistant/internal/extraction"
	"github.com/imcalledaditi/MomCare-AI-Assistant/internal/models"
)

var sampleReport = extraction.Report{
	Corpus:    "Hemoglobin 10.2",
	Succeeded: 1,
	Failed:    1,
	Results: []models.ExtractionResult{
		{DocumentID: "a", Text: "Hemoglobin 10.2", Status: models.ExtractionSucceeded},
		{DocumentID: "b", Status: models.ExtractionFailed, Error: "no text extracted"},
	},
	Notice: extraction.Notice{Level: extraction.NoticePartial, Text: "1 medical document(s) processed successfully! 1 document(s) could not be processed."},
}

func withFormat(t *testing.T, f string) {
	t.Helper()
	old := format
	format = f
	t.Cleanup(func() { format = old })
}

func TestWriteReport_JSON(t *testing.T) {
	withFormat(t, "json")

	var buf bytes.Buffer
	if err := writeReport(&buf, sampleReport); err != nil {
		t.Fatalf("writeReport failed: %v", err)
	}
	var got extraction.Report
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if got.Failed != 1 || got.Notice.Level != extraction.NoticePartial {
		t.Errorf("unexpected report: %+v", got)
	}
}

func TestWriteReport_YAMLOmitsPerDocumentText(t *testing.T) {
	withFormat(t, "yaml")

	var buf bytes.Buffer
	if err := writeReport(&buf, sampleReport); err != nil {
		t.Fatalf("writeReport failed: %v", err)
	}
	var got map[string]interface{}
	if err := yaml.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid yaml: %v", err)
	}
	if got["succeeded"] != 1 {
		t.Errorf("succeeded = %v", got["succeeded"])
	}
	if strings.Count(buf.String(), "Hemoglobin") != 1 {
		t.Error("per-document text should not be written, only the corpus")
	}
}

func TestWriteReport_Text(t *testing.T) {
	withFormat(t, "text")
	color.NoColor = true

	var buf bytes.Buffer
	writeReport(&buf, sampleReport)
	out := buf.String()
	if !strings.Contains(out, "Succeeded: 1  Failed: 1  Skipped: 0") {
		t.Errorf("missing counts in %q", out)
	}
	if !strings.Contains(out, "no text extracted") {
		t.Errorf("missing failure reason in %q", out)
	}
}

func TestAskProfile(t *testing.T) {
	in := bufio.NewScanner(strings.NewReader("Tired\n29\n20\nNone\nSleep\n"))
	var out bytes.Buffer

	p, ok := askProfile(in, &out)
	if !ok {
		t.Fatal("expected a complete profile")
	}
	if p.Feeling != "Tired" || p.Age != "29" || p.WeeksPregnant != "20" || p.SpecificConcerns != "Sleep" {
		t.Errorf("unexpected profile: %+v", p)
	}

	if _, ok := askProfile(bufio.NewScanner(strings.NewReader("Tired\n")), &out); ok {
		t.Error("truncated input should not yield a profile")
	}
}
