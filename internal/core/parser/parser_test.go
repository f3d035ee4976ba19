package parser

import (
	"reflect"
	"strings"
	"testing"
)

func TestParseContentFromEmbeddedJSON(t *testing.T) {
	text := "Sure! Here is the analysis:\n" +
		`{"title": "Supply Chain Risk", "summary": "Dependencies are the new perimeter.", ` +
		`"keyPoints": ["Pin versions", 42, "Sign artifacts"], "youtubeScriptIdea": "Trace one malicious package."}` +
		"\nHope this helps."

	got := ParseContent(text)
	if !got.Structured {
		t.Fatalf("expected JSON to be decoded")
	}
	if got.Title != "Supply Chain Risk" || got.Summary != "Dependencies are the new perimeter." {
		t.Fatalf("title/summary: got=%q/%q", got.Title, got.Summary)
	}
	if !reflect.DeepEqual(got.KeyPoints, []string{"Pin versions", "Sign artifacts"}) {
		t.Fatalf("keyPoints: got=%v", got.KeyPoints)
	}
	if got.YoutubeScriptIdea != "Trace one malicious package." {
		t.Fatalf("youtubeScriptIdea: got=%q", got.YoutubeScriptIdea)
	}
	if got.FullContent != nil {
		t.Fatalf("fullContent should be nil when JSON decoded, got=%q", *got.FullContent)
	}
}

func TestParseContentKeyRegexOnBrokenJSON(t *testing.T) {
	// trailing comma breaks JSON decoding
	text := `{"title": "Ransomware 3.0", summary: "Double extortion is routine", ` +
		`"keyPoints": ["Backups offline", 'Segment networks',  "Drill incident response"],}`

	got := ParseContent(text)
	if got.Structured {
		t.Fatalf("expected JSON decode to fail")
	}
	if got.Title != "Ransomware 3.0" || got.Summary != "Double extortion is routine" {
		t.Fatalf("title/summary: got=%q/%q", got.Title, got.Summary)
	}
	want := []string{"Backups offline", "Segment networks", "Drill incident response"}
	if !reflect.DeepEqual(got.KeyPoints, want) {
		t.Fatalf("keyPoints: got=%v want=%v", got.KeyPoints, want)
	}
	if got.YoutubeScriptIdea != DefaultYoutubeScriptIdea {
		t.Fatalf("youtubeScriptIdea: got=%q", got.YoutubeScriptIdea)
	}
	if got.FullContent == nil || *got.FullContent != text {
		t.Fatalf("fullContent should carry raw text")
	}
}

func TestParseContentLabels(t *testing.T) {
	text := strings.Join([]string{
		"Title: Zero Trust Everywhere",
		"Summary: Identity is the control plane.",
		"Key Points:",
		"- Verify explicitly",
		"* Least privilege",
		"• Assume breach",
		"",
		"YouTube Script Idea: A whiteboard session on zero-trust rollouts.",
	}, "\n")

	got := ParseContent(text)
	if got.Title != "Zero Trust Everywhere" {
		t.Fatalf("title: got=%q", got.Title)
	}
	if got.Summary != "Identity is the control plane." {
		t.Fatalf("summary: got=%q", got.Summary)
	}
	want := []string{"Verify explicitly", "Least privilege", "Assume breach"}
	if !reflect.DeepEqual(got.KeyPoints, want) {
		t.Fatalf("keyPoints: got=%v want=%v", got.KeyPoints, want)
	}
	if got.YoutubeScriptIdea != "A whiteboard session on zero-trust rollouts." {
		t.Fatalf("youtubeScriptIdea: got=%q", got.YoutubeScriptIdea)
	}
}

func TestParseContentDefaults(t *testing.T) {
	for _, text := range []string{"", "the model rambled without structure"} {
		got := ParseContent(text)
		if got.Title != DefaultTitle || got.Summary != DefaultSummary || got.YoutubeScriptIdea != DefaultYoutubeScriptIdea {
			t.Fatalf("defaults for %q: got=%+v", text, got)
		}
		if !reflect.DeepEqual(got.KeyPoints, DefaultKeyPoints()) {
			t.Fatalf("keyPoints default: got=%v", got.KeyPoints)
		}
	}
	if got := ParseContent(""); got.FullContent != nil {
		t.Fatalf("empty text should not produce fullContent")
	}
}

func TestParseContentIgnoresWrongTypes(t *testing.T) {
	got := ParseContent(`{"title": 7, "summary": "", "keyPoints": "not a list"}`)
	if got.Title != DefaultTitle || got.Summary != DefaultSummary {
		t.Fatalf("wrong types should fall through: got=%+v", got)
	}
	if !reflect.DeepEqual(got.KeyPoints, DefaultKeyPoints()) {
		t.Fatalf("keyPoints: got=%v", got.KeyPoints)
	}
}

func TestParseScript(t *testing.T) {
	got := ParseScript(`{"title": "Passkeys Explained", "keypoints": ["WebAuthn", "Phishing resistance"], "tags": ["auth"]}`, "Passkeys")
	if got.Title != "Passkeys Explained" {
		t.Fatalf("title: got=%q", got.Title)
	}
	if !reflect.DeepEqual(got.KeyPoints, []string{"WebAuthn", "Phishing resistance"}) {
		t.Fatalf("keyPoints: got=%v", got.KeyPoints)
	}
	if got.Summary != "A comprehensive overview of Passkeys for cybersecurity professionals." {
		t.Fatalf("summary default: got=%q", got.Summary)
	}
	if !reflect.DeepEqual(got.Categories, []string{"Cybersecurity", "Technology"}) {
		t.Fatalf("categories default: got=%v", got.Categories)
	}

	def := ParseScript("", "Cloud IAM")
	if def.Title != "Cloud IAM - Essential Guide" || def.Tags[2] != "cloud iam" {
		t.Fatalf("defaults: got=%+v", def)
	}
}

func TestSplitQuotedList(t *testing.T) {
	got := splitQuotedList(` "a, with comma", 'b' ,"c"`)
	want := []string{"a, with comma", "b", "c"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("splitQuotedList: got=%v want=%v", got, want)
	}
}

func TestParseAnalysisFromJSON(t *testing.T) {
	text := `Here you go: {"resources": [{"title": "MITRE ATT&CK", "description": "Adversary tactics", "url": "https://attack.mitre.org"}, {"title": "Sigma"}], "analysis": "Both map detections."}`

	got := ParseAnalysis(text, "detection")
	if !got.Structured || len(got.Resources) != 2 {
		t.Fatalf("resources: got=%+v", got)
	}
	if got.Resources[0].URL != "https://attack.mitre.org" {
		t.Fatalf("first resource: got=%+v", got.Resources[0])
	}
	want := AnalyzedResource{Title: "Sigma", Description: "No description available", URL: "https://www.cisa.gov/"}
	if got.Resources[1] != want {
		t.Fatalf("field defaults: got=%+v", got.Resources[1])
	}
	if got.Analysis != "Both map detections." {
		t.Fatalf("analysis: got=%q", got.Analysis)
	}
}

func TestParseAnalysisSalvagesBrokenJSON(t *testing.T) {
	text := `{"resources": [{"title": "NIST CSF", "url": "https://nist.gov"}, {"title": "OWASP", "description": "Web"},], analysis: "Both are standards"`

	got := ParseAnalysis(text, "frameworks")
	if got.Structured {
		t.Fatalf("expected JSON decode to fail")
	}
	if len(got.Resources) != 2 || got.Resources[0].Title != "NIST CSF" || got.Resources[1].URL != "https://www.cisa.gov/" {
		t.Fatalf("resources: got=%+v", got.Resources)
	}
	if got.Analysis != "Both are standards" {
		t.Fatalf("analysis: got=%q", got.Analysis)
	}
}

func TestParseAnalysisDefaults(t *testing.T) {
	got := ParseAnalysis("no idea", "zero trust")
	if len(got.Resources) != 1 || got.Resources[0].URL != "https://www.cisa.gov/resources-tools" {
		t.Fatalf("resources: got=%+v", got.Resources)
	}
	if !strings.Contains(got.Analysis, "zero trust") {
		t.Fatalf("analysis: got=%q", got.Analysis)
	}

	down := AnalysisUnavailable("zero trust")
	if len(down.Resources) != 1 || down.Resources[0].Title != "Resource not available" || !strings.Contains(down.Analysis, `"zero trust"`) {
		t.Fatalf("unavailable: got=%+v", down)
	}
}
