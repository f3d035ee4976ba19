// Package parser turns free-form model output into structured content.
//
// Every field is resolved independently by trying, in order: the JSON object
// embedded in the text, a "key": "value" pattern, a "Label: value" line, and
// finally a fixed default. Parsing never fails.
package parser

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var (
	DefaultTitle             = "Latest Cybersecurity Trends Analysis"
	DefaultSummary           = "Analysis of current cybersecurity landscape and emerging threats."
	DefaultYoutubeScriptIdea = "A comprehensive overview of emerging cybersecurity threats and defense strategies."
)

func DefaultKeyPoints() []string {
	return []string{
		"Advanced persistent threats continue to evolve",
		"Zero-trust architecture is becoming standard",
		"AI-powered security tools are increasingly important",
	}
}

// Content is the structured shape of a marketing trend piece.
type Content struct {
	Title             string
	Summary           string
	KeyPoints         []string
	YoutubeScriptIdea string
	FullContent       *string
	// Structured is true when the text carried a decodable JSON object.
	Structured bool
}

var (
	titleLabel     = regexp.MustCompile(`(?i)\bTitle:\s*([^\n]+)`)
	summaryLabel   = regexp.MustCompile(`(?i)\bSummary:\s*([^\n]+(?:\n[^\n#]+)*)`)
	scriptLabel    = regexp.MustCompile(`(?i)\bYouTube Script Idea:\s*([^\n]+(?:\n[^\n#]+)*)`)
	fullLabel      = regexp.MustCompile(`(?i)\bFull Content:\s*([^\n]+(?:\n[^\n#]+)*)`)
	keyPointsLabel = regexp.MustCompile(`(?i)\bKey Points:\s*((?:[-*•]\s*[^\n]+\n?)+)`)
	bulletPrefix   = regexp.MustCompile(`^[-*•]\s*`)
	// a line opening another labelled section ends a multi-line value
	labelHeader = regexp.MustCompile(`(?i)^\s*(?:\d+\.\s*)?(?:title|summary|key points|youtube script idea|full content|script|tags|categories)\s*:`)
)

// ParseContent extracts a Content from model text.
func ParseContent(text string) Content {
	d := newDocument(text)
	out := Content{Structured: d.obj != nil}

	out.Title = d.str([]string{"title"}, titleLabel, DefaultTitle)
	out.Summary = d.str([]string{"summary"}, summaryLabel, DefaultSummary)
	out.YoutubeScriptIdea = d.str([]string{"youtubeScriptIdea"}, scriptLabel, DefaultYoutubeScriptIdea)
	out.KeyPoints = d.list([]string{"keyPoints"}, keyPointsLabel, DefaultKeyPoints())

	if full, ok := d.lookupString([]string{"fullContent"}, fullLabel); ok {
		out.FullContent = &full
	} else if d.obj == nil && strings.TrimSpace(text) != "" {
		raw := text
		out.FullContent = &raw
	}
	return out
}

// Script is a YouTube video package.
type Script struct {
	Title      string
	Summary    string
	Script     string
	KeyPoints  []string
	Categories []string
	Tags       []string
	Structured bool
}

// ScriptDefaults is the package used when nothing can be extracted for topic.
func ScriptDefaults(topic string) Script {
	return Script{
		Title:      fmt.Sprintf("%s - Essential Guide", topic),
		Summary:    fmt.Sprintf("A comprehensive overview of %s for cybersecurity professionals.", topic),
		Script:     fmt.Sprintf("Welcome to Superfishal Intelligence. Today we're discussing %s...", topic),
		KeyPoints:  []string{"Understanding the basics", "Implementation strategies", "Common pitfalls", "Advanced techniques"},
		Categories: []string{"Cybersecurity", "Technology"},
		Tags:       []string{"cybersecurity", "infosec", strings.ToLower(topic), "security", "technology"},
	}
}

// ParseScript extracts a Script from model text, defaulting per field from topic.
func ParseScript(text, topic string) Script {
	def := ScriptDefaults(topic)
	d := newDocument(text)
	return Script{
		Title:      d.str([]string{"title"}, titleLabel, def.Title),
		Summary:    d.str([]string{"summary"}, summaryLabel, def.Summary),
		Script:     d.str([]string{"script"}, nil, def.Script),
		KeyPoints:  d.list([]string{"keyPoints", "keypoints"}, keyPointsLabel, def.KeyPoints),
		Categories: d.list([]string{"categories"}, nil, def.Categories),
		Tags:       d.list([]string{"tags"}, nil, def.Tags),
		Structured: d.obj != nil,
	}
}

type document struct {
	raw string
	obj map[string]interface{}
}

func newDocument(text string) *document {
	d := &document{raw: text}
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return d
	}
	var obj map[string]interface{}
	if err := json.Unmarshal([]byte(text[start:end+1]), &obj); err == nil {
		d.obj = obj
	}
	return d
}

func (d *document) str(keys []string, label *regexp.Regexp, def string) string {
	if v, ok := d.lookupString(keys, label); ok {
		return v
	}
	return def
}

func (d *document) lookupString(keys []string, label *regexp.Regexp) (string, bool) {
	for _, key := range keys {
		if v, ok := d.obj[key].(string); ok && strings.TrimSpace(v) != "" {
			return v, true
		}
	}
	for _, key := range keys {
		if m := stringPattern(key).FindStringSubmatch(d.raw); m != nil {
			return m[1], true
		}
	}
	if label != nil {
		if m := label.FindStringSubmatch(d.raw); m != nil {
			if v := strings.TrimSpace(cutAtNextLabel(m[1])); v != "" {
				return v, true
			}
		}
	}
	return "", false
}

func (d *document) list(keys []string, label *regexp.Regexp, def []string) []string {
	for _, key := range keys {
		if items, ok := d.obj[key].([]interface{}); ok {
			var out []string
			for _, item := range items {
				if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
					out = append(out, s)
				}
			}
			if len(out) > 0 {
				return out
			}
		}
	}
	for _, key := range keys {
		if m := listPattern(key).FindStringSubmatch(d.raw); m != nil {
			if out := splitQuotedList(m[1]); len(out) > 0 {
				return out
			}
		}
	}
	if label != nil {
		if m := label.FindStringSubmatch(d.raw); m != nil {
			if out := splitBullets(m[1]); len(out) > 0 {
				return out
			}
		}
	}
	return def
}

func stringPattern(key string) *regexp.Regexp {
	k := regexp.QuoteMeta(key)
	return regexp.MustCompile(fmt.Sprintf(`(?:"%s"|%s):\s*"([^"]+)"`, k, k))
}

func listPattern(key string) *regexp.Regexp {
	k := regexp.QuoteMeta(key)
	return regexp.MustCompile(fmt.Sprintf(`(?s)(?:"%s"|%s):\s*\[(.*?)\]`, k, k))
}

// splitQuotedList splits a list body on commas that are followed by optional
// whitespace and a quote, then strips the surrounding quotes of each item.
func splitQuotedList(body string) []string {
	var parts []string
	start := 0
	for i := 0; i < len(body); i++ {
		if body[i] != ',' {
			continue
		}
		j := i + 1
		for j < len(body) && isSpace(body[j]) {
			j++
		}
		if j < len(body) && (body[j] == '"' || body[j] == '\'') {
			parts = append(parts, body[start:i])
			start = i + 1
		}
	}
	parts = append(parts, body[start:])

	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		p = strings.TrimPrefix(p, `"`)
		p = strings.TrimPrefix(p, "'")
		p = strings.TrimSuffix(p, `"`)
		p = strings.TrimSuffix(p, "'")
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func splitBullets(block string) []string {
	var out []string
	for _, line := range strings.Split(block, "\n") {
		line = strings.TrimSpace(bulletPrefix.ReplaceAllString(strings.TrimSpace(line), ""))
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

func cutAtNextLabel(v string) string {
	lines := strings.Split(v, "\n")
	for i := 1; i < len(lines); i++ {
		if labelHeader.MatchString(lines[i]) {
			return strings.Join(lines[:i], "\n")
		}
	}
	return v
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

const (
	unknownResourceTitle       = "Unknown resource"
	unknownResourceDescription = "No description available"
	unknownResourceURL         = "https://www.cisa.gov/"
)

// AnalyzedResource is one resource a model suggested for a query.
type AnalyzedResource struct {
	Title       string
	Description string
	URL         string
}

// Analysis is a model's take on which resources fit a query.
type Analysis struct {
	Resources  []AnalyzedResource
	Analysis   string
	Structured bool
}

// AnalysisUnavailable is the payload used when no provider answered.
func AnalysisUnavailable(query string) Analysis {
	return Analysis{
		Resources: []AnalyzedResource{{
			Title:       "Resource not available",
			Description: "Unable to retrieve resources at this time",
			URL:         unknownResourceURL,
		}},
		Analysis: fmt.Sprintf("We're currently unable to provide analysis for %q. Please try another search term or check back later.", query),
	}
}

func defaultAnalyzedResources() []AnalyzedResource {
	return []AnalyzedResource{{
		Title:       "CISA Cybersecurity Resources",
		Description: "Official cybersecurity guidance and tools from the Cybersecurity & Infrastructure Security Agency",
		URL:         "https://www.cisa.gov/resources-tools",
	}}
}

var resourceObjectSplit = regexp.MustCompile(`\}\s*,`)

// ParseAnalysis extracts an Analysis from model text. Resources come from the
// embedded JSON object, else from the objects inside a "resources": [...] run,
// else a single CISA entry.
func ParseAnalysis(text, query string) Analysis {
	d := newDocument(text)
	out := Analysis{Structured: d.obj != nil}

	if items, ok := d.obj["resources"].([]interface{}); ok {
		for _, item := range items {
			if m, ok := item.(map[string]interface{}); ok {
				out.Resources = append(out.Resources, analyzedResource(m))
			}
		}
	}
	if len(out.Resources) == 0 {
		if m := listPattern("resources").FindStringSubmatch(d.raw); m != nil {
			for _, chunk := range resourceObjectSplit.Split(m[1], -1) {
				chunk = strings.TrimSpace(chunk)
				if !strings.HasSuffix(chunk, "}") {
					chunk += "}"
				}
				var obj map[string]interface{}
				if err := json.Unmarshal([]byte(chunk), &obj); err == nil {
					out.Resources = append(out.Resources, analyzedResource(obj))
				}
			}
		}
	}
	if len(out.Resources) == 0 {
		out.Resources = defaultAnalyzedResources()
	}

	out.Analysis = d.str([]string{"analysis"}, nil,
		fmt.Sprintf("These resources provide valuable information about %s for cybersecurity professionals.", query))
	return out
}

func analyzedResource(m map[string]interface{}) AnalyzedResource {
	field := func(key, def string) string {
		if v, ok := m[key].(string); ok && strings.TrimSpace(v) != "" {
			return v
		}
		return def
	}
	return AnalyzedResource{
		Title:       field("title", unknownResourceTitle),
		Description: field("description", unknownResourceDescription),
		URL:         field("url", unknownResourceURL),
	}
}
