package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/superfishal-intelligence/backend/internal/core/parser"
	"github.com/superfishal-intelligence/backend/internal/platform/logger"
)

type Provider string

const (
	ProviderHuggingFace Provider = "huggingface"
	ProviderAnthropic   Provider = "anthropic"
	ProviderPerplexity  Provider = "perplexity"
	ProviderGemini      Provider = "gemini"
)

// ParseProvider accepts a provider name in any case. The empty string is not a provider.
func ParseProvider(s string) (Provider, bool) {
	switch p := Provider(strings.ToLower(strings.TrimSpace(s))); p {
	case ProviderHuggingFace, ProviderAnthropic, ProviderPerplexity, ProviderGemini:
		return p, true
	default:
		return "", false
	}
}

// Generator produces free text for a system prompt and a user prompt.
type Generator interface {
	Generate(ctx context.Context, systemPrompt string, userPrompt string) (string, error)
}

// ErrNoProviders is returned by Chain.Run when nothing produced text.
var ErrNoProviders = errors.New("no provider produced text")

// Chain tries generators in a fixed order until one returns non-empty text.
type Chain struct {
	order    []Provider
	backends map[Provider]Generator
	log      *logger.Logger
}

// NewChain keeps order as the try order. Providers in order with no
// generator are skipped at run time but still count for Designated.
func NewChain(log *logger.Logger, order []Provider, backends map[Provider]Generator) *Chain {
	if log == nil {
		log = logger.Nop()
	}
	if len(order) == 0 {
		order = []Provider{ProviderAnthropic, ProviderPerplexity, ProviderHuggingFace, ProviderGemini}
	}
	b := make(map[Provider]Generator, len(backends))
	for p, g := range backends {
		if g != nil {
			b[p] = g
		}
	}
	return &Chain{order: order, backends: b, log: log}
}

// Configured lists the providers that have a generator, in try order.
func (c *Chain) Configured() []Provider {
	out := make([]Provider, 0, len(c.backends))
	for _, p := range c.order {
		if _, ok := c.backends[p]; ok {
			out = append(out, p)
		}
	}
	return out
}

// Designated names the provider whose fallback payload applies when the chain
// fails: the preferred one if given, else the head of the configured order.
func (c *Chain) Designated(preferred Provider) Provider {
	if preferred != "" {
		return preferred
	}
	return c.order[0]
}

func (c *Chain) attempts(preferred Provider) []Provider {
	out := make([]Provider, 0, len(c.order)+1)
	if preferred != "" {
		out = append(out, preferred)
	}
	for _, p := range c.order {
		if p != preferred {
			out = append(out, p)
		}
	}
	return out
}

// Run returns the first non-empty text and the provider that produced it.
func (c *Chain) Run(ctx context.Context, preferred Provider, systemPrompt, userPrompt string) (string, Provider, error) {
	var errs []error
	for _, p := range c.attempts(preferred) {
		gen, ok := c.backends[p]
		if !ok {
			continue
		}
		text, err := gen.Generate(ctx, systemPrompt, userPrompt)
		if err != nil {
			c.log.Warn("provider failed", "provider", string(p), "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", p, err))
			continue
		}
		if strings.TrimSpace(text) == "" {
			c.log.Warn("provider returned empty text", "provider", string(p))
			errs = append(errs, fmt.Errorf("%s: empty text", p))
			continue
		}
		return text, p, nil
	}
	if err := ctx.Err(); err != nil {
		errs = append(errs, err)
	}
	return "", "", errors.Join(append([]error{ErrNoProviders}, errs...)...)
}

// FallbackContent is the hardcoded payload for provider p.
func FallbackContent(p Provider) parser.Content {
	switch p {
	case ProviderAnthropic:
		full := "The cybersecurity landscape continues to evolve rapidly with threats becoming more sophisticated and targeted. Organizations must adopt proactive security postures and leverage advanced technologies to defend against modern attacks."
		return parser.Content{
			Title:   "Critical Cybersecurity Trends for 2025",
			Summary: "An analysis of the most significant cybersecurity developments affecting organizations today.",
			KeyPoints: []string{
				"Rise in sophisticated supply chain attacks targeting software dependencies",
				"Increased nation-state sponsored attacks on critical infrastructure",
				"AI-enhanced threat detection becoming standard for enterprise security",
				"Zero-trust architecture adoption accelerating across industries",
				"Quantum computing threats driving cryptographic agility initiatives",
			},
			YoutubeScriptIdea: "A comprehensive breakdown of the 5 most critical cybersecurity threats and practical mitigation strategies for organizations of all sizes.",
			FullContent:       &full,
		}
	case ProviderPerplexity:
		return parser.Content{
			Title:   "Emerging Cybersecurity Trends",
			Summary: "An overview of the latest developments in cybersecurity threats and defenses.",
			KeyPoints: []string{
				"Zero-trust architecture is becoming increasingly important",
				"Ransomware continues to evolve with more sophisticated techniques",
				"AI-driven security tools are enhancing threat detection capabilities",
				"Cloud security posture management is critical as cloud adoption accelerates",
			},
			YoutubeScriptIdea: "A walkthrough of the most critical security practices businesses should implement in today's threat landscape.",
		}
	default:
		return parser.ParseContent("")
	}
}
