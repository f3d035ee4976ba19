package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/datatypes"

	db "github.com/superfishal-intelligence/backend/internal/core/database"
	"github.com/superfishal-intelligence/backend/internal/core/llm"
	"github.com/superfishal-intelligence/backend/internal/core/parser"
	"github.com/superfishal-intelligence/backend/internal/models"
	"github.com/superfishal-intelligence/backend/internal/platform/apierr"
	"github.com/superfishal-intelligence/backend/internal/platform/logger"
)

const (
	DefaultContentLimit           = 20
	DefaultFeaturedContentLimit   = 5
	DefaultContentByCategoryLimit = 10
	DefaultContentByTagsLimit     = 10
	DefaultRelatedContentLimit    = 3

	DefaultTopic           = "latest cybersecurity threats and defense strategies"
	DefaultContentCategory = "Cybersecurity"

	contentSystemPrompt  = "You are a world-class cybersecurity expert at Superfishal Intelligence, providing detailed analysis on cybersecurity topics."
	scriptSystemPrompt   = "You are a professional content creator specializing in cybersecurity education."
	analysisSystemPrompt = "You are a cybersecurity resource analyst who provides factual, well-researched information."
)

// The provider chain stops saveReserve before the request deadline, and the
// write that follows gets saveTimeout of its own.
const (
	saveReserve = 5 * time.Second
	saveTimeout = 5 * time.Second
)

const msgContentNotFound = "Content not found"

var defaultContentTags = []string{"cybersecurity", "trends"}

type ContentService struct {
	db    db.Store
	chain *llm.Chain
	log   *logger.Logger
}

func NewContentService(store db.Store, chain *llm.Chain, log *logger.Logger) *ContentService {
	if log == nil {
		log = logger.Nop()
	}
	if chain == nil {
		chain = llm.NewChain(log, nil, nil)
	}
	return &ContentService{db: store, chain: chain, log: log.With("service", "ContentService")}
}

// Generation reports which provider produced a stored piece, if any.
type Generation struct {
	Content  *models.GeneratedContent
	Provider llm.Provider
	Fallback bool
}

func (s *ContentService) List(ctx context.Context, limit int) ([]models.GeneratedContent, error) {
	return s.db.ListContent(ctx, orDefault(limit, DefaultContentLimit))
}

func (s *ContentService) Get(ctx context.Context, id int) (*models.GeneratedContent, error) {
	c, err := s.db.GetContent(ctx, id)
	if err != nil {
		return nil, storeErr(err, msgContentNotFound, "")
	}
	return c, nil
}

func (s *ContentService) Featured(ctx context.Context, limit int) ([]models.GeneratedContent, error) {
	return s.db.ListFeaturedContent(ctx, orDefault(limit, DefaultFeaturedContentLimit))
}

func (s *ContentService) ByCategory(ctx context.Context, category string, limit int) ([]models.GeneratedContent, error) {
	return s.db.ListContentByCategory(ctx, category, orDefault(limit, DefaultContentByCategoryLimit))
}

func (s *ContentService) ByTags(ctx context.Context, tags []string, limit int) ([]models.GeneratedContent, error) {
	if len(tags) == 0 {
		return nil, apierr.BadRequest("At least one tag is required")
	}
	return s.db.ListContentByTags(ctx, tags, orDefault(limit, DefaultContentByTagsLimit))
}

func (s *ContentService) Related(ctx context.Context, resourceIDs []int, limit int) ([]models.GeneratedContent, error) {
	if len(resourceIDs) == 0 {
		return nil, apierr.BadRequest("At least one resource ID is required")
	}
	return s.db.ListRelatedContent(ctx, resourceIDs, orDefault(limit, DefaultRelatedContentLimit))
}

func (s *ContentService) Search(ctx context.Context, query string) ([]models.GeneratedContent, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apierr.BadRequest("Search query is required")
	}
	return s.db.SearchContent(ctx, query)
}

func (s *ContentService) Create(ctx context.Context, in *models.NewGeneratedContent) (*models.GeneratedContent, error) {
	if err := models.Validate(in); err != nil {
		return nil, err
	}
	c := in.ToContent()
	if err := s.db.CreateContent(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *ContentService) Update(ctx context.Context, id int, patch *models.ContentPatch) (*models.GeneratedContent, error) {
	if err := models.Validate(patch); err != nil {
		return nil, err
	}
	c, err := s.db.UpdateContent(ctx, id, patch)
	if err != nil {
		return nil, storeErr(err, msgContentNotFound, "")
	}
	return c, nil
}

func (s *ContentService) Delete(ctx context.Context, id int) error {
	return storeErr(s.db.DeleteContent(ctx, id), msgContentNotFound, "")
}

// Generate asks the provider chain for a trend piece and stores it. Provider
// failures never surface: the designated provider's fallback is stored instead.
func (s *ContentService) Generate(ctx context.Context, req *models.GenerateContentRequest) (*Generation, error) {
	req.Provider = models.NormalizeProvider(req.Provider)
	if err := models.Validate(req); err != nil {
		return nil, err
	}
	topic := strings.TrimSpace(req.Topic)
	if topic == "" {
		topic = DefaultTopic
	}
	preferred, _ := llm.ParseProvider(req.Provider)

	var (
		parsed parser.Content
		gen    = &Generation{}
	)
	text, provider, err := s.run(ctx, preferred, contentSystemPrompt, contentPrompt(topic))
	if err != nil {
		gen.Provider = s.chain.Designated(preferred)
		gen.Fallback = true
		parsed = llm.FallbackContent(gen.Provider)
		s.log.Warn("content generation fell back", "provider", string(gen.Provider), "topic", topic, "error", err)
	} else {
		gen.Provider = provider
		parsed = parser.ParseContent(text)
	}

	c := &models.GeneratedContent{
		Title:             parsed.Title,
		Summary:           parsed.Summary,
		KeyPoints:         models.StringSlice(parsed.KeyPoints),
		YoutubeScriptIdea: parsed.YoutubeScriptIdea,
		FullContent:       parsed.FullContent,
		Category:          firstNonEmpty(req.Category, DefaultContentCategory),
		Tags:              models.StringSlice(req.Tags),
		IsFeatured:        req.IsFeatured,
	}
	if len(c.Tags) == 0 {
		c.Tags = models.StringSlice(defaultContentTags)
	}
	if len(req.RelatedResourceIDs) > 0 {
		c.RelatedResourceIDs = datatypes.JSONSlice[int](req.RelatedResourceIDs)
	}
	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), saveTimeout)
	defer cancel()
	if err := s.db.CreateContent(saveCtx, c); err != nil {
		return nil, err
	}
	gen.Content = c
	s.log.Info("content generated", "id", c.ID, "provider", string(gen.Provider), "fallback", gen.Fallback)
	return gen, nil
}

// Script builds a YouTube script package for a topic. It is not stored.
func (s *ContentService) Script(ctx context.Context, req *models.ScriptRequest) (*models.ScriptPackage, error) {
	req.Provider = models.NormalizeProvider(req.Provider)
	if err := models.Validate(req); err != nil {
		return nil, err
	}
	topic := strings.TrimSpace(req.Topic)
	preferred, _ := llm.ParseProvider(req.Provider)

	var (
		script   parser.Script
		provider llm.Provider
		fallback bool
	)
	text, p, err := s.run(ctx, preferred, scriptSystemPrompt, scriptPrompt(topic))
	if err != nil {
		s.log.Warn("script generation fell back", "topic", topic, "error", err)
		script = parser.ScriptDefaults(topic)
		provider = s.chain.Designated(preferred)
		fallback = true
	} else {
		script = parser.ParseScript(text, topic)
		provider = p
	}
	return &models.ScriptPackage{
		Title:      script.Title,
		Summary:    script.Summary,
		Script:     script.Script,
		KeyPoints:  script.KeyPoints,
		Categories: script.Categories,
		Tags:       script.Tags,
		Provider:   string(provider),
		Fallback:   fallback,
	}, nil
}

// AnalyzeResources asks the provider chain which resources fit query. Like
// Script, a provider outage yields a placeholder answer rather than an error.
func (s *ContentService) AnalyzeResources(ctx context.Context, req *models.AnalyzeResourcesRequest) (*models.ResourceAnalysis, error) {
	req.Provider = models.NormalizeProvider(req.Provider)
	if err := models.Validate(req); err != nil {
		return nil, err
	}
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return nil, apierr.BadRequest("Search query is required")
	}
	preferred, _ := llm.ParseProvider(req.Provider)

	out := &models.ResourceAnalysis{}
	var parsed parser.Analysis
	text, p, err := s.run(ctx, preferred, analysisSystemPrompt, analysisPrompt(query))
	if err != nil {
		s.log.Warn("resource analysis fell back", "query", query, "error", err)
		parsed = parser.AnalysisUnavailable(query)
		out.Provider = string(s.chain.Designated(preferred))
		out.Fallback = true
	} else {
		parsed = parser.ParseAnalysis(text, query)
		out.Provider = string(p)
	}

	out.Analysis = parsed.Analysis
	out.Resources = make([]models.AnalyzedResource, 0, len(parsed.Resources))
	for _, r := range parsed.Resources {
		out.Resources = append(out.Resources, models.AnalyzedResource{Title: r.Title, Description: r.Description, URL: r.URL})
	}
	return out, nil
}

// run calls the chain on a context that ends saveReserve before ctx does, so
// the caller still has time to answer after every provider has timed out.
func (s *ContentService) run(ctx context.Context, preferred llm.Provider, system, user string) (string, llm.Provider, error) {
	if deadline, ok := ctx.Deadline(); ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithDeadline(ctx, deadline.Add(-saveReserve))
		defer cancel()
	}
	return s.chain.Run(ctx, preferred, system, user)
}

func contentPrompt(topic string) string {
	return fmt.Sprintf(`Generate a comprehensive analysis of %s.

Format your response as a JSON object with the following structure:
{
  "title": "A catchy, SEO-friendly title for the content",
  "summary": "A concise 2-3 sentence summary of the topic",
  "keyPoints": ["Key point 1", "Key point 2", "Key point 3", "Key point 4", "Key point 5"],
  "youtubeScriptIdea": "A brief outline for a YouTube video on this topic"
}

Make sure the content is informative, accurate, and engaging for both technical and non-technical audiences.`, topic)
}

func scriptPrompt(topic string) string {
	return fmt.Sprintf(`Create a YouTube video script about "%s".

Format your response as a JSON object with the following structure:
{
  "title": "An engaging video title",
  "summary": "A short description of the video",
  "script": "The full narration script",
  "keypoints": ["Main point 1", "Main point 2", "Main point 3"],
  "categories": ["Category 1", "Category 2"],
  "tags": ["tag1", "tag2", "tag3"]
}

The script should be educational, engaging and suitable for a 5-10 minute video.`, topic)
}

func analysisPrompt(query string) string {
	return fmt.Sprintf(`Find and analyze recent, high-quality cybersecurity resources related to "%s".
Focus on authoritative sources, tools, and informational resources.

Return your response in this JSON format:
{
  "resources": [
    {
      "title": "Resource name",
      "description": "Brief description of what this resource offers",
      "url": "Full URL to the resource"
    }
  ],
  "analysis": "A 2-3 paragraph analysis of these resources, their strengths, and how they relate to the query"
}

Include 3-5 resources.`, query)
}

func orDefault(limit, def int) int {
	if limit <= 0 {
		return def
	}
	return limit
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
