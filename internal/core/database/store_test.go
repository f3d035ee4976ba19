package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/superfishal-intelligence/backend/internal/models"
)

func newSQLiteStore(t *testing.T) Store {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	store, err := NewGormStore(gdb)
	if err != nil {
		t.Fatalf("NewGormStore: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

// forEachStore runs fn against every Store implementation.
func forEachStore(t *testing.T, fn func(t *testing.T, s Store)) {
	t.Run("memory", func(t *testing.T) { fn(t, NewMemoryStore()) })
	t.Run("sqlite", func(t *testing.T) { fn(t, newSQLiteStore(t)) })
}

func intPtr(v int) *int { return &v }

func TestSeedAndResetAreIdempotent(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		if err := EnsureSeeded(ctx, s); err != nil {
			t.Fatalf("EnsureSeeded: %v", err)
		}
		if err := EnsureSeeded(ctx, s); err != nil {
			t.Fatalf("EnsureSeeded again: %v", err)
		}
		assertCounts(t, s, 5, 7)

		if err := s.CreateUser(ctx, &models.User{Username: "admin", PasswordHash: "x"}); err != nil {
			t.Fatalf("CreateUser: %v", err)
		}
		if err := s.CreateChatMessage(ctx, &models.ChatMessage{Content: "hi", Role: models.RoleUser}); err != nil {
			t.Fatalf("CreateChatMessage: %v", err)
		}

		for i := 0; i < 2; i++ {
			if err := Reset(ctx, s); err != nil {
				t.Fatalf("Reset #%d: %v", i+1, err)
			}
			assertCounts(t, s, 5, 7)
		}

		msgs, _ := s.ListChatMessages(ctx, ChatFilter{})
		if len(msgs) != 0 {
			t.Fatalf("chat after reset: got=%d want=0", len(msgs))
		}
		if _, err := s.GetUserByUsername(ctx, "admin"); err != nil {
			t.Fatalf("user should survive reset: %v", err)
		}
	})
}

func assertCounts(t *testing.T, s Store, wantCategories, wantResources int) {
	t.Helper()
	ctx := context.Background()
	cats, err := s.ListCategories(ctx)
	if err != nil {
		t.Fatalf("ListCategories: %v", err)
	}
	res, err := s.ListResources(ctx)
	if err != nil {
		t.Fatalf("ListResources: %v", err)
	}
	if len(cats) != wantCategories || len(res) != wantResources {
		t.Fatalf("counts: got=%d/%d want=%d/%d", len(cats), len(res), wantCategories, wantResources)
	}
}

func TestResourceLifecycle(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		r := &models.Resource{
			Name:        "Vector DB",
			Description: "Managed embeddings",
			URL:         "https://example.com",
			Category:    "Data Analytics Tools",
			Tags:        models.StringSlice([]string{"Vectors", "search"}),
			IsPopular:   true,
		}
		if err := s.CreateResource(ctx, r); err != nil {
			t.Fatalf("CreateResource: %v", err)
		}
		if r.ID == 0 {
			t.Fatalf("expected id to be assigned")
		}

		got, err := s.GetResource(ctx, r.ID)
		if err != nil {
			t.Fatalf("GetResource: %v", err)
		}
		if got.Name != r.Name || got.URL != r.URL || len(got.Tags) != 2 || got.Tags[0] != "Vectors" || !got.IsPopular || got.IsFeatured {
			t.Fatalf("GetResource: got=%+v", got)
		}

		logo := "https://cdn.example.com/logo.png"
		featured := true
		updated, err := s.UpdateResource(ctx, r.ID, &models.ResourcePatch{LogoURL: &logo, IsFeatured: &featured})
		if err != nil {
			t.Fatalf("UpdateResource: %v", err)
		}
		if updated.LogoURL == nil || *updated.LogoURL != logo || !updated.IsFeatured || updated.Name != "Vector DB" {
			t.Fatalf("UpdateResource: got=%+v", updated)
		}

		mirrored := "https://bucket.example.com/logo.png"
		if ok, err := s.SwapResourceLogo(ctx, r.ID, "https://cdn.example.com/stale.png", mirrored); err != nil || ok {
			t.Fatalf("SwapResourceLogo stale: ok=%t err=%v", ok, err)
		}
		if ok, err := s.SwapResourceLogo(ctx, r.ID, logo, mirrored); err != nil || !ok {
			t.Fatalf("SwapResourceLogo: ok=%t err=%v", ok, err)
		}
		if got, _ := s.GetResource(ctx, r.ID); got.LogoURL == nil || *got.LogoURL != mirrored || !got.IsFeatured {
			t.Fatalf("after swap: got=%+v", got)
		}
		if ok, err := s.SwapResourceLogo(ctx, 9999, logo, mirrored); err != nil || ok {
			t.Fatalf("SwapResourceLogo missing: ok=%t err=%v", ok, err)
		}

		if _, err := s.UpdateResource(ctx, 9999, &models.ResourcePatch{}); !errors.Is(err, ErrNotFound) {
			t.Fatalf("UpdateResource missing: got=%v want=ErrNotFound", err)
		}
		if err := s.DeleteResource(ctx, r.ID); err != nil {
			t.Fatalf("DeleteResource: %v", err)
		}
		if _, err := s.GetResource(ctx, r.ID); !errors.Is(err, ErrNotFound) {
			t.Fatalf("GetResource after delete: got=%v want=ErrNotFound", err)
		}
		if err := s.DeleteResource(ctx, r.ID); !errors.Is(err, ErrNotFound) {
			t.Fatalf("DeleteResource twice: got=%v want=ErrNotFound", err)
		}
	})
}

func TestResourceQueries(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		if err := EnsureSeeded(ctx, s); err != nil {
			t.Fatalf("EnsureSeeded: %v", err)
		}

		popular, err := s.ListPopularResources(ctx, 2)
		if err != nil {
			t.Fatalf("ListPopularResources: %v", err)
		}
		if len(popular) != 2 {
			t.Fatalf("popular limit: got=%d want=2", len(popular))
		}
		for _, r := range popular {
			if !r.IsPopular {
				t.Fatalf("non-popular resource %q returned", r.Name)
			}
		}
		if popular[0].ID > popular[1].ID {
			t.Fatalf("popular not ordered by id")
		}

		llms, _ := s.ListResourcesByCategory(ctx, "Large Language Models")
		if len(llms) != 3 {
			t.Fatalf("category: got=%d want=3", len(llms))
		}

		hits, _ := s.SearchResources(ctx, "PREMIUM")
		all, _ := s.ListResources(ctx)
		want := 0
		for i := range all {
			if all[i].Matches("premium") {
				want++
			}
		}
		if len(hits) != want || want == 0 {
			t.Fatalf("search: got=%d want=%d", len(hits), want)
		}

		// "[" appears in the JSON encoding of tags but in no tag value
		if hits, _ := s.SearchResources(ctx, "[\""); len(hits) != 0 {
			t.Fatalf("search matched JSON syntax: got=%d", len(hits))
		}
	})
}

func TestCategoryUniqueness(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		c := &models.ResourceCategory{Name: "Security", Description: "Tools"}
		if err := s.CreateCategory(ctx, c); err != nil {
			t.Fatalf("CreateCategory: %v", err)
		}
		err := s.CreateCategory(ctx, &models.ResourceCategory{Name: "Security", Description: "Again"})
		if !errors.Is(err, ErrDuplicate) {
			t.Fatalf("duplicate category: got=%v want=ErrDuplicate", err)
		}
		got, err := s.GetCategoryByName(ctx, "Security")
		if err != nil || got.ID != c.ID {
			t.Fatalf("GetCategoryByName: got=%+v err=%v", got, err)
		}
		if _, err := s.GetCategory(ctx, c.ID+100); !errors.Is(err, ErrNotFound) {
			t.Fatalf("GetCategory missing: got=%v", err)
		}
	})
}

func TestUsers(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		u := &models.User{Username: "ops", PasswordHash: "hash"}
		if err := s.CreateUser(ctx, u); err != nil {
			t.Fatalf("CreateUser: %v", err)
		}
		if err := s.CreateUser(ctx, &models.User{Username: "ops", PasswordHash: "other"}); !errors.Is(err, ErrDuplicate) {
			t.Fatalf("duplicate user: got=%v want=ErrDuplicate", err)
		}
		got, err := s.GetUser(ctx, u.ID)
		if err != nil || got.Username != "ops" || got.PasswordHash != "hash" {
			t.Fatalf("GetUser: got=%+v err=%v", got, err)
		}
		if _, err := s.GetUserByUsername(ctx, "nobody"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("GetUserByUsername missing: got=%v", err)
		}
	})
}

func TestChatFilters(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		seed := []models.ChatMessage{
			{Content: "anon-1", Role: models.RoleUser},
			{UserID: intPtr(7), Content: "u7-1", Role: models.RoleUser},
			{Content: "anon-2", Role: models.RoleAssistant},
			{UserID: intPtr(8), Content: "u8-1", Role: models.RoleUser},
		}
		for i := range seed {
			if err := s.CreateChatMessage(ctx, &seed[i]); err != nil {
				t.Fatalf("CreateChatMessage: %v", err)
			}
			if seed[i].Timestamp.IsZero() {
				t.Fatalf("timestamp not assigned")
			}
		}

		all, _ := s.ListChatMessages(ctx, ChatFilter{})
		if len(all) != 4 || all[0].Content != "anon-1" || all[3].Content != "u8-1" {
			t.Fatalf("all: got=%v", contents(all))
		}
		anon, _ := s.ListChatMessages(ctx, ChatFilter{Anonymous: true})
		if got := contents(anon); got != "anon-1,anon-2" {
			t.Fatalf("anonymous: got=%s", got)
		}
		mine, _ := s.ListChatMessages(ctx, ChatFilter{UserID: intPtr(7)})
		if got := contents(mine); got != "u7-1" {
			t.Fatalf("user 7: got=%s", got)
		}
	})
}

func contents(msgs []models.ChatMessage) string {
	parts := make([]string, len(msgs))
	for i, m := range msgs {
		parts[i] = m.Content
	}
	return strings.Join(parts, ",")
}

func TestGeneratedContentQueries(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		items := []*models.GeneratedContent{
			{Title: "Phishing", Summary: "Email lures", YoutubeScriptIdea: "Inbox demo", Category: "Threats", Tags: models.StringSlice([]string{"email"}), RelatedResourceIDs: []int{1}},
			{Title: "Zero Trust", Summary: "Never trust", YoutubeScriptIdea: "Whiteboard", Category: "Defense", Tags: models.StringSlice([]string{"network", "email"}), IsFeatured: true},
			{Title: "Ransomware", Summary: "Encrypted disks", YoutubeScriptIdea: "Incident story", Category: "Threats", Tags: models.StringSlice([]string{"malware"}), RelatedResourceIDs: []int{2, 3}},
		}
		for _, c := range items {
			c.KeyPoints = models.StringSlice([]string{"a", "b"})
			if err := s.CreateContent(ctx, c); err != nil {
				t.Fatalf("CreateContent: %v", err)
			}
		}

		newest, _ := s.ListContent(ctx, 2)
		if len(newest) != 2 || newest[0].Title != "Ransomware" || newest[1].Title != "Zero Trust" {
			t.Fatalf("ListContent: got=%v", titles(newest))
		}
		if got, _ := s.ListContentByCategory(ctx, "Threats", 10); titles(got) != "Ransomware,Phishing" {
			t.Fatalf("ListContentByCategory: got=%s", titles(got))
		}
		if got, _ := s.ListFeaturedContent(ctx, 5); titles(got) != "Zero Trust" {
			t.Fatalf("ListFeaturedContent: got=%s", titles(got))
		}
		if got, _ := s.ListContentByTags(ctx, []string{"email"}, 10); titles(got) != "Zero Trust,Phishing" {
			t.Fatalf("ListContentByTags: got=%s", titles(got))
		}
		if got, _ := s.ListRelatedContent(ctx, []int{3}, 3); titles(got) != "Ransomware" {
			t.Fatalf("ListRelatedContent: got=%s", titles(got))
		}
		if got, _ := s.SearchContent(ctx, "WHITEBOARD"); titles(got) != "Zero Trust" {
			t.Fatalf("SearchContent: got=%s", titles(got))
		}

		fetched, err := s.GetContent(ctx, items[0].ID)
		if err != nil {
			t.Fatalf("GetContent: %v", err)
		}
		if len(fetched.KeyPoints) != 2 || len(fetched.RelatedResourceIDs) != 1 || fetched.CreatedAt.IsZero() {
			t.Fatalf("GetContent: got=%+v", fetched)
		}

		url := "https://youtu.be/x"
		updated, err := s.UpdateContent(ctx, items[0].ID, &models.ContentPatch{YoutubeURL: &url})
		if err != nil || updated.YoutubeURL == nil || *updated.YoutubeURL != url || updated.Title != "Phishing" {
			t.Fatalf("UpdateContent: got=%+v err=%v", updated, err)
		}

		if err := s.DeleteContent(ctx, items[0].ID); err != nil {
			t.Fatalf("DeleteContent: %v", err)
		}
		if err := s.DeleteContent(ctx, items[0].ID); !errors.Is(err, ErrNotFound) {
			t.Fatalf("DeleteContent twice: got=%v want=ErrNotFound", err)
		}
	})
}

func titles(items []models.GeneratedContent) string {
	parts := make([]string, len(items))
	for i, c := range items {
		parts[i] = c.Title
	}
	return strings.Join(parts, ",")
}
