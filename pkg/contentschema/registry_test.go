package contentschema

import (
	"errors"
	"sync"
	"testing"
	"time"
)

func TestDefaultIsShared(t *testing.T) {
	var wg sync.WaitGroup
	registries := make([]*Registry, 8)
	for i := range registries {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			registry, err := Default()
			if err != nil {
				t.Errorf("Default returned error: %v", err)
				return
			}
			registries[i] = registry
		}(i)
	}
	wg.Wait()

	for _, registry := range registries[1:] {
		if registry != registries[0] {
			t.Fatalf("expected a single shared registry")
		}
	}
}

func TestCollectionsExportsBlogAndPortfolio(t *testing.T) {
	collections, err := Collections()
	if err != nil {
		t.Fatalf("Collections returned error: %v", err)
	}
	if len(collections) != 2 || collections[CollectionBlog] == nil || collections[CollectionPortfolio] == nil {
		t.Fatalf("unexpected collections: %v", collections)
	}

	delete(collections, CollectionBlog)
	again, err := Collections()
	if err != nil {
		t.Fatalf("Collections returned error: %v", err)
	}
	if again[CollectionBlog] == nil {
		t.Fatalf("expected mutation of the returned map not to leak")
	}
}

func TestGetSchemaUnknown(t *testing.T) {
	if _, err := GetSchema("docs"); !errors.Is(err, ErrUnknownCollection) {
		t.Fatalf("expected ErrUnknownCollection, got %v", err)
	}
}

func TestValidateBlog(t *testing.T) {
	entry, err := ValidateBlog(map[string]any{
		"title":       "Hello",
		"description": "First post",
		"pubDate":     "2023-01-01",
	})
	if err != nil {
		t.Fatalf("ValidateBlog returned error: %v", err)
	}
	if !entry.PubDate.Equal(time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected pubDate: %v", entry.PubDate)
	}
	if entry.UpdatedDate != nil || entry.HeroImage != nil {
		t.Fatalf("expected optional fields to be absent: %+v", entry)
	}
}

func TestValidatePortfolioMissingDescription(t *testing.T) {
	_, err := ValidatePortfolio(map[string]any{
		"title":  "Site",
		"banner": "/b.png",
		"repo":   "https://example.com",
	})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	if len(verr.Issues) != 1 || verr.Issues[0].Path != "description" || verr.Issues[0].Reason != ReasonMissing {
		t.Fatalf("unexpected issues: %+v", verr.Issues)
	}
}

func TestValidateByName(t *testing.T) {
	entry, err := Validate(CollectionPortfolio, map[string]any{
		"title":       "Site",
		"description": "A site",
		"banner":      "/b.png",
		"repo":        "https://example.com",
		"showcase":    "https://example.com/demo",
	})
	if err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}
	portfolio, ok := entry.(PortfolioEntry)
	if !ok {
		t.Fatalf("expected PortfolioEntry, got %T", entry)
	}
	if portfolio.Showcase == nil || *portfolio.Showcase != "https://example.com/demo" {
		t.Fatalf("unexpected showcase: %v", portfolio.Showcase)
	}
}
