package domain

import "time"

// Entry is the validated frontmatter of a single content document.
type Entry interface {
	Collection() string
	// Fields returns the present fields keyed by frontmatter name. Dates are
	// returned as time.Time so the map can be validated again unchanged.
	Fields() map[string]any
}

type BlogEntry struct {
	Title       string
	Description string
	PubDate     time.Time
	UpdatedDate *time.Time
	HeroImage   *string
}

func (BlogEntry) Collection() string {
	return CollectionBlog
}

func (e BlogEntry) Fields() map[string]any {
	fields := map[string]any{
		"title":       e.Title,
		"description": e.Description,
		"pubDate":     e.PubDate,
	}
	if e.UpdatedDate != nil {
		fields["updatedDate"] = *e.UpdatedDate
	}
	if e.HeroImage != nil {
		fields["heroImage"] = *e.HeroImage
	}
	return fields
}

type PortfolioEntry struct {
	Title       string
	Description string
	Banner      string
	Showcase    *string
	Repo        string
}

func (PortfolioEntry) Collection() string {
	return CollectionPortfolio
}

func (e PortfolioEntry) Fields() map[string]any {
	fields := map[string]any{
		"title":       e.Title,
		"description": e.Description,
		"banner":      e.Banner,
		"repo":        e.Repo,
	}
	if e.Showcase != nil {
		fields["showcase"] = *e.Showcase
	}
	return fields
}
