// Package usecase contains the business logic of the application.
package usecase

import (
	"context"
	"fmt"
	"log"

	"github.com/naka-gawa/github-social-card/internal/card"
	"github.com/naka-gawa/github-social-card/internal/gateway"
	"github.com/naka-gawa/github-social-card/internal/render"
)

// TemplateLoader supplies the card template text.
type TemplateLoader interface {
	Load() (string, error)
}

// CardGenerator is the use case for drawing a repository card.
// It runs fetch, template load, populate and render strictly in order.
type CardGenerator struct {
	fetcher   gateway.Fetcher
	templates TemplateLoader
	renderer  render.Renderer
	logger    *log.Logger
}

// NewCardGenerator creates a new CardGenerator instance.
func NewCardGenerator(fetcher gateway.Fetcher, templates TemplateLoader, renderer render.Renderer, logger *log.Logger) *CardGenerator {
	return &CardGenerator{
		fetcher:   fetcher,
		templates: templates,
		renderer:  renderer,
		logger:    logger,
	}
}

// GenerateHTML returns the populated card document for owner/repo.
func (g *CardGenerator) GenerateHTML(ctx context.Context, owner, repo string) (string, error) {
	g.logger.Printf("Usecase: [1/3] Fetching metadata for %s/%s...", owner, repo)
	metadata, err := g.fetcher.FetchRepository(ctx, owner, repo)
	if err != nil {
		return "", err
	}

	g.logger.Println("Usecase: [2/3] Populating template...")
	template, err := g.templates.Load()
	if err != nil {
		return "", err
	}
	html, err := card.Populate(template, metadata)
	if err != nil {
		return "", fmt.Errorf("failed to populate card for %s/%s: %w", owner, repo, err)
	}
	return html, nil
}

// Generate returns the PNG card for owner/repo.
func (g *CardGenerator) Generate(ctx context.Context, owner, repo string) ([]byte, error) {
	html, err := g.GenerateHTML(ctx, owner, repo)
	if err != nil {
		return nil, err
	}

	g.logger.Println("Usecase: [3/3] Rendering card...")
	img, err := g.renderer.Render(ctx, html)
	if err != nil {
		return nil, err
	}
	g.logger.Println("Usecase: Card generation complete.")
	return img, nil
}
