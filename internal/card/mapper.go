package card

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/naka-gawa/github-social-card/internal/domain"
)

// Slot selectors of the card template.
const (
	OwnerSelector       = "#owner"
	RepoSelector        = "#repo"
	DescriptionSelector = "#description"
	AvatarSelector      = "#img-placeholder"
	FooterItemSelector  = "#footer > .footer-item"
	FooterValueSelector = "h3"

	// FooterAttr names the metadata attribute a footer item displays.
	FooterAttr = "data-info"
)

// NoDescriptionHTML replaces the description of repositories that have none.
const NoDescriptionHTML = "<span style='opacity:0.5'>No description</span>"

// Populate fills the template slots from repo and returns the serialized
// document. It is deterministic: the same inputs always produce the same text.
//
// A footer item naming an attribute that repo does not carry fails the whole
// card with domain.ErrSlotLookup rather than rendering a blank value.
func Populate(template string, repo *domain.Repository) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(template))
	if err != nil {
		return "", fmt.Errorf("%w: failed to parse template: %w", domain.ErrTemplateUnavailable, err)
	}

	owner, err := requireSlot(doc, OwnerSelector)
	if err != nil {
		return "", err
	}
	owner.SetText(repo.Owner + "/")

	name, err := requireSlot(doc, RepoSelector)
	if err != nil {
		return "", err
	}
	name.SetText(repo.Name)

	description, err := requireSlot(doc, DescriptionSelector)
	if err != nil {
		return "", err
	}
	if repo.Description != nil && *repo.Description != "" {
		description.SetText(*repo.Description)
	} else {
		description.SetHtml(NoDescriptionHTML)
	}

	if err := populateFooter(doc, repo.Attributes); err != nil {
		return "", err
	}

	avatar, err := requireSlot(doc, AvatarSelector)
	if err != nil {
		return "", err
	}
	avatar.SetAttr("style", AvatarStyle(repo.AvatarURL))

	out, err := doc.Html()
	if err != nil {
		return "", fmt.Errorf("failed to serialize card: %w", err)
	}
	return out, nil
}

// AvatarStyle is the inline style that shows url as the avatar.
func AvatarStyle(url string) string {
	return fmt.Sprintf("background-image: url(%s)", url)
}

func populateFooter(doc *goquery.Document, attrs domain.Attributes) error {
	var lookupErr error
	doc.Find(FooterItemSelector).EachWithBreak(func(_ int, item *goquery.Selection) bool {
		name := strings.TrimSpace(item.AttrOr(FooterAttr, ""))
		if name == "" {
			return true
		}
		attr, ok := attrs.Lookup(name)
		if !ok {
			lookupErr = fmt.Errorf("%w: footer item wants %q", domain.ErrSlotLookup, name)
			return false
		}
		item.Find(FooterValueSelector).SetText(attr.Text())
		return true
	})
	return lookupErr
}

func requireSlot(doc *goquery.Document, selector string) (*goquery.Selection, error) {
	sel := doc.Find(selector)
	if sel.Length() == 0 {
		return nil, fmt.Errorf("%w: template has no %s slot", domain.ErrTemplateUnavailable, selector)
	}
	return sel.First(), nil
}
