package card

import (
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/naka-gawa/github-social-card/internal/domain"
)

func loadTestTemplate(t *testing.T) string {
	t.Helper()
	b, err := os.ReadFile("testdata/card.html")
	require.NoError(t, err)
	return string(b)
}

func parse(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func helloWorld() *domain.Repository {
	return &domain.Repository{
		Owner:      "octo",
		Name:       "hello-world",
		AvatarURL:  "https://x/a.png",
		Attributes: domain.Attributes{"stars": domain.IntAttribute(42)},
	}
}

func TestPopulate_AbsentDescription(t *testing.T) {
	out, err := Populate(loadTestTemplate(t), helloWorld())
	require.NoError(t, err)

	doc := parse(t, out)
	assert.Equal(t, "octo/", doc.Find(OwnerSelector).Text())
	assert.Equal(t, "hello-world", doc.Find(RepoSelector).Text())
	assert.Equal(t, "42", doc.Find(`.footer-item[data-info="stars"] h3`).Text())

	placeholder := doc.Find(DescriptionSelector + " > span")
	assert.Equal(t, "No description", placeholder.Text())
	assert.Equal(t, "opacity:0.5", placeholder.AttrOr("style", ""))

	style, ok := doc.Find(AvatarSelector).Attr("style")
	assert.True(t, ok)
	assert.Equal(t, "background-image: url(https://x/a.png)", style)
}

func TestPopulate_Description(t *testing.T) {
	testCases := []struct {
		name        string
		description *string
		expected    string
		placeholder bool
	}{
		{name: "plain text", description: ptr("A friendly repository"), expected: "A friendly repository"},
		{name: "markup is shown as text", description: ptr(`<b>bold</b> & "quoted" 'single'`), expected: `<b>bold</b> & "quoted" 'single'`},
		{name: "unicode", description: ptr("ソーシャルカード 🚀"), expected: "ソーシャルカード 🚀"},
		{name: "empty string falls back to placeholder", description: ptr(""), expected: "No description", placeholder: true},
		{name: "nil falls back to placeholder", description: nil, expected: "No description", placeholder: true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			repo := helloWorld()
			repo.Description = tc.description

			out, err := Populate(loadTestTemplate(t), repo)
			require.NoError(t, err)

			desc := parse(t, out).Find(DescriptionSelector)
			assert.Equal(t, tc.expected, desc.Text())
			assert.Equal(t, tc.placeholder, desc.Find("span").Length() == 1)
		})
	}
}

func TestPopulate_AvatarURLIsKeptVerbatim(t *testing.T) {
	repo := helloWorld()
	repo.AvatarURL = "https://avatars.githubusercontent.com/u/583231?v=4&s=200"

	out, err := Populate(loadTestTemplate(t), repo)
	require.NoError(t, err)

	style := parse(t, out).Find(AvatarSelector).AttrOr("style", "")
	assert.Equal(t, AvatarStyle(repo.AvatarURL), style)
	assert.Contains(t, style, repo.AvatarURL)
}

func TestPopulate_Footer(t *testing.T) {
	template := `<html><body>
		<div id="img-placeholder"></div><span id="owner"></span><span id="repo"></span><p id="description"></p>
		<div id="footer">
			<div class="footer-item" data-info="stargazers_count"><h3></h3></div>
			<div class="footer-item" data-info="language"><h3></h3></div>
			<div class="footer-item" data-info="archived"><h3></h3></div>
			<div class="footer-item" data-info="homepage"><h3>was here</h3></div>
			<div class="footer-item" data-info=""><h3>empty tag</h3></div>
			<div class="footer-item"><h3>untagged</h3></div>
		</div>
		<div class="footer-item" data-info="not_in_footer"><h3>outside</h3></div>
	</body></html>`
	repo := helloWorld()
	repo.Attributes = domain.Attributes{
		"stargazers_count": domain.NumberAttribute("4200000"),
		"language":         domain.StringAttribute("Go"),
		"archived":         domain.BoolAttribute(false),
		"homepage":         domain.NullAttribute(),
	}

	out, err := Populate(template, repo)
	require.NoError(t, err)

	var values []string
	parse(t, out).Find(".footer-item h3").Each(func(_ int, s *goquery.Selection) {
		values = append(values, s.Text())
	})
	assert.Equal(t, []string{"4200000", "Go", "false", "", "empty tag", "untagged", "outside"}, values)
}

func TestPopulate_MissingAttributeFails(t *testing.T) {
	template := strings.Replace(loadTestTemplate(t), `data-info="stars"`, `data-info="forks"`, 1)

	out, err := Populate(template, helloWorld())
	require.Error(t, err)
	assert.Empty(t, out)
	assert.True(t, errors.Is(err, domain.ErrSlotLookup))
	assert.Contains(t, err.Error(), `"forks"`)
}

func TestPopulate_MissingSlotFails(t *testing.T) {
	for _, selector := range []string{OwnerSelector, RepoSelector, DescriptionSelector, AvatarSelector} {
		t.Run(selector, func(t *testing.T) {
			id := strings.TrimPrefix(selector, "#")
			template := strings.Replace(loadTestTemplate(t), `id="`+id+`"`, `id="renamed"`, 1)

			_, err := Populate(template, helloWorld())
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrTemplateUnavailable))
		})
	}
}

func TestPopulate_Deterministic(t *testing.T) {
	template := loadTestTemplate(t)
	repo := helloWorld()
	repo.Description = ptr("same input, same output")

	first, err := Populate(template, repo)
	require.NoError(t, err)
	second, err := Populate(template, repo)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func ptr(s string) *string {
	return &s
}

func TestPopulate_ShippedTemplate(t *testing.T) {
	store, err := NewTemplateStore("../../" + DefaultTemplatePath)
	require.NoError(t, err)
	template, err := store.Load()
	require.NoError(t, err)

	repo := helloWorld()
	repo.Attributes = domain.Attributes{
		"stargazers_count":  domain.IntAttribute(42),
		"forks_count":       domain.IntAttribute(3),
		"open_issues_count": domain.IntAttribute(1),
		"language":          domain.NullAttribute(),
	}

	out, err := Populate(template, repo)
	require.NoError(t, err)

	doc := parse(t, out)
	assert.Equal(t, "octo/", doc.Find(OwnerSelector).Text())
	assert.Equal(t, "42", doc.Find(`[data-info="stargazers_count"] h3`).Text())
	assert.Equal(t, "3", doc.Find(`[data-info="forks_count"] h3`).Text())
	assert.Equal(t, "1", doc.Find(`[data-info="open_issues_count"] h3`).Text())
	assert.Equal(t, "", doc.Find(`[data-info="language"] h3`).Text())
}
