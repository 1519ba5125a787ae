package service

import (
	"encoding/xml"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/firmsite-api/internal/models"
)

func newTestSiteService() SiteService {
	return NewSiteService(testLocales(), "https://firm.example/", "Siam Accounting", testLogger())
}

func TestSiteNavigationLocalizesInternalLinks(t *testing.T) {
	svc := newTestSiteService()

	nav, err := svc.Navigation("TH")
	require.NoError(t, err)
	require.Equal(t, "th", nav.Locale)
	require.Len(t, nav.Items, len(models.SiteNavigation))

	home := nav.Items[0]
	require.Equal(t, "/th", home.Href)
	require.Equal(t, "หน้าแรก", home.Label)

	services := nav.Items[2]
	require.Equal(t, "/th/services", services.Href)
	require.Len(t, services.Children, 8)
	require.Equal(t, "/th/services/accounting", services.Children[0].Href)

	line := nav.Items[len(nav.Items)-1]
	require.True(t, line.External)
	require.True(t, strings.HasPrefix(line.Href, "https://line.me/"))
}

func TestSiteNavigationFallsBackToEnglishLabels(t *testing.T) {
	nav, err := newTestSiteService().Navigation("zh-hant")
	require.NoError(t, err)
	require.Equal(t, "zh-Hant", nav.Locale)
	require.Equal(t, "Home", nav.Items[0].Label)
	require.Equal(t, "/zh-Hant/about", nav.Items[1].Href)
}

func TestSiteNavigationRejectsUnknownLocale(t *testing.T) {
	_, err := newTestSiteService().Navigation("pt")
	require.ErrorIs(t, err, ErrUnsupportedLocale)
}

func TestSiteNavigationStripsLocaleFromConfiguredHrefs(t *testing.T) {
	svc := NewSiteService(testLocales(), "https://firm.example", "", testLogger(), WithSiteNavigation([]models.NavEntry{
		{Key: "nav.about", Href: "/en/about"},
		{Key: "nav.contact", Href: "#contact"},
		{Key: "nav.line", Href: "mailto:office@firm.example"},
	}))

	nav, err := svc.Navigation("th")
	require.NoError(t, err)
	require.Equal(t, "/th/about", nav.Items[0].Href)
	require.Equal(t, "#contact", nav.Items[1].Href)
	require.False(t, nav.Items[1].External)
	require.Equal(t, "mailto:office@firm.example", nav.Items[2].Href)
	require.True(t, nav.Items[2].External)
}

func TestSiteSEOBuildsCanonicalAndAlternates(t *testing.T) {
	seo, err := newTestSiteService().SEO("th", "/en/services/tax/?utm=1")
	require.NoError(t, err)

	require.Equal(t, "/services/tax", seo.Path)
	require.Equal(t, "https://firm.example/th/services/tax", seo.Canonical)
	require.Equal(t, "วางแผนและยื่นภาษี | Siam Accounting", seo.Title)

	require.Len(t, seo.Alternates, 4)
	require.Equal(t, "en", seo.Alternates[0].Hreflang)
	require.Equal(t, "https://firm.example/en/services/tax", seo.Alternates[0].Href)
	require.Equal(t, "zh-Hant", seo.Alternates[2].Hreflang)
	require.Equal(t, "x-default", seo.Alternates[3].Hreflang)
	require.Equal(t, "https://firm.example/en/services/tax", seo.Alternates[3].Href)

	require.Len(t, seo.StructuredData, 2)
	require.Equal(t, "Organization", seo.StructuredData[0]["@type"])
	require.Equal(t, "https://firm.example/th", seo.StructuredData[0]["url"])

	crumbs := seo.StructuredData[1]["itemListElement"].([]map[string]interface{})
	require.Len(t, crumbs, 3)
	require.Equal(t, "https://firm.example/th", crumbs[0]["item"])
	require.Equal(t, "https://firm.example/th/services", crumbs[1]["item"])
	require.Equal(t, 3, crumbs[2]["position"])
}

func TestSiteSEOHomeAndUnknownPages(t *testing.T) {
	svc := newTestSiteService()

	home, err := svc.SEO("en", "")
	require.NoError(t, err)
	require.Equal(t, "/", home.Path)
	require.Equal(t, "https://firm.example/en", home.Canonical)
	require.Equal(t, "Home | Siam Accounting", home.Title)

	post, err := svc.SEO("en", "/blog/year-end-closing")
	require.NoError(t, err)
	require.Equal(t, "Year End Closing | Siam Accounting", post.Title)
}

func TestSiteSEORejectsExternalPaths(t *testing.T) {
	svc := newTestSiteService()

	_, err := svc.SEO("en", "https://evil.example/")
	require.ErrorIs(t, err, ErrInvalidPagePath)

	_, err = svc.SEO("en", "#top")
	require.ErrorIs(t, err, ErrInvalidPagePath)

	_, err = svc.SEO("xx", "/about")
	require.ErrorIs(t, err, ErrUnsupportedLocale)
}

func TestSiteSitemapListsEveryLocale(t *testing.T) {
	body, err := newTestSiteService().Sitemap()
	require.NoError(t, err)

	text := string(body)
	require.True(t, strings.HasPrefix(text, xml.Header))
	require.Contains(t, text, `xmlns:xhtml="http://www.w3.org/1999/xhtml"`)
	require.Contains(t, text, "<loc>https://firm.example/th/services/boi</loc>")
	require.Contains(t, text, `hreflang="x-default" href="https://firm.example/en/contact"`)
	require.Equal(t, len(models.SitePages)*3, strings.Count(text, "<loc>"))
}

func TestSitePreferredLocale(t *testing.T) {
	svc := newTestSiteService()

	require.Equal(t, "th", svc.PreferredLocale("TH", "zh-TW"))
	require.Equal(t, "zh-Hant", svc.PreferredLocale("", "zh-TW,zh;q=0.8"))
	require.Equal(t, "th", svc.PreferredLocale("pt", "th-TH,en;q=0.5"))
	require.Equal(t, "en", svc.PreferredLocale("", ""))
}
