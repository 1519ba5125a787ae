package service

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/noah-isme/firmsite-api/internal/dto"
	"github.com/noah-isme/firmsite-api/internal/locale"
	"github.com/noah-isme/firmsite-api/internal/models"
)

var (
	// ErrUnsupportedLocale indicates the requested locale is not served by the site.
	ErrUnsupportedLocale = errors.New("unsupported locale")
	// ErrInvalidPagePath indicates a path that cannot describe a page on this site.
	ErrInvalidPagePath = errors.New("invalid page path")
)

const xDefaultHreflang = "x-default"

// SiteService builds locale-aware navigation and page metadata.
type SiteService interface {
	Navigation(code string) (dto.NavigationResponse, error)
	SEO(code, path string) (dto.SEOResponse, error)
	Sitemap() ([]byte, error)
	PreferredLocale(cookie, acceptLanguage string) string
}

// SiteOption customises the site service.
type SiteOption func(*siteService)

// WithSiteNavigation replaces the menu tree.
func WithSiteNavigation(entries []models.NavEntry) SiteOption {
	return func(s *siteService) {
		s.navigation = entries
	}
}

// WithSitePages replaces the pages listed in the sitemap.
func WithSitePages(pages []models.SitePage) SiteOption {
	return func(s *siteService) {
		s.pages = pages
	}
}

type siteService struct {
	locales    *locale.Set
	baseURL    string
	siteName   string
	navigation []models.NavEntry
	pages      []models.SitePage
	logger     zerolog.Logger
}

// NewSiteService constructs the site metadata service.
func NewSiteService(locales *locale.Set, baseURL, siteName string, logger zerolog.Logger, opts ...SiteOption) SiteService {
	s := &siteService{
		locales:    locales,
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		siteName:   siteName,
		navigation: models.SiteNavigation,
		pages:      models.SitePages,
		logger:     logger.With().Str("component", "site_service").Logger(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *siteService) Navigation(code string) (dto.NavigationResponse, error) {
	canonical, ok := s.locales.Lookup(code)
	if !ok {
		return dto.NavigationResponse{}, fmt.Errorf("%w: %q", ErrUnsupportedLocale, code)
	}
	return dto.NavigationResponse{
		Locale: canonical,
		Items:  s.navItems(canonical, s.navigation),
	}, nil
}

func (s *siteService) navItems(code string, entries []models.NavEntry) []dto.NavItem {
	items := make([]dto.NavItem, 0, len(entries))
	for _, entry := range entries {
		item := dto.NavItem{
			Key:   entry.Key,
			Label: models.Translate(code, entry.Key),
		}
		if locale.IsExternal(entry.Href) {
			item.Href = entry.Href
			item.External = true
		} else {
			item.Href = s.locales.Localize(code, entry.Href)
		}
		if len(entry.Children) > 0 {
			item.Children = s.navItems(code, entry.Children)
		}
		items = append(items, item)
	}
	return items
}

func (s *siteService) SEO(code, path string) (dto.SEOResponse, error) {
	canonical, ok := s.locales.Lookup(code)
	if !ok {
		return dto.SEOResponse{}, fmt.Errorf("%w: %q", ErrUnsupportedLocale, code)
	}

	pagePath, err := s.pagePath(path)
	if err != nil {
		return dto.SEOResponse{}, err
	}

	alternates := make([]dto.AlternateLink, 0, len(s.locales.Codes())+1)
	for _, alt := range s.locales.Codes() {
		alternates = append(alternates, dto.AlternateLink{Hreflang: alt, Href: s.absolute(alt, pagePath)})
	}
	alternates = append(alternates, dto.AlternateLink{
		Hreflang: xDefaultHreflang,
		Href:     s.absolute(s.locales.Default(), pagePath),
	})

	title := s.pageLabel(canonical, pagePath)
	if s.siteName != "" {
		title = title + " | " + s.siteName
	}

	return dto.SEOResponse{
		Locale:     canonical,
		Path:       pagePath,
		Title:      title,
		Canonical:  s.absolute(canonical, pagePath),
		Alternates: alternates,
		StructuredData: []map[string]interface{}{
			s.organization(canonical),
			s.breadcrumbs(canonical, pagePath),
		},
	}, nil
}

// pagePath drops query and fragment parts and strips any locale prefix.
func (s *siteService) pagePath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "/", nil
	}
	if strings.HasPrefix(path, "#") || locale.IsExternal(path) {
		return "", fmt.Errorf("%w: %q", ErrInvalidPagePath, path)
	}
	if cut := strings.IndexAny(path, "?#"); cut >= 0 {
		path = path[:cut]
	}
	normalized := s.locales.Normalize(path)
	if len(normalized) > 1 {
		normalized = strings.TrimRight(normalized, "/")
	}
	return normalized, nil
}

func (s *siteService) absolute(code, path string) string {
	return s.baseURL + s.locales.Localize(code, path)
}

func (s *siteService) pageLabel(code, path string) string {
	for _, page := range s.pages {
		if page.Path == path {
			return models.Translate(code, page.Key)
		}
	}
	segment := path[strings.LastIndex(path, "/")+1:]
	if segment == "" {
		return models.Translate(code, "nav.home")
	}
	return cases.Title(language.Und).String(strings.ReplaceAll(segment, "-", " "))
}

func (s *siteService) organization(code string) map[string]interface{} {
	return map[string]interface{}{
		"@context": "https://schema.org",
		"@type":    "Organization",
		"name":     s.siteName,
		"url":      s.absolute(code, "/"),
	}
}

func (s *siteService) breadcrumbs(code, path string) map[string]interface{} {
	items := []map[string]interface{}{
		breadcrumb(1, models.Translate(code, "nav.home"), s.absolute(code, "/")),
	}

	current := ""
	for _, segment := range strings.Split(strings.Trim(path, "/"), "/") {
		if segment == "" {
			continue
		}
		current += "/" + segment
		items = append(items, breadcrumb(len(items)+1, s.pageLabel(code, current), s.absolute(code, current)))
	}

	return map[string]interface{}{
		"@context":        "https://schema.org",
		"@type":           "BreadcrumbList",
		"itemListElement": items,
	}
}

func breadcrumb(position int, name, item string) map[string]interface{} {
	return map[string]interface{}{
		"@type":    "ListItem",
		"position": position,
		"name":     name,
		"item":     item,
	}
}

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	Xmlns   string       `xml:"xmlns,attr"`
	XHTML   string       `xml:"xmlns:xhtml,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc        string        `xml:"loc"`
	Links      []sitemapLink `xml:"xhtml:link"`
	ChangeFreq string        `xml:"changefreq,omitempty"`
	Priority   string        `xml:"priority,omitempty"`
}

type sitemapLink struct {
	Rel      string `xml:"rel,attr"`
	Hreflang string `xml:"hreflang,attr"`
	Href     string `xml:"href,attr"`
}

func (s *siteService) Sitemap() ([]byte, error) {
	codes := s.locales.Codes()
	set := sitemapURLSet{
		Xmlns: "http://www.sitemaps.org/schemas/sitemap/0.9",
		XHTML: "http://www.w3.org/1999/xhtml",
		URLs:  make([]sitemapURL, 0, len(s.pages)*len(codes)),
	}

	for _, page := range s.pages {
		links := make([]sitemapLink, 0, len(codes)+1)
		for _, code := range codes {
			links = append(links, sitemapLink{Rel: "alternate", Hreflang: code, Href: s.absolute(code, page.Path)})
		}
		links = append(links, sitemapLink{Rel: "alternate", Hreflang: xDefaultHreflang, Href: s.absolute(s.locales.Default(), page.Path)})

		priority := ""
		if page.Priority > 0 {
			priority = strconv.FormatFloat(page.Priority, 'f', 1, 64)
		}
		for _, code := range codes {
			set.URLs = append(set.URLs, sitemapURL{
				Loc:        s.absolute(code, page.Path),
				Links:      links,
				ChangeFreq: page.ChangeFreq,
				Priority:   priority,
			})
		}
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	encoder := xml.NewEncoder(&buf)
	encoder.Indent("", "  ")
	if err := encoder.Encode(set); err != nil {
		return nil, fmt.Errorf("encode sitemap: %w", err)
	}
	return buf.Bytes(), nil
}

// PreferredLocale picks the entry locale from the remembered cookie, then the browser languages.
func (s *siteService) PreferredLocale(cookie, acceptLanguage string) string {
	if canonical, ok := s.locales.Lookup(cookie); ok {
		return canonical
	}
	return s.locales.Match(acceptLanguage)
}
