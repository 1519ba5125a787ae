package models

// NavEntry is one item of the site menu. Href is locale-agnostic.
type NavEntry struct {
	Key      string
	Href     string
	Children []NavEntry
}

// SitePage is a crawlable page listed in the sitemap.
type SitePage struct {
	Path       string
	Key        string
	ChangeFreq string
	Priority   float64
}

// SiteNavigation is the primary menu shown in the header of every locale.
var SiteNavigation = []NavEntry{
	{Key: "nav.home", Href: "/"},
	{Key: "nav.about", Href: "/about"},
	{Key: "nav.services", Href: "/services", Children: []NavEntry{
		{Key: "service.accounting", Href: "/services/accounting"},
		{Key: "service.tax", Href: "/services/tax"},
		{Key: "service.audit", Href: "/services/audit"},
		{Key: "service.payroll", Href: "/services/payroll"},
		{Key: "service.registrations", Href: "/services/registrations"},
		{Key: "service.work-permit", Href: "/services/work-permit"},
		{Key: "service.boi", Href: "/services/boi"},
		{Key: "service.consulting", Href: "/services/consulting"},
	}},
	{Key: "nav.blog", Href: "/blog"},
	{Key: "nav.contact", Href: "/contact"},
	{Key: "nav.line", Href: "https://line.me/R/ti/p/@firmsite"},
}

// SitePages lists every localized page.
var SitePages = []SitePage{
	{Path: "/", Key: "nav.home", ChangeFreq: "weekly", Priority: 1.0},
	{Path: "/about", Key: "nav.about", ChangeFreq: "monthly", Priority: 0.8},
	{Path: "/services", Key: "nav.services", ChangeFreq: "monthly", Priority: 0.9},
	{Path: "/services/accounting", Key: "service.accounting", ChangeFreq: "monthly", Priority: 0.8},
	{Path: "/services/tax", Key: "service.tax", ChangeFreq: "monthly", Priority: 0.8},
	{Path: "/services/audit", Key: "service.audit", ChangeFreq: "monthly", Priority: 0.8},
	{Path: "/services/payroll", Key: "service.payroll", ChangeFreq: "monthly", Priority: 0.8},
	{Path: "/services/registrations", Key: "service.registrations", ChangeFreq: "monthly", Priority: 0.8},
	{Path: "/services/work-permit", Key: "service.work-permit", ChangeFreq: "monthly", Priority: 0.8},
	{Path: "/services/boi", Key: "service.boi", ChangeFreq: "monthly", Priority: 0.8},
	{Path: "/services/consulting", Key: "service.consulting", ChangeFreq: "monthly", Priority: 0.8},
	{Path: "/blog", Key: "nav.blog", ChangeFreq: "weekly", Priority: 0.6},
	{Path: "/contact", Key: "nav.contact", ChangeFreq: "yearly", Priority: 0.7},
}

var siteTranslations = map[string]map[string]string{
	"en": {
		"nav.home":              "Home",
		"nav.about":             "About Us",
		"nav.services":          "Services",
		"nav.blog":              "Insights",
		"nav.contact":           "Contact",
		"nav.line":              "Chat on LINE",
		"service.accounting":    "Accounting & Bookkeeping",
		"service.tax":           "Tax Planning & Filing",
		"service.audit":         "Audit & Assurance",
		"service.payroll":       "Payroll & Social Security",
		"service.registrations": "Company Registration",
		"service.work-permit":   "Visa & Work Permit",
		"service.boi":           "BOI Promotion",
		"service.consulting":    "Business Consulting",
	},
	"th": {
		"nav.home":              "หน้าแรก",
		"nav.about":             "เกี่ยวกับเรา",
		"nav.services":          "บริการ",
		"nav.blog":              "บทความ",
		"nav.contact":           "ติดต่อเรา",
		"nav.line":              "แชทผ่าน LINE",
		"service.accounting":    "บริการทำบัญชี",
		"service.tax":           "วางแผนและยื่นภาษี",
		"service.audit":         "ตรวจสอบบัญชี",
		"service.payroll":       "เงินเดือนและประกันสังคม",
		"service.registrations": "จดทะเบียนบริษัท",
		"service.work-permit":   "วีซ่าและใบอนุญาตทำงาน",
		"service.boi":           "ส่งเสริมการลงทุน BOI",
		"service.consulting":    "ที่ปรึกษาธุรกิจ",
	},
	"zh-Hans": {
		"nav.home":     "首页",
		"nav.about":    "关于我们",
		"nav.services": "服务",
		"nav.blog":     "资讯",
		"nav.contact":  "联系我们",
	},
	"ja": {
		"nav.home":     "ホーム",
		"nav.about":    "会社概要",
		"nav.services": "サービス",
		"nav.blog":     "お知らせ",
		"nav.contact":  "お問い合わせ",
	},
}

// Translate returns the label for key in locale, falling back to English and then the key.
func Translate(locale, key string) string {
	if m, ok := siteTranslations[locale]; ok {
		if v, ok := m[key]; ok {
			return v
		}
	}
	if v, ok := siteTranslations["en"][key]; ok {
		return v
	}
	return key
}
