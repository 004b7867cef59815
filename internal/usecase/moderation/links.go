package moderation

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"promo-planner/internal/domain"
)

var (
	plainURLRe    = regexp.MustCompile(`https?://[^\s<>()\[\]]+`)
	markdownURLRe = regexp.MustCompile(`\[[^\]]*\]\(([^)\s]+)\)`)
)

var shortenerDomains = map[string]struct{}{
	"bit.ly":      {},
	"tinyurl.com": {},
	"goo.gl":      {},
	"t.co":        {},
	"ow.ly":       {},
	"is.gd":       {},
	"buff.ly":     {},
	"rb.gy":       {},
	"cutt.ly":     {},
}

var affiliateParams = []string{"ref", "affiliate", "tag"}

const manyLinksThreshold = 3

// extractLinks возвращает уникальные ссылки текста: обычные URL и цели
// markdown-ссылок.
func extractLinks(text string) []string {
	seen := make(map[string]struct{})
	var links []string
	add := func(raw string) {
		raw = strings.TrimRight(raw, ".,;:!?")
		if raw == "" {
			return
		}
		if _, ok := seen[raw]; ok {
			return
		}
		seen[raw] = struct{}{}
		links = append(links, raw)
	}
	for _, m := range plainURLRe.FindAllString(text, -1) {
		add(m)
	}
	for _, m := range markdownURLRe.FindAllStringSubmatch(text, -1) {
		add(m[1])
	}
	return links
}

func linkHost(link string) string {
	raw := link
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	host := strings.ToLower(parsed.Hostname())
	return strings.TrimPrefix(host, "www.")
}

func hasAffiliateParams(link string) bool {
	raw := link
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return false
	}
	for key := range parsed.Query() {
		lower := strings.ToLower(key)
		if strings.HasPrefix(lower, "utm_") {
			return true
		}
		for _, p := range affiliateParams {
			if lower == p {
				return true
			}
		}
	}
	return false
}

// detectSpamLinks проверяет ссылки: сокращатели, партнёрские метки,
// спам-домены, избыточное число ссылок и выход за явный список разрешённых
// доменов.
func detectSpamLinks(content Content, opts Options) Finding {
	var finding Finding
	links := extractLinks(content.Text())
	if len(links) == 0 {
		return finding
	}
	finding.Flags = append(finding.Flags, domain.FlagContainsLinks)

	allowed := make(map[string]struct{}, len(opts.AllowedDomains))
	for _, d := range opts.AllowedDomains {
		allowed[strings.ToLower(strings.TrimPrefix(d, "www."))] = struct{}{}
	}
	spam := make(map[string]struct{}, len(opts.SpamDomains))
	for _, d := range opts.SpamDomains {
		spam[strings.ToLower(strings.TrimPrefix(d, "www."))] = struct{}{}
	}

	for _, link := range links {
		host := linkHost(link)
		if host == "" {
			continue
		}
		if _, ok := shortenerDomains[host]; ok {
			msg := fmt.Sprintf("Link uses a URL shortener: %s", host)
			if opts.Strict {
				finding.Errors = append(finding.Errors, msg)
			} else {
				finding.Warnings = append(finding.Warnings, msg)
			}
			finding.Flags = append(finding.Flags, domain.FlagURLShortener)
		}
		if hasAffiliateParams(link) {
			finding.Warnings = append(finding.Warnings, fmt.Sprintf("Link carries tracking or affiliate parameters: %s", host))
			finding.Flags = append(finding.Flags, domain.FlagAffiliateLink)
		}
		if _, ok := spam[host]; ok {
			finding.Errors = append(finding.Errors, fmt.Sprintf("Link points to a known spam domain: %s", host))
			finding.Flags = append(finding.Flags, domain.FlagSpamDomain)
		}
		if len(allowed) > 0 {
			if _, ok := allowed[host]; !ok {
				finding.Warnings = append(finding.Warnings, fmt.Sprintf("Link points outside the allowed domains: %s", host))
				finding.Flags = append(finding.Flags, domain.FlagExternalLink)
			}
		}
	}

	if len(links) > manyLinksThreshold {
		finding.Warnings = append(finding.Warnings, fmt.Sprintf("Content contains %d links", len(links)))
		finding.Flags = append(finding.Flags, domain.FlagManyLinks)
	}

	return finding
}
