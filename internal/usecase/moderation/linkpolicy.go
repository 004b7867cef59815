package moderation

import (
	"fmt"

	"promo-planner/internal/domain"
)

// detectLinkPolicy сверяет наличие ссылок с политикой типов постов
// целевого сабреддита. Без сабреддита в опциях проверка пропускается.
func detectLinkPolicy(content Content, opts Options) Finding {
	var finding Finding
	if opts.Subreddit == nil {
		return finding
	}

	hasLinks := len(extractLinks(content.Text())) > 0
	sub := opts.Subreddit

	if !sub.AllowsLinks() && hasLinks {
		finding.Errors = append(finding.Errors, fmt.Sprintf("Subreddit %s accepts text-only posts but content contains links", sub.Name))
		finding.Flags = append(finding.Flags, domain.FlagLinkPolicyViolation)
	}
	if sub.RequiresLink() && !hasLinks {
		finding.Errors = append(finding.Errors, fmt.Sprintf("Subreddit %s requires link posts but content has no link", sub.Name))
		finding.Flags = append(finding.Flags, domain.FlagLinkPolicyViolation)
	}

	return finding
}
