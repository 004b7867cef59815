package moderation

import (
	"fmt"
	"strings"

	"promo-planner/internal/domain"
)

var fakeNeutralityPhrases = []string{
	"i'm not affiliated",
	"i am not affiliated",
	"not affiliated with",
	"no affiliation",
	"just a happy customer",
	"just a satisfied customer",
	"totally unbiased",
	"i don't work for them",
}

var callToActionPhrases = []string{
	"we should all try",
	"everyone should try",
	"spread the word",
	"tell your friends",
	"let's support them",
}

var promotionalPhrases = []string{
	"game changer",
	"game-changer",
	"act now",
	"limited time",
	"don't miss out",
	"revolutionary",
	"life-changing",
	"must-have",
	"best thing ever",
	"you won't believe",
	"incredible deal",
}

// detectAstroturf ищет фальшивую нейтральность, призывы к распространению
// и накопление рекламных штампов. Три и больше разных штампа — ошибка,
// один-два — предупреждение.
func detectAstroturf(content Content, _ Options) Finding {
	lower := strings.ToLower(content.Text())
	var finding Finding

	if matched := containsAny(lower, fakeNeutralityPhrases); len(matched) > 0 {
		finding.Errors = append(finding.Errors, fmt.Sprintf("Content uses fake-neutrality phrasing: %q", matched[0]))
		finding.Flags = append(finding.Flags, domain.FlagFakeNeutrality)
	}

	if matched := containsAny(lower, callToActionPhrases); len(matched) > 0 {
		finding.Warnings = append(finding.Warnings, fmt.Sprintf("Content uses astroturf-style call to action: %q", matched[0]))
		finding.Flags = append(finding.Flags, domain.FlagPotentialAstroturf)
	}

	if matched := containsAny(lower, promotionalPhrases); len(matched) > 0 {
		if len(matched) >= 3 {
			finding.Errors = append(finding.Errors, fmt.Sprintf("Content stacks %d promotional phrases", len(matched)))
		} else {
			finding.Warnings = append(finding.Warnings, fmt.Sprintf("Content uses promotional language: %q", matched[0]))
		}
		finding.Flags = append(finding.Flags, domain.FlagPromotionalLanguage)
	}

	return finding
}
