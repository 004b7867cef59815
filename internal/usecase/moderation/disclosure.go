package moderation

import (
	"strings"

	"promo-planner/internal/domain"
)

var disclosurePhrases = []string{
	"disclosure:",
	"disclaimer:",
	"i work at",
	"i work for",
	"full transparency",
	"i'm affiliated with",
	"i am affiliated with",
	"my employer",
}

// detectMissingDisclosure проверяет обязательное раскрытие аффилиации.
// Запускается только для персон с выставленным флагом; проходит, когда в
// тексте есть и фраза раскрытия, и упоминание компании.
func detectMissingDisclosure(content Content, opts Options) Finding {
	var finding Finding
	if opts.Persona == nil || !opts.Persona.DisclosureRequired {
		return finding
	}

	lower := strings.ToLower(content.Text())
	hasPhrase := len(containsAny(lower, disclosurePhrases)) > 0
	mentionsCompany := opts.CompanyName == "" ||
		strings.Contains(lower, strings.ToLower(opts.CompanyName))

	if hasPhrase && mentionsCompany {
		return finding
	}

	finding.Errors = append(finding.Errors, "Persona requires an affiliation disclosure naming the company")
	finding.Flags = append(finding.Flags, domain.FlagMissingDisclosure)
	return finding
}
