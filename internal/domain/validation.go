package domain

// Флаги, которые выставляют детекторы валидации контента.
const (
	FlagVoteManipulation    = "vote_manipulation"
	FlagCoordinatedVoting   = "coordinated_voting"
	FlagContainsLinks       = "contains_links"
	FlagURLShortener        = "url_shortener"
	FlagAffiliateLink       = "affiliate_link"
	FlagSpamDomain          = "spam_domain"
	FlagManyLinks           = "many_links"
	FlagExternalLink        = "external_link"
	FlagLinkPolicyViolation = "link_policy_violation"
	FlagFakeNeutrality      = "fake_neutrality"
	FlagPotentialAstroturf  = "potential_astroturf"
	FlagPromotionalLanguage = "promotional_language"
	FlagMissingDisclosure   = "missing_disclosure"
)

// ValidationResult — агрегированный вердикт по одному тексту.
// Ошибки блокируют публикацию, предупреждения носят справочный характер,
// флаги сохраняются независимо от валидности.
type ValidationResult struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
	Flags    []string `json:"flags"`
}

var criticalFlags = map[string]struct{}{
	FlagVoteManipulation:    {},
	FlagCoordinatedVoting:   {},
	FlagFakeNeutrality:      {},
	FlagSpamDomain:          {},
	FlagMissingDisclosure:   {},
	FlagLinkPolicyViolation: {},
}

// HasCriticalFlags сообщает, есть ли среди флагов блокирующие публикацию.
func HasCriticalFlags(flags []string) bool {
	for _, f := range flags {
		if _, ok := criticalFlags[f]; ok {
			return true
		}
	}
	return false
}
