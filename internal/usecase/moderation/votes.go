package moderation

import (
	"regexp"

	"promo-planner/internal/domain"
)

var directVoteRe = []*regexp.Regexp{
	regexp.MustCompile(`(?i)upvote\s+(this|me|if|for\s+visibility)`),
	regexp.MustCompile(`(?i)give\s+(me|us)\s+karma`),
	regexp.MustCompile(`(?i)smash\s+that\s+upvote`),
	regexp.MustCompile(`(?i)vote\s+this\s+(up|to\s+the\s+top)`),
}

var coordinatedVoteRe = []*regexp.Regexp{
	regexp.MustCompile(`(?i)everyone\s+(go\s+)?upvote`),
	regexp.MustCompile(`(?i)let'?s\s+all\s+(up|down)vote`),
	regexp.MustCompile(`(?i)\bbrigad(e|ing)\b`),
	regexp.MustCompile(`(?i)mass\s+(up|down)vot(e|ing)`),
}

var bareVoteRe = regexp.MustCompile(`(?i)\b(upvote|downvote|updoot|karma)s?\b`)

// detectVoteManipulation ищет просьбы о голосах и координацию голосования.
// Голое упоминание терминов голосования без прочих триггеров — только
// предупреждение.
func detectVoteManipulation(content Content, _ Options) Finding {
	text := content.Text()
	var finding Finding

	direct := false
	for _, re := range directVoteRe {
		if re.MatchString(text) {
			direct = true
			break
		}
	}
	if direct {
		finding.Errors = append(finding.Errors, "Content directly solicits votes")
		finding.Flags = append(finding.Flags, domain.FlagVoteManipulation)
	}

	coordinated := false
	for _, re := range coordinatedVoteRe {
		if re.MatchString(text) {
			coordinated = true
			break
		}
	}
	if coordinated {
		finding.Errors = append(finding.Errors, "Content calls for coordinated voting")
		finding.Flags = append(finding.Flags, domain.FlagCoordinatedVoting)
	}

	if !direct && !coordinated && bareVoteRe.MatchString(text) {
		finding.Warnings = append(finding.Warnings, "Content mentions voting terms")
	}

	return finding
}
