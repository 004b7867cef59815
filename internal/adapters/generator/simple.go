package generator

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"promo-planner/internal/domain"
)

// SimpleGenerator реализует доменный Generator шаблонами без LLM.
// Используется как запасной провайдер и в тестах.
type SimpleGenerator struct{}

// NewSimple создаёт генератор.
func NewSimple() *SimpleGenerator {
	return &SimpleGenerator{}
}

var commentTemplates = map[domain.CommentIntent]string{
	domain.IntentQuestion:           "How long have you been doing this? I'm wondering whether %s actually holds up over a few months.",
	domain.IntentCounterpoint:       "I had a different experience with %s. It worked for a while, then the results flattened out for me.",
	domain.IntentAddExample:         "Adding to this: we tried something similar around %s and the setup cost was the hardest part.",
	domain.IntentClarify:            "Just to clarify what you mean by %s: is that measured per week or overall?",
	domain.IntentAgree:              "This matches what I've seen with %s. The consistency matters more than the tooling.",
	domain.IntentPersonalExperience: "I spent about a year on %s at my last job. The first month was rough, after that it got easier.",
	domain.IntentThanks:             "Thanks for writing this up, the part about %s was exactly what I was looking for.",
}

var followupTemplates = map[domain.CommentIntent]string{
	domain.IntentClarify:    "Good question. To clarify, I meant %s in the weekly sense, not cumulative.",
	domain.IntentThanks:     "Thanks, glad it was useful. Happy to expand on %s if anyone wants details.",
	domain.IntentAddExample: "One more example since you asked: with %s we started small and scaled only after the numbers stabilized.",
}

// Generate строит текст элемента треда из темы, персоны и намерения.
func (g *SimpleGenerator) Generate(_ context.Context, genCtx domain.GenerationContext) (domain.GeneratedContent, error) {
	topic := strings.TrimSpace(genCtx.Topic.Text)
	if topic == "" {
		topic = "this approach"
	}

	switch genCtx.Slot.AssetType {
	case domain.AssetPost:
		return g.generatePost(genCtx, topic), nil
	case domain.AssetFollowup:
		tpl, ok := followupTemplates[genCtx.Slot.Intent]
		if !ok {
			tpl = followupTemplates[domain.IntentClarify]
		}
		return domain.GeneratedContent{Body: fmt.Sprintf(tpl, clipRunes(topic, 80))}, nil
	default:
		tpl, ok := commentTemplates[genCtx.Slot.Intent]
		if !ok {
			tpl = commentTemplates[domain.IntentAgree]
		}
		return domain.GeneratedContent{Body: fmt.Sprintf(tpl, clipRunes(topic, 80))}, nil
	}
}

func (g *SimpleGenerator) generatePost(genCtx domain.GenerationContext, topic string) domain.GeneratedContent {
	title := clipRunes(topic, 120)
	var body strings.Builder
	body.WriteString(fmt.Sprintf("I've been thinking a lot about %s lately and wanted to hear how others here approach it.\n\n", topic))
	if tone := strings.TrimSpace(genCtx.Persona.Tone); tone != "" {
		body.WriteString(fmt.Sprintf("My take is fairly %s: start small, measure, adjust.\n\n", tone))
	}
	body.WriteString("What has worked for you, and what would you do differently if you were starting today?")
	if genCtx.Persona.DisclosureRequired && genCtx.Project.CompanyName != "" {
		body.WriteString(fmt.Sprintf("\n\nDisclosure: I work at %s.", genCtx.Project.CompanyName))
	}
	return domain.GeneratedContent{Title: title, Body: body.String()}
}

func clipRunes(text string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(text) <= limit {
		return text
	}
	runes := []rune(text)
	return string(runes[:limit])
}
