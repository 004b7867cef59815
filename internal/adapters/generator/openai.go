package generator

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"promo-planner/internal/domain"
	openai "promo-planner/internal/infra/openai"
)

type chatClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// OpenAI реализует Generator через OpenAI Chat Completions.
type OpenAI struct {
	client  chatClient
	model   string
	timeout time.Duration
}

// NewOpenAI создаёт провайдер генерации.
func NewOpenAI(client chatClient, model string, timeout time.Duration) *OpenAI {
	if model == "" {
		model = "gpt-4o-mini"
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &OpenAI{client: client, model: model, timeout: timeout}
}

type contentPayload struct {
	Title     string   `json:"title"`
	Body      string   `json:"body"`
	RiskFlags []string `json:"risk_flags"`
}

// Generate строит текст элемента треда через LLM. Транскрипт уже написанных
// реплик передаётся в промпт, чтобы продолжение было связным.
func (g *OpenAI) Generate(ctx context.Context, genCtx domain.GenerationContext) (domain.GeneratedContent, error) {
	reqCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	req := openai.ChatCompletionRequest{
		Model:       g.model,
		Temperature: 0.7,
		MaxTokens:   700,
		Messages: []openai.ChatMessage{
			{Role: openai.RoleSystem, Content: g.systemPrompt(genCtx)},
			{Role: openai.RoleUser, Content: g.userPrompt(genCtx)},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ResponseFormatTypeJSONObject},
	}

	resp, err := g.client.CreateChatCompletion(reqCtx, req)
	if err != nil {
		return domain.GeneratedContent{}, fmt.Errorf("openai completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return domain.GeneratedContent{}, fmt.Errorf("openai completion: пустой ответ")
	}
	raw := strings.TrimSpace(resp.Choices[0].Message.Content)
	var parsed contentPayload
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return domain.GeneratedContent{}, fmt.Errorf("распаковка ответа LLM: %w", err)
	}
	content := domain.GeneratedContent{
		Title:     strings.TrimSpace(parsed.Title),
		Body:      strings.TrimSpace(parsed.Body),
		RiskFlags: parsed.RiskFlags,
	}
	if content.Body == "" {
		return domain.GeneratedContent{}, fmt.Errorf("openai completion: пустое тело текста")
	}
	return content, nil
}

func (g *OpenAI) systemPrompt(genCtx domain.GenerationContext) string {
	var b strings.Builder
	b.WriteString("You write natural, conversational Reddit content in English. ")
	b.WriteString("Never solicit votes, never use link shorteners, never stack promotional cliches. ")
	b.WriteString(`Return JSON of the form {"title": "...", "body": "...", "risk_flags": ["..."]} with no extra commentary. `)
	b.WriteString("Leave title empty for comments and replies. List in risk_flags anything a subreddit moderator could object to.")
	if genCtx.Persona.DisclosureRequired && genCtx.Project.CompanyName != "" {
		b.WriteString(fmt.Sprintf(" The author must disclose affiliation with %s, for example %q.",
			genCtx.Project.CompanyName, "Disclosure: I work at "+genCtx.Project.CompanyName+"."))
	}
	return b.String()
}

func (g *OpenAI) userPrompt(genCtx domain.GenerationContext) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Persona: %s. Bio: %s. Tone: %s.\n", genCtx.Persona.Name, genCtx.Persona.Bio, genCtx.Persona.Tone)
	fmt.Fprintf(&b, "Subreddit: r/%s.\n", genCtx.Subreddit.Name)
	if rules := strings.TrimSpace(genCtx.Subreddit.RulesText); rules != "" {
		fmt.Fprintf(&b, "Subreddit rules: %s\n", rules)
	}
	fmt.Fprintf(&b, "Topic: %s\n", genCtx.Topic.Text)

	switch genCtx.Slot.AssetType {
	case domain.AssetPost:
		b.WriteString("Write the original post for this thread: a title and a body that invites genuine discussion.\n")
	case domain.AssetFollowup:
		fmt.Fprintf(&b, "Write the original poster's reply to an earlier comment. Conversational intent: %s.\n", genCtx.Slot.Intent)
	default:
		fmt.Fprintf(&b, "Write a top-level comment in this thread. Conversational intent: %s.\n", genCtx.Slot.Intent)
	}

	if len(genCtx.Transcript) > 0 {
		b.WriteString("Thread so far:\n")
		for _, entry := range genCtx.Transcript {
			fmt.Fprintf(&b, "- %s (%s): %s\n", entry.PersonaName, entry.Intent, clipRunes(entry.Body, 300))
		}
	}
	return b.String()
}
