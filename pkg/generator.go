package pkg

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/pkg/errors"
	openai "github.com/sashabaranov/go-openai"

	"postforge/pkg/models"
)

type GeneratedPost struct {
	Title         string `json:"title"`
	Content       string `json:"content"`
	TargetKeyword string `json:"target_keyword"`
}

type TopicSuggestion struct {
	Topic         string `json:"topic"`
	TargetKeyword string `json:"target_keyword"`
	Reasoning     string `json:"reasoning"`
}

// PostGenerator is the LLM boundary. The OpenAI implementation backs
// the service; tests substitute fakes.
type PostGenerator interface {
	GeneratePost(ctx context.Context, agent *models.Agent, schedule *models.ScheduleConfig, settings *models.GenerationSettings) (*GeneratedPost, error)
	SuggestTopics(ctx context.Context, agent *models.Agent, existingTitles []string, count int, settings *models.GenerationSettings) ([]TopicSuggestion, error)
}

var _ PostGenerator = (*OpenAIGenerator)(nil)

// OpenAIGenerator talks to OpenAI or any compatible endpoint, with
// transparent retries on transient HTTP failures.
type OpenAIGenerator struct {
	client *openai.Client
}

func NewOpenAIGenerator(config *LLMConfig) *OpenAIGenerator {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = config.RetryMax
	retryClient.Logger = nil

	clientConfig := openai.DefaultConfig(config.ApiKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}
	clientConfig.HTTPClient = retryClient.StandardClient()

	return &OpenAIGenerator{
		client: openai.NewClientWithConfig(clientConfig),
	}
}

func (g *OpenAIGenerator) chat(ctx context.Context, systemPrompt, prompt string, settings *models.GenerationSettings) (string, error) {
	var msgs []openai.ChatCompletionMessage
	if systemPrompt != "" {
		msgs = append(msgs, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: systemPrompt,
		})
	}
	msgs = append(msgs, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: prompt,
	})

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       settings.Model,
		Messages:    msgs,
		MaxTokens:   settings.MaxTokens,
		Temperature: settings.Temperature,
	})
	if err != nil {
		return "", errors.WithMessage(err, "chat completion failed")
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("chat completion returned no choices")
	}

	return resp.Choices[0].Message.Content, nil
}

func (g *OpenAIGenerator) GeneratePost(ctx context.Context, agent *models.Agent, schedule *models.ScheduleConfig, settings *models.GenerationSettings) (*GeneratedPost, error) {
	postLength := schedule.PostLength
	if postLength == "" {
		postLength = agent.PostLength
	}

	prompt, err := RenderPostPrompt(&PostPromptData{
		AgentName:       agent.Name,
		Expertise:       agent.Expertise,
		Persona:         agent.Persona,
		Tone:            agent.Tone,
		PostLength:      postLength,
		TargetKeywords:  schedule.TargetKeywords,
		ExcludeKeywords: schedule.ExcludeKeywords,
	})
	if err != nil {
		return nil, err
	}

	systemPrompt := settings.SystemPrompt
	if systemPrompt == "" {
		systemPrompt = "You are a professional blog writer. Return only valid JSON."
	}

	text, err := g.chat(ctx, systemPrompt, prompt, settings)
	if err != nil {
		return nil, err
	}

	post := new(GeneratedPost)
	if err := json.Unmarshal([]byte(StripCodeFences(text)), post); err != nil {
		return nil, errors.WithMessage(err, "failed to parse generated post")
	}
	if post.Title == "" {
		return nil, errors.New("generated post has no title")
	}

	return post, nil
}

func (g *OpenAIGenerator) SuggestTopics(ctx context.Context, agent *models.Agent, existingTitles []string, count int, settings *models.GenerationSettings) ([]TopicSuggestion, error) {
	prompt, err := RenderTopicPrompt(&TopicPromptData{
		Expertise:      agent.Expertise,
		Tone:           agent.Tone,
		Persona:        agent.Persona,
		Count:          count,
		ExistingTitles: existingTitles,
	})
	if err != nil {
		return nil, err
	}

	text, err := g.chat(ctx, "You are a content strategist. Return only valid JSON.", prompt, settings)
	if err != nil {
		return nil, err
	}

	var raw []TopicSuggestion
	if err := json.Unmarshal([]byte(StripCodeFences(text)), &raw); err != nil {
		return nil, errors.WithMessage(err, "failed to parse topic suggestions")
	}

	suggestions := make([]TopicSuggestion, 0, len(raw))
	for _, s := range raw {
		if s.Topic == "" {
			continue
		}
		suggestions = append(suggestions, s)
	}
	if len(suggestions) > count {
		suggestions = suggestions[:count]
	}

	return suggestions, nil
}

// StripCodeFences unwraps a ```-fenced block, which some models emit
// around the JSON they were told to return bare.
func StripCodeFences(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}

	if idx := strings.Index(text, "\n"); idx >= 0 {
		text = text[idx+1:]
	} else {
		text = strings.TrimPrefix(text, "```")
	}
	if idx := strings.LastIndex(text, "```"); idx >= 0 {
		text = text[:idx]
	}
	return strings.TrimSpace(text)
}
