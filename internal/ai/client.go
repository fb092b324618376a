// Package ai drafts puzzle hints with OpenAI. It is only used by the
// authoring CLI; the game itself never calls out to the API.
package ai

import (
	"context"
	"fmt"
	"os"

	"github.com/detectivesigma/sigma/internal/errors"
	"github.com/detectivesigma/sigma/internal/models"
	"github.com/sashabaranov/go-openai"
)

type Client struct {
	client *openai.Client
}

func NewClient() Client {
	return Client{
		client: openai.NewClient(os.Getenv("OPENAI_API_KEY")),
	}
}

const MaxTokens = 512

const hintSystemPrompt = `You write hints for a detective game played by ` +
	`Singaporean primary school pupils. A hint nudges the player towards the ` +
	`answer without revealing it. Keep it to one or two sentences, use simple ` +
	`vocabulary, and never state the answer.`

// DraftHint asks the model for a hint for the given puzzle. The returned text
// still goes through an editor before it lands in the case content.
func (c *Client) DraftHint(ctx context.Context, caseTitle string, puzzle models.Puzzle) (string, error) {
	prompt := fmt.Sprintf("Case: %s\nQuestion: %s\nAnswer (do not reveal): %s",
		caseTitle, puzzle.Question, puzzle.CorrectAnswer)
	completion, err := c.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{ //nolint:exhaustruct // this is better for readability
			Model:     openai.GPT3Dot5Turbo1106,
			MaxTokens: MaxTokens,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleSystem, Content: hintSystemPrompt},
				{Role: openai.ChatMessageRoleUser, Content: prompt},
			},
		},
	)
	if err != nil {
		return "", errors.Wrap(err, "create chat completion")
	}
	if len(completion.Choices) == 0 {
		return "", errors.New("no completion choices")
	}
	return completion.Choices[0].Message.Content, nil
}
