// Package extract is the agent-side statement reader. It sends the uploaded
// statement to Gemini and expects strict JSON back.
package extract

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/dvloznov/finance-dashboard/internal/domain"
)

const basePrompt = "You are an expert finance analyzer. You will be given a bank or card " +
	"statement as an image or PDF. Read the transactions precisely.\n\n" +
	"Task:\n" +
	"- Parse ALL transactions in the attached statement.\n" +
	"- Output STRICT JSON only (no comments, no trailing commas, no extra text).\n" +
	"- Output a JSON array of objects.\n\n" +
	"Each object must have these fields:\n" +
	"- \"description\": string, concise, maximum 3 words, lower case\n" +
	"- \"amount\": number\n" +
	"- \"date\": string, ISO format \"YYYY-MM-DD\" (use 2025 as the year if it cannot be found)\n" +
	"- \"category\": string, one of: Income, Food, Shopping, Entertainment, Bills, Transport, Health, Electronics, Software\n" +
	"- \"type\": string, one of: income, expense\n" +
	"- \"icon\": string, one of: shopping-bag, shopping-cart, briefcase\n\n" +
	"Rules:\n" +
	"- Disregard rows with description PAYMENT THANK YOU (they are credit card payments).\n" +
	"- Return ONLY valid raw JSON.\n" +
	"- Do NOT wrap the response in code fences.\n" +
	"- Output must begin with \"[\" and end with \"]\".\n"

const chatPrompt = "You are a friendly personal finance assistant inside a budgeting " +
	"dashboard. Answer briefly and practically. When the user describes a " +
	"purchase or income in free text, acknowledge it; do not invent data."

// Reader reads statements and answers chat turns with Gemini.
type Reader struct {
	client *genai.Client
	model  string
}

// NewReader creates a Reader. Credentials come from the environment, the
// same way the rest of the Google stack is configured.
func NewReader(ctx context.Context, model string) (*Reader, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("extract: create genai client: %w", err)
	}
	return &Reader{client: client, model: model}, nil
}

// ReadStatement extracts transactions from statement bytes. A model reply
// that cannot be parsed is an error; an empty array is a valid outcome.
func (r *Reader) ReadStatement(ctx context.Context, data []byte, mimeType, userMessage string) ([]domain.ExtractedRecord, error) {
	prompt := basePrompt
	if strings.TrimSpace(userMessage) != "" {
		prompt += "\nThe customer says: " + userMessage + "\n"
	}

	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: prompt},
				{
					InlineData: &genai.Blob{
						MIMEType: mimeType,
						Data:     data,
					},
				},
			},
		},
	}

	resp, err := r.client.Models.GenerateContent(ctx, r.model, contents, nil)
	if err != nil {
		return nil, fmt.Errorf("extract: generate content: %w", err)
	}

	rawText := resp.Text()
	if rawText == "" {
		return nil, fmt.Errorf("extract: empty response from model")
	}

	records, err := ParseRecords(rawText)
	if err != nil {
		return nil, fmt.Errorf("extract: %w\nraw response: %s", err, rawText)
	}
	return records, nil
}

// Reply answers a text-only chat turn, threading prior turns for context.
func (r *Reader) Reply(ctx context.Context, history []Turn, message string) (string, error) {
	contents := []*genai.Content{
		{Role: "user", Parts: []*genai.Part{{Text: chatPrompt}}},
	}
	for _, turn := range history {
		contents = append(contents, &genai.Content{
			Role:  turn.Role,
			Parts: []*genai.Part{{Text: turn.Text}},
		})
	}
	contents = append(contents, &genai.Content{
		Role:  "user",
		Parts: []*genai.Part{{Text: message}},
	})

	resp, err := r.client.Models.GenerateContent(ctx, r.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("extract: generate content: %w", err)
	}

	answer := resp.Text()
	if answer == "" {
		return "", fmt.Errorf("extract: empty response from model")
	}
	return answer, nil
}
