package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/sirupsen/logrus"
)

const (
	maxTokens         = 4096
	maxWebSearchUses  = 10
	discoveryQuestion = "Find recent geopolitical threats to the maritime industry."
)

// analystPrompt is the fixed instruction for the discovery agent. The model is
// expected to answer with a single JSON object under a "reports" key.
const analystPrompt = `You are an expert maritime geopolitical and tariffs analyst. Your task is to identify and summarize current geopolitical threats to the maritime industry and tariff fluctuations based on web search results.
Use only data from the last two weeks. Use the latest news articles and reports. Use various sources.
Extract the following information for each relevant threat:
- title: A concise title for the threat or tariff fluctuation.
- region: The primary geographical region affected (e.g., "Red Sea", "South China Sea", "Global").
- category: A broad category for the threat (e.g., "Geopolitical Instability", "Piracy", "Environmental", "Cyber Attack", "Geopolitical Competition").
- description: A brief summary (2-3 sentences) of the threat.
- potential_impact: A brief description of the potential impact on the maritime industry (e.g., "Increased shipping costs", "Disruption of trade routes").
- source_urls: A list of URLs from the search results that support this threat.
- date_mentioned: The date when the threat was mentioned in the sources. If no date is available, use "Not specified".

Format your response as a JSON object with a single key "reports" containing a list of threat objects. Do not include any text outside the JSON object.

If you find no new, credible threats, return a JSON object with an empty list: {"reports": []}.`

// Client wraps the Anthropic API behind a single discovery operation.
type Client struct {
	client anthropic.Client
	model  anthropic.Model
}

// Ensure Client implements AgentInterface
var _ AgentInterface = (*Client)(nil)

// NewClient creates a new discovery agent client
func NewClient(apiKey, model string) *Client {
	return &Client{
		client: anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:  anthropic.Model(model),
	}
}

// Discover asks the model, equipped with web search, for current maritime
// threats and returns the raw response text. The text is expected to embed a
// JSON object but is returned verbatim; parsing happens downstream.
func (c *Client) Discover(ctx context.Context) (string, error) {
	logrus.Infof("Querying %s for maritime threat reports", c.model)

	message, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: maxTokens,
		System: []anthropic.TextBlockParam{
			{Text: analystPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(discoveryQuestion)),
		},
		Tools: []anthropic.ToolUnionParam{
			{
				OfWebSearchTool20250305: &anthropic.WebSearchTool20250305Param{
					MaxUses: anthropic.Int(maxWebSearchUses),
				},
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic request failed: %w", err)
	}

	var text strings.Builder
	for _, block := range message.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}

	logrus.Debugf("Agent returned %d content blocks (%d bytes of text)", len(message.Content), text.Len())
	return text.String(), nil
}
