package leads

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"airtech/pkg/ai"
	"airtech/pkg/domain"
)

// Client turns one company profile into a list of leads by prompting the
// AI backend and parsing its untrusted reply. It does not retry.
type Client struct {
	generator ai.GroundedGenerator
}

// NewClient builds a lead search client over a grounded generator.
func NewClient(generator ai.GroundedGenerator) *Client {
	return &Client{generator: generator}
}

// Search builds the prompt for the profile, invokes the backend and
// returns the parsed leads.
func (c *Client) Search(ctx context.Context, profile domain.CompanyProfile) ([]domain.Lead, error) {
	prompt := BuildPrompt(profile)
	raw, err := c.generator.GenerateGroundedText(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	return parseLeads(raw)
}

// parseLeads strips optional code fences and decodes the reply. The array
// elements are decoded one by one so a non-object element downgrades to
// ErrInvalidResponseShape instead of surfacing a bare decode error;
// missing fields inside an object simply stay blank.
func parseLeads(raw string) ([]domain.Lead, error) {
	text := stripFences(strings.TrimSpace(raw))
	if !json.Valid([]byte(text)) {
		return nil, ErrMalformedResponse
	}
	// A bare null unmarshals into a nil slice without error, so the
	// array check has to look at the payload itself.
	if !strings.HasPrefix(text, "[") {
		return nil, ErrInvalidResponseShape
	}
	var elements []json.RawMessage
	if err := json.Unmarshal([]byte(text), &elements); err != nil {
		return nil, ErrInvalidResponseShape
	}
	leads := make([]domain.Lead, 0, len(elements))
	for _, element := range elements {
		var lead domain.Lead
		if err := json.Unmarshal(element, &lead); err != nil {
			return nil, ErrInvalidResponseShape
		}
		leads = append(leads, lead)
	}
	return leads, nil
}

// stripFences removes at most one leading and one trailing markdown fence
// token. Nested fences are not handled.
func stripFences(text string) string {
	if strings.HasPrefix(text, "```json") {
		text = text[len("```json"):]
	} else if strings.HasPrefix(text, "```") {
		text = text[len("```"):]
	}
	if strings.HasSuffix(strings.TrimSpace(text), "```") {
		trimmed := strings.TrimSpace(text)
		text = trimmed[:len(trimmed)-len("```")]
	}
	return strings.TrimSpace(text)
}
