package phrase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

type Kind string

const (
	KindSplit   Kind = "split"
	KindTooSlow Kind = "too_slow"
	KindTooFast Kind = "too_fast"
)

// Request describes the coaching situation a phrase is wanted for.
type Request struct {
	Kind       Kind
	TargetPace float64
}

// Generator asks a chat-completion endpoint for a short motivational phrase.
// Every failure degrades to an empty result; a run never stops because the
// coach has nothing to say.
type Generator struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

func NewGenerator(baseURL, apiKey, model string) *Generator {
	return &Generator{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
		client:  &http.Client{Timeout: 5 * time.Second},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (g *Generator) Generate(ctx context.Context, req Request) (string, error) {
	payload, err := json.Marshal(chatRequest{
		Model:       g.model,
		Messages:    []chatMessage{{Role: "user", Content: promptFor(req)}},
		Temperature: 0.8,
	})
	if err != nil {
		return "", err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/v1/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Authorization", "Bearer "+g.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("phrase provider returned status %d", resp.StatusCode)
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("phrase response malformed: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("phrase response contained no choices")
	}
	return strings.TrimSpace(parsed.Choices[0].Message.Content), nil
}

func promptFor(req Request) string {
	switch req.Kind {
	case KindTooSlow:
		return fmt.Sprintf("Ich laufe gerade langsamer als meine Zielpace von %.2f min/km. "+
			"Gib mir einen motivierenden, aber nicht zu langen Satz auf Deutsch (maximal 8 Wörter), "+
			"der mich freundlich dazu bringt, wieder mein Zieltempo zu erreichen.", req.TargetPace)
	case KindTooFast:
		return fmt.Sprintf("Ich laufe gerade schneller als meine Zielpace von %.2f min/km. "+
			"Gib mir einen kurzen, freundlichen Hinweis auf Deutsch (maximal 8 Wörter), "+
			"dass ich etwas langsamer machen soll.", req.TargetPace)
	default:
		return "Gib mir einen sehr kurzen, motivierenden Spruch auf Deutsch (maximal 5 Wörter) " +
			"für einen Läufer. Keine Sätze, nur knackige Sprüche wie \"Weiter so!\" oder \"Stark bleiben!\""
	}
}
