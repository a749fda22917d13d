package arbiter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	logging "github.com/ipfs/go-log/v2"
	"github.com/samber/lo"

	"github.com/valpere/lrm/internal/translator"
)

var log = logging.Logger("lrm/arbiter")

const DefaultOllamaURL = "http://localhost:11434"

type OllamaArbiter struct {
	model   string
	baseURL string
	client  *http.Client
}

type OllamaRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
	Format string `json:"format"`
}

type OllamaResponse struct {
	Response string `json:"response"`
}

func NewOllamaArbiter(model, baseURL string) *OllamaArbiter {
	if baseURL == "" {
		baseURL = DefaultOllamaURL
	}
	return &OllamaArbiter{
		model:   model,
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

func (a *OllamaArbiter) Choose(ctx context.Context, req Request) (*Decision, error) {
	if d, done, err := single(req); done {
		return d, err
	}

	reqBody := OllamaRequest{
		Model:  a.model,
		Prompt: buildPrompt(req),
		Stream: false,
		Format: "json",
	}
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/api/generate", bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("arbiter request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("arbiter returned status %d", resp.StatusCode)
	}

	var ollamaResp OllamaResponse
	if err := json.NewDecoder(resp.Body).Decode(&ollamaResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	d, err := parseDecision(ollamaResp.Response, req.Candidates)
	if err != nil {
		return nil, err
	}
	log.Debugw("arbiter decision", "key", req.Key, "target", req.TargetLang, "provider", d.Provider, "composite", d.Composite)
	return d, nil
}

func buildPrompt(req Request) string {
	var sb strings.Builder
	sb.WriteString("You are a professional evaluator of software user interface translations.\n")
	fmt.Fprintf(&sb, "Resource key: %s\n", req.Key)
	fmt.Fprintf(&sb, "Original text in %s:\n%q\n\n", translator.LanguageDisplayName(req.SourceLang), req.Source)
	fmt.Fprintf(&sb, "Candidate translations to %s:\n", translator.LanguageDisplayName(req.TargetLang))
	for i, c := range req.Candidates {
		fmt.Fprintf(&sb, "  %d. [%s]: %q\n", i+1, c.Provider, c.Text)
	}

	providers := lo.Map(req.Candidates, func(c Candidate, _ int) string { return c.Provider })
	fmt.Fprintf(&sb, `Select the best translation or compose an improved one from the candidates.
Keep every placeholder such as {0}, {name}, %%s or ${value} exactly as written in the original.
Respond ONLY in JSON:
{
  "selected_service": "%s|%s",
  "final_text": "...",
  "reasoning": "..."
}
`, strings.Join(providers, "|"), CompositeProvider)

	return sb.String()
}

// parseDecision reads the model reply. A known provider with no final text
// selects that provider's candidate.
func parseDecision(response string, candidates []Candidate) (*Decision, error) {
	var parsed struct {
		SelectedService string `json:"selected_service"`
		FinalText       string `json:"final_text"`
		Reasoning       string `json:"reasoning"`
	}
	if err := json.Unmarshal([]byte(strings.TrimSpace(response)), &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse arbiter response as JSON: %w", err)
	}

	d := &Decision{
		Provider:  parsed.SelectedService,
		Text:      strings.TrimSpace(parsed.FinalText),
		Composite: parsed.SelectedService == CompositeProvider,
		Reasoning: parsed.Reasoning,
	}
	if d.Composite {
		if d.Text == "" {
			return nil, fmt.Errorf("arbiter returned an empty composite translation")
		}
		return d, nil
	}

	c, ok := lo.Find(candidates, func(c Candidate) bool { return c.Provider == d.Provider })
	if !ok {
		return nil, fmt.Errorf("arbiter selected unknown provider %q", d.Provider)
	}
	if d.Text == "" {
		d.Text = c.Text
	}
	return d, nil
}
