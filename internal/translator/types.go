// Package translator holds the machine translation providers used to fill
// in missing resource values.
package translator

import (
	"context"
	"time"
)

// ServiceConfig carries per-provider settings. SystemPrompt replaces the
// default prompt of the LLM providers.
type ServiceConfig struct {
	Credentials  string        `mapstructure:"credentials" json:"credentials"`
	APIKey       string        `mapstructure:"api_key" json:"api_key"`
	Model        string        `mapstructure:"model" json:"model"`
	BaseURL      string        `mapstructure:"base_url" json:"base_url"`
	Timeout      time.Duration `mapstructure:"timeout" json:"timeout"`
	ProjectID    string        `mapstructure:"project_id" json:"project_id"`
	SystemPrompt string        `mapstructure:"system_prompt" json:"system_prompt"`
}

// TranslateRequest is one value to translate. Context is a hint such as the
// resource key or its comment; Glossary maps source terms to fixed
// translations.
type TranslateRequest struct {
	Text           string            `json:"text"`
	SourceLang     string            `json:"source_lang"`
	TargetLang     string            `json:"target_lang"`
	TargetLangName string            `json:"target_lang_name,omitempty"`
	Context        string            `json:"context,omitempty"`
	Glossary       map[string]string `json:"glossary,omitempty"`
}

type ServiceResult struct {
	ServiceName    string            `json:"service_name"`
	TranslatedText string            `json:"translated_text"`
	Confidence     float64           `json:"confidence"`
	Metadata       map[string]string `json:"metadata"`
	Latency        time.Duration     `json:"latency"`
	Error          string            `json:"error,omitempty"`
}

type TranslationService interface {
	Name() string
	Translate(ctx context.Context, cfg ServiceConfig, req TranslateRequest) (*ServiceResult, error)
	IsAvailable(ctx context.Context) error
	SupportedLanguages(ctx context.Context) ([]string, error)
}
