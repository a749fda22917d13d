package translator

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownProvider = errors.New("translator: unknown provider")

// ProviderInfo describes a provider for listings.
type ProviderInfo struct {
	Name           string `json:"name"`
	DisplayName    string `json:"displayName"`
	RequiresAPIKey bool   `json:"requiresApiKey"`
}

var providers = []ProviderInfo{
	{Name: "google", DisplayName: "Google Cloud Translation", RequiresAPIKey: true},
	{Name: "libretranslate", DisplayName: "LibreTranslate", RequiresAPIKey: false},
	{Name: "mymemory", DisplayName: "MyMemory", RequiresAPIKey: false},
	{Name: "ollama", DisplayName: "Ollama (Local LLM)", RequiresAPIKey: false},
	{Name: "openrouter", DisplayName: "OpenRouter", RequiresAPIKey: true},
	{Name: "systran", DisplayName: "SYSTRAN", RequiresAPIKey: true},
}

// Providers lists the supported providers.
func Providers() []ProviderInfo {
	return append([]ProviderInfo(nil), providers...)
}

// NewService creates the provider called name. models and cfg.SystemPrompt
// apply to the LLM providers only.
func NewService(name string, cfg ServiceConfig, models []string) (TranslationService, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "google":
		return NewGoogleService(cfg.Credentials, cfg.APIKey), nil
	case "libretranslate":
		return NewLibreTranslateService(cfg.BaseURL, cfg.APIKey), nil
	case "mymemory":
		return NewMyMemoryService(cfg.Credentials), nil
	case "ollama":
		s := NewOllamaTranslator(cfg.BaseURL, models)
		s.SetSystemPrompt(cfg.SystemPrompt)
		return s, nil
	case "openrouter":
		s := NewOpenRouterService(cfg.APIKey, cfg.BaseURL, models)
		s.SetSystemPrompt(cfg.SystemPrompt)
		return s, nil
	case "systran":
		return NewSystranService(cfg.APIKey), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, name)
}
