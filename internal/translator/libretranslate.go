package translator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const defaultLibreTranslateURL = "https://libretranslate.com"

type LibreTranslateService struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewLibreTranslateService(baseURL, apiKey string) *LibreTranslateService {
	if baseURL == "" {
		baseURL = defaultLibreTranslateURL
	}
	return &LibreTranslateService{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (s *LibreTranslateService) Name() string {
	return "libretranslate"
}

func (s *LibreTranslateService) Translate(ctx context.Context, cfg ServiceConfig, req TranslateRequest) (*ServiceResult, error) {
	result := &ServiceResult{ServiceName: s.Name()}
	start := time.Now()
	defer func() { result.Latency = time.Since(start) }()

	apiKey := s.apiKey
	if apiKey == "" {
		apiKey = cfg.APIKey
	}
	source := req.SourceLang
	if source == "" {
		source = "auto"
	}

	body := map[string]string{
		"q":      req.Text,
		"source": source,
		"target": req.TargetLang,
		"format": "text",
	}
	if apiKey != "" {
		body["api_key"] = apiKey
	}

	jsonData, err := json.Marshal(body)
	if err != nil {
		result.Error = fmt.Sprintf("failed to marshal request: %v", err)
		return result, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/translate", bytes.NewBuffer(jsonData))
	if err != nil {
		result.Error = fmt.Sprintf("failed to create request: %v", err)
		return result, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		result.Error = fmt.Sprintf("request failed: %v", err)
		return result, err
	}
	defer resp.Body.Close()

	var ltResp struct {
		TranslatedText   string `json:"translatedText"`
		Error            string `json:"error"`
		DetectedLanguage struct {
			Language   string  `json:"language"`
			Confidence float64 `json:"confidence"`
		} `json:"detectedLanguage"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&ltResp); err != nil {
		result.Error = fmt.Sprintf("failed to decode response: %v", err)
		return result, err
	}

	if resp.StatusCode != http.StatusOK {
		result.Error = fmt.Sprintf("API returned status %d: %s", resp.StatusCode, ltResp.Error)
		return result, fmt.Errorf("API returned status %d", resp.StatusCode)
	}

	result.TranslatedText = ltResp.TranslatedText
	result.Confidence = 0.8
	if ltResp.DetectedLanguage.Language != "" {
		result.Metadata = map[string]string{"detected_source": ltResp.DetectedLanguage.Language}
	}

	return result, nil
}

func (s *LibreTranslateService) IsAvailable(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/languages", nil)
	if err != nil {
		return err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("LibreTranslate not available: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("LibreTranslate returned status %d", resp.StatusCode)
	}
	return nil
}

func (s *LibreTranslateService) SupportedLanguages(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/languages", nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var langs []struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&langs); err != nil {
		return nil, fmt.Errorf("failed to decode languages: %w", err)
	}
	codes := make([]string, len(langs))
	for i, l := range langs {
		codes[i] = l.Code
	}
	return codes, nil
}
