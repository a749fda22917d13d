package orchestrator

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/valpere/lrm/internal/translator"
)

type mockService struct {
	nameVal       string
	translateFunc func(ctx context.Context, cfg translator.ServiceConfig, req translator.TranslateRequest) (*translator.ServiceResult, error)
	callCount     atomic.Int32
}

func (m *mockService) Name() string { return m.nameVal }

func (m *mockService) Translate(ctx context.Context, cfg translator.ServiceConfig, req translator.TranslateRequest) (*translator.ServiceResult, error) {
	m.callCount.Add(1)
	if m.translateFunc != nil {
		return m.translateFunc(ctx, cfg, req)
	}
	return &translator.ServiceResult{ServiceName: m.nameVal, TranslatedText: "mock result"}, nil
}

func (m *mockService) IsAvailable(ctx context.Context) error { return nil }

func (m *mockService) SupportedLanguages(ctx context.Context) ([]string, error) {
	return []string{"en", "fr"}, nil
}

func fixed(name, text string) *mockService {
	return &mockService{
		nameVal: name,
		translateFunc: func(ctx context.Context, cfg translator.ServiceConfig, req translator.TranslateRequest) (*translator.ServiceResult, error) {
			return &translator.ServiceResult{ServiceName: name, TranslatedText: text}, nil
		},
	}
}

var req = translator.TranslateRequest{Text: "Hello [PH0]", SourceLang: "en", TargetLang: "fr"}

func TestNew_Defaults(t *testing.T) {
	o := New([]translator.TranslationService{&mockService{nameVal: "mock1"}}, OrchestratorConfig{})

	if o.config.MaxAttempts != 3 {
		t.Errorf("expected MaxAttempts=3, got %d", o.config.MaxAttempts)
	}
	if o.config.RetryDelay <= 0 || o.config.Timeout <= 0 {
		t.Error("expected positive RetryDelay and Timeout")
	}
	if o.validator == nil {
		t.Error("expected marker validator by default")
	}
}

func TestNew_CustomValidator(t *testing.T) {
	called := false
	o := New(nil, OrchestratorConfig{Validator: func(translator.TranslateRequest, *translator.ServiceResult) error {
		called = true
		return nil
	}})
	if err := o.validator(req, &translator.ServiceResult{}); err != nil || !called {
		t.Errorf("expected configured validator to run, called=%v err=%v", called, err)
	}
}

func TestExecute_KeepsServiceOrder(t *testing.T) {
	slow := &mockService{
		nameVal: "slow",
		translateFunc: func(ctx context.Context, cfg translator.ServiceConfig, req translator.TranslateRequest) (*translator.ServiceResult, error) {
			time.Sleep(50 * time.Millisecond)
			return &translator.ServiceResult{ServiceName: "slow", TranslatedText: "Bonjour [PH0]"}, nil
		},
	}
	services := []translator.TranslationService{slow, fixed("fast", "Salut [PH0]"), fixed("third", "Coucou [PH0]")}

	o := New(services, OrchestratorConfig{Timeout: 5 * time.Second, MaxAttempts: 1})
	result := o.Execute(context.Background(), translator.ServiceConfig{}, req)

	if result.Succeeded != 3 || result.Failed != 0 {
		t.Fatalf("expected 3/0, got %d/%d", result.Succeeded, result.Failed)
	}
	for i, want := range []string{"slow", "fast", "third"} {
		if result.Results[i].ServiceName != want {
			t.Errorf("Results[%d] = %s, want %s", i, result.Results[i].ServiceName, want)
		}
	}
}

func TestExecute_WithFailures(t *testing.T) {
	failing := &mockService{
		nameVal: "failing",
		translateFunc: func(ctx context.Context, cfg translator.ServiceConfig, req translator.TranslateRequest) (*translator.ServiceResult, error) {
			return nil, errors.New("service unavailable")
		},
	}
	o := New([]translator.TranslationService{failing, fixed("ok", "Bonjour [PH0]")}, OrchestratorConfig{
		MaxAttempts: 2,
		RetryDelay:  time.Millisecond,
	})

	result := o.Execute(context.Background(), translator.ServiceConfig{}, req)

	if result.Succeeded != 1 || result.Failed != 1 {
		t.Errorf("expected 1/1, got %d/%d", result.Succeeded, result.Failed)
	}
	if len(result.Errors) != 1 {
		t.Fatalf("expected 1 error, got %d", len(result.Errors))
	}
	if failing.callCount.Load() != 2 {
		t.Errorf("expected 2 attempts, got %d", failing.callCount.Load())
	}
}

func TestExecute_RetriesResultErrors(t *testing.T) {
	var calls atomic.Int32
	svc := &mockService{
		nameVal: "flaky",
		translateFunc: func(ctx context.Context, cfg translator.ServiceConfig, req translator.TranslateRequest) (*translator.ServiceResult, error) {
			if calls.Add(1) < 3 {
				return &translator.ServiceResult{ServiceName: "flaky", Error: "temporary failure"}, nil
			}
			return &translator.ServiceResult{ServiceName: "flaky", TranslatedText: "Bonjour [PH0]"}, nil
		},
	}
	o := New([]translator.TranslationService{svc}, OrchestratorConfig{MaxAttempts: 3, RetryDelay: time.Millisecond})

	result := o.Execute(context.Background(), translator.ServiceConfig{}, req)

	if result.Succeeded != 1 {
		t.Errorf("expected success after retry, got %d", result.Succeeded)
	}
	if svc.callCount.Load() != 3 {
		t.Errorf("expected 3 calls, got %d", svc.callCount.Load())
	}
}

func TestExecute_RetriesDroppedMarkers(t *testing.T) {
	var calls atomic.Int32
	svc := &mockService{
		nameVal: "lossy",
		translateFunc: func(ctx context.Context, cfg translator.ServiceConfig, req translator.TranslateRequest) (*translator.ServiceResult, error) {
			if calls.Add(1) == 1 {
				return &translator.ServiceResult{ServiceName: "lossy", TranslatedText: "Bonjour"}, nil
			}
			return &translator.ServiceResult{ServiceName: "lossy", TranslatedText: "Bonjour [PH0]"}, nil
		},
	}
	o := New([]translator.TranslationService{svc}, OrchestratorConfig{MaxAttempts: 3, RetryDelay: time.Millisecond})

	result := o.Execute(context.Background(), translator.ServiceConfig{}, req)

	if result.Succeeded != 1 || result.Results[0].TranslatedText != "Bonjour [PH0]" {
		t.Errorf("expected repaired result, got %+v", result.Results)
	}
	if svc.callCount.Load() != 2 {
		t.Errorf("expected 2 calls, got %d", svc.callCount.Load())
	}
}

func TestExecute_FinalRejectedAttemptIsKept(t *testing.T) {
	svc := fixed("lossy", "Bonjour")
	o := New([]translator.TranslationService{svc}, OrchestratorConfig{MaxAttempts: 2, RetryDelay: time.Millisecond})

	result := o.Execute(context.Background(), translator.ServiceConfig{}, req)

	if result.Succeeded != 1 {
		t.Errorf("expected the final attempt to be returned, got %d", result.Succeeded)
	}
	if svc.callCount.Load() != 2 {
		t.Errorf("expected 2 calls, got %d", svc.callCount.Load())
	}
}

func TestExecute_CustomValidator(t *testing.T) {
	svc := fixed("any", "Bonjour")
	rejectAll := func(translator.TranslateRequest, *translator.ServiceResult) error { return errors.New("no") }
	o := New([]translator.TranslationService{svc}, OrchestratorConfig{MaxAttempts: 3, RetryDelay: time.Millisecond, Validator: rejectAll})

	o.Execute(context.Background(), translator.ServiceConfig{}, translator.TranslateRequest{Text: "Hello"})

	if svc.callCount.Load() != 3 {
		t.Errorf("expected 3 calls, got %d", svc.callCount.Load())
	}
}

func TestExecute_CancelledBetweenAttempts(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	svc := &mockService{
		nameVal: "cancel",
		translateFunc: func(ctx context.Context, cfg translator.ServiceConfig, req translator.TranslateRequest) (*translator.ServiceResult, error) {
			cancel()
			return nil, errors.New("boom")
		},
	}
	o := New([]translator.TranslationService{svc}, OrchestratorConfig{MaxAttempts: 3, RetryDelay: time.Second})

	result := o.Execute(ctx, translator.ServiceConfig{}, req)

	if result.Failed != 1 || !errors.Is(result.Errors[0], context.Canceled) {
		t.Errorf("expected cancellation error, got %v", result.Errors)
	}
	if svc.callCount.Load() != 1 {
		t.Errorf("expected 1 call, got %d", svc.callCount.Load())
	}
}

func TestMarkersPreserved(t *testing.T) {
	r := translator.TranslateRequest{Text: "[PH0] of [PH1]"}
	if err := MarkersPreserved(r, &translator.ServiceResult{TranslatedText: "[PH1] de [PH0]"}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := MarkersPreserved(r, &translator.ServiceResult{TranslatedText: "[PH0]"}); err == nil {
		t.Error("expected error for dropped marker")
	}
	if err := MarkersPreserved(translator.TranslateRequest{Text: "plain"}, &translator.ServiceResult{}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	sparse := translator.TranslateRequest{Text: "[PH2] and [PH5]"}
	err := MarkersPreserved(sparse, &translator.ServiceResult{ServiceName: "mock", TranslatedText: "[PH2] et [PH0]"})
	if err == nil || !strings.Contains(err.Error(), "dropped 1 placeholder marker") {
		t.Errorf("expected one dropped marker, got %v", err)
	}
}
