// Package autotranslate fills in resource values with machine translation.
// Placeholders are shielded from providers with markers and every candidate
// is checked against the source before it is accepted.
package autotranslate

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	logging "github.com/ipfs/go-log/v2"
	"github.com/samber/lo"

	"github.com/valpere/lrm/internal/arbiter"
	"github.com/valpere/lrm/internal/detector"
	"github.com/valpere/lrm/internal/orchestrator"
	"github.com/valpere/lrm/internal/placeholder"
	"github.com/valpere/lrm/internal/postprocess"
	"github.com/valpere/lrm/internal/resource"
	"github.com/valpere/lrm/internal/store"
	"github.com/valpere/lrm/internal/translator"
)

var log = logging.Logger("lrm/autotranslate")

var (
	ErrNoDefault  = errors.New("autotranslate: no default language file")
	ErrNoServices = errors.New("autotranslate: no translation services")
)

const (
	memoryProvider     = "memory"
	fallbackSourceLang = "en"
	detectSampleSize   = 50
)

// Store is the persistence the pipeline uses when set. *store.Store
// implements it.
type Store interface {
	GetCachedTranslation(ctx context.Context, sourceText, sourceLang, targetLang string) (string, bool, error)
	SaveToMemory(ctx context.Context, sourceText, sourceLang, targetLang, translated, provider string) error
	GetGlossaryTerms(ctx context.Context, sourceLang, targetLang string) (map[string]string, error)
	LogTranslation(ctx context.Context, e store.LogEntry) error
}

type Pipeline struct {
	Services    []translator.TranslationService
	Store       Store
	Config      translator.ServiceConfig
	Timeout     time.Duration
	MaxAttempts int
	// SourceLang is the language of the default file. When empty it is
	// detected with Detector, or assumed to be English.
	SourceLang string
	Detector   *detector.Detector
	// Placeholders selects the families that are protected and validated.
	// Nil means every family.
	Placeholders *placeholder.Detector
	// Arbiter, when set, chooses among several valid candidates. Without it
	// the first valid candidate in service order wins.
	Arbiter arbiter.Arbiter
}

type Options struct {
	// Keys limits the run to these keys. Empty means every key.
	Keys []string
	// OnlyMissing translates only keys absent from the target file.
	OnlyMissing bool
	// TargetLanguages limits the run to these language codes.
	TargetLanguages []string
	DryRun          bool
	// Overwrite also retranslates keys that already have a value.
	Overwrite bool
}

// Item is the outcome for one key in one language.
type Item struct {
	Key         string `json:"key"`
	Language    string `json:"language"`
	Source      string `json:"source"`
	Translation string `json:"translation,omitempty"`
	Provider    string `json:"provider,omitempty"`
	Detail      string `json:"detail,omitempty"`
}

type Report struct {
	RunID      string `json:"runId"`
	SourceLang string `json:"sourceLang"`
	Translated []Item `json:"translated"`
	Rejected   []Item `json:"rejected"`
	Errors     []Item `json:"errors"`
	Skipped    int    `json:"skipped"`
	// Modified holds the files that received new values.
	Modified []*resource.File `json:"-"`
}

// Run translates the keys of the default file into every other file of
// files. It stops early only when ctx is done.
func (p *Pipeline) Run(ctx context.Context, files []*resource.File, opts Options) (*Report, error) {
	def := resource.DefaultFile(files)
	if def == nil {
		return nil, ErrNoDefault
	}
	if len(p.Services) == 0 {
		return nil, ErrNoServices
	}

	det := p.Placeholders
	if det == nil {
		det = placeholder.NewDetector()
	}
	validator := placeholder.NewValidator(det)
	orch := orchestrator.New(p.Services, orchestrator.OrchestratorConfig{
		Timeout:     p.Timeout,
		MaxAttempts: p.MaxAttempts,
	})

	report := &Report{
		RunID:      uuid.NewString(),
		SourceLang: p.sourceLang(def),
		Translated: []Item{},
		Rejected:   []Item{},
		Errors:     []Item{},
	}
	r := run{Pipeline: p, report: report, det: det, validator: validator, orch: orch, opts: opts}

	keys := def.Keys()
	if len(opts.Keys) > 0 {
		keys = lo.Filter(keys, func(k string, _ int) bool { return lo.Contains(opts.Keys, k) })
	}

	for _, target := range r.targets(files) {
		code := target.Language.Code
		glossary := r.glossary(ctx, code)
		changed := false

		for _, key := range keys {
			if err := ctx.Err(); err != nil {
				return report, err
			}
			src, _ := def.Lookup(key)
			if src.IsEmpty() || !r.wanted(target, key) {
				report.Skipped++
				continue
			}
			if r.translateKey(ctx, target, src, glossary) && !opts.DryRun {
				changed = true
			}
		}
		if changed {
			report.Modified = append(report.Modified, target)
		}
	}

	log.Infow("auto-translate finished", "run", report.RunID,
		"translated", len(report.Translated), "rejected", len(report.Rejected),
		"errors", len(report.Errors), "skipped", report.Skipped)
	return report, nil
}

func (p *Pipeline) sourceLang(def *resource.File) string {
	if p.SourceLang != "" {
		return p.SourceLang
	}
	if p.Detector != nil {
		values := lo.FilterMap(def.Entries, func(e resource.Entry, _ int) (string, bool) {
			return e.Value, !e.IsEmpty()
		})
		if len(values) > detectSampleSize {
			values = values[:detectSampleSize]
		}
		if iso, ok := p.Detector.DetectISO(strings.Join(values, "\n")); ok {
			return strings.ToLower(iso)
		}
	}
	return fallbackSourceLang
}

type run struct {
	*Pipeline
	report    *Report
	det       *placeholder.Detector
	validator *placeholder.Validator
	orch      *orchestrator.Orchestrator
	opts      Options
}

func (r *run) targets(files []*resource.File) []*resource.File {
	return lo.Filter(files, func(f *resource.File, _ int) bool {
		if f.Language.IsDefault {
			return false
		}
		if len(r.opts.TargetLanguages) == 0 {
			return true
		}
		return lo.ContainsBy(r.opts.TargetLanguages, func(code string) bool {
			return strings.EqualFold(code, f.Language.Code)
		})
	})
}

func (r *run) wanted(target *resource.File, key string) bool {
	existing, ok := target.Lookup(key)
	switch {
	case !ok:
		return true
	case r.opts.OnlyMissing:
		return false
	case existing.IsEmpty():
		return true
	default:
		return r.opts.Overwrite
	}
}

func (r *run) glossary(ctx context.Context, targetLang string) map[string]string {
	if r.Store == nil {
		return nil
	}
	terms, err := r.Store.GetGlossaryTerms(ctx, r.report.SourceLang, targetLang)
	if err != nil {
		log.Warnw("glossary lookup failed", "target", targetLang, "err", err)
		return nil
	}
	return terms
}

// translateKey reports whether a value was accepted for src.Key.
func (r *run) translateKey(ctx context.Context, target *resource.File, src resource.Entry, glossary map[string]string) bool {
	code := target.Language.Code
	item := Item{Key: src.Key, Language: code, Source: src.Value}

	if cached, ok := r.fromMemory(ctx, src.Value, code); ok {
		item.Translation = cached
		item.Provider = memoryProvider
		r.accept(ctx, target, item, false)
		return true
	}

	protected, markers := r.det.Protect(src.Value)
	req := translator.TranslateRequest{
		Text:       protected,
		SourceLang: r.report.SourceLang,
		TargetLang: code,
		Context:    src.Key,
		Glossary:   glossary,
	}

	result := r.orch.Execute(ctx, r.Config, req)
	if result.Succeeded == 0 {
		var merr *multierror.Error
		merr = multierror.Append(merr, result.Errors...)
		item.Detail = merr.ErrorOrNil().Error()
		r.report.Errors = append(r.report.Errors, item)
		r.logOutcome(ctx, item, store.LogFailed)
		return false
	}

	var rejected *Item
	var valid []arbiter.Candidate
	for _, res := range result.Results {
		candidate := strings.TrimSpace(placeholder.Restore(postprocess.NormalizeMarkers(res.TranslatedText), markers))
		if candidate == "" {
			continue
		}
		v := r.validator.Validate(src.Value, candidate)
		if v.IsValid {
			valid = append(valid, arbiter.Candidate{Provider: res.ServiceName, Text: candidate})
			continue
		}
		if rejected == nil {
			rejected = &Item{Key: item.Key, Language: code, Source: src.Value,
				Translation: candidate, Provider: res.ServiceName, Detail: v.Summary()}
		}
	}

	if len(valid) > 0 {
		choice := r.choose(ctx, src, code, valid)
		item.Translation = choice.Text
		item.Provider = choice.Provider
		item.Detail = choice.Reasoning
		r.accept(ctx, target, item, true)
		return true
	}

	if rejected == nil {
		rejected = &item
		rejected.Detail = "empty translation"
	}
	r.report.Rejected = append(r.report.Rejected, *rejected)
	r.logOutcome(ctx, *rejected, store.LogRejected)
	log.Debugw("translation rejected", "key", item.Key, "lang", code, "detail", rejected.Detail)
	return false
}

// choose asks the arbiter to pick among valid candidates. A failed or
// placeholder-breaking decision falls back to the first candidate.
func (r *run) choose(ctx context.Context, src resource.Entry, targetLang string, valid []arbiter.Candidate) arbiter.Decision {
	first := arbiter.Decision{Provider: valid[0].Provider, Text: valid[0].Text}
	if r.Arbiter == nil || len(valid) < 2 {
		return first
	}
	d, err := r.Arbiter.Choose(ctx, arbiter.Request{
		Key:        src.Key,
		Source:     src.Value,
		SourceLang: r.report.SourceLang,
		TargetLang: targetLang,
		Candidates: valid,
	})
	if err != nil {
		log.Warnw("arbiter failed, using first candidate", "key", src.Key, "target", targetLang, "err", err)
		return first
	}
	if v := r.validator.Validate(src.Value, d.Text); !v.IsValid {
		log.Warnw("arbiter decision breaks placeholders, using first candidate", "key", src.Key, "target", targetLang, "detail", v.Summary())
		return first
	}
	return *d
}

// fromMemory returns a remembered translation that still matches the
// placeholders of source.
func (r *run) fromMemory(ctx context.Context, source, targetLang string) (string, bool) {
	if r.Store == nil {
		return "", false
	}
	cached, ok, err := r.Store.GetCachedTranslation(ctx, source, r.report.SourceLang, targetLang)
	if err != nil {
		log.Warnw("memory lookup failed", "target", targetLang, "err", err)
		return "", false
	}
	if !ok || !r.validator.Validate(source, cached).IsValid {
		return "", false
	}
	return cached, true
}

func (r *run) accept(ctx context.Context, target *resource.File, item Item, remember bool) {
	r.report.Translated = append(r.report.Translated, item)
	if r.opts.DryRun {
		return
	}
	target.Set(item.Key, item.Translation, "")
	r.logOutcome(ctx, item, store.LogAccepted)
	if remember && r.Store != nil {
		if err := r.Store.SaveToMemory(ctx, item.Source, r.report.SourceLang, item.Language, item.Translation, item.Provider); err != nil {
			log.Warnw("failed to save to memory", "key", item.Key, "err", err)
		}
	}
}

func (r *run) logOutcome(ctx context.Context, item Item, status store.LogStatus) {
	if r.Store == nil || r.opts.DryRun {
		return
	}
	err := r.Store.LogTranslation(ctx, store.LogEntry{
		RunID:       r.report.RunID,
		Key:         item.Key,
		TargetLang:  item.Language,
		SourceText:  item.Source,
		Translation: item.Translation,
		Provider:    item.Provider,
		Status:      status,
		Detail:      item.Detail,
	})
	if err != nil {
		log.Warnw("failed to log translation", "status", status, "key", item.Key, "err", err)
	}
}
