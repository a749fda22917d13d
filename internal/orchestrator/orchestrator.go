// Package orchestrator fans a translation request out to several providers
// at once, retrying failed or rejected attempts.
package orchestrator

import (
	"context"
	"fmt"
	"sync"
	"time"

	logging "github.com/ipfs/go-log/v2"

	"github.com/valpere/lrm/internal/placeholder"
	"github.com/valpere/lrm/internal/translator"
)

var log = logging.Logger("lrm/orchestrator")

const (
	defaultMaxAttempts = 3
	defaultRetryDelay  = 500 * time.Millisecond
	defaultTimeout     = 60 * time.Second
)

// Validator rejects a provider result. A rejected attempt is retried; the
// last attempt is kept even when rejected.
type Validator func(req translator.TranslateRequest, res *translator.ServiceResult) error

type OrchestratorConfig struct {
	Timeout     time.Duration
	MaxAttempts int
	RetryDelay  time.Duration
	// Validator defaults to MarkersPreserved.
	Validator Validator
}

type OrchestratorResult struct {
	Results   []translator.ServiceResult
	Errors    []error
	Succeeded int
	Failed    int
}

type Orchestrator struct {
	services  []translator.TranslationService
	config    OrchestratorConfig
	validator Validator
}

func New(services []translator.TranslationService, config OrchestratorConfig) *Orchestrator {
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = defaultMaxAttempts
	}
	if config.RetryDelay <= 0 {
		config.RetryDelay = defaultRetryDelay
	}
	if config.Timeout <= 0 {
		config.Timeout = defaultTimeout
	}
	o := &Orchestrator{services: services, config: config, validator: config.Validator}
	if o.validator == nil {
		o.validator = MarkersPreserved
	}
	return o
}

// MarkersPreserved rejects results that dropped a [PHn] marker present in
// the request text.
func MarkersPreserved(req translator.TranslateRequest, res *translator.ServiceResult) error {
	dropped := placeholder.MissingMarkers(res.TranslatedText, placeholder.MarkerIndices(req.Text))
	if len(dropped) > 0 {
		return fmt.Errorf("%s dropped %d placeholder marker(s)", res.ServiceName, len(dropped))
	}
	return nil
}

// Execute calls every service concurrently. Results keep the order of the
// services.
func (o *Orchestrator) Execute(ctx context.Context, cfg translator.ServiceConfig, req translator.TranslateRequest) *OrchestratorResult {
	type outcome struct {
		res *translator.ServiceResult
		err error
	}
	outcomes := make([]outcome, len(o.services))

	var wg sync.WaitGroup
	for i, svc := range o.services {
		wg.Add(1)
		go func(index int, service translator.TranslationService) {
			defer wg.Done()
			res, err := o.attempt(ctx, service, cfg, req)
			outcomes[index] = outcome{res: res, err: err}
		}(i, svc)
	}
	wg.Wait()

	result := &OrchestratorResult{
		Results: make([]translator.ServiceResult, 0, len(o.services)),
		Errors:  make([]error, 0),
	}
	for _, oc := range outcomes {
		if oc.err != nil {
			result.Errors = append(result.Errors, oc.err)
			result.Failed++
			continue
		}
		result.Results = append(result.Results, *oc.res)
		result.Succeeded++
	}
	return result
}

func (o *Orchestrator) attempt(ctx context.Context, service translator.TranslationService, cfg translator.ServiceConfig, req translator.TranslateRequest) (*translator.ServiceResult, error) {
	var lastErr error
	for attempt := 1; attempt <= o.config.MaxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("%s: %w", service.Name(), ctx.Err())
			case <-time.After(o.config.RetryDelay):
			}
		}

		serviceCtx, cancel := context.WithTimeout(ctx, o.config.Timeout)
		res, err := service.Translate(serviceCtx, cfg, req)
		cancel()

		switch {
		case err != nil:
			lastErr = fmt.Errorf("%s: %w", service.Name(), err)
		case res == nil:
			lastErr = fmt.Errorf("%s: empty result", service.Name())
		case res.Error != "":
			lastErr = fmt.Errorf("%s: %s", res.ServiceName, res.Error)
		default:
			if verr := o.validator(req, res); verr != nil && attempt < o.config.MaxAttempts {
				log.Debugw("result rejected, retrying", "service", service.Name(), "attempt", attempt, "err", verr)
				lastErr = verr
				continue
			} else if verr != nil {
				log.Warnw("result rejected on final attempt", "service", service.Name(), "err", verr)
			}
			return res, nil
		}
		log.Debugw("attempt failed", "service", service.Name(), "attempt", attempt, "err", lastErr)
	}
	return nil, lastErr
}
