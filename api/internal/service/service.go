package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"knowcode/api/internal/codecheck"
	"knowcode/api/internal/explain"
	"knowcode/api/internal/llm"
	"knowcode/api/internal/store"
	"knowcode/api/internal/util"
)

// Cache stores successful explanations keyed by code hash, engine and model.
type Cache interface {
	Find(ctx context.Context, codeHash, engine, model string, maxAge time.Duration) (explain.Result, error)
	Upsert(ctx context.Context, codeHash, engine, model string, res explain.Result) error
}

type Outcome struct {
	explain.Result
	Engine string `json:"engine"`
	Model  string `json:"model"`
	Cached bool   `json:"cached"`
}

type Service struct {
	engs     *llm.Engines
	cache    Cache
	cacheTTL time.Duration
	log      *zap.Logger
}

// New wires the explain pipeline. cache may be nil.
func New(engs *llm.Engines, cache Cache, cacheTTL time.Duration, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{engs: engs, cache: cache, cacheTTL: cacheTTL, log: log}
}

func (s *Service) Engine(llmName string) (llm.Engine, error) {
	return s.engs.GetEngine(llmName)
}

func (s *Service) Available() []string {
	return s.engs.Available()
}

// Explain validates code and explains it with the named engine. Input and
// engine selection errors are returned before any model call.
func (s *Service) Explain(ctx context.Context, code, llmName string) (Outcome, error) {
	if err := codecheck.Validate(code); err != nil {
		return Outcome{}, err
	}
	eng, err := s.engs.GetEngine(llmName)
	if err != nil {
		return Outcome{}, err
	}
	return s.ExplainWith(ctx, eng, code), nil
}

// ExplainWith consults the cache, then runs the two model calls. Cache
// failures are logged and never fail the request.
func (s *Service) ExplainWith(ctx context.Context, eng llm.Engine, code string) Outcome {
	out := Outcome{Engine: eng.Name(), Model: eng.GetModel()}
	hash := util.SHA256Hex(code)

	if s.cache != nil {
		res, err := s.cache.Find(ctx, hash, out.Engine, out.Model, s.cacheTTL)
		switch {
		case err == nil:
			out.Result = res
			out.Cached = true
			return out
		case !errors.Is(err, store.ErrNotFound):
			s.log.Warn("cache lookup failed", zap.Error(err), zap.String("engine", out.Engine))
		}
	}

	out.Result = explain.New(eng, s.log).Explain(ctx, code)

	if s.cache != nil && !out.Fallback {
		if err := s.cache.Upsert(ctx, hash, out.Engine, out.Model, out.Result); err != nil {
			s.log.Warn("cache store failed", zap.Error(err), zap.String("engine", out.Engine))
		}
	}
	return out
}
