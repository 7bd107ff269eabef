package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"knowcode/api/internal/explain"
)

var ErrNotFound = sql.ErrNoRows

const schema = `
create table if not exists explanations_cache (
	code_hash   text        not null,
	engine      text        not null,
	model       text        not null,
	language    text        not null,
	explanation text        not null,
	created_at  timestamptz not null default now(),
	primary key (code_hash, engine, model)
)`

type ExplanationRepo struct{ DB *sql.DB }

func NewExplanationRepo(db *sql.DB) *ExplanationRepo { return &ExplanationRepo{DB: db} }

func (r *ExplanationRepo) Migrate(ctx context.Context) error {
	_, err := r.DB.ExecContext(ctx, schema)
	return err
}

// Find returns the cached explanation for (codeHash, engine, model).
// If maxAge > 0 and the row is older, it returns ErrNotFound so the caller asks the model again.
func (r *ExplanationRepo) Find(ctx context.Context, codeHash, engine, model string, maxAge time.Duration) (explain.Result, error) {
	const q = `select language, explanation, created_at
	           from explanations_cache
	           where code_hash=$1 and engine=$2 and model=$3`
	var (
		res explain.Result
		ts  time.Time
	)
	err := r.DB.QueryRowContext(ctx, q, codeHash, engine, model).Scan(&res.Language, &res.Text, &ts)
	if errors.Is(err, sql.ErrNoRows) {
		return explain.Result{}, ErrNotFound
	}
	if err != nil {
		return explain.Result{}, err
	}
	if maxAge > 0 && time.Since(ts) > maxAge {
		return explain.Result{}, ErrNotFound
	}
	return res, nil
}

// Upsert stores a successful explanation. Fallback results are never cached.
func (r *ExplanationRepo) Upsert(ctx context.Context, codeHash, engine, model string, res explain.Result) error {
	if res.Fallback {
		return nil
	}
	const q = `
insert into explanations_cache(code_hash, engine, model, language, explanation)
values ($1,$2,$3,$4,$5)
on conflict (code_hash, engine, model)
do update set language=excluded.language, explanation=excluded.explanation, created_at=now()`
	_, err := r.DB.ExecContext(ctx, q, codeHash, engine, model, res.Language, res.Text)
	return err
}

func (r *ExplanationRepo) Ping(ctx context.Context) error {
	return r.DB.PingContext(ctx)
}
