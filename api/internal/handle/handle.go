package handle

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"knowcode/api/internal/codecheck"
	"knowcode/api/internal/highlight"
	"knowcode/api/internal/llm"
	"knowcode/api/internal/service"
)

//go:embed templates/*.html
var templatesFS embed.FS

type Handle struct {
	svc     *service.Service
	hl      *highlight.Highlighter
	log     *zap.Logger
	tmpl    *template.Template
	timeout time.Duration

	// ping checks backing storage for /healthz; nil means nothing to check.
	ping func(ctx context.Context) error
}

type Options struct {
	Timeout time.Duration
	Ping    func(ctx context.Context) error
}

func New(svc *service.Service, hl *highlight.Highlighter, log *zap.Logger, opts Options) *Handle {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 70 * time.Second
	}
	return &Handle{
		svc:     svc,
		hl:      hl,
		log:     log,
		tmpl:    template.Must(template.ParseFS(templatesFS, "templates/*.html")),
		timeout: opts.Timeout,
		ping:    opts.Ping,
	}
}

func writeError(c *gin.Context, code int, err error) {
	c.AbortWithStatusJSON(code, gin.H{"error": err.Error()})
}

// inputStatus maps validation and engine selection errors to HTTP codes.
func inputStatus(err error) int {
	switch {
	case errors.Is(err, codecheck.ErrEmpty):
		return http.StatusBadRequest
	case errors.Is(err, codecheck.ErrNotCode):
		return http.StatusUnprocessableEntity
	case errors.Is(err, llm.ErrUnknownEngine):
		return http.StatusBadRequest
	default:
		return http.StatusServiceUnavailable
	}
}

// requestDeadline honours X-Request-Timeout or ?timeoutSec= (seconds), capped
// at the configured timeout.
func (h *Handle) requestDeadline(r *http.Request) time.Duration {
	deadline := h.timeout
	ts := r.Header.Get("X-Request-Timeout")
	if ts == "" {
		ts = r.URL.Query().Get("timeoutSec")
	}
	if v, _ := strconv.Atoi(ts); v > 0 {
		if d := time.Duration(v) * time.Second; d < deadline {
			deadline = d
		}
	}
	return deadline
}

// codeLanguage picks the lexer label for highlighting; the fallback
// "Unknown" is not a language, so the code is analysed locally instead.
func codeLanguage(out service.Outcome, code string) string {
	if out.Fallback {
		return highlight.DisplayLanguage("", code)
	}
	return highlight.DisplayLanguage(out.Language, code)
}
