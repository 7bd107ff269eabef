package handle

import (
	"context"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"

	"knowcode/api/internal/explain"
)

type pageData struct {
	Code    string
	LLMName string
	Engines []string
	Error   string
	Result  *pageResult
}

type pageResult struct {
	Language string
	Fallback bool
	Cached   bool
	CodeHTML template.HTML
	Doc      explain.Document
}

// Page serves the browser form on GET / and the explanation on POST /.
func (h *Handle) Page(c *gin.Context) {
	data := pageData{Engines: h.svc.Available()}
	if c.Request.Method != http.MethodPost {
		h.renderPage(c, http.StatusOK, data)
		return
	}

	data.Code = c.PostForm("code")
	data.LLMName = c.PostForm("llm_name")

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	out, err := h.svc.Explain(ctx, data.Code, data.LLMName)
	if err != nil {
		data.Error = err.Error()
		h.renderPage(c, inputStatus(err), data)
		return
	}
	data.Result = &pageResult{
		Language: out.Language,
		Fallback: out.Fallback,
		Cached:   out.Cached,
		CodeHTML: h.codeHTML(codeLanguage(out, data.Code), data.Code),
		Doc:      explain.BuildDocument(out.Language, out.Text),
	}
	h.renderPage(c, http.StatusOK, data)
}

func (h *Handle) renderPage(c *gin.Context, code int, data pageData) {
	c.Render(code, render.HTML{Template: h.tmpl, Name: "index.html", Data: data})
}

// Healthz answers ok, or 503 when the backing store does not respond.
func (h *Handle) Healthz(c *gin.Context) {
	if h.ping != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.ping(ctx); err != nil {
			c.String(http.StatusServiceUnavailable, "db: not ok\n"+err.Error())
			return
		}
	}
	c.String(http.StatusOK, "ok")
}
