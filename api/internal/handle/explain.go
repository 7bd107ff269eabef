package handle

import (
	"context"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"knowcode/api/internal/explain"
	"knowcode/api/internal/highlight"
	"knowcode/api/internal/service"
)

type ExplainRequest struct {
	Code    string `json:"code"`
	LLMName string `json:"llm_name"`
}

type ExplainResponse struct {
	service.Outcome
	Document explain.Document `json:"document"`
	CodeHTML template.HTML    `json:"code_html,omitempty"`
}

// Explain handles POST /v1/explain.
func (h *Handle) Explain(c *gin.Context) {
	var req ExplainRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.requestDeadline(c.Request))
	defer cancel()

	out, err := h.svc.Explain(ctx, req.Code, req.LLMName)
	if err != nil {
		writeError(c, inputStatus(err), err)
		return
	}
	c.JSON(http.StatusOK, ExplainResponse{
		Outcome:  out,
		Document: explain.BuildDocument(out.Language, out.Text),
		CodeHTML: h.codeHTML(codeLanguage(out, req.Code), req.Code),
	})
}

type RenderRequest struct {
	Code        string `json:"code"`
	Explanation string `json:"explanation"`
	Language    string `json:"language"`
}

type RenderResponse struct {
	Document explain.Document `json:"document"`
	CodeHTML template.HTML    `json:"code_html,omitempty"`
}

// Render handles POST /v1/render: it lays out an explanation the caller
// already has, without calling a model.
func (h *Handle) Render(c *gin.Context) {
	var req RenderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, err)
		return
	}
	lang := highlight.DisplayLanguage(req.Language, req.Code)
	resp := RenderResponse{Document: explain.BuildDocument(lang, req.Explanation)}
	if req.Code != "" {
		resp.CodeHTML = h.codeHTML(lang, req.Code)
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handle) codeHTML(language, code string) template.HTML {
	if h.hl == nil {
		return ""
	}
	out, err := h.hl.HTML(language, code)
	if err != nil {
		h.log.Warn("highlight failed", zap.Error(err), zap.String("language", language))
		return template.HTML("<pre>" + template.HTMLEscapeString(code) + "</pre>")
	}
	return out
}
