package handlers

import (
	"context"
	"net/http"

	v1 "slidecast/internal/contracts/render/v1"
	"slidecast/internal/httpkit"
	"slidecast/internal/pkg/errors"
)

// PostRender renders synchronously and answers with the published URL.
func (h *Handler) PostRender(w http.ResponseWriter, r *http.Request) error {
	var req v1.RenderRequest
	if err := httpkit.DecodeJSON(r, &req); err != nil {
		return errors.WrapWithCode(err, errors.CodeBadRequest, "http.render", "invalid json body")
	}

	ctx := r.Context()
	if h.renderTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.renderTimeout)
		defer cancel()
	}

	res, err := h.renderer.Render(ctx, req.ToRequest())
	if err != nil {
		return err
	}

	httpkit.WriteJSON(w, http.StatusOK, v1.FromResult(res))
	return nil
}
