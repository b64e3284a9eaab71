// Package http exposes the catalog over a JSON API. Every protected route goes
// through services.Gateway, so handlers only translate requests and results.
package http

import (
	"context"
	"fmt"

	"reelhub/internal/core/domain"
	"reelhub/internal/core/ports"
	"reelhub/internal/core/services"
	"reelhub/internal/infrastructure/middleware"
	"reelhub/pkg/validation"

	"github.com/gin-gonic/gin"
)

// protectedHandler runs a gateway request with the caller's bearer credential.
type protectedHandler struct {
	gateway *services.Gateway
}

func (h protectedHandler) handle(c *gin.Context, req services.GatewayRequest) (interface{}, bool) {
	result, err := h.gateway.Handle(c.Request.Context(), middleware.Credential(c), req)
	if err != nil {
		_ = c.Error(err)
		return nil, false
	}
	return result, true
}

// pathID reads a numeric path parameter. Anything unparsable becomes 0, an id
// no resource has, so the caller sees NotFound only after authentication.
func pathID(c *gin.Context, name string) int64 {
	id, err := validation.ParseID(c.Param(name), name)
	if err != nil {
		return 0
	}
	return id
}

// deferredBindError carries a request body error to the execute step, so a
// malformed body is reported only to callers the policy admits.
func deferredBindError(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: request body is not valid JSON", services.ErrInvalidSubmission)
}

func showTarget(catalog ports.CatalogService, showID int64) func(ctx context.Context) (domain.Target, error) {
	return func(ctx context.Context) (domain.Target, error) {
		return catalog.ShowOwner(ctx, showID)
	}
}
