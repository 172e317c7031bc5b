package handlers

import (
	"errors"
	"log/slog"

	"github.com/geocoder89/alumniportal/internal/domain/identity"
	"github.com/gin-gonic/gin"
)

// respondServiceError maps signup and login errors onto HTTP. Anything it
// does not recognise is a 500 with a generic message.
func respondServiceError(ctx *gin.Context, log *slog.Logger, op string, err error) {
	switch {
	case errors.Is(err, identity.ErrMissingContact):
		RespondBadRequest(ctx, "Provide email or mobile", nil)
	case identity.IsValidation(err):
		RespondBadRequest(ctx, "Invalid request body", gin.H{"reason": err.Error()})
	case errors.Is(err, identity.ErrNotFound):
		RespondUnauthorized(ctx, "User not found")
	default:
		_ = ctx.Error(err)
		log.ErrorContext(ctx.Request.Context(), op+" failed",
			"request_id", requestIDFrom(ctx),
			"err", err,
		)
		RespondInternal(ctx)
	}
}
