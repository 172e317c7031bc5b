package handlers

import (
	"context"
	"log/slog"

	"github.com/geocoder89/alumniportal/internal/domain/identity"
	"github.com/gin-gonic/gin"
)

type LoginResolver interface {
	Resolve(ctx context.Context, email, mobile string) (identity.Identity, error)
}

type LoginHandler struct {
	resolver LoginResolver
	log      *slog.Logger
}

func NewLoginHandler(resolver LoginResolver, log *slog.Logger) *LoginHandler {
	if log == nil {
		log = slog.Default()
	}
	return &LoginHandler{resolver: resolver, log: log}
}

// Login succeeds on a contact match alone; req.Password is never read.
func (h *LoginHandler) Login(ctx *gin.Context) {
	var req identity.LoginRequest
	if !BindJSON(ctx, &req) {
		return
	}

	found, err := h.resolver.Resolve(ctx.Request.Context(), req.Email, req.Mobile)
	if err != nil {
		respondServiceError(ctx, h.log, "login", err)
		return
	}

	h.log.InfoContext(ctx.Request.Context(), "login resolved",
		"identity_id", found.ID,
		"user_type", string(found.UserType),
	)

	RespondOK(ctx, "Login success")
}
