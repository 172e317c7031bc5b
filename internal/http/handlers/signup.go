package handlers

import (
	"context"
	"log/slog"

	"github.com/geocoder89/alumniportal/internal/domain/identity"
	"github.com/gin-gonic/gin"
)

type SignupService interface {
	SignupStudent(ctx context.Context, in identity.StudentSignup) (identity.Identity, error)
	SignupAlumni(ctx context.Context, in identity.AlumniSignup) (identity.Identity, error)
}

type SignupHandler struct {
	svc SignupService
	log *slog.Logger
}

func NewSignupHandler(svc SignupService, log *slog.Logger) *SignupHandler {
	if log == nil {
		log = slog.Default()
	}
	return &SignupHandler{svc: svc, log: log}
}

func (h *SignupHandler) Student(ctx *gin.Context) {
	var req identity.StudentSignup
	if !BindJSON(ctx, &req) {
		return
	}

	if _, err := h.svc.SignupStudent(ctx.Request.Context(), req); err != nil {
		respondServiceError(ctx, h.log, "student signup", err)
		return
	}

	RespondOK(ctx, "Student signup stored")
}

func (h *SignupHandler) Alumni(ctx *gin.Context) {
	var req identity.AlumniSignup
	if !BindJSON(ctx, &req) {
		return
	}

	if _, err := h.svc.SignupAlumni(ctx.Request.Context(), req); err != nil {
		respondServiceError(ctx, h.log, "alumni signup", err)
		return
	}

	RespondOK(ctx, "Alumni signup stored")
}
