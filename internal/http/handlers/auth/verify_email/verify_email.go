package verifyemail

import (
	"errors"
	"net/http"
	e "tokengate/internal/core/domain/errors"
	"tokengate/internal/core/domain/token"
	"tokengate/internal/core/services"
	verifyemail "tokengate/internal/core/services/verify_email"
	"tokengate/internal/http/handlers/response"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	service services.Service[verifyemail.Input, verifyemail.Result]
}

func New(service services.Service[verifyemail.Input, verifyemail.Result]) *Handler {
	if service == nil {
		panic(e.NewNilArgumentError("service"))
	}
	return &Handler{service: service}
}

type Response struct {
	Message  string `json:"message"`
	Verified bool   `json:"verified"`
}

func (h *Handler) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	tokenID := chi.URLParam(r, "token")
	if tokenID == "" {
		response.RenderNotFound(rw, "token not found")
		return
	}

	result, err := h.service.Run(r.Context(), verifyemail.Input{TokenID: token.ID(tokenID)})
	if errors.Is(err, token.ErrTokenDoesNotExist) {
		response.RenderNotFound(rw, "token not found")
		return
	}
	if errors.Is(err, token.ErrTokenExpired) {
		response.Render(rw, Response{Message: "verification token expired"}, http.StatusOK)
		return
	}
	if err != nil {
		response.RenderInternalError(rw)
		return
	}

	message := "email verified"
	if result.AlreadyVerified {
		message = "email already verified"
	}
	response.Render(rw, Response{Message: message, Verified: true}, http.StatusOK)
}
