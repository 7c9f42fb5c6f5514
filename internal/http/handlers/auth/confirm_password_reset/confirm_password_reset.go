package confirmpasswordreset

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"tokengate/internal/core/domain/account"
	e "tokengate/internal/core/domain/errors"
	"tokengate/internal/core/domain/token"
	"tokengate/internal/core/services"
	confirmpasswordreset "tokengate/internal/core/services/confirm_password_reset"
	"tokengate/internal/http/handlers/response"

	validation "github.com/go-ozzo/ozzo-validation"
)

type Handler struct {
	service services.Service[confirmpasswordreset.Input, confirmpasswordreset.Result]
}

func New(service services.Service[confirmpasswordreset.Input, confirmpasswordreset.Result]) *Handler {
	if service == nil {
		panic(e.NewNilArgumentError("service"))
	}
	return &Handler{service: service}
}

type Input struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

func (i *Input) FromJSON(r io.Reader) error {
	e := json.NewDecoder(r)
	return e.Decode(i)
}

func (i Input) Validate() error {
	return validation.ValidateStruct(&i,
		validation.Field(&i.Token, validation.Required, validation.Length(0, 1024)),
		validation.Field(&i.Password, validation.Required, validation.Length(1, 256)),
	)
}

type Response struct {
	Message string `json:"message"`
	Success bool   `json:"success"`
}

// ServeHTTP collapses unknown and already-used tokens into one message so
// the endpoint cannot be used as an oracle. Expiry is distinguishable;
// the token value was already disclosed to its legitimate holder.
func (h *Handler) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	input := Input{}
	if err := input.FromJSON(r.Body); err != nil {
		response.RenderError(rw, "invalid request data", http.StatusBadRequest)
		return
	}
	if err := input.Validate(); err != nil {
		response.Render(rw, err, http.StatusBadRequest)
		return
	}

	_, err := h.service.Run(
		r.Context(),
		confirmpasswordreset.Input{
			TokenID:     token.ID(input.Token),
			NewPassword: account.RawPassword(input.Password),
		},
	)
	if errors.Is(err, token.ErrTokenDoesNotExist) || errors.Is(err, token.ErrTokenAlreadyConsumed) {
		response.Render(rw, Response{Message: "token is invalid or expired"}, http.StatusOK)
		return
	}
	if errors.Is(err, token.ErrTokenExpired) {
		response.Render(rw, Response{Message: "token expired"}, http.StatusOK)
		return
	}
	var policyErr *account.PasswordPolicyError
	if errors.As(err, &policyErr) {
		response.Render(rw, Response{Message: policyErr.Error()}, http.StatusOK)
		return
	}
	if err != nil {
		response.RenderInternalError(rw)
		return
	}

	response.Render(rw, Response{Message: "password has been reset", Success: true}, http.StatusOK)
}
