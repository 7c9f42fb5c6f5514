package signup

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"tokengate/internal/core/domain/account"
	c "tokengate/internal/core/domain/common"
	e "tokengate/internal/core/domain/errors"
	"tokengate/internal/core/domain/token"
	"tokengate/internal/core/services"
	signup "tokengate/internal/core/services/sign_up"
	"tokengate/internal/http/handlers/response"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

type Handler struct {
	service    services.Service[signup.Input, signup.Result]
	isTestMode bool
}

func New(
	service services.Service[signup.Input, signup.Result],
	isTestMode bool,
) *Handler {
	if service == nil {
		panic(e.NewNilArgumentError("service"))
	}
	return &Handler{service: service, isTestMode: isTestMode}
}

type Input struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

func (i *Input) FromJSON(r io.Reader) error {
	e := json.NewDecoder(r)
	return e.Decode(i)
}

func (i Input) Validate() error {
	return validation.ValidateStruct(&i,
		validation.Field(&i.Username, validation.Required, validation.Length(1, 150)),
		validation.Field(&i.Email, validation.Required, is.Email, validation.Length(0, 512)),
		validation.Field(&i.Password, validation.Required, validation.Length(1, 256)),
		validation.Field(&i.FirstName, validation.Length(0, 150)),
		validation.Field(&i.LastName, validation.Length(0, 150)),
	)
}

type Response struct {
	Message              string `json:"message"`
	AccountID            int64  `json:"account_id"`
	VerificationRequired bool   `json:"verification_required"`
}

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

	result, err := h.service.Run(
		r.Context(),
		signup.Input{
			Username:  account.Username(input.Username),
			Email:     c.NewEmail(input.Email),
			Password:  account.RawPassword(input.Password),
			FirstName: c.NewOptional(input.FirstName, input.FirstName != ""),
			LastName:  c.NewOptional(input.LastName, input.LastName != ""),
		},
	)
	if errors.Is(err, account.ErrUsernameAlreadyExists) {
		response.Render(rw, Response{Message: "username already exists"}, http.StatusOK)
		return
	}
	if errors.Is(err, account.ErrEmailAlreadyExists) {
		response.Render(rw, Response{Message: "email already exists"}, http.StatusOK)
		return
	}
	var policyErr *account.PasswordPolicyError
	if errors.As(err, &policyErr) {
		response.Render(rw, Response{Message: policyErr.Error()}, http.StatusOK)
		return
	}
	if errors.Is(err, token.ErrDispatchFailed) {
		response.RenderInternalError(rw)
		return
	}
	if err != nil {
		response.RenderInternalError(rw)
		return
	}

	if h.isTestMode {
		rw.Header().Set("x-test-verification-token", string(result.Token.ID))
	}
	response.Render(
		rw,
		Response{
			Message:              "verification email sent",
			AccountID:            int64(result.Account.ID),
			VerificationRequired: true,
		},
		http.StatusCreated,
	)
}
