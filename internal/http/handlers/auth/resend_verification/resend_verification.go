package resendverification

import (
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"tokengate/internal/core/domain/account"
	c "tokengate/internal/core/domain/common"
	e "tokengate/internal/core/domain/errors"
	ratelimiter "tokengate/internal/core/domain/rate_limiter"
	"tokengate/internal/core/services"
	resendverification "tokengate/internal/core/services/resend_verification"
	"tokengate/internal/http/handlers/response"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

type Handler struct {
	service    services.Service[resendverification.Input, resendverification.Result]
	isTestMode bool
}

func New(
	service services.Service[resendverification.Input, resendverification.Result],
	isTestMode bool,
) *Handler {
	if service == nil {
		panic(e.NewNilArgumentError("service"))
	}
	return &Handler{service: service, isTestMode: isTestMode}
}

type Input struct {
	Email string `json:"email"`
}

func (i *Input) FromJSON(r io.Reader) error {
	e := json.NewDecoder(r)
	return e.Decode(i)
}

func (i Input) Validate() error {
	return validation.ValidateStruct(&i,
		validation.Field(&i.Email, validation.Required, is.Email, validation.Length(0, 512)),
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
		resendverification.Input{Email: c.NewEmail(input.Email), IP: clientIP(r)},
	)
	if errors.Is(err, ratelimiter.ErrRateLimitExceeded) {
		response.RenderRateLimitExceeded(rw)
		return
	}
	if errors.Is(err, account.ErrAccountDoesNotExist) {
		response.RenderNotFound(rw, "account does not exist")
		return
	}
	if errors.Is(err, account.ErrAccountAlreadyActive) {
		response.Render(rw, Response{Message: "email already verified"}, http.StatusOK)
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
		http.StatusOK,
	)
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
