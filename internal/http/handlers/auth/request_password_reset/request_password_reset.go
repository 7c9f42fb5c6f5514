package requestpasswordreset

import (
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	c "tokengate/internal/core/domain/common"
	e "tokengate/internal/core/domain/errors"
	ratelimiter "tokengate/internal/core/domain/rate_limiter"
	"tokengate/internal/core/services"
	requestpasswordreset "tokengate/internal/core/services/request_password_reset"
	"tokengate/internal/http/handlers/response"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

type Handler struct {
	service    services.Service[requestpasswordreset.Input, requestpasswordreset.Result]
	isTestMode bool
}

func New(
	service services.Service[requestpasswordreset.Input, requestpasswordreset.Result],
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
	Message string `json:"message"`
	Success bool   `json:"success"`
}

// ServeHTTP renders an identical success body whether or not the email
// matches an account. Only malformed requests and rate limiting are
// distinguishable from success.
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
		requestpasswordreset.Input{Email: c.NewEmail(input.Email), IP: clientIP(r)},
	)
	if errors.Is(err, ratelimiter.ErrRateLimitExceeded) {
		response.RenderRateLimitExceeded(rw)
		return
	}
	if err != nil {
		response.RenderInternalError(rw)
		return
	}

	if h.isTestMode && result.Token.IsPresent {
		rw.Header().Set("x-test-password-reset-token", string(result.Token.Value.ID))
	}
	response.Render(
		rw,
		Response{Message: "if the email is registered, a reset link has been sent", Success: true},
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
