package schema

import "encoding/json"

type TokenKind string

const (
	KindVerification  TokenKind = "verification"
	KindPasswordReset TokenKind = "password_reset"
)

// TokenEmail is a request to deliver a token to an account holder. The
// message carries identifiers only; the consumer loads the account before
// rendering the email.
type TokenEmail struct {
	Kind      TokenKind `json:"kind"`
	AccountID int64     `json:"account_id"`
	TokenID   string    `json:"token_id"`
}

func (m *TokenEmail) Marshal() ([]byte, error) {
	return json.Marshal(m)
}

func (m *TokenEmail) Unmarshal(data []byte) error {
	return json.Unmarshal(data, m)
}
