package passwordpolicy

import (
	"fmt"
	"strings"
	"tokengate/internal/core/domain/account"
	c "tokengate/internal/core/domain/common"
	"unicode"
)

// Policy rejects passwords that are too short, entirely numeric, or too
// close to the account's own attributes.
type Policy struct {
	minLength int
}

func NewPolicy(minLength int) *Policy {
	if minLength <= 0 {
		panic("Argument minLength must be positive.")
	}
	return &Policy{minLength: minLength}
}

func (p *Policy) Validate(candidate account.RawPassword, owner c.Optional[account.Account]) []string {
	violations := make([]string, 0)
	raw := string(candidate)

	if len(raw) < p.minLength {
		violations = append(
			violations,
			fmt.Sprintf("password must contain at least %d characters", p.minLength),
		)
	}
	if raw != "" && isEntirelyNumeric(raw) {
		violations = append(violations, "password must not be entirely numeric")
	}
	if owner.IsPresent && isSimilarToAccount(raw, owner.Value) {
		violations = append(violations, "password must not be similar to username or email")
	}
	return violations
}

func isEntirelyNumeric(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

func isSimilarToAccount(raw string, a account.Account) bool {
	lowered := strings.ToLower(raw)
	attributes := []string{string(a.Username), string(a.Email)}
	if at := strings.IndexByte(string(a.Email), '@'); at > 0 {
		attributes = append(attributes, string(a.Email)[:at])
	}
	for _, attr := range attributes {
		attr = strings.ToLower(attr)
		if attr == "" {
			continue
		}
		if strings.Contains(lowered, attr) || strings.Contains(attr, lowered) {
			return true
		}
	}
	return false
}
