package email

import (
	"context"
	"encoding/json"
	"net/url"

	"tokengate/internal/core/domain/account"
	"tokengate/internal/core/domain/token"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

type EmailSender struct {
	ses *ses.Client
	// This address must be verified with Amazon SES.
	sender                string
	verificationTemplate  string
	verificationBaseUrl   url.URL
	passwordResetTemplate string
	passwordResetBaseUrl  url.URL
}

func NewEmailSender(
	awsConfig aws.Config,
	sender string,
	verificationTemplate string,
	verificationBaseUrl url.URL,
	passwordResetTemplate string,
	passwordResetBaseUrl url.URL,
) *EmailSender {
	return &EmailSender{
		ses:                   ses.NewFromConfig(awsConfig),
		sender:                sender,
		verificationTemplate:  verificationTemplate,
		verificationBaseUrl:   verificationBaseUrl,
		passwordResetTemplate: passwordResetTemplate,
		passwordResetBaseUrl:  passwordResetBaseUrl,
	}
}

func (s *EmailSender) SendVerificationToken(
	ctx context.Context,
	a account.Account,
	t token.VerificationToken,
) error {
	templateParamsBytes, err := json.Marshal(
		verificationTemplateParams{
			Name:            a.GreetingName(),
			VerificationUrl: s.verificationBaseUrl.JoinPath(string(t.ID)).String(),
		},
	)
	if err != nil {
		return err
	}
	return s.sendTemplated(ctx, string(a.Email), s.verificationTemplate, string(templateParamsBytes))
}

func (s *EmailSender) SendPasswordResetToken(
	ctx context.Context,
	a account.Account,
	t token.PasswordResetToken,
) error {
	templateParamsBytes, err := json.Marshal(
		passwordResetTemplateParams{
			Name:             a.GreetingName(),
			PasswordResetUrl: s.passwordResetBaseUrl.JoinPath(string(t.ID)).String(),
		},
	)
	if err != nil {
		return err
	}
	return s.sendTemplated(ctx, string(a.Email), s.passwordResetTemplate, string(templateParamsBytes))
}

func (s *EmailSender) sendTemplated(ctx context.Context, email, template, templateParams string) error {
	_, err := s.ses.SendTemplatedEmail(
		ctx,
		&ses.SendTemplatedEmailInput{
			Source: &s.sender,
			Destination: &types.Destination{
				CcAddresses: []string{},
				ToAddresses: []string{email},
			},
			Template:     &template,
			TemplateData: &templateParams,
		},
	)
	return err
}

type verificationTemplateParams struct {
	Name            string `json:"name"`
	VerificationUrl string `json:"verificationUrl"`
}

type passwordResetTemplateParams struct {
	Name             string `json:"name"`
	PasswordResetUrl string `json:"passwordResetUrl"`
}
