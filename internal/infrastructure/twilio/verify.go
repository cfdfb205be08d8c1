package twilio

import (
	"context"
	"errors"
	"strings"

	"github.com/twilio/twilio-go"
	verify "github.com/twilio/twilio-go/rest/verify/v2"
)

// VerifyClient wraps Twilio Verify v2 behind the OTP provider port. The
// service SID selects the Verify service all challenges run against.
type VerifyClient struct {
	client     *twilio.RestClient
	serviceSID string
}

func NewVerifyClient(accountSID, authToken, serviceSID string) *VerifyClient {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return &VerifyClient{client: client, serviceSID: serviceSID}
}

// normalizeNumber mirrors the upstream convention: numbers arrive without the
// leading plus and Verify wants E.164.
func normalizeNumber(mobile string) string {
	if strings.HasPrefix(mobile, "+") {
		return mobile
	}
	return "+" + mobile
}

// StartVerification initiates an SMS challenge and returns the provider's
// verification SID.
func (c *VerifyClient) StartVerification(ctx context.Context, mobile string) (string, error) {
	params := &verify.CreateVerificationParams{}
	params.SetTo(normalizeNumber(mobile))
	params.SetChannel("sms")

	v, err := c.client.VerifyV2.CreateVerification(c.serviceSID, params)
	if err != nil {
		return "", err
	}
	if v.Sid == nil {
		return "", errors.New("verification response missing sid")
	}
	return *v.Sid, nil
}

// CheckVerification checks a code against the outstanding challenge for the
// number. It reports approval; a wrong code is not an error.
func (c *VerifyClient) CheckVerification(ctx context.Context, mobile, code string) (bool, error) {
	params := &verify.CreateVerificationCheckParams{}
	params.SetTo(normalizeNumber(mobile))
	params.SetCode(code)

	check, err := c.client.VerifyV2.CreateVerificationCheck(c.serviceSID, params)
	if err != nil {
		return false, err
	}
	return check.Status != nil && *check.Status == "approved", nil
}
