package remote

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/felixgeelhaar/lingua/internal/licensing/domain"
	"github.com/felixgeelhaar/lingua/internal/shared/infrastructure/httpclient"
)

// ValidatePath is the licensing API endpoint.
const ValidatePath = "/api/license/validate"

type validateRequest struct {
	LicenseKey string `json:"licenseKey"`
}

type validateResponse struct {
	Valid   bool                `json:"valid"`
	License *domain.LicenseInfo `json:"license,omitempty"`
	Error   string              `json:"error,omitempty"`
}

// Validator implements domain.Validator against the licensing API.
type Validator struct {
	client *httpclient.Client
}

// NewValidator creates a validator that uses the given client.
func NewValidator(client *httpclient.Client) *Validator {
	return &Validator{client: client}
}

// Validate checks the key remotely. It never returns an error: every outcome
// is reported in the result, with Failure telling rejection from transport loss.
func (v *Validator) Validate(ctx context.Context, licenseKey string) domain.ValidationResult {
	key := strings.TrimSpace(licenseKey)
	if key == "" {
		return domain.InputFailure(domain.MsgLicenseKeyRequired)
	}

	resp, err := v.client.PostJSON(ctx, ValidatePath, validateRequest{LicenseKey: key})
	if err != nil {
		var statusErr *httpclient.StatusError
		if errors.As(err, &statusErr) && resp != nil {
			return domain.ValidationResult{
				Error:   failureMessage(resp),
				Failure: domain.FailureTransport,
			}
		}
		return domain.ValidationResult{Error: err.Error(), Failure: domain.FailureTransport}
	}

	if !resp.OK() {
		return domain.ValidationResult{
			Error:   failureMessage(resp),
			Failure: domain.FailureRejected,
		}
	}

	var body validateResponse
	if err := resp.Decode(&body); err != nil {
		return domain.ValidationResult{
			Error:   fmt.Sprintf("invalid validation response: %v", err),
			Failure: domain.FailureTransport,
		}
	}

	if !body.Valid {
		msg := body.Error
		if msg == "" {
			msg = "Invalid license key"
		}
		return domain.ValidationResult{Error: msg, Failure: domain.FailureRejected}
	}

	return domain.ValidationResult{Valid: true, License: body.License}
}

func failureMessage(resp *httpclient.Response) string {
	if msg := resp.ErrorMessage(); msg != "" {
		return msg
	}
	return fmt.Sprintf("License validation failed (HTTP %d)", resp.StatusCode)
}
