package mcp

import (
	"context"

	translationApp "github.com/felixgeelhaar/lingua/internal/translation/application"
	"github.com/felixgeelhaar/mcp-go"
)

type activateInput struct {
	LicenseKey string `json:"license_key" jsonschema:"required"`
}

type activateOutput struct {
	Success bool                  `json:"success"`
	Error   string                `json:"error,omitempty"`
	Trust   *translationApp.Trust `json:"trust,omitempty"`
}

func registerLicenseTools(srv *mcp.Server, t *tools) {
	srv.Tool("license.status").
		Description("Show the current license and trust state").
		Handler(t.licenseStatus)

	srv.Tool("license.activate").
		Description("Activate a premium license key").
		Handler(t.licenseActivate)

	srv.Tool("license.deactivate").
		Description("Remove the stored license and return to the free plan").
		Handler(t.licenseDeactivate)
}

func (t *tools) licenseStatus(ctx context.Context, _ struct{}) (translationApp.Trust, error) {
	if t.app.Translation == nil {
		return translationApp.Trust{}, errAppNotInitialized
	}
	return t.app.Translation.GetCurrentTrust(ctx), nil
}

func (t *tools) licenseActivate(ctx context.Context, input activateInput) (activateOutput, error) {
	if t.app.License == nil || t.app.Translation == nil {
		return activateOutput{}, errAppNotInitialized
	}

	_, result, err := t.app.License.Activate(ctx, input.LicenseKey)
	if err != nil {
		return activateOutput{}, err
	}
	if !result.Valid {
		return activateOutput{Error: result.Error}, nil
	}

	trust := t.app.Translation.GetCurrentTrust(ctx)
	return activateOutput{Success: true, Trust: &trust}, nil
}

func (t *tools) licenseDeactivate(ctx context.Context, _ struct{}) (map[string]any, error) {
	if t.app.License == nil {
		return nil, errAppNotInitialized
	}
	if err := t.app.License.Clear(ctx); err != nil {
		return nil, err
	}
	return map[string]any{"success": true, "plan": "free"}, nil
}
