package mcp

import (
	"context"

	featuresDomain "github.com/felixgeelhaar/lingua/internal/features/domain"
	translationApp "github.com/felixgeelhaar/lingua/internal/translation/application"
	"github.com/felixgeelhaar/mcp-go"
)

type accessInput struct {
	Provider string `json:"provider" jsonschema:"required"`
	Tone     string `json:"tone,omitempty"`
}

type translateInput struct {
	Text       string `json:"text" jsonschema:"required"`
	TargetLang string `json:"target_lang" jsonschema:"required"`
	SourceLang string `json:"source_lang,omitempty"`
	Provider   string `json:"provider,omitempty"`
	Tone       string `json:"tone,omitempty"`
	Model      string `json:"model,omitempty"`
}

const defaultSourceLang = "auto"

func registerTranslationTools(srv *mcp.Server, t *tools) {
	srv.Tool("features.list").
		Description("List providers and tones with their availability on the current plan").
		Handler(t.featuresList)

	srv.Tool("access.check").
		Description("Check whether a provider and tone are available on the current plan").
		Handler(t.accessCheck)

	srv.Tool("translate").
		Description("Translate text with a provider and tone, recording it in history").
		Handler(t.translate)
}

func (t *tools) featuresList(ctx context.Context, _ struct{}) (translationApp.FeatureSet, error) {
	if t.app.Translation == nil {
		return translationApp.FeatureSet{}, errAppNotInitialized
	}
	return t.app.Translation.Features(ctx), nil
}

func (t *tools) accessCheck(ctx context.Context, input accessInput) (translationApp.AccessDecision, error) {
	if t.app.Translation == nil {
		return translationApp.AccessDecision{}, errAppNotInitialized
	}
	if err := requireText("provider", input.Provider); err != nil {
		return translationApp.AccessDecision{}, err
	}
	return t.app.Translation.CheckAccess(ctx, input.Provider, input.Tone)
}

func (t *tools) translate(ctx context.Context, input translateInput) (*translationApp.Result, error) {
	if t.app.Translation == nil {
		return nil, errAppNotInitialized
	}
	if err := requireText("text", input.Text); err != nil {
		return nil, err
	}
	if err := requireText("target_lang", input.TargetLang); err != nil {
		return nil, err
	}

	req := translationApp.TranslateRequest{
		Provider:   input.Provider,
		Text:       input.Text,
		SourceLang: input.SourceLang,
		TargetLang: input.TargetLang,
		Tone:       input.Tone,
		Model:      input.Model,
	}
	if req.Provider == "" {
		req.Provider = featuresDomain.ProviderOpenAI
	}
	if req.SourceLang == "" {
		req.SourceLang = defaultSourceLang
	}

	return t.app.Translation.Translate(ctx, req)
}
