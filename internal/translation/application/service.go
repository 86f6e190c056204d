package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	featuresDomain "github.com/felixgeelhaar/lingua/internal/features/domain"
	historyDomain "github.com/felixgeelhaar/lingua/internal/history/domain"
	licensingDomain "github.com/felixgeelhaar/lingua/internal/licensing/domain"
	"github.com/felixgeelhaar/lingua/internal/translation/domain"
	"github.com/felixgeelhaar/lingua/pkg/observability"
	"github.com/go-playground/validator/v10"
)

// LicenseSource supplies the current trust decision.
type LicenseSource interface {
	GetStatus(ctx context.Context) *licensingDomain.LicenseStatus
	Now() time.Time
}

// HistoryRecorder stores completed translations.
type HistoryRecorder interface {
	Append(ctx context.Context, session historyDomain.Session, details historyDomain.Details) (*historyDomain.Item, error)
}

// SyncDispatcher schedules a background cloud sync.
type SyncDispatcher interface {
	DispatchSync(ctx context.Context, session historyDomain.Session) error
}

// CredentialSource returns the configured credentials for a provider.
type CredentialSource interface {
	ProviderConfig(id string) domain.ProviderConfig
}

// AccessDecision is the outcome of a feature gate check.
type AccessDecision struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}

// Trust summarizes the license state for display.
type Trust struct {
	IsPremium   bool                              `json:"isPremium"`
	State       licensingDomain.TrustState        `json:"state"`
	Email       string                            `json:"email,omitempty"`
	Plan        string                            `json:"plan,omitempty"`
	ExpiresAt   *time.Time                        `json:"expiresAt,omitempty"`
	ValidatedAt *time.Time                        `json:"validatedAt,omitempty"`
	MaskedKey   string                            `json:"maskedKey,omitempty"`
	Warning     licensingDomain.ExpirationWarning `json:"warning"`
}

// TranslateRequest is one translation as asked for by a caller.
type TranslateRequest struct {
	Provider   string `json:"provider" validate:"required"`
	Text       string `json:"text" validate:"required"`
	SourceLang string `json:"sourceLang"`
	TargetLang string `json:"targetLang" validate:"required"`
	Tone       string `json:"tone,omitempty"`

	// APIKey and Model override the configured credentials for this call.
	APIKey string `json:"apiKey,omitempty"`
	Model  string `json:"model,omitempty"`
}

// Result is a completed translation.
type Result struct {
	Translation string              `json:"translation"`
	Provider    string              `json:"provider"`
	Tone        string              `json:"tone"`
	SourceLang  string              `json:"sourceLang"`
	TargetLang  string              `json:"targetLang"`
	HistoryItem *historyDomain.Item `json:"historyItem,omitempty"`
}

// FeatureSet is the catalog flagged for the current trust level.
type FeatureSet struct {
	IsPremium    bool                          `json:"isPremium"`
	Providers    []featuresDomain.Availability `json:"providers"`
	Tones        []featuresDomain.Availability `json:"tones"`
	HistoryLimit int                           `json:"historyLimit"`
}

// Service orchestrates gating, translation and history recording.
type Service struct {
	license     LicenseSource
	history     HistoryRecorder
	dispatcher  SyncDispatcher
	registry    *domain.Registry
	credentials CredentialSource
	validate    *validator.Validate
	logger      *slog.Logger
	metrics     observability.Metrics
}

// NewService creates the orchestrator.
func NewService(
	license LicenseSource,
	history HistoryRecorder,
	registry *domain.Registry,
	credentials CredentialSource,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		license:     license,
		history:     history,
		registry:    registry,
		credentials: credentials,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
		logger:      logger,
		metrics:     observability.NoopMetrics{},
	}
}

// WithMetrics sets the metrics sink.
func (s *Service) WithMetrics(metrics observability.Metrics) *Service {
	if metrics != nil {
		s.metrics = metrics
	}
	return s
}

// WithDispatcher enables background sync after premium appends.
func (s *Service) WithDispatcher(dispatcher SyncDispatcher) *Service {
	s.dispatcher = dispatcher
	return s
}

// Session derives the history session from the current license status.
func (s *Service) Session(ctx context.Context) historyDomain.Session {
	return sessionOf(s.license.GetStatus(ctx))
}

func sessionOf(status *licensingDomain.LicenseStatus) historyDomain.Session {
	if status == nil || !status.IsPremium {
		return historyDomain.Session{}
	}
	return historyDomain.Session{Premium: true, LicenseKey: status.LicenseKey}
}

// CheckAccess gates a provider and tone against the current trust level.
// An unknown provider id returns ErrUnknownProvider; an unknown tone is denied.
func (s *Service) CheckAccess(ctx context.Context, providerID, toneID string) (AccessDecision, error) {
	if !featuresDomain.IsKnownProvider(providerID) {
		return AccessDecision{}, fmt.Errorf("%w: %s", domain.ErrUnknownProvider, providerID)
	}
	return checkAccess(providerID, toneID, s.license.GetStatus(ctx).IsPremium), nil
}

func checkAccess(providerID, toneID string, premium bool) AccessDecision {
	if toneID == "" {
		toneID = featuresDomain.DefaultTone
	}

	if !featuresDomain.IsProviderAvailable(providerID, premium) {
		entry, _ := featuresDomain.LookupProvider(providerID)
		return AccessDecision{Reason: fmt.Sprintf("%s requires a premium license", entry.Name)}
	}

	tone, ok := featuresDomain.LookupTone(toneID)
	if !ok {
		return AccessDecision{Reason: fmt.Sprintf("unknown tone %q", toneID)}
	}
	if !featuresDomain.IsToneAvailable(toneID, premium) {
		return AccessDecision{Reason: fmt.Sprintf("the %s tone requires a premium license", tone.Name)}
	}

	return AccessDecision{Allowed: true}
}

// Features flags every provider and tone for the current trust level.
func (s *Service) Features(ctx context.Context) FeatureSet {
	premium := s.license.GetStatus(ctx).IsPremium
	return FeatureSet{
		IsPremium:    premium,
		Providers:    featuresDomain.AvailableProviders(premium),
		Tones:        featuresDomain.AvailableTones(premium),
		HistoryLimit: featuresDomain.HistoryLimit(premium),
	}
}

// RecordTranslation appends a completed translation under the current trust
// level and schedules a cloud sync for premium users.
func (s *Service) RecordTranslation(ctx context.Context, details historyDomain.Details) (*historyDomain.Item, error) {
	if err := s.validate.Struct(details); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err)
	}
	return s.record(ctx, sessionOf(s.license.GetStatus(ctx)), details)
}

func (s *Service) record(ctx context.Context, session historyDomain.Session, details historyDomain.Details) (*historyDomain.Item, error) {
	item, err := s.history.Append(ctx, session, details)
	if err != nil {
		return nil, err
	}

	if session.Premium && s.dispatcher != nil {
		if err := s.dispatcher.DispatchSync(ctx, session); err != nil {
			s.logger.Warn("failed to schedule history sync", "error", err)
		}
	}
	return item, nil
}

// GetCurrentTrust returns the trust summary shown to users.
func (s *Service) GetCurrentTrust(ctx context.Context) Trust {
	status := s.license.GetStatus(ctx)
	now := s.license.Now()

	return Trust{
		IsPremium:   status.IsPremium,
		State:       status.TrustState(now),
		Email:       status.Email,
		Plan:        status.Plan,
		ExpiresAt:   status.ExpiresAt,
		ValidatedAt: status.ValidatedAt,
		MaskedKey:   status.MaskedKey(),
		Warning:     licensingDomain.CheckExpiration(status, now),
	}
}

// Translate gates, translates and records one request. Recording and sync
// scheduling failures are logged and never fail the translation.
func (s *Service) Translate(ctx context.Context, req TranslateRequest) (*Result, error) {
	req.Text = strings.TrimSpace(req.Text)
	if req.Tone == "" {
		req.Tone = featuresDomain.DefaultTone
	}
	if req.SourceLang == "" {
		req.SourceLang = "auto"
	}
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err)
	}
	if !featuresDomain.IsKnownProvider(req.Provider) {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownProvider, req.Provider)
	}

	status := s.license.GetStatus(ctx)
	decision := checkAccess(req.Provider, req.Tone, status.IsPremium)
	if !decision.Allowed {
		s.metrics.Counter(observability.MetricAccessDenied, 1, observability.T("provider", req.Provider))
		return nil, fmt.Errorf("%w: %s", domain.ErrAccessDenied, decision.Reason)
	}

	provider, err := s.buildProvider(req)
	if err != nil {
		return nil, err
	}

	timer := observability.StartTimer("translate").
		WithLogger(s.logger).
		WithMetrics(s.metrics).
		WithTags(observability.T("provider", req.Provider))
	translation, err := provider.Translate(ctx, domain.Request{
		Text:       req.Text,
		SourceLang: req.SourceLang,
		TargetLang: req.TargetLang,
		Tone:       req.Tone,
	})
	timer.StopWithError(err)
	if err != nil {
		return nil, fmt.Errorf("translate with %s: %w", req.Provider, err)
	}
	translation = strings.TrimSpace(translation)
	if translation == "" {
		return nil, domain.ErrEmptyTranslation
	}

	s.metrics.Counter(observability.MetricTranslations, 1, observability.T("provider", req.Provider))

	result := &Result{
		Translation: translation,
		Provider:    req.Provider,
		Tone:        req.Tone,
		SourceLang:  req.SourceLang,
		TargetLang:  req.TargetLang,
	}

	item, err := s.record(ctx, sessionOf(status), historyDomain.Details{
		Original:    req.Text,
		Translation: translation,
		SourceLang:  req.SourceLang,
		TargetLang:  req.TargetLang,
		Engine:      req.Provider,
		Tone:        req.Tone,
	})
	if err != nil {
		s.logger.Warn("failed to record translation", "provider", req.Provider, "error", err)
	} else {
		result.HistoryItem = item
	}

	return result, nil
}

func (s *Service) buildProvider(req TranslateRequest) (domain.Provider, error) {
	var cfg domain.ProviderConfig
	if s.credentials != nil {
		cfg = s.credentials.ProviderConfig(req.Provider)
	}
	if req.APIKey != "" {
		cfg.APIKey = req.APIKey
	}
	if req.Model != "" {
		cfg.Model = req.Model
	}

	provider, err := s.registry.Build(req.Provider, cfg)
	if err != nil {
		if errors.Is(err, domain.ErrUnknownProvider) {
			return nil, fmt.Errorf("%w: %s", domain.ErrProviderNotConfigured, req.Provider)
		}
		return nil, err
	}
	return provider, nil
}
