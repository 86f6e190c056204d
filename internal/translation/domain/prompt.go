package domain

import (
	"fmt"

	featuresDomain "github.com/felixgeelhaar/lingua/internal/features/domain"
)

var toneInstructions = map[string]string{
	featuresDomain.ToneNeutral:  "Use a neutral, natural register.",
	featuresDomain.ToneFormal:   "Use a formal, polite register.",
	featuresDomain.ToneCasual:   "Use a casual, conversational register.",
	featuresDomain.ToneAcademic: "Use precise academic language.",
	featuresDomain.ToneBusiness: "Use clear, professional business language.",
	featuresDomain.ToneCreative: "Use expressive, creative language while keeping the meaning.",
}

// SystemPrompt returns the instruction sent before the user's text.
func SystemPrompt(req Request) string {
	tone, ok := toneInstructions[req.Tone]
	if !ok {
		tone = toneInstructions[featuresDomain.DefaultTone]
	}
	source := req.SourceLang
	if source == "" || source == "auto" {
		source = "the detected source language"
	}
	return fmt.Sprintf(
		"You are a professional translator. Translate the user's text from %s to %s. %s Reply with the translation only.",
		source, req.TargetLang, tone,
	)
}
