package generator

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/mathbeast/backend/internal/models"
)

var (
	harmonyReasoningRe  = regexp.MustCompile(`(?i)Reasoning:[\s\S]*?(Answer:|$)`)
	harmonyAnswerRe     = regexp.MustCompile(`(?i)Answer:[\s\S]*?(Verification:|Confidence:|$)`)
	harmonyConfidenceRe = regexp.MustCompile(`(?i)Confidence:\s*([\d.]+)`)
	harmonyLabelRe      = regexp.MustCompile(`(?i)^(Reasoning|Answer):\s*`)
)

// ParseHarmony splits a harmony-format answer into its reasoning,
// answer, and confidence sections. Text without section labels becomes
// the reasoning wholesale; missing confidence defaults to 0.8.
func ParseHarmony(text string) models.HarmonySolution {
	out := models.HarmonySolution{
		Reasoning:      strings.TrimSpace(text),
		Confidence:     0.8,
		ChainOfThought: []models.ChainOfThoughtStep{},
	}

	if m := harmonyReasoningRe.FindString(text); m != "" {
		out.Reasoning = trimHarmonySection(m, "Answer:")
	}
	if m := harmonyAnswerRe.FindString(text); m != "" {
		s := trimHarmonySection(m, "Verification:")
		out.Answer = trimSuffixLabel(s, "Confidence:")
	}
	if m := harmonyConfidenceRe.FindStringSubmatch(text); len(m) == 2 {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			out.Confidence = v
		}
	}

	return out
}

func trimHarmonySection(s, next string) string {
	s = harmonyLabelRe.ReplaceAllString(s, "")
	return trimSuffixLabel(s, next)
}

func trimSuffixLabel(s, label string) string {
	if i := strings.Index(strings.ToLower(s), strings.ToLower(label)); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
