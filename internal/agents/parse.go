package agents

import (
	"encoding/json"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/insightflow/insightflow-go/internal/models"
)

const fallbackSummaryLimit = 500

// completionPayload is the JSON shape requested from every persona. Fields
// the persona omits simply stay zero; the caller decides what is required.
type completionPayload struct {
	Summary   string `json:"summary"`
	Arguments []struct {
		Point      string  `json:"point"`
		Evidence   string  `json:"evidence"`
		Confidence float64 `json:"confidence"`
	} `json:"arguments"`
	Recommendation  string   `json:"recommendation"`
	ConfidenceScore *float64 `json:"confidence_score"`
}

// extractJSON slices the raw completion between the first "{" and the last
// "}". Returns false when no braces are present.
func extractJSON(raw string) (string, bool) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end <= start {
		return "", false
	}
	return raw[start : end+1], true
}

// parseAnalysis decodes a bull or bear completion. Any failure degrades to
// the low-confidence fallback; it never returns an error.
func parseAnalysis(raw string, agent models.AgentType, sources []models.SourceCitation) *models.AgentAnalysis {
	payload, ok := decode(raw)
	if !ok || payload.ConfidenceScore == nil {
		return fallbackAnalysis(raw, agent, sources)
	}

	return &models.AgentAnalysis{
		AgentType:       agent,
		Summary:         payload.Summary,
		Arguments:       payloadArguments(payload),
		ConfidenceScore: *payload.ConfidenceScore,
		Sources:         sources,
		Timestamp:       time.Now().UTC(),
	}
}

// parseModeratorAnalysis decodes the moderator completion, coercing any
// recommendation outside the closed verdict set to MIXED SIGNALS.
func parseModeratorAnalysis(raw string, sources []models.SourceCitation) *models.AgentAnalysis {
	payload, ok := decode(raw)
	if !ok || payload.ConfidenceScore == nil {
		return fallbackModerator(raw, sources)
	}

	recommendation := payload.Recommendation
	if !models.ValidVerdict(recommendation) {
		recommendation = models.VerdictMixedSignals
	}

	return &models.AgentAnalysis{
		AgentType:       models.AgentModerator,
		Summary:         payload.Summary,
		Arguments:       payloadArguments(payload),
		Recommendation:  recommendation,
		ConfidenceScore: *payload.ConfidenceScore,
		Sources:         sources,
		Timestamp:       time.Now().UTC(),
	}
}

func decode(raw string) (*completionPayload, bool) {
	jsonStr, ok := extractJSON(raw)
	if !ok {
		return nil, false
	}
	var payload completionPayload
	if err := json.Unmarshal([]byte(jsonStr), &payload); err != nil {
		return nil, false
	}
	return &payload, true
}

func payloadArguments(p *completionPayload) []models.Argument {
	args := make([]models.Argument, 0, len(p.Arguments))
	for _, a := range p.Arguments {
		args = append(args, models.Argument{
			Point:      a.Point,
			Evidence:   a.Evidence,
			Confidence: a.Confidence,
		})
	}
	return args
}

// fallbackAnalysis is the degraded bull/bear result when parsing fails.
func fallbackAnalysis(raw string, agent models.AgentType, sources []models.SourceCitation) *models.AgentAnalysis {
	return &models.AgentAnalysis{
		AgentType: agent,
		Summary:   fallbackSummary(raw),
		Arguments: []models.Argument{
			{
				Point:      "See detailed analysis",
				Evidence:   truncate(raw, 300),
				Confidence: 0.6,
			},
		},
		ConfidenceScore: 0.6,
		Sources:         sources,
		Timestamp:       time.Now().UTC(),
	}
}

// fallbackModerator is the degraded moderator result when parsing fails.
func fallbackModerator(raw string, sources []models.SourceCitation) *models.AgentAnalysis {
	return &models.AgentAnalysis{
		AgentType:       models.AgentModerator,
		Summary:         fallbackSummary(raw),
		Arguments:       []models.Argument{},
		Recommendation:  models.VerdictMixedSignals,
		ConfidenceScore: 0.5,
		Sources:         sources,
		Timestamp:       time.Now().UTC(),
	}
}

func fallbackSummary(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return "Analysis completed."
	}
	return truncate(raw, fallbackSummaryLimit)
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	// Back off to a rune boundary so a multi-byte character is never split.
	for limit > 0 && !utf8.RuneStart(s[limit]) {
		limit--
	}
	return s[:limit]
}
