// Package assistant answers free-text maintenance questions. It routes
// lifespan questions to the predictor through the appliance matcher and
// phrases the reply with an optional text generator, falling back to fixed
// templates when none is configured or the callout fails.
package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/couchcryptid/upkeep-planner-service/internal/domain"
)

// maxContextAppliances bounds how many appliances are sent to the generator.
const maxContextAppliances = 50

const systemPrompt = `You are Maintainly, a friendly, expert home-maintenance assistant.
- Always answer the user's question conversationally.
- Personalize with first name and home nickname when available.
- If a prediction is included, summarize it clearly (remaining life, replacement date, monthly saving).
- If data is missing (e.g., no install year), ask ONE concise follow-up while still giving helpful guidance.
- Keep answers focused and actionable.`

var lifespanQueryRe = regexp.MustCompile(`(?i)\b(when|how\s+long|lifespan|life\s*left|die|replace|replacement)\b`)

// IsLifespanQuery reports whether a message asks about remaining life or replacement timing.
func IsLifespanQuery(text string) bool {
	return lifespanQueryRe.MatchString(text)
}

// Predictor runs a precise lifespan prediction.
type Predictor interface {
	Predict(ctx context.Context, req domain.PredictRequest) (domain.LifespanPrediction, error)
}

// UserContext is everything the assistant knows about the asking user.
// Homes and Appliances are ordered newest first.
type UserContext struct {
	Profile    *domain.Profile
	Homes      []domain.Home
	Appliances []domain.Appliance
}

func (uc UserContext) latestHome() *domain.Home {
	if len(uc.Homes) == 0 {
		return nil
	}
	return &uc.Homes[0]
}

func (uc UserContext) home(id string) *domain.Home {
	for i := range uc.Homes {
		if uc.Homes[i].ID == id {
			return &uc.Homes[i]
		}
	}
	return nil
}

// Reply is the assistant's answer plus the prediction it was based on, if any.
type Reply struct {
	Answer          string                     `json:"answer"`
	Prediction      *domain.LifespanPrediction `json:"prediction"`
	UsedApplianceID *string                    `json:"used_appliance_id"`

	// Generated is true when the text generator wrote Answer.
	Generated bool `json:"-"`
}

// Assistant composes replies to chat messages.
type Assistant struct {
	predictor Predictor
	generator domain.TextGenerator
	logger    *slog.Logger
}

// New creates an Assistant. generator may be nil.
func New(predictor Predictor, generator domain.TextGenerator, logger *slog.Logger) *Assistant {
	return &Assistant{predictor: predictor, generator: generator, logger: logger}
}

// Respond answers message for the user. It never fails: prediction and
// generation errors are logged and the reply degrades to a template.
func (a *Assistant) Respond(ctx context.Context, message string, uc UserContext) Reply {
	if len(uc.Appliances) > maxContextAppliances {
		uc.Appliances = uc.Appliances[:maxContextAppliances]
	}

	var reply Reply
	var picked *domain.Appliance
	if IsLifespanQuery(message) && len(uc.Appliances) > 0 {
		picked = domain.PickBestAppliance(message, uc.Appliances)
	}
	if picked != nil {
		id := picked.ID
		reply.UsedApplianceID = &id
		reply.Prediction = a.predict(ctx, *picked, uc)
	}

	if answer, ok := a.generate(ctx, message, uc, reply); ok {
		reply.Answer = answer
		reply.Generated = true
		return reply
	}
	reply.Answer = fallbackAnswer(uc.Profile, picked, reply.Prediction)
	return reply
}

// predict runs the predictor for an appliance with an install year. The
// location is taken from the appliance's home, then the newest home, then
// the profile.
func (a *Assistant) predict(ctx context.Context, picked domain.Appliance, uc UserContext) *domain.LifespanPrediction {
	if picked.InstallYear == nil || *picked.InstallYear == 0 {
		return nil
	}

	req := domain.PredictRequest{Appliance: picked, Profile: uc.Profile}
	if loc, ok := domain.ResolveLocation(
		domain.FromHome(uc.home(picked.HomeID)),
		domain.FromHome(uc.latestHome()),
	); ok {
		req.Override = &loc
	}

	pred, err := a.predictor.Predict(ctx, req)
	if err != nil {
		a.logger.Warn("assistant prediction failed", "appliance_id", picked.ID, "error", err)
		return nil
	}
	return &pred
}

type generatorContext struct {
	UserMessage     string                     `json:"user_message"`
	Profile         *domain.Profile            `json:"profile"`
	Home            *domain.Home               `json:"home"`
	Appliances      []domain.Appliance         `json:"appliances"`
	Prediction      *domain.LifespanPrediction `json:"prediction"`
	UsedApplianceID *string                    `json:"used_appliance_id"`
}

func (a *Assistant) generate(ctx context.Context, message string, uc UserContext, reply Reply) (string, bool) {
	if a.generator == nil {
		return "", false
	}

	payload, err := json.MarshalIndent(generatorContext{
		UserMessage:     message,
		Profile:         uc.Profile,
		Home:            uc.latestHome(),
		Appliances:      uc.Appliances,
		Prediction:      reply.Prediction,
		UsedApplianceID: reply.UsedApplianceID,
	}, "", "  ")
	if err != nil {
		a.logger.Warn("marshal assistant context", "error", err)
		return "", false
	}

	answer, err := a.generator.Generate(ctx, []domain.ChatMessage{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: fmt.Sprintf("CONTEXT:\n%s\n\nUSER:\n%s", payload, message)},
	})
	if err != nil {
		a.logger.Warn("text generation failed, using template answer", "error", err)
		return "", false
	}
	answer = strings.TrimSpace(answer)
	return answer, answer != ""
}

func fallbackAnswer(profile *domain.Profile, picked *domain.Appliance, pred *domain.LifespanPrediction) string {
	name := ""
	if profile != nil && profile.FirstName != "" {
		name = " " + profile.FirstName
	}

	if pred != nil && picked != nil {
		label := "appliance"
		if picked.Type != "" {
			label = strings.ReplaceAll(picked.Type, "_", " ")
		}
		return fmt.Sprintf("Okay%s, for your %s:\n"+
			"• Estimated remaining life: ~%g years\n"+
			"• Target replacement date: %s\n"+
			"• Suggested monthly saving: $%.2f\n"+
			"Want tips to extend its lifespan or set a reminder?",
			name, label, pred.AdjustedLifespanYears, pred.ReplaceOn, pred.MonthlyTarget)
	}

	return fmt.Sprintf("Hi%s! I can help with maintenance, troubleshooting, and budgeting.\n"+
		"Try asking \"When should I replace my water heater?\" or tell me: \"Dishwasher installed 2018 in Austin, TX.\"\n"+
		"If you'd like, I can also help you add or update your appliances so estimates get more accurate.", name)
}
