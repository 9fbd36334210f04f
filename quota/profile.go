package quota

import "fmt"

// Action is a metered domain action. The enumeration is closed: every
// action listed here must have a profile entry, enforced by
// Profiles.Validate at startup.
type Action string

const (
	// ActionChatMessage one LLM chat message sent by a user
	ActionChatMessage Action = "chat_message"

	// ActionDeckGenerate one LLM-assisted deck generation
	ActionDeckGenerate Action = "deck_generate"

	// ActionCardExplain one LLM card explanation request
	ActionCardExplain Action = "card_explain"

	// ActionAudioTranscribe one voice message transcription
	ActionAudioTranscribe Action = "audio_transcribe"
)

// AllActions returns every metered action, in stable order
func AllActions() []Action {
	return []Action{
		ActionChatMessage,
		ActionDeckGenerate,
		ActionCardExplain,
		ActionAudioTranscribe,
	}
}

// ParseAction validates an action name from configuration or transport
func ParseAction(s string) (Action, error) {
	for _, a := range AllActions() {
		if string(a) == s {
			return a, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownAction, s)
}

// Plan is the caller's subscription state at evaluation time
type Plan string

const (
	// PlanFree no active subscription
	PlanFree Plan = "free"

	// PlanTrial active trial period; treated as premium for rule selection
	PlanTrial Plan = "trial"

	// PlanPremium active paid subscription
	PlanPremium Plan = "premium"
)

// premiumRules reports whether the plan selects premium-tier ceilings
func (p Plan) premiumRules() bool {
	return p == PlanPremium || p == PlanTrial
}

// Profile is the free/premium rule pair for one metered action
type Profile struct {
	Free    Rule
	Premium Rule
}

// Profiles maps every metered action to its rule pair. Resolution happens
// at evaluation time against the caller's current plan; nothing is
// cached, so a plan change takes effect on the very next evaluation.
type Profiles map[Action]Profile

// Resolve returns the rule for an action under the caller's plan.
// Unknown actions are a programmer error surfaced as ErrUnknownAction;
// Validate at startup makes this unreachable for enumerated actions.
func (p Profiles) Resolve(action Action, plan Plan) (Rule, error) {
	profile, ok := p[action]
	if !ok {
		return Rule{}, fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}
	if plan.premiumRules() {
		return profile.Premium, nil
	}
	return profile.Free, nil
}

// Validate enforces exhaustive coverage of the action enumeration and
// rule invariants. Call during startup; a gap here is fatal, not a
// request-time condition.
func (p Profiles) Validate() error {
	for _, action := range AllActions() {
		profile, ok := p[action]
		if !ok {
			return &ValidationError{
				Field:   string(action),
				Message: "no quota profile for metered action",
			}
		}
		if err := profile.Free.Validate(); err != nil {
			return fmt.Errorf("action %s free rule: %w", action, err)
		}
		if err := profile.Premium.Validate(); err != nil {
			return fmt.Errorf("action %s premium rule: %w", action, err)
		}
	}
	for action := range p {
		if _, err := ParseAction(string(action)); err != nil {
			return err
		}
	}
	return nil
}
