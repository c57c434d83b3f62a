package conversation

import (
	"fmt"
	"strings"
)

// UnknownLocation stands in for a location that could not be resolved.
const UnknownLocation = "Unknown"

// Context is the per-chat profile and document bundle injected into every
// prompt. It is frozen when the chat starts.
type Context struct {
	UserName              string `json:"userName"`
	Feeling               string `json:"feeling"`
	Age                   string `json:"age"`
	WeeksPregnant         string `json:"weeksPregnant"`
	PreExistingConditions string `json:"preExistingConditions"`
	SpecificConcerns      string `json:"specificConcerns"`
	CombinedExtractedText string `json:"-"`
}

// BuildPrompt renders the context preamble, persona instruction and the new
// user text into one prompt.
func BuildPrompt(c Context, location, country, userText string) string {
	if location == "" {
		location = UnknownLocation
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "User Name: %s.\n", c.UserName)
	fmt.Fprintf(&sb, "Age: %s.\n", c.Age)
	fmt.Fprintf(&sb, "Weeks Pregnant: %s.\n", c.WeeksPregnant)
	fmt.Fprintf(&sb, "Pre-existing Conditions: %s.\n", c.PreExistingConditions)
	fmt.Fprintf(&sb, "Specific Concerns: %s.\n", c.SpecificConcerns)
	fmt.Fprintf(&sb, "Medical Document Text: %s.\n", c.CombinedExtractedText)
	fmt.Fprintf(&sb, "User Feeling: %s.\n", c.Feeling)
	fmt.Fprintf(&sb, "User Location: %s.\n\n", location)
	fmt.Fprintf(&sb, "You are a pregnancy care assistant. Keep this context in mind and always remember to customise your responses for %s. ", country)
	sb.WriteString("If the user's location is provided, tailor your advice to that specific location when relevant.\n\n")
	fmt.Fprintf(&sb, "User says: %s\n\n", userText)
	sb.WriteString("AI:")
	return sb.String()
}
