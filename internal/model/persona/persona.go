package persona

import (
	"embed"
	"fmt"
	"strings"
)

// DefaultID is the persona used when a request names none.
const DefaultID = "aria"

//go:embed presets/*.yaml
var presetFS embed.FS

// Presets exposes the embedded persona definitions, rooted at "presets".
func Presets() embed.FS {
	return presetFS
}

// Persona captures a named system-prompt configuration.
type Persona struct {
	ID           string `json:"id" yaml:"id"`
	Name         string `json:"name" yaml:"name"`
	Title        string `json:"title,omitempty" yaml:"title"`
	Tone         string `json:"tone,omitempty" yaml:"tone"`
	OpeningLine  string `json:"openingLine,omitempty" yaml:"opening_line"`
	SystemPrompt string `json:"-" yaml:"system_prompt"`
}

// Prompt returns the conditioning text for the generation service. Definitions
// without an explicit system prompt get a basic one built from their profile.
func (p Persona) Prompt() string {
	if prompt := strings.TrimSpace(p.SystemPrompt); prompt != "" {
		return prompt
	}
	return p.basicPrompt()
}

func (p Persona) basicPrompt() string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are %s", p.Name)
	if p.Title != "" {
		fmt.Fprintf(&b, ", %s", p.Title)
	}
	b.WriteString(".")
	if p.Tone != "" {
		fmt.Fprintf(&b, "\nSpeak in a %s tone and stay in character.", p.Tone)
	}
	if p.OpeningLine != "" {
		fmt.Fprintf(&b, "\nA typical greeting from you: %q", p.OpeningLine)
	}
	b.WriteString("\nNever reveal you're AI. Assume you're texting from your phone.")
	return b.String()
}

func (p Persona) validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return fmt.Errorf("id is required")
	}
	if strings.ContainsAny(p.ID, " \t\n") {
		return fmt.Errorf("id %q must not contain whitespace", p.ID)
	}
	if strings.TrimSpace(p.SystemPrompt) == "" && strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("persona %q needs a system_prompt or a name", p.ID)
	}
	return nil
}
