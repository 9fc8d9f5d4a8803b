package mock

import (
	"fmt"
	"strings"

	"github.com/MegaGrindStone/go-uigen"
	"github.com/MegaGrindStone/go-uigen/tools"
)

// Component kinds the model knows how to build.
const (
	KindCounter = "counter"
	KindForm    = "form"
	KindCard    = "card"
)

// Component is the React component a conversation asks for.
type Component struct {
	Kind string
	Name string
}

// Path returns where the component file is created.
func (c Component) Path() string {
	return "/components/" + c.Name + ".jsx"
}

// DetectComponent picks the component from a prompt: "form" wins over "card", anything else is a
// counter. Matching is case-insensitive.
func DetectComponent(prompt string) Component {
	lower := strings.ToLower(prompt)
	switch {
	case strings.Contains(lower, "form"):
		return Component{Kind: KindForm, Name: "ContactForm"}
	case strings.Contains(lower, "card"):
		return Component{Kind: KindCard, Name: "Card"}
	default:
		return Component{Kind: KindCounter, Name: "Counter"}
	}
}

// step is the scripted output of one model step.
type step struct {
	text   string
	call   *tools.EditorArgs
	reason uigen.FinishReason
	usage  uigen.Usage
}

// planStep selects the step from the number of tool results in the transcript. The component is
// always taken from the first user entry.
func planStep(transcript uigen.Transcript) (step, bool) {
	c := DetectComponent(transcript.FirstUserPrompt())
	toolUsage := uigen.Usage{InputTokens: 50, OutputTokens: 30}

	switch n := transcript.ToolResultCount(); {
	case n == 0:
		return step{
			text: "This is a static response. You can place an Anthropic API key in the .env file to use " +
				"the Anthropic API for component generation. Let me create an App.jsx file to display the component.",
			call:   createArgs("/App.jsx", appCode(c)),
			reason: uigen.FinishReasonToolCalls,
			usage:  toolUsage,
		}, true
	case n == 1:
		return step{
			text:   fmt.Sprintf("I'll create a %s component for you.", c.Name),
			call:   createArgs(c.Path(), componentCode(c)),
			reason: uigen.FinishReasonToolCalls,
			usage:  toolUsage,
		}, true
	case n == 2:
		oldStr, newStr := enhancement(c)
		return step{
			text: "Now let me enhance the component with better styling.",
			call: &tools.EditorArgs{
				Command: tools.CommandStrReplace,
				Path:    c.Path(),
				OldStr:  &oldStr,
				NewStr:  &newStr,
			},
			reason: uigen.FinishReasonToolCalls,
			usage:  toolUsage,
		}, true
	case n >= 3:
		return step{
			text: fmt.Sprintf("Perfect! I've created:\n\n"+
				"1. **%s.jsx** - A fully-featured %s component\n"+
				"2. **App.jsx** - The main app file that displays the component\n\n"+
				"The component is now ready to use. You can see the preview on the right side of the screen.",
				c.Name, c.Kind),
			reason: uigen.FinishReasonStop,
			usage:  uigen.Usage{InputTokens: 50, OutputTokens: 50},
		}, true
	default:
		return step{}, false
	}
}

func createArgs(path, text string) *tools.EditorArgs {
	return &tools.EditorArgs{Command: tools.CommandCreate, Path: path, FileText: &text}
}

func componentCode(c Component) string {
	switch c.Kind {
	case KindForm:
		return contactFormCode
	case KindCard:
		return cardCode
	default:
		return counterCode
	}
}

// enhancement returns the str_replace pair applied in the third step. Each old string occurs in
// the matching component template exactly once.
func enhancement(c Component) (string, string) {
	switch c.Kind {
	case KindForm:
		return "    console.log('Form submitted:', formData);",
			"    console.log('Form submitted:', formData);\n    alert('Thank you! We\\'ll get back to you soon.');"
	case KindCard:
		return `      <div className="p-6">`,
			`      <div className="p-6 hover:bg-gray-50 transition-colors">`
	default:
		return "    setCount(count + 1);",
			"    setCount(prev => prev + 1);"
	}
}
