package api

import (
	"github.com/anthropics/anthropic-sdk-go"
)

// AskUserTool is the name of the clarification tool offered to the model.
const AskUserTool = "ask_user"

// ToolSpec describes one capability the model may call.
type ToolSpec struct {
	Name        string
	Description string
	// Properties maps argument names to JSON schema fragments.
	Properties map[string]interface{}
	Required   []string
}

// StringArg is the schema fragment for a string argument.
func StringArg(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": description,
	}
}

// AskUserSpec lets the model request a clarification instead of answering.
var AskUserSpec = ToolSpec{
	Name:        AskUserTool,
	Description: "Ask the customer for missing information. Keep the question under 15 words.",
	Properties: map[string]interface{}{
		"question":     StringArg("The question to ask the customer"),
		"missing_info": StringArg("Short label for the missing information, e.g. policy number"),
	},
	Required: []string{"question", "missing_info"},
}

// param converts the tool definition into its SDK form.
func (t ToolSpec) param() anthropic.ToolUnionParam {
	props := t.Properties
	if props == nil {
		props = map[string]interface{}{}
	}
	return anthropic.ToolUnionParam{
		OfTool: &anthropic.ToolParam{
			Name:        t.Name,
			Description: anthropic.String(t.Description),
			InputSchema: anthropic.ToolInputSchemaParam{
				Properties: props,
				Required:   t.Required,
			},
		},
	}
}

// toolParams converts the tools of a request, appending ask_user when allowed.
func toolParams(req Request) []anthropic.ToolUnionParam {
	specs := req.Tools
	if req.AllowAsk {
		specs = append(append([]ToolSpec(nil), specs...), AskUserSpec)
	}
	if len(specs) == 0 {
		return nil
	}
	out := make([]anthropic.ToolUnionParam, len(specs))
	for i, s := range specs {
		out[i] = s.param()
	}
	return out
}
