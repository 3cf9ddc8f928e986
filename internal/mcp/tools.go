package mcp

// ToolDefinitions returns the tools this adapter exposes.
func ToolDefinitions() []ToolDefinition {
	return []ToolDefinition{
		{
			Name: "ask_user",
			Description: "Ask the human a question via Slack and wait for their answer. " +
				"The user can pick one of the offered options or type a free-text reply. " +
				"Blocks until an answer arrives or the bridge's timeout elapses.",
			InputSchema: InputSchema{
				Type: "object",
				Properties: map[string]Property{
					"question": {
						Type:        "string",
						Description: "The question to ask",
					},
					"header": {
						Type:        "string",
						Description: "Short title shown above the question",
					},
					"options": {
						Type:        "array",
						Description: "Answer choices rendered as buttons; a free-text option is always added",
						Items:       &Items{Type: "string"},
					},
					"sessionInfo": {
						Type:        "string",
						Description: "Label identifying the asking session, shown in the Slack message",
					},
				},
				Required: []string{"question"},
			},
		},
	}
}
