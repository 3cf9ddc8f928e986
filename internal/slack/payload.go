package slack

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
)

// Interaction kinds produced by ParseInteraction.
const (
	InteractionOptionClick   = "option_click"
	InteractionFreeTextClick = "freetext_click"
	InteractionModalSubmit   = "modal_submit"
)

// Interaction is one parsed Slack interactivity callback, normalized to
// the three shapes the bridge acts on.
type Interaction struct {
	Kind      string
	TriggerID string

	// Button clicks.
	Value ButtonValue

	// Modal submissions.
	Metadata ModalMetadata
	FreeText string
}

type rawInteraction struct {
	Type      string `json:"type"`
	TriggerID string `json:"trigger_id"`
	Actions   []struct {
		ActionID string `json:"action_id"`
		Value    string `json:"value"`
	} `json:"actions"`
	View struct {
		PrivateMetadata string `json:"private_metadata"`
		State           struct {
			Values map[string]map[string]struct {
				Value string `json:"value"`
			} `json:"values"`
		} `json:"state"`
	} `json:"view"`
}

// ParseInteraction decodes the platform callback body. Slack sends
// interactivity callbacks url-encoded as payload=<json>; a raw JSON body
// is accepted too.
func ParseInteraction(body []byte) (*Interaction, error) {
	payload := body
	if !json.Valid(body) || strings.HasPrefix(string(body), "payload=") {
		form, err := url.ParseQuery(string(body))
		if err != nil {
			return nil, fmt.Errorf("parse callback form: %w", err)
		}
		encoded := form.Get("payload")
		if encoded == "" {
			return nil, fmt.Errorf("callback has no payload field")
		}
		payload = []byte(encoded)
	}

	var raw rawInteraction
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, fmt.Errorf("decode callback payload: %w", err)
	}

	switch raw.Type {
	case "block_actions":
		if len(raw.Actions) == 0 {
			return nil, fmt.Errorf("block_actions callback has no actions")
		}
		action := raw.Actions[0]
		var value ButtonValue
		if err := json.Unmarshal([]byte(action.Value), &value); err != nil {
			return nil, fmt.Errorf("decode action value: %w", err)
		}
		kind := InteractionOptionClick
		// The free-text button carries no option index; that is what
		// distinguishes it from a regular option.
		if strings.HasPrefix(action.ActionID, "freetext_") || value.OptionIndex == nil {
			kind = InteractionFreeTextClick
		}
		return &Interaction{Kind: kind, TriggerID: raw.TriggerID, Value: value}, nil

	case "view_submission":
		var metadata ModalMetadata
		if err := json.Unmarshal([]byte(raw.View.PrivateMetadata), &metadata); err != nil {
			return nil, fmt.Errorf("decode modal metadata: %w", err)
		}
		text := raw.View.State.Values["freetext_input"]["freetext_value"].Value
		return &Interaction{Kind: InteractionModalSubmit, Metadata: metadata, FreeText: text}, nil

	default:
		return nil, fmt.Errorf("unsupported interaction type %q", raw.Type)
	}
}
