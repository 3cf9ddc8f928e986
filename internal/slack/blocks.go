package slack

import (
	"encoding/json"
	"fmt"

	"github.com/kazuph/slack-bridge/internal/models"
)

// maxButtonsPerRow is Slack's limit on elements in one actions block.
// Options beyond the cap spill into additional rows, never dropped.
const maxButtonsPerRow = 5

// defaultHeader is used when a question carries no header of its own.
const defaultHeader = "Claude Code"

// Block is one Block Kit block. Only the fields the bridge emits are
// modeled; Slack ignores absent fields.
type Block struct {
	Type     string    `json:"type"`
	Text     *TextObj  `json:"text,omitempty"`
	Elements []Element `json:"elements,omitempty"`
	BlockID  string    `json:"block_id,omitempty"`
	Element  *Element  `json:"element,omitempty"`
	Label    *TextObj  `json:"label,omitempty"`
}

// TextObj is a Block Kit text object.
type TextObj struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Element is a Block Kit interactive element (button or plain-text input).
type Element struct {
	Type        string   `json:"type"`
	Text        *TextObj `json:"text,omitempty"`
	Value       string   `json:"value,omitempty"`
	ActionID    string   `json:"action_id,omitempty"`
	Style       string   `json:"style,omitempty"`
	Multiline   bool     `json:"multiline,omitempty"`
	Placeholder *TextObj `json:"placeholder,omitempty"`
}

// ModalView is a Block Kit modal definition for views.open.
type ModalView struct {
	Type            string   `json:"type"`
	CallbackID      string   `json:"callback_id"`
	Title           *TextObj `json:"title"`
	Submit          *TextObj `json:"submit"`
	Close           *TextObj `json:"close"`
	PrivateMetadata string   `json:"private_metadata"`
	Blocks          []Block  `json:"blocks"`
}

// ButtonValue is the opaque payload carried in each clickable element.
// OptionIndex is nil for the free-text button, which is how the callback
// parser tells it apart from a regular option.
type ButtonValue struct {
	QuestionID    string `json:"questionId"`
	QuestionIndex int    `json:"questionIndex"`
	OptionIndex   *int   `json:"optionIndex,omitempty"`
	Label         string `json:"label,omitempty"`
	Question      string `json:"question,omitempty"`
}

// ModalMetadata is the private_metadata payload a free-text modal carries
// back on submission.
type ModalMetadata struct {
	QuestionID    string `json:"questionId"`
	QuestionIndex int    `json:"questionIndex"`
}

// BuildQuestionBlocks renders one question of a batch into its Slack
// message blocks: header, body, divider, then the option buttons plus the
// always-appended free-text button, grouped five per actions row.
func BuildQuestionBlocks(questionID string, questionIndex int, q models.Question) []Block {
	header := q.Header
	if header == "" {
		header = defaultHeader
	}
	blocks := []Block{
		{Type: "header", Text: &TextObj{Type: "plain_text", Text: "🤖 " + header}},
		{Type: "section", Text: &TextObj{Type: "mrkdwn", Text: q.Question}},
		{Type: "divider"},
	}

	buttons := make([]Element, 0, len(q.Options)+1)
	for i, opt := range q.Options {
		idx := i
		value, _ := json.Marshal(ButtonValue{
			QuestionID:    questionID,
			QuestionIndex: questionIndex,
			OptionIndex:   &idx,
			Label:         opt.Label,
		})
		buttons = append(buttons, Element{
			Type:     "button",
			Text:     &TextObj{Type: "plain_text", Text: opt.Label},
			Value:    string(value),
			ActionID: fmt.Sprintf("answer_%s_%d_%d", questionID, questionIndex, i),
		})
	}

	freeText, _ := json.Marshal(ButtonValue{
		QuestionID:    questionID,
		QuestionIndex: questionIndex,
		Question:      q.Question,
	})
	buttons = append(buttons, Element{
		Type:     "button",
		Text:     &TextObj{Type: "plain_text", Text: "✏️ Other (free text)"},
		Style:    "primary",
		Value:    string(freeText),
		ActionID: fmt.Sprintf("freetext_%s_%d", questionID, questionIndex),
	})

	for i := 0; i < len(buttons); i += maxButtonsPerRow {
		end := i + maxButtonsPerRow
		if end > len(buttons) {
			end = len(buttons)
		}
		blocks = append(blocks, Block{Type: "actions", Elements: buttons[i:end]})
	}

	return blocks
}

// BuildFreeTextModal renders the input modal opened when the free-text
// button is clicked. The question id travels in private_metadata so the
// submission can be correlated back to the pending entry.
func BuildFreeTextModal(questionID string, questionIndex int, originalQuestion string) ModalView {
	metadata, _ := json.Marshal(ModalMetadata{QuestionID: questionID, QuestionIndex: questionIndex})
	return ModalView{
		Type:            "modal",
		CallbackID:      "freetext_modal",
		Title:           &TextObj{Type: "plain_text", Text: "Answer in free text"},
		Submit:          &TextObj{Type: "plain_text", Text: "Submit"},
		Close:           &TextObj{Type: "plain_text", Text: "Cancel"},
		PrivateMetadata: string(metadata),
		Blocks: []Block{
			{Type: "section", Text: &TextObj{Type: "mrkdwn", Text: "*Question:*\n" + originalQuestion}},
			{
				Type:    "input",
				BlockID: "freetext_input",
				Element: &Element{
					Type:        "plain_text_input",
					ActionID:    "freetext_value",
					Multiline:   true,
					Placeholder: &TextObj{Type: "plain_text", Text: "Type your answer..."},
				},
				Label: &TextObj{Type: "plain_text", Text: "Answer"},
			},
		},
	}
}
