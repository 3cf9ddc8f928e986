package slack

import (
	"encoding/json"
	"testing"

	"github.com/kazuph/slack-bridge/internal/models"
)

func optionLabels(n int) []models.Option {
	labels := []string{"Alpha", "Beta", "Gamma", "Delta", "Epsilon", "Zeta", "Eta", "Theta"}
	opts := make([]models.Option, n)
	for i := 0; i < n; i++ {
		opts[i] = models.Option{Label: labels[i]}
	}
	return opts
}

func actionRows(blocks []Block) [][]Element {
	var rows [][]Element
	for _, b := range blocks {
		if b.Type == "actions" {
			rows = append(rows, b.Elements)
		}
	}
	return rows
}

func TestBuildQuestionBlocksLayout(t *testing.T) {
	q := models.Question{
		Header:   "Deploy check",
		Question: "Ship to production?",
		Options:  optionLabels(2),
	}
	blocks := BuildQuestionBlocks("q_1", 0, q)

	if blocks[0].Type != "header" || blocks[0].Text.Text != "🤖 Deploy check" {
		t.Errorf("header block = %+v", blocks[0])
	}
	if blocks[1].Type != "section" || blocks[1].Text.Text != "Ship to production?" {
		t.Errorf("section block = %+v", blocks[1])
	}
	if blocks[2].Type != "divider" {
		t.Errorf("third block = %q, want divider", blocks[2].Type)
	}

	rows := actionRows(blocks)
	if len(rows) != 1 {
		t.Fatalf("got %d action rows, want 1", len(rows))
	}
	// Two options plus the free-text button.
	if len(rows[0]) != 3 {
		t.Fatalf("got %d buttons, want 3", len(rows[0]))
	}
}

func TestBuildQuestionBlocksDefaultHeader(t *testing.T) {
	blocks := BuildQuestionBlocks("q_1", 0, models.Question{Question: "Continue?"})
	if blocks[0].Text.Text != "🤖 Claude Code" {
		t.Errorf("header = %q, want default", blocks[0].Text.Text)
	}
}

func TestBuildQuestionBlocksRowChunking(t *testing.T) {
	tests := []struct {
		name     string
		options  int
		wantRows []int
	}{
		{"no options still gets free-text", 0, []int{1}},
		{"four options fill one row", 4, []int{5}},
		{"five options spill free-text", 5, []int{5, 1}},
		{"seven options split five and three", 7, []int{5, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blocks := BuildQuestionBlocks("q_1", 0, models.Question{
				Question: "Pick one",
				Options:  optionLabels(tt.options),
			})
			rows := actionRows(blocks)
			if len(rows) != len(tt.wantRows) {
				t.Fatalf("got %d rows, want %d", len(rows), len(tt.wantRows))
			}
			for i, want := range tt.wantRows {
				if len(rows[i]) != want {
					t.Errorf("row %d has %d buttons, want %d", i, len(rows[i]), want)
				}
			}
		})
	}
}

func TestButtonValues(t *testing.T) {
	blocks := BuildQuestionBlocks("q_1", 2, models.Question{
		Question: "Pick one",
		Options:  optionLabels(2),
	})
	rows := actionRows(blocks)
	buttons := rows[0]

	var first ButtonValue
	if err := json.Unmarshal([]byte(buttons[0].Value), &first); err != nil {
		t.Fatalf("decode option value: %v", err)
	}
	if first.QuestionID != "q_1" || first.QuestionIndex != 2 {
		t.Errorf("option value = %+v", first)
	}
	if first.OptionIndex == nil || *first.OptionIndex != 0 {
		t.Errorf("option index = %v, want 0", first.OptionIndex)
	}

	var second ButtonValue
	if err := json.Unmarshal([]byte(buttons[1].Value), &second); err != nil {
		t.Fatalf("decode option value: %v", err)
	}
	if second.OptionIndex == nil || *second.OptionIndex != 1 {
		t.Errorf("second option index = %v, want 1", second.OptionIndex)
	}

	free := buttons[len(buttons)-1]
	if free.Style != "primary" {
		t.Errorf("free-text style = %q, want primary", free.Style)
	}
	var freeValue ButtonValue
	if err := json.Unmarshal([]byte(free.Value), &freeValue); err != nil {
		t.Fatalf("decode free-text value: %v", err)
	}
	// Absence of the option index is what marks the free-text button.
	if freeValue.OptionIndex != nil {
		t.Errorf("free-text button carries option index %d", *freeValue.OptionIndex)
	}
	if freeValue.Question != "Pick one" {
		t.Errorf("free-text question = %q", freeValue.Question)
	}
}

func TestBuildFreeTextModal(t *testing.T) {
	view := BuildFreeTextModal("q_9", 1, "Which database?")

	if view.Type != "modal" || view.CallbackID != "freetext_modal" {
		t.Errorf("view = %+v", view)
	}

	var metadata ModalMetadata
	if err := json.Unmarshal([]byte(view.PrivateMetadata), &metadata); err != nil {
		t.Fatalf("decode private_metadata: %v", err)
	}
	if metadata.QuestionID != "q_9" || metadata.QuestionIndex != 1 {
		t.Errorf("metadata = %+v", metadata)
	}

	var input *Block
	for i := range view.Blocks {
		if view.Blocks[i].Type == "input" {
			input = &view.Blocks[i]
		}
	}
	if input == nil {
		t.Fatal("modal has no input block")
	}
	if input.BlockID != "freetext_input" || input.Element.ActionID != "freetext_value" {
		t.Errorf("input block = %+v", input)
	}
	if !input.Element.Multiline {
		t.Error("input is not multiline")
	}
}
