package models

// Option is one labeled choice presented to the human.
type Option struct {
	Label string `json:"label"`
}

// Question is a single prompt with its ordered options. The composer always
// appends a free-text affordance on top of these, so zero options is valid.
type Question struct {
	Header   string   `json:"header,omitempty"`
	Question string   `json:"question"`
	Options  []Option `json:"options,omitempty"`
}

// AnswerSource records how an answer was produced.
type AnswerSource string

const (
	AnswerSourceButton  AnswerSource = "button"
	AnswerSourceModal   AnswerSource = "modal"
	AnswerSourceTimeout AnswerSource = "timeout"
)

// Answer is the resolution of a question batch. A button answer carries the
// chosen label and option index; a modal answer carries free text with
// OptionIndex -1; a timeout answer carries Err == "timeout" instead.
type Answer struct {
	Answer      string `json:"answer,omitempty"`
	OptionIndex int    `json:"optionIndex"`
	FreeText    bool   `json:"freeText,omitempty"`
	Timestamp   int64  `json:"timestamp,omitempty"`
	Err         string `json:"error,omitempty"`
	Message     string `json:"message,omitempty"`
}

// Timeout reports whether this answer is the timeout variant.
func (a Answer) Timeout() bool {
	return a.Err == "timeout"
}

// Source classifies the answer for the history log.
func (a Answer) Source() AnswerSource {
	switch {
	case a.Timeout():
		return AnswerSourceTimeout
	case a.FreeText:
		return AnswerSourceModal
	default:
		return AnswerSourceButton
	}
}
