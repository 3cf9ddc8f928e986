package models

// AskAndWaitRequest is the body of POST /ask-and-wait. QuestionID is
// optional; the server generates one when absent. All questions in the
// batch share the id, and the first answer to any of them resolves the
// whole batch.
type AskAndWaitRequest struct {
	QuestionID  string     `json:"questionId,omitempty"`
	Questions   []Question `json:"questions"`
	SessionInfo string     `json:"sessionInfo,omitempty"`
	PaneID      string     `json:"paneId,omitempty"`
}

// AskRequest is the body of POST /ask, the fire-and-forget tmux-mode
// variant. The answer is later delivered into the pane instead of an HTTP
// response.
type AskRequest struct {
	Questions []Question `json:"questions"`
	TmuxPane  string     `json:"tmuxPane,omitempty"`
	SessionID string     `json:"sessionId,omitempty"`
}

// AskResponse acknowledges a fire-and-forget ask.
type AskResponse struct {
	Success    bool   `json:"success"`
	QuestionID string `json:"questionId"`
}

// ServiceCheck reports one dependency's health.
type ServiceCheck struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status  string       `json:"status"`
	Pending int          `json:"pending"`
	DB      ServiceCheck `json:"db"`
}

// HistoryResponse is the body of GET /history.
type HistoryResponse struct {
	Answers []AnswerRecord `json:"answers"`
}

// AnswerRecord is one row of the answer audit log.
type AnswerRecord struct {
	ID          int64        `json:"id"`
	QuestionID  string       `json:"questionId"`
	Question    string       `json:"question"`
	Answer      string       `json:"answer"`
	OptionIndex int          `json:"optionIndex"`
	FreeText    bool         `json:"freeText"`
	Source      AnswerSource `json:"source"`
	SessionInfo string       `json:"sessionInfo,omitempty"`
	PaneID      string       `json:"paneId,omitempty"`
	AskedAt     int64        `json:"askedAt"`
	AnsweredAt  int64        `json:"answeredAt"`
}
