package mcp

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

const protocolVersion = "2024-11-05"

// Server implements an MCP stdio server that delegates to the HTTP bridge
// server. It exists so agents without raw HTTP access can still ask.
type Server struct {
	serverURL string
	client    *http.Client
}

// NewServer creates a new MCP server pointing at the bridge's base URL.
// The HTTP timeout is deliberately longer than the bridge's ask timeout so
// a slow human answer is never cut off on this side.
func NewServer(serverURL string) *Server {
	return &Server{
		serverURL: strings.TrimRight(serverURL, "/"),
		client: &http.Client{
			Timeout: 11 * time.Minute,
		},
	}
}

// Run starts the stdio event loop. Blocks until stdin is closed.
func (s *Server) Run() error {
	scanner := bufio.NewScanner(os.Stdin)
	// Increase buffer for large messages
	buf := make([]byte, 0, 1024*1024)
	scanner.Buffer(buf, 1024*1024)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req Request
		if err := json.Unmarshal(line, &req); err != nil {
			s.writeError(nil, -32700, "parse error: "+err.Error())
			continue
		}

		resp := s.handleRequest(&req)
		if resp != nil {
			s.writeResponse(resp)
		}
	}

	return scanner.Err()
}

func (s *Server) handleRequest(req *Request) *Response {
	switch req.Method {
	case "initialize":
		return s.handleInitialize(req)
	case "initialized", "notifications/initialized":
		// Notification — no response
		return nil
	case "tools/list":
		return &Response{JSONRPC: "2.0", ID: req.ID, Result: ToolsListResult{Tools: ToolDefinitions()}}
	case "tools/call":
		return s.handleToolsCall(req)
	case "ping":
		return &Response{JSONRPC: "2.0", ID: req.ID, Result: map[string]string{}}
	default:
		return s.errorResponse(req.ID, -32601, "method not found: "+req.Method)
	}
}

func (s *Server) handleInitialize(req *Request) *Response {
	return &Response{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: InitializeResult{
			ProtocolVersion: protocolVersion,
			Capabilities: ServerCapabilities{
				Tools: &ToolCapabilities{},
			},
			ServerInfo: ServerInfo{
				Name:    "slack-bridge",
				Version: "1.0.0",
			},
		},
	}
}

func (s *Server) handleToolsCall(req *Request) *Response {
	paramsBytes, err := json.Marshal(req.Params)
	if err != nil {
		return s.errorResponse(req.ID, -32602, "invalid params")
	}

	var params CallToolParams
	if err := json.Unmarshal(paramsBytes, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "invalid params: "+err.Error())
	}

	var result string
	var isError bool
	switch params.Name {
	case "ask_user":
		result, isError = s.toolAskUser(params.Arguments)
	default:
		result, isError = fmt.Sprintf("unknown tool: %s", params.Name), true
	}

	return &Response{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: CallToolResult{
			Content: []ContentBlock{{Type: "text", Text: result}},
			IsError: isError,
		},
	}
}

func (s *Server) toolAskUser(args map[string]interface{}) (string, bool) {
	questionText, _ := args["question"].(string)
	if questionText == "" {
		return "question must not be empty", true
	}

	question := map[string]interface{}{
		"question": questionText,
	}
	if header, _ := args["header"].(string); header != "" {
		question["header"] = header
	}
	if raw, ok := args["options"].([]interface{}); ok {
		var options []map[string]string
		for _, o := range raw {
			if label, ok := o.(string); ok && label != "" {
				options = append(options, map[string]string{"label": label})
			}
		}
		if len(options) > 0 {
			question["options"] = options
		}
	}

	body := map[string]interface{}{
		"questions": []interface{}{question},
	}
	if sessionInfo, _ := args["sessionInfo"].(string); sessionInfo != "" {
		body["sessionInfo"] = sessionInfo
	}

	return s.httpPost("/ask-and-wait", body)
}

func (s *Server) httpPost(path string, body interface{}) (string, bool) {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return fmt.Sprintf("marshal error: %s", err), true
	}

	url := s.serverURL + path
	req, err := http.NewRequest("POST", url, bytes.NewReader(jsonBody))
	if err != nil {
		return fmt.Sprintf("request error: %s", err), true
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Sprintf("HTTP error: %s", err), true
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Sprintf("read error: %s", err), true
	}

	if resp.StatusCode >= 400 {
		return string(respBody), true
	}

	return string(respBody), false
}

func (s *Server) writeResponse(resp *Response) {
	data, _ := json.Marshal(resp)
	fmt.Fprintf(os.Stdout, "%s\n", data)
}

func (s *Server) writeError(id interface{}, code int, message string) {
	s.writeResponse(s.errorResponse(id, code, message))
}

func (s *Server) errorResponse(id interface{}, code int, message string) *Response {
	return &Response{
		JSONRPC: "2.0",
		ID:      id,
		Error:   &RPCError{Code: code, Message: message},
	}
}
