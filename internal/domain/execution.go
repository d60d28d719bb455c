package domain

import "encoding/json"

// TaskRequest is one inbound request to run the agent. Ephemeral; built per
// request and discarded after dispatch.
type TaskRequest struct {
	CallerID    string
	Prompt      string
	ResumeToken string // agent session id to continue, empty for a fresh run
}

// ExecutionResult is the normalized outcome of one agent invocation.
type ExecutionResult struct {
	Success        bool              `json:"success"`
	Output         string            `json:"output"`
	AgentSessionID string            `json:"agent_session_id,omitempty"`
	ToolsUsed      []string          `json:"tools_used,omitempty"`

	// ModifiedFiles is best-effort display data extracted from tool inputs;
	// it is often empty even when files changed. The approval layer consults
	// the git working tree, never this list.
	ModifiedFiles []string          `json:"modified_files,omitempty"`
	Events        []json.RawMessage `json:"events,omitempty"`
	ErrorDetail   string            `json:"error_detail,omitempty"`
}
