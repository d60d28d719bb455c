package agent

import (
	"encoding/json"
	"strings"

	"github.com/rs/zerolog/log"
)

// The agent emits newline-delimited JSON events on stdout:
//
//	{"type":"system","session_id":"..."}            conversation identity
//	{"type":"text","text":"..."}                     textual delta
//	{"type":"tool_use","id":"...","name":"...","input":{...}}
//	{"type":"result","is_error":false,"result":"..."}
//
// Unknown event types are retained in the raw event list but otherwise
// ignored, so protocol additions do not break older builds.
const (
	eventTypeSystem  = "system"
	eventTypeText    = "text"
	eventTypeToolUse = "tool_use"
	eventTypeResult  = "result"
)

type streamEvent struct {
	Type      string          `json:"type"`
	SessionID string          `json:"session_id,omitempty"`
	Text      string          `json:"text,omitempty"`
	ID        string          `json:"id,omitempty"`
	Name      string          `json:"name,omitempty"`
	Input     json.RawMessage `json:"input,omitempty"`
	IsError   bool            `json:"is_error,omitempty"`
	Result    string          `json:"result,omitempty"`
}

// writeTools are the tool names whose input carries a file path the agent is
// creating or editing. Used only for the advisory modified-file list.
var writeTools = map[string]bool{
	"Write":        true,
	"Edit":         true,
	"MultiEdit":    true,
	"NotebookEdit": true,
}

// streamAccumulator folds the event stream into the pieces of an
// ExecutionResult. One corrupt line must not discard an otherwise valid
// response, so malformed lines are logged and skipped.
type streamAccumulator struct {
	output    strings.Builder
	sessionID string
	tools     []string
	toolSeen  map[string]bool
	files     []string
	fileSeen  map[string]bool
	events    []json.RawMessage
}

func newStreamAccumulator() *streamAccumulator {
	return &streamAccumulator{
		toolSeen: make(map[string]bool),
		fileSeen: make(map[string]bool),
	}
}

func (a *streamAccumulator) addLine(line string) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return
	}

	var evt streamEvent
	if err := json.Unmarshal([]byte(trimmed), &evt); err != nil {
		log.Warn().Str("line", truncate(trimmed, 200)).Err(err).Msg("agent: skipping malformed stream line")
		return
	}
	if evt.Type == "" {
		log.Warn().Str("line", truncate(trimmed, 200)).Msg("agent: skipping stream line without event type")
		return
	}

	a.events = append(a.events, json.RawMessage(trimmed))

	switch evt.Type {
	case eventTypeText:
		a.output.WriteString(evt.Text)
	case eventTypeToolUse:
		a.addTool(evt)
	case eventTypeSystem:
		// First session identifier wins; the agent may re-announce it.
		if a.sessionID == "" && evt.SessionID != "" {
			a.sessionID = evt.SessionID
		}
	case eventTypeResult:
		// The result text duplicates accumulated deltas; nothing to fold.
	}
}

func (a *streamAccumulator) addTool(evt streamEvent) {
	if evt.Name == "" {
		return
	}
	if !a.toolSeen[evt.Name] {
		a.toolSeen[evt.Name] = true
		a.tools = append(a.tools, evt.Name)
	}

	if !writeTools[evt.Name] || len(evt.Input) == 0 {
		return
	}

	var input struct {
		FilePath string `json:"file_path"`
	}
	if err := json.Unmarshal(evt.Input, &input); err != nil || input.FilePath == "" {
		return
	}
	if !a.fileSeen[input.FilePath] {
		a.fileSeen[input.FilePath] = true
		a.files = append(a.files, input.FilePath)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
