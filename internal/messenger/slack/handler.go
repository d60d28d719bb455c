package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	slacklib "github.com/slack-go/slack"

	"github.com/stewardhq/steward/internal/messenger"
)

// Dispatcher routes parsed commands and button presses to the task pipeline.
// *messenger.Router satisfies this interface.
type Dispatcher interface {
	HandleCommand(ctx context.Context, callerID, channelID string, cmd messenger.Command) error
	HandleApprovalAction(ctx context.Context, callerID, channelID string, promptID messenger.MessageID, action, changeID string) error
}

// Handler processes Slack webhook events (Events API + Interactive Components).
type Handler struct {
	signingSecret string
	dispatcher    Dispatcher
}

// NewHandler creates a new Slack webhook handler.
func NewHandler(signingSecret string, dispatcher Dispatcher) *Handler {
	return &Handler{
		signingSecret: signingSecret,
		dispatcher:    dispatcher,
	}
}

// slackEvent represents the outer envelope of Slack Events API payloads.
type slackEvent struct {
	Type      string          `json:"type"`
	Challenge string          `json:"challenge,omitempty"`
	Event     json.RawMessage `json:"event,omitempty"`
}

// innerEvent represents the inner event within an event_callback.
type innerEvent struct {
	Type        string `json:"type"`
	Channel     string `json:"channel"`
	ChannelType string `json:"channel_type,omitempty"`
	Text        string `json:"text"`
	User        string `json:"user"`
	BotID       string `json:"bot_id,omitempty"`
}

// CallerID maps a Slack user to the pipeline caller namespace.
func CallerID(slackUserID string) string {
	return "slack:" + slackUserID
}

// HandleEvents is an http.HandlerFunc for POST /slack/events.
func (h *Handler) HandleEvents(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}

	if verifyErr := h.verifySignature(r.Header, body); verifyErr != nil {
		http.Error(w, "invalid signature", http.StatusUnauthorized)
		return
	}

	// Slack marks redeliveries of unacknowledged events with a retry header.
	// The original delivery is already in flight; acknowledging a duplicate
	// without dispatching keeps one event from launching two agent runs.
	if r.Header.Get("X-Slack-Retry-Num") != "" {
		w.WriteHeader(http.StatusOK)
		return
	}

	var envelope slackEvent
	if unmarshalErr := json.Unmarshal(body, &envelope); unmarshalErr != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	switch envelope.Type {
	case "url_verification":
		h.handleURLVerification(w, envelope.Challenge)
		return
	case "event_callback":
		h.handleEventCallback(r.Context(), w, envelope.Event)
		return
	default:
		w.WriteHeader(http.StatusOK)
	}
}

// handleURLVerification responds to Slack's URL verification challenge.
func (h *Handler) handleURLVerification(w http.ResponseWriter, challenge string) {
	w.Header().Set("Content-Type", "application/json")

	resp := map[string]string{"challenge": challenge}
	if encodeErr := json.NewEncoder(w).Encode(resp); encodeErr != nil {
		slog.Error("encode url verification response", "error", encodeErr)
	}
}

// handleEventCallback processes an event_callback payload. Mentions in
// channels and direct messages both carry commands; bot messages are ignored
// so the handler never echoes itself.
func (h *Handler) handleEventCallback(ctx context.Context, w http.ResponseWriter, rawEvent json.RawMessage) {
	var evt innerEvent
	if unmarshalErr := json.Unmarshal(rawEvent, &evt); unmarshalErr != nil {
		http.Error(w, "invalid event JSON", http.StatusBadRequest)
		return
	}

	if evt.BotID != "" || evt.User == "" {
		w.WriteHeader(http.StatusOK)
		return
	}

	isMention := evt.Type == "app_mention"
	isDM := evt.Type == "message" && evt.ChannelType == "im"
	if !isMention && !isDM {
		w.WriteHeader(http.StatusOK)
		return
	}

	cmd := ParseCommand(evt.Text)
	if cmd.Action == messenger.CommandActionUnknown && isMention {
		// Bare mention with no text reads as a help request.
		cmd.Action = messenger.CommandActionHelp
	}

	// Acknowledge before dispatching: Slack redelivers any event not
	// answered within 3 seconds, and a task command holds the agent process
	// open far longer than that. The dispatch outlives the webhook request,
	// so it runs on a context detached from it.
	w.WriteHeader(http.StatusOK)

	dispatchCtx := context.WithoutCancel(ctx)
	go func() {
		if dispatchErr := h.dispatcher.HandleCommand(dispatchCtx, CallerID(evt.User), evt.Channel, cmd); dispatchErr != nil {
			slog.Error("dispatch event callback", "error", dispatchErr, "user", evt.User)
		}
	}()
}

// HandleInteractions is an http.HandlerFunc for POST /slack/interactions.
func (h *Handler) HandleInteractions(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}

	if verifyErr := h.verifySignature(r.Header, body); verifyErr != nil {
		http.Error(w, "invalid signature", http.StatusUnauthorized)
		return
	}

	// Interactions use form-encoded body; the payload is in the "payload" field.
	// We already consumed the body for signature verification, so re-create it
	// and let the stdlib parse the form.
	r.Body = io.NopCloser(bytes.NewReader(body))

	if parseErr := r.ParseForm(); parseErr != nil {
		http.Error(w, "failed to parse form", http.StatusBadRequest)
		return
	}

	payloadStr := r.FormValue("payload")
	if payloadStr == "" {
		// Fallback: manually URL-decode from raw body.
		payloadStr = extractFormPayload(string(body))
	}

	if payloadStr == "" {
		http.Error(w, "missing payload", http.StatusBadRequest)
		return
	}

	var callback slacklib.InteractionCallback
	if unmarshalErr := json.Unmarshal([]byte(payloadStr), &callback); unmarshalErr != nil {
		http.Error(w, "invalid payload JSON", http.StatusBadRequest)
		return
	}

	action, changeID := extractApprovalAction(&callback)
	channelID := callback.Channel.ID
	userID := callback.User.ID
	promptID := messenger.MessageID(extractMessageTS(&callback))

	if action == "" || changeID == "" || userID == "" {
		w.WriteHeader(http.StatusOK)
		return
	}

	// Same ack-first discipline as the Events API: the resolution touches
	// git, the stores, and the Slack API, which can outrun the 3s window.
	w.WriteHeader(http.StatusOK)

	dispatchCtx := context.WithoutCancel(r.Context())
	go func() {
		if dispatchErr := h.dispatcher.HandleApprovalAction(dispatchCtx, CallerID(userID), channelID, promptID, action, changeID); dispatchErr != nil {
			slog.Error("dispatch interaction", "error", dispatchErr, "user", userID)
		}
	}()
}

// verifySignature validates the Slack request signature using the signing secret.
func (h *Handler) verifySignature(header http.Header, body []byte) error {
	sv, err := slacklib.NewSecretsVerifier(header, h.signingSecret)
	if err != nil {
		return fmt.Errorf("slack.Handler.verifySignature: create verifier: %w", err)
	}

	if _, writeErr := sv.Write(body); writeErr != nil {
		return fmt.Errorf("slack.Handler.verifySignature: write body: %w", writeErr)
	}

	if ensureErr := sv.Ensure(); ensureErr != nil {
		return fmt.Errorf("slack.Handler.verifySignature: ensure: %w", ensureErr)
	}

	return nil
}

// extractApprovalAction pulls the review action and change id from an
// interaction callback. Only the approval button action IDs are recognized.
func extractApprovalAction(callback *slacklib.InteractionCallback) (action, changeID string) {
	if len(callback.ActionCallback.BlockActions) == 0 {
		return "", ""
	}

	block := callback.ActionCallback.BlockActions[0]
	switch block.ActionID {
	case ActionApproveChange:
		return "approve", block.Value
	case ActionRejectChange:
		return "reject", block.Value
	default:
		return "", ""
	}
}

// extractMessageTS pulls the timestamp of the message carrying the pressed
// button, so the approval prompt can be edited in place.
func extractMessageTS(callback *slacklib.InteractionCallback) string {
	if callback.Container.MessageTs != "" {
		return callback.Container.MessageTs
	}
	return callback.Message.Timestamp
}

// extractFormPayload parses the "payload" value from a URL-encoded form body.
func extractFormPayload(body string) string {
	values, err := url.ParseQuery(body)
	if err != nil {
		return ""
	}

	return values.Get("payload")
}
