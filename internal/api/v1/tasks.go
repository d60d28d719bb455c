package v1

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/stewardhq/steward/internal/core"
	"github.com/stewardhq/steward/internal/server/middleware"
)

type SubmitTaskInput struct {
	Body struct {
		Prompt string `json:"prompt" minLength:"1" maxLength:"10000" doc:"Natural-language task for the agent"`
	}
}

type SubmitTaskOutput struct {
	Body *core.SubmitResult
}

type GetStatusOutput struct {
	Body *core.Status
}

func RegisterTaskRoutes(api huma.API, pipeline Pipeline) {
	huma.Register(api, huma.Operation{
		OperationID: "submit-task",
		Method:      http.MethodPost,
		Path:        "/tasks",
		Summary:     "Submit a task to the agent",
		Tags:        []string{"Tasks"},
	}, func(ctx context.Context, input *SubmitTaskInput) (*SubmitTaskOutput, error) {
		callerID, ok := middleware.CallerIDFromContext(ctx)
		if !ok {
			return nil, huma.Error403Forbidden("missing caller context")
		}

		result, err := pipeline.SubmitTask(ctx, callerID, input.Body.Prompt)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to submit task", err)
		}

		if result.RateLimited {
			msg := result.RetryMessage
			if msg == "" {
				msg = "rate limit exceeded"
			}
			return nil, huma.Error429TooManyRequests(msg)
		}
		if result.BlockedBy != nil {
			return nil, huma.Error409Conflict("pending change " + result.BlockedBy.ID + " must be resolved first")
		}

		return &SubmitTaskOutput{Body: result}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-status",
		Method:      http.MethodGet,
		Path:        "/status",
		Summary:     "Get the caller's session and pending-change state",
		Tags:        []string{"Tasks"},
	}, func(ctx context.Context, _ *struct{}) (*GetStatusOutput, error) {
		callerID, ok := middleware.CallerIDFromContext(ctx)
		if !ok {
			return nil, huma.Error403Forbidden("missing caller context")
		}

		status, err := pipeline.GetStatus(ctx, callerID)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to get status", err)
		}

		return &GetStatusOutput{Body: status}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "clear-session",
		Method:      http.MethodDelete,
		Path:        "/session",
		Summary:     "Clear the caller's agent session",
		Tags:        []string{"Tasks"},
	}, func(ctx context.Context, _ *struct{}) (*struct{}, error) {
		callerID, ok := middleware.CallerIDFromContext(ctx)
		if !ok {
			return nil, huma.Error403Forbidden("missing caller context")
		}

		if err := pipeline.ClearSession(ctx, callerID); err != nil {
			return nil, huma.Error500InternalServerError("failed to clear session", err)
		}

		return nil, nil
	})
}
