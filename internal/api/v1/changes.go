package v1

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/stewardhq/steward/internal/approval"
	"github.com/stewardhq/steward/internal/domain"
	"github.com/stewardhq/steward/internal/server/middleware"
)

type ResolveChangeInput struct {
	ID string `path:"id" doc:"Change ID"`
}

type ResolveChangeOutput struct {
	Body *approval.Outcome
}

type DiffOutput struct {
	Body struct {
		Diff   string `json:"diff" doc:"Working tree diff against HEAD"`
		Status string `json:"status" doc:"Porcelain status of the working tree"`
	}
}

type ListHistoryInput struct {
	Limit int `query:"limit" default:"20" minimum:"1" maximum:"50" doc:"Maximum records to return"`
}

type ListHistoryOutput struct {
	Body []*domain.ApprovalRecord
}

func RegisterChangeRoutes(api huma.API, pipeline Pipeline) {
	huma.Register(api, huma.Operation{
		OperationID: "approve-change",
		Method:      http.MethodPost,
		Path:        "/changes/{id}/approve",
		Summary:     "Approve a pending change and commit it",
		Tags:        []string{"Changes"},
	}, func(ctx context.Context, input *ResolveChangeInput) (*ResolveChangeOutput, error) {
		return resolveChange(ctx, input.ID, pipeline.Approve)
	})

	huma.Register(api, huma.Operation{
		OperationID: "reject-change",
		Method:      http.MethodPost,
		Path:        "/changes/{id}/reject",
		Summary:     "Reject a pending change and roll the tree back",
		Tags:        []string{"Changes"},
	}, func(ctx context.Context, input *ResolveChangeInput) (*ResolveChangeOutput, error) {
		return resolveChange(ctx, input.ID, pipeline.Reject)
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-diff",
		Method:      http.MethodGet,
		Path:        "/changes/diff",
		Summary:     "Get the working tree diff for review",
		Tags:        []string{"Changes"},
	}, func(ctx context.Context, _ *struct{}) (*DiffOutput, error) {
		if _, ok := middleware.CallerIDFromContext(ctx); !ok {
			return nil, huma.Error403Forbidden("missing caller context")
		}

		diff, status, err := pipeline.Diff(ctx)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to read working tree", err)
		}

		out := &DiffOutput{}
		out.Body.Diff = diff
		out.Body.Status = status
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-history",
		Method:      http.MethodGet,
		Path:        "/history",
		Summary:     "List the caller's recent approval records",
		Tags:        []string{"Changes"},
	}, func(ctx context.Context, input *ListHistoryInput) (*ListHistoryOutput, error) {
		callerID, ok := middleware.CallerIDFromContext(ctx)
		if !ok {
			return nil, huma.Error403Forbidden("missing caller context")
		}

		records, err := pipeline.History(ctx, callerID, input.Limit)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to list history", err)
		}

		return &ListHistoryOutput{Body: records}, nil
	})
}

func resolveChange(
	ctx context.Context,
	changeID string,
	resolve func(ctx context.Context, callerID, changeID string) (*approval.Outcome, error),
) (*ResolveChangeOutput, error) {
	callerID, ok := middleware.CallerIDFromContext(ctx)
	if !ok {
		return nil, huma.Error403Forbidden("missing caller context")
	}

	outcome, err := resolve(ctx, callerID, changeID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, huma.Error404NotFound("change not found")
		}
		return nil, huma.Error500InternalServerError("failed to resolve change", err)
	}

	return &ResolveChangeOutput{Body: outcome}, nil
}
