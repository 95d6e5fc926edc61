package grpc

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/simaogato/hearthledger-backend/internal/domain"
	"github.com/simaogato/hearthledger-backend/internal/logger"
	"github.com/simaogato/hearthledger-backend/internal/usecase/checkpoint"
	"github.com/simaogato/hearthledger-backend/internal/usecase/reconcile"
)

const userIDMetadataKey = "x-user-id"

// Server implements the ReconciliationService gRPC server
type Server struct {
	CheckpointService *checkpoint.CheckpointService
	log               logrus.FieldLogger
	now               func() time.Time
}

var _ ReconciliationServer = (*Server)(nil)

// NewServer creates a new gRPC server instance
func NewServer(checkpointService *checkpoint.CheckpointService, log logrus.FieldLogger) *Server {
	return &Server{
		CheckpointService: checkpointService,
		log:               log,
		now:               time.Now,
	}
}

// CreateCheckpoint handles the CreateCheckpoint RPC.
// Fields: workspace_id, account_id, date, actual_balance, notes. Missing date and balance take form defaults.
func (s *Server) CreateCheckpoint(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	workspaceID, err := uuidField(req, "workspace_id")
	if err != nil {
		return nil, err
	}

	input, err := checkpoint.ParseCreateCheckpointForm(userID, workspaceID, checkpoint.CheckpointForm{
		AccountID:     stringField(req, "account_id"),
		Date:          stringField(req, "date"),
		ActualBalance: stringField(req, "actual_balance"),
		Notes:         stringField(req, "notes"),
	}, s.now())
	if err != nil {
		return nil, s.mapError("CreateCheckpoint", err)
	}

	cp, err := s.CheckpointService.CreateCheckpoint(ctx, input)
	if err != nil {
		return nil, s.mapError("CreateCheckpoint", err)
	}

	return structpb.NewStruct(checkpointFields(cp))
}

// ListCheckpoints handles the ListCheckpoints RPC.
// Fields: workspace_id, optional account_id. Response: {"checkpoints": [...]} newest first.
func (s *Server) ListCheckpoints(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	workspaceID, err := uuidField(req, "workspace_id")
	if err != nil {
		return nil, err
	}

	var accountID *uuid.UUID
	if stringField(req, "account_id") != "" {
		id, err := uuidField(req, "account_id")
		if err != nil {
			return nil, err
		}
		accountID = &id
	}

	entries, err := s.CheckpointService.ListCheckpointsForTimeline(ctx, userID, workspaceID, accountID)
	if err != nil {
		return nil, s.mapError("ListCheckpoints", err)
	}

	items := make([]any, 0, len(entries))
	for _, e := range entries {
		fields := checkpointFields(&e.Checkpoint)
		fields["days_since_previous"] = e.DaysSincePrevious
		fields["transaction_count"] = e.TransactionCount
		items = append(items, fields)
	}

	return structpb.NewStruct(map[string]any{"checkpoints": items})
}

// RecalculateCheckpoints handles the RecalculateCheckpoints RPC.
// Fields: workspace_id, account_id, from. Partial failures come back as warnings;
// a run where every checkpoint failed is an Internal error.
func (s *Server) RecalculateCheckpoints(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	workspaceID, err := uuidField(req, "workspace_id")
	if err != nil {
		return nil, err
	}
	accountID, err := uuidField(req, "account_id")
	if err != nil {
		return nil, err
	}
	from, err := domain.ParseDate(stringField(req, "from"))
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid from date: %v", err)
	}

	result, err := s.CheckpointService.RecalculateCheckpoints(ctx, userID, workspaceID, accountID, from)
	if err != nil {
		return nil, s.mapError("RecalculateCheckpoints", err)
	}

	return structpb.NewStruct(resultFields(result))
}

func checkpointFields(cp *domain.Checkpoint) map[string]any {
	fields := map[string]any{
		"id":               cp.ID.String(),
		"account_id":       cp.AccountID.String(),
		"date":             cp.Date.Format(domain.DateLayout),
		"actual_balance":   cp.ActualBalance.String(),
		"expected_balance": cp.ExpectedBalance.String(),
		"gap":              cp.Gap.String(),
		"status":           string(cp.Status),
		"created_by":       cp.CreatedBy.String(),
	}
	if cp.Notes != nil {
		fields["notes"] = *cp.Notes
	}
	return fields
}

func resultFields(r *reconcile.Result) map[string]any {
	warnings := make([]any, 0, len(r.Warnings))
	for _, w := range r.Warnings {
		warnings = append(warnings, w)
	}
	return map[string]any{
		"examined":      r.Examined,
		"updated_count": r.UpdatedCount,
		"warnings":      warnings,
	}
}

func stringField(req *structpb.Struct, key string) string {
	return req.GetFields()[key].GetStringValue()
}

func uuidField(req *structpb.Struct, key string) (uuid.UUID, error) {
	id, err := uuid.Parse(stringField(req, key))
	if err != nil {
		return uuid.Nil, status.Errorf(codes.InvalidArgument, "invalid %s format: %v", key, err)
	}
	return id, nil
}

// callerID reads the acting user from x-user-id metadata
func callerID(ctx context.Context) (uuid.UUID, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return uuid.Nil, status.Error(codes.Unauthenticated, "missing metadata")
	}
	values := md.Get(userIDMetadataKey)
	if len(values) == 0 {
		return uuid.Nil, status.Error(codes.Unauthenticated, "missing user id")
	}
	userID, err := uuid.Parse(values[0])
	if err != nil || userID == uuid.Nil {
		return uuid.Nil, status.Error(codes.Unauthenticated, "invalid user id")
	}
	return userID, nil
}

// mapError maps domain errors to gRPC status codes
func (s *Server) mapError(method string, err error) error {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		return status.Error(codes.PermissionDenied, "forbidden")
	case errors.Is(err, domain.ErrNotFound):
		return status.Error(codes.NotFound, "not found")
	default:
		logger.LogError(s.log, "grpc", method, "rpc failed", nil, err)
		return status.Error(codes.Internal, "internal error")
	}
}
