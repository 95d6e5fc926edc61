package http

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/simaogato/hearthledger-backend/internal/domain"
	"github.com/simaogato/hearthledger-backend/internal/usecase/dashboard"
	"github.com/simaogato/hearthledger-backend/internal/usecase/reconcile"
	"github.com/simaogato/hearthledger-backend/internal/usecase/transaction"
)

type workspaceRequest struct {
	Name string `json:"name"`
}

type workspaceResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

type memberRequest struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

type roleRequest struct {
	Role string `json:"role"`
}

type ownershipRequest struct {
	NewOwnerID string `json:"new_owner_id"`
}

type memberResponse struct {
	UserID    string    `json:"user_id"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

type accountRequest struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Currency string `json:"currency"`
}

type accountResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	Currency  string    `json:"currency"`
	CreatedAt time.Time `json:"created_at"`
}

type transactionRequest struct {
	AccountID       string          `json:"account_id"`
	Type            string          `json:"type"`
	Amount          decimal.Decimal `json:"amount"`
	Description     string          `json:"description"`
	TransactionDate string          `json:"transaction_date"`
}

type transactionResponse struct {
	ID              string     `json:"id"`
	AccountID       string     `json:"account_id"`
	Type            string     `json:"type"`
	Amount          string     `json:"amount"`
	Description     string     `json:"description"`
	TransactionDate string     `json:"transaction_date"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	DeletedAt       *time.Time `json:"deleted_at,omitempty"`
}

type transactionResultResponse struct {
	Transaction        transactionResponse `json:"transaction"`
	CheckpointsUpdated int                 `json:"checkpoints_updated"`
	CheckpointsStale   bool                `json:"checkpoints_stale"`
}

type statusRequest struct {
	Status string  `json:"status"`
	Notes  *string `json:"notes"`
}

type checkpointResponse struct {
	ID              string    `json:"id"`
	AccountID       string    `json:"account_id"`
	Date            string    `json:"date"`
	ActualBalance   string    `json:"actual_balance"`
	ExpectedBalance string    `json:"expected_balance"`
	Gap             string    `json:"gap"`
	Status          string    `json:"status"`
	Notes           *string   `json:"notes,omitempty"`
	CreatedBy       string    `json:"created_by"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type timelineEntryResponse struct {
	checkpointResponse
	DaysSincePrevious int `json:"days_since_previous"`
	TransactionCount  int `json:"transaction_count"`
}

type recalculateRequest struct {
	AccountID string `json:"account_id"`
	From      string `json:"from"`
}

type recalculateResponse struct {
	Examined     int      `json:"examined"`
	UpdatedCount int      `json:"updated_count"`
	Warnings     []string `json:"warnings"`
}

type accountSummaryResponse struct {
	Account          accountResponse     `json:"account"`
	ExpectedBalance  string              `json:"expected_balance"`
	LatestCheckpoint *checkpointResponse `json:"latest_checkpoint,omitempty"`
}

type summaryResponse struct {
	AsOf                string                   `json:"as_of"`
	Accounts            []accountSummaryResponse `json:"accounts"`
	TotalExpected       string                   `json:"total_expected"`
	TotalLatestGap      string                   `json:"total_latest_gap"`
	OpenCheckpointCount int                      `json:"open_checkpoint_count"`
}

func toWorkspaceResponse(ws *domain.Workspace) workspaceResponse {
	return workspaceResponse{ID: ws.ID.String(), Name: ws.Name, CreatedBy: ws.CreatedBy.String(), CreatedAt: ws.CreatedAt}
}

func toMemberResponse(m *domain.Membership) memberResponse {
	return memberResponse{UserID: m.UserID.String(), Role: string(m.Role), CreatedAt: m.CreatedAt}
}

func toAccountResponse(a *domain.Account) accountResponse {
	return accountResponse{ID: a.ID.String(), Name: a.Name, Type: string(a.Type), Currency: a.Currency, CreatedAt: a.CreatedAt}
}

func toTransactionResponse(tx *domain.Transaction) transactionResponse {
	return transactionResponse{
		ID:              tx.ID.String(),
		AccountID:       tx.AccountID.String(),
		Type:            string(tx.Type),
		Amount:          tx.Amount.String(),
		Description:     tx.Description,
		TransactionDate: tx.TransactionDate.Format(domain.DateLayout),
		CreatedAt:       tx.CreatedAt,
		UpdatedAt:       tx.UpdatedAt,
		DeletedAt:       tx.DeletedAt,
	}
}

func toTransactionResultResponse(r *transaction.Result) transactionResultResponse {
	return transactionResultResponse{
		Transaction:        toTransactionResponse(r.Transaction),
		CheckpointsUpdated: r.CheckpointsUpdated,
		CheckpointsStale:   r.CheckpointsStale,
	}
}

func toCheckpointResponse(cp *domain.Checkpoint) checkpointResponse {
	return checkpointResponse{
		ID:              cp.ID.String(),
		AccountID:       cp.AccountID.String(),
		Date:            cp.Date.Format(domain.DateLayout),
		ActualBalance:   cp.ActualBalance.String(),
		ExpectedBalance: cp.ExpectedBalance.String(),
		Gap:             cp.Gap.String(),
		Status:          string(cp.Status),
		Notes:           cp.Notes,
		CreatedBy:       cp.CreatedBy.String(),
		CreatedAt:       cp.CreatedAt,
		UpdatedAt:       cp.UpdatedAt,
	}
}

func toTimelineEntryResponse(e *domain.TimelineEntry) timelineEntryResponse {
	return timelineEntryResponse{
		checkpointResponse: toCheckpointResponse(&e.Checkpoint),
		DaysSincePrevious:  e.DaysSincePrevious,
		TransactionCount:   e.TransactionCount,
	}
}

func toRecalculateResponse(r *reconcile.Result) recalculateResponse {
	return recalculateResponse{Examined: r.Examined, UpdatedCount: r.UpdatedCount, Warnings: r.Warnings}
}

func toSummaryResponse(s *dashboard.WorkspaceSummary) summaryResponse {
	resp := summaryResponse{
		AsOf:                s.AsOf.Format(domain.DateLayout),
		Accounts:            make([]accountSummaryResponse, 0, len(s.Accounts)),
		TotalExpected:       s.TotalExpected.String(),
		TotalLatestGap:      s.TotalLatestGap.String(),
		OpenCheckpointCount: s.OpenCheckpointCount,
	}
	for _, line := range s.Accounts {
		item := accountSummaryResponse{
			Account:         toAccountResponse(line.Account),
			ExpectedBalance: line.ExpectedBalance.String(),
		}
		if line.LatestCheckpoint != nil {
			cp := toCheckpointResponse(line.LatestCheckpoint)
			item.LatestCheckpoint = &cp
		}
		resp.Accounts = append(resp.Accounts, item)
	}
	return resp
}
