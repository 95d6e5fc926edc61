package http

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/simaogato/hearthledger-backend/internal/adapter/export"
	"github.com/simaogato/hearthledger-backend/internal/domain"
	"github.com/simaogato/hearthledger-backend/internal/usecase/account"
	"github.com/simaogato/hearthledger-backend/internal/usecase/checkpoint"
	"github.com/simaogato/hearthledger-backend/internal/usecase/dashboard"
	"github.com/simaogato/hearthledger-backend/internal/usecase/transaction"
	"github.com/simaogato/hearthledger-backend/internal/usecase/workspace"
)

// Handler serves the HTTP API on top of the usecase services
type Handler struct {
	checkpointService  *checkpoint.CheckpointService
	transactionService *transaction.TransactionService
	accountService     *account.AccountService
	workspaceService   *workspace.WorkspaceService
	dashboardService   *dashboard.DashboardService
	log                logrus.FieldLogger
	now                func() time.Time
}

// NewHandler creates a new Handler instance
func NewHandler(
	checkpointService *checkpoint.CheckpointService,
	transactionService *transaction.TransactionService,
	accountService *account.AccountService,
	workspaceService *workspace.WorkspaceService,
	dashboardService *dashboard.DashboardService,
	log logrus.FieldLogger,
) *Handler {
	return &Handler{
		checkpointService:  checkpointService,
		transactionService: transactionService,
		accountService:     accountService,
		workspaceService:   workspaceService,
		dashboardService:   dashboardService,
		log:                log,
		now:                time.Now,
	}
}

// Health reports liveness
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// CreateWorkspace handles POST /api/v1/workspaces
func (h *Handler) CreateWorkspace(c *gin.Context) {
	var req workspaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	ws, err := h.workspaceService.CreateWorkspace(c.Request.Context(), workspace.CreateWorkspaceInput{
		UserID: callerID(c),
		Name:   req.Name,
	})
	if err != nil {
		writeError(c, h.log, "CreateWorkspace", err)
		return
	}

	c.JSON(http.StatusCreated, toWorkspaceResponse(ws))
}

// CreateCheckpoint handles POST /checkpoints.
// Accepts form fields (or the same keys as JSON) and fills missing values with defaults.
func (h *Handler) CreateCheckpoint(c *gin.Context) {
	workspaceID, ok := workspaceParam(c)
	if !ok {
		return
	}

	var form checkpoint.CheckpointForm
	if err := c.ShouldBind(&form); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	input, err := checkpoint.ParseCreateCheckpointForm(callerID(c), workspaceID, form, h.now())
	if err != nil {
		writeError(c, h.log, "CreateCheckpoint", err)
		return
	}

	cp, err := h.checkpointService.CreateCheckpoint(c.Request.Context(), input)
	if err != nil {
		writeError(c, h.log, "CreateCheckpoint", err)
		return
	}

	c.JSON(http.StatusCreated, toCheckpointResponse(cp))
}

// ListCheckpoints handles GET /checkpoints?account_id=
func (h *Handler) ListCheckpoints(c *gin.Context) {
	entries, ok := h.timeline(c)
	if !ok {
		return
	}

	resp := make([]timelineEntryResponse, 0, len(entries))
	for _, e := range entries {
		resp = append(resp, toTimelineEntryResponse(e))
	}
	c.JSON(http.StatusOK, resp)
}

// ExportCheckpoints handles GET /checkpoints/export.xlsx
func (h *Handler) ExportCheckpoints(c *gin.Context) {
	entries, ok := h.timeline(c)
	if !ok {
		return
	}

	workspaceID, _ := workspaceParam(c)
	accounts, err := h.accountService.ListAccounts(c.Request.Context(), callerID(c), workspaceID)
	if err != nil {
		writeError(c, h.log, "ExportCheckpoints", err)
		return
	}
	names := make(map[uuid.UUID]string, len(accounts))
	for _, a := range accounts {
		names[a.ID] = a.Name
	}

	var buf bytes.Buffer
	if err := export.WriteTimeline(&buf, entries, names); err != nil {
		writeError(c, h.log, "ExportCheckpoints", err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="checkpoints.xlsx"`)
	c.Data(http.StatusOK, export.ContentType, buf.Bytes())
}

func (h *Handler) timeline(c *gin.Context) ([]*domain.TimelineEntry, bool) {
	workspaceID, ok := workspaceParam(c)
	if !ok {
		return nil, false
	}

	var accountID *uuid.UUID
	if raw := c.Query("account_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			badRequest(c, "invalid account_id")
			return nil, false
		}
		accountID = &id
	}

	entries, err := h.checkpointService.ListCheckpointsForTimeline(c.Request.Context(), callerID(c), workspaceID, accountID)
	if err != nil {
		writeError(c, h.log, "ListCheckpoints", err)
		return nil, false
	}
	return entries, true
}

// UpdateCheckpointStatus handles PATCH /checkpoints/:id/status
func (h *Handler) UpdateCheckpointStatus(c *gin.Context) {
	workspaceID, ok := workspaceParam(c)
	if !ok {
		return
	}
	checkpointID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	cp, err := h.checkpointService.UpdateCheckpointStatus(c.Request.Context(), callerID(c), workspaceID, checkpointID,
		domain.CheckpointStatus(req.Status), req.Notes)
	if err != nil {
		writeError(c, h.log, "UpdateCheckpointStatus", err)
		return
	}

	c.JSON(http.StatusOK, toCheckpointResponse(cp))
}

// RecalculateCheckpoints handles POST /checkpoints/recalculate
func (h *Handler) RecalculateCheckpoints(c *gin.Context) {
	workspaceID, ok := workspaceParam(c)
	if !ok {
		return
	}

	var req recalculateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	accountID, err := uuid.Parse(req.AccountID)
	if err != nil {
		badRequest(c, "invalid account_id")
		return
	}
	from, err := domain.ParseDate(req.From)
	if err != nil {
		badRequest(c, "invalid from date")
		return
	}

	result, err := h.checkpointService.RecalculateCheckpoints(c.Request.Context(), callerID(c), workspaceID, accountID, from)
	if err != nil {
		writeError(c, h.log, "RecalculateCheckpoints", err)
		return
	}

	c.JSON(http.StatusOK, toRecalculateResponse(result))
}

// CreateTransaction handles POST /transactions
func (h *Handler) CreateTransaction(c *gin.Context) {
	workspaceID, ok := workspaceParam(c)
	if !ok {
		return
	}

	req, accountID, date, ok := bindTransaction(c)
	if !ok {
		return
	}

	result, err := h.transactionService.CreateTransaction(c.Request.Context(), transaction.CreateTransactionInput{
		UserID:          callerID(c),
		WorkspaceID:     workspaceID,
		AccountID:       accountID,
		Type:            domain.TransactionType(req.Type),
		Amount:          req.Amount,
		Description:     req.Description,
		TransactionDate: date,
	})
	if err != nil {
		writeError(c, h.log, "CreateTransaction", err)
		return
	}

	c.JSON(http.StatusCreated, toTransactionResultResponse(result))
}

// UpdateTransaction handles PUT /transactions/:id
func (h *Handler) UpdateTransaction(c *gin.Context) {
	workspaceID, ok := workspaceParam(c)
	if !ok {
		return
	}
	transactionID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	req, accountID, date, ok := bindTransaction(c)
	if !ok {
		return
	}

	result, err := h.transactionService.UpdateTransaction(c.Request.Context(), transaction.UpdateTransactionInput{
		UserID:          callerID(c),
		WorkspaceID:     workspaceID,
		TransactionID:   transactionID,
		AccountID:       accountID,
		Type:            domain.TransactionType(req.Type),
		Amount:          req.Amount,
		Description:     req.Description,
		TransactionDate: date,
	})
	if err != nil {
		writeError(c, h.log, "UpdateTransaction", err)
		return
	}

	c.JSON(http.StatusOK, toTransactionResultResponse(result))
}

// DeleteTransaction handles DELETE /transactions/:id
func (h *Handler) DeleteTransaction(c *gin.Context) {
	workspaceID, ok := workspaceParam(c)
	if !ok {
		return
	}
	transactionID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	result, err := h.transactionService.DeleteTransaction(c.Request.Context(), callerID(c), workspaceID, transactionID)
	if err != nil {
		writeError(c, h.log, "DeleteTransaction", err)
		return
	}

	c.JSON(http.StatusOK, toTransactionResultResponse(result))
}

// RestoreTransaction handles POST /transactions/:id/restore
func (h *Handler) RestoreTransaction(c *gin.Context) {
	workspaceID, ok := workspaceParam(c)
	if !ok {
		return
	}
	transactionID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	result, err := h.transactionService.RestoreTransaction(c.Request.Context(), callerID(c), workspaceID, transactionID)
	if err != nil {
		writeError(c, h.log, "RestoreTransaction", err)
		return
	}

	c.JSON(http.StatusOK, toTransactionResultResponse(result))
}

// ListTransactions handles GET /transactions?account_id=&include_deleted=&limit=&offset=
func (h *Handler) ListTransactions(c *gin.Context) {
	workspaceID, ok := workspaceParam(c)
	if !ok {
		return
	}

	var filter domain.TransactionFilter
	if raw := c.Query("account_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			badRequest(c, "invalid account_id")
			return
		}
		filter.AccountID = &id
	}
	filter.IncludeDeleted = c.Query("include_deleted") == "true"

	var err error
	if filter.Limit, err = queryInt(c, "limit"); err != nil {
		badRequest(c, err.Error())
		return
	}
	if filter.Offset, err = queryInt(c, "offset"); err != nil {
		badRequest(c, err.Error())
		return
	}

	txs, err := h.transactionService.ListTransactions(c.Request.Context(), callerID(c), workspaceID, filter)
	if err != nil {
		writeError(c, h.log, "ListTransactions", err)
		return
	}

	resp := make([]transactionResponse, 0, len(txs))
	for _, tx := range txs {
		resp = append(resp, toTransactionResponse(tx))
	}
	c.JSON(http.StatusOK, resp)
}

// CreateAccount handles POST /accounts
func (h *Handler) CreateAccount(c *gin.Context) {
	workspaceID, ok := workspaceParam(c)
	if !ok {
		return
	}

	var req accountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	acct, err := h.accountService.CreateAccount(c.Request.Context(), account.CreateAccountInput{
		UserID:      callerID(c),
		WorkspaceID: workspaceID,
		Name:        req.Name,
		Type:        domain.AccountType(req.Type),
		Currency:    req.Currency,
	})
	if err != nil {
		writeError(c, h.log, "CreateAccount", err)
		return
	}

	c.JSON(http.StatusCreated, toAccountResponse(acct))
}

// ListAccounts handles GET /accounts
func (h *Handler) ListAccounts(c *gin.Context) {
	workspaceID, ok := workspaceParam(c)
	if !ok {
		return
	}

	accounts, err := h.accountService.ListAccounts(c.Request.Context(), callerID(c), workspaceID)
	if err != nil {
		writeError(c, h.log, "ListAccounts", err)
		return
	}

	resp := make([]accountResponse, 0, len(accounts))
	for _, a := range accounts {
		resp = append(resp, toAccountResponse(a))
	}
	c.JSON(http.StatusOK, resp)
}

// GetSummary handles GET /summary?as_of=
func (h *Handler) GetSummary(c *gin.Context) {
	workspaceID, ok := workspaceParam(c)
	if !ok {
		return
	}

	var asOf time.Time
	if raw := c.Query("as_of"); raw != "" {
		parsed, err := domain.ParseDate(raw)
		if err != nil {
			badRequest(c, "invalid as_of date")
			return
		}
		asOf = parsed
	}

	summary, err := h.dashboardService.GetWorkspaceSummary(c.Request.Context(), callerID(c), workspaceID, asOf)
	if err != nil {
		writeError(c, h.log, "GetSummary", err)
		return
	}

	c.JSON(http.StatusOK, toSummaryResponse(summary))
}

// ListMembers handles GET /members
func (h *Handler) ListMembers(c *gin.Context) {
	workspaceID, ok := workspaceParam(c)
	if !ok {
		return
	}

	members, err := h.workspaceService.ListMembers(c.Request.Context(), callerID(c), workspaceID)
	if err != nil {
		writeError(c, h.log, "ListMembers", err)
		return
	}

	resp := make([]memberResponse, 0, len(members))
	for _, m := range members {
		resp = append(resp, toMemberResponse(m))
	}
	c.JSON(http.StatusOK, resp)
}

// AddMember handles POST /members
func (h *Handler) AddMember(c *gin.Context) {
	workspaceID, ok := workspaceParam(c)
	if !ok {
		return
	}

	var req memberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		badRequest(c, "invalid user_id")
		return
	}

	m, err := h.workspaceService.AddMember(c.Request.Context(), callerID(c), workspaceID, userID, domain.Role(req.Role))
	if err != nil {
		writeError(c, h.log, "AddMember", err)
		return
	}

	c.JSON(http.StatusCreated, toMemberResponse(m))
}

// ChangeRole handles PATCH /members/:userID
func (h *Handler) ChangeRole(c *gin.Context) {
	workspaceID, ok := workspaceParam(c)
	if !ok {
		return
	}
	userID, ok := uuidParam(c, "userID")
	if !ok {
		return
	}

	var req roleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	m, err := h.workspaceService.ChangeRole(c.Request.Context(), callerID(c), workspaceID, userID, domain.Role(req.Role))
	if err != nil {
		writeError(c, h.log, "ChangeRole", err)
		return
	}

	c.JSON(http.StatusOK, toMemberResponse(m))
}

// RemoveMember handles DELETE /members/:userID
func (h *Handler) RemoveMember(c *gin.Context) {
	workspaceID, ok := workspaceParam(c)
	if !ok {
		return
	}
	userID, ok := uuidParam(c, "userID")
	if !ok {
		return
	}

	if err := h.workspaceService.RemoveMember(c.Request.Context(), callerID(c), workspaceID, userID); err != nil {
		writeError(c, h.log, "RemoveMember", err)
		return
	}

	c.Status(http.StatusNoContent)
}

// TransferOwnership handles POST /ownership
func (h *Handler) TransferOwnership(c *gin.Context) {
	workspaceID, ok := workspaceParam(c)
	if !ok {
		return
	}

	var req ownershipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	newOwnerID, err := uuid.Parse(req.NewOwnerID)
	if err != nil {
		badRequest(c, "invalid new_owner_id")
		return
	}

	if err := h.workspaceService.TransferOwnership(c.Request.Context(), callerID(c), workspaceID, newOwnerID); err != nil {
		writeError(c, h.log, "TransferOwnership", err)
		return
	}

	c.Status(http.StatusNoContent)
}

func bindTransaction(c *gin.Context) (transactionRequest, uuid.UUID, time.Time, bool) {
	var req transactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return req, uuid.Nil, time.Time{}, false
	}
	accountID, err := uuid.Parse(req.AccountID)
	if err != nil {
		badRequest(c, "invalid account_id")
		return req, uuid.Nil, time.Time{}, false
	}
	date, err := domain.ParseDate(req.TransactionDate)
	if err != nil {
		badRequest(c, "invalid transaction_date")
		return req, uuid.Nil, time.Time{}, false
	}
	return req, accountID, date, true
}

func workspaceParam(c *gin.Context) (uuid.UUID, bool) {
	return uuidParam(c, "workspaceID")
}

func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		badRequest(c, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

func queryInt(c *gin.Context, name string) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s", name)
	}
	return v, nil
}
