package commands

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/simaogato/hearthledger-backend/internal/app"
	"github.com/simaogato/hearthledger-backend/internal/domain"
	"github.com/simaogato/hearthledger-backend/internal/usecase/reconcile"
)

var (
	// Recalculate flags
	workspaceFlag string
	accountFlag   string
	fromFlag      string
)

// recalculateCmd runs the checkpoint cascade by hand
var recalculateCmd = &cobra.Command{
	Use:   "recalculate",
	Short: "Re-derive expected balances of an account's checkpoints",
	Long: `Recompute expected balance and gap of every checkpoint of the account dated on or after --from.
Useful after bulk imports written directly to the database.

Examples:
  hearthctl recalculate --workspace WS_ID --account ACCOUNT_ID --from 2024-01-01
  hearthctl recalculate --workspace WS_ID --account ACCOUNT_ID --from 2024-01-01 --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := parseRecalculateFlags(workspaceFlag, accountFlag, fromFlag)
		if err != nil {
			return err
		}
		return runRecalculate(cmd, req)
	},
}

func init() {
	rootCmd.AddCommand(recalculateCmd)

	recalculateCmd.Flags().StringVar(&workspaceFlag, "workspace", "", "Workspace ID")
	recalculateCmd.Flags().StringVar(&accountFlag, "account", "", "Account ID")
	recalculateCmd.Flags().StringVar(&fromFlag, "from", "", "First affected date (YYYY-MM-DD)")
	_ = recalculateCmd.MarkFlagRequired("workspace")
	_ = recalculateCmd.MarkFlagRequired("account")
	_ = recalculateCmd.MarkFlagRequired("from")
}

type recalculateRequest struct {
	WorkspaceID uuid.UUID
	AccountID   uuid.UUID
	From        time.Time
}

func parseRecalculateFlags(workspace, account, from string) (recalculateRequest, error) {
	workspaceID, err := uuid.Parse(workspace)
	if err != nil {
		return recalculateRequest{}, fmt.Errorf("invalid --workspace: %w", err)
	}
	accountID, err := uuid.Parse(account)
	if err != nil {
		return recalculateRequest{}, fmt.Errorf("invalid --account: %w", err)
	}
	date, err := domain.ParseDate(from)
	if err != nil {
		return recalculateRequest{}, fmt.Errorf("invalid --from: %w", err)
	}
	return recalculateRequest{WorkspaceID: workspaceID, AccountID: accountID, From: date}, nil
}

func runRecalculate(cmd *cobra.Command, req recalculateRequest) error {
	ctx := cmd.Context()

	db, err := openDB(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	repos := app.PostgresRepositories(db)
	if _, err := repos.Accounts.GetByID(ctx, req.WorkspaceID, req.AccountID); err != nil {
		return fmt.Errorf("failed to load account: %w", err)
	}

	services := app.NewServices(repos, nil, newLogger(cmd.ErrOrStderr()))
	result, err := services.Recalculator.RecalculateAffectedCheckpoints(ctx, req.From, req.AccountID, req.WorkspaceID)
	if result == nil {
		return err
	}

	if printErr := printRecalculateResult(cmd, req, result); printErr != nil {
		return printErr
	}
	return err
}

func printRecalculateResult(cmd *cobra.Command, req recalculateRequest, result *reconcile.Result) error {
	out := cmd.OutOrStdout()

	if jsonOutput {
		return writeJSON(out, map[string]any{
			"workspace_id":  req.WorkspaceID,
			"account_id":    req.AccountID,
			"from":          req.From.Format(domain.DateLayout),
			"examined":      result.Examined,
			"updated_count": result.UpdatedCount,
			"warnings":      result.Warnings,
		})
	}

	section(out, "Checkpoint recalculation")
	muted(out, "account %s from %s", req.AccountID, req.From.Format(domain.DateLayout))
	success(out, "%d of %d checkpoints updated", result.UpdatedCount, result.Examined)
	for _, w := range result.Warnings {
		warning(out, "%s", w)
	}
	return nil
}
