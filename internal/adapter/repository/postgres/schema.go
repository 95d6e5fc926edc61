package postgres

// schemaStatements are applied in order by EnsureSchema.
// Amounts are NUMERIC and dates of transactions and checkpoints are calendar DATEs.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS workspaces (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL,
		created_by UUID NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,

	`CREATE TABLE IF NOT EXISTS workspace_members (
		workspace_id UUID NOT NULL REFERENCES workspaces(id) ON DELETE CASCADE,
		user_id UUID NOT NULL,
		role TEXT NOT NULL CHECK (role IN ('owner', 'admin', 'member', 'viewer')),
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		PRIMARY KEY (workspace_id, user_id)
	)`,

	// one owner per workspace
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_workspace_members_owner
		ON workspace_members(workspace_id) WHERE role = 'owner'`,

	`CREATE TABLE IF NOT EXISTS accounts (
		id UUID PRIMARY KEY,
		workspace_id UUID NOT NULL REFERENCES workspaces(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		account_type TEXT NOT NULL,
		currency CHAR(3) NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		deleted_at TIMESTAMPTZ
	)`,

	`CREATE INDEX IF NOT EXISTS idx_accounts_workspace ON accounts(workspace_id)`,

	`CREATE TABLE IF NOT EXISTS transactions (
		id UUID PRIMARY KEY,
		workspace_id UUID NOT NULL REFERENCES workspaces(id) ON DELETE CASCADE,
		account_id UUID NOT NULL REFERENCES accounts(id),
		type TEXT NOT NULL CHECK (type IN ('income', 'expense')),
		amount NUMERIC(20, 4) NOT NULL CHECK (amount > 0),
		description TEXT NOT NULL DEFAULT '',
		transaction_date DATE NOT NULL,
		created_by UUID,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		deleted_at TIMESTAMPTZ
	)`,

	`CREATE INDEX IF NOT EXISTS idx_transactions_account_date
		ON transactions(workspace_id, account_id, transaction_date) WHERE deleted_at IS NULL`,

	`CREATE TABLE IF NOT EXISTS checkpoints (
		id UUID PRIMARY KEY,
		workspace_id UUID NOT NULL REFERENCES workspaces(id) ON DELETE CASCADE,
		account_id UUID NOT NULL REFERENCES accounts(id),
		date DATE NOT NULL,
		actual_balance NUMERIC(20, 4) NOT NULL,
		expected_balance NUMERIC(20, 4) NOT NULL,
		gap NUMERIC(20, 4) NOT NULL,
		status TEXT NOT NULL CHECK (status IN ('open', 'resolved', 'dismissed')),
		notes TEXT,
		created_by UUID,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,

	`CREATE INDEX IF NOT EXISTS idx_checkpoints_account_date ON checkpoints(workspace_id, account_id, date)`,
}
