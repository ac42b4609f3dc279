package repository

// Schema statements per driver. Money is NUMERIC in postgres and TEXT in
// sqlite so decimals round-trip exactly.
var schemas = map[string][]string{
	DriverPostgres: {
		`CREATE TABLE IF NOT EXISTS fee_schedules (
			id TEXT PRIMARY KEY,
			entity_type TEXT NOT NULL,
			entity_id TEXT NOT NULL,
			name TEXT NOT NULL DEFAULT '',
			fee_type TEXT NOT NULL,
			frequency TEXT NOT NULL,
			billing_method TEXT NOT NULL,
			minimum_fee NUMERIC,
			maximum_fee NUMERIC,
			effective_date DATE NOT NULL,
			created_by TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL,
			UNIQUE (entity_type, entity_id)
		)`,
		`CREATE TABLE IF NOT EXISTS fee_tiers (
			schedule_id TEXT NOT NULL REFERENCES fee_schedules(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			min_value NUMERIC NOT NULL,
			max_value NUMERIC,
			rate NUMERIC NOT NULL,
			PRIMARY KEY (schedule_id, position)
		)`,
		`CREATE TABLE IF NOT EXISTS balances (
			id TEXT PRIMARY KEY,
			entity_type TEXT NOT NULL,
			entity_id TEXT NOT NULL CHECK (entity_id <> ''),
			as_of DATE NOT NULL,
			amount NUMERIC NOT NULL,
			source TEXT NOT NULL,
			account_mask TEXT NOT NULL DEFAULT '',
			account_cipher TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_balances_entity ON balances (entity_type, entity_id, as_of)`,
		`CREATE TABLE IF NOT EXISTS invoices (
			id TEXT PRIMARY KEY,
			schedule_id TEXT NOT NULL,
			entity_type TEXT NOT NULL,
			entity_id TEXT NOT NULL,
			period_start DATE NOT NULL,
			period_end DATE NOT NULL,
			billable_amount NUMERIC NOT NULL,
			annual_fee NUMERIC NOT NULL,
			amount NUMERIC NOT NULL,
			effective_rate NUMERIC NOT NULL,
			billing_method TEXT NOT NULL,
			hmac TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL,
			UNIQUE (schedule_id, period_start)
		)`,
		`CREATE TABLE IF NOT EXISTS email_templates (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			subject TEXT NOT NULL,
			body TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS meetings (
			id TEXT PRIMARY KEY,
			household_id TEXT NOT NULL,
			title TEXT NOT NULL,
			notes TEXT NOT NULL,
			scheduled_at TIMESTAMPTZ NOT NULL,
			external_attendees TEXT NOT NULL,
			decisions_made TEXT NOT NULL,
			action_items TEXT NOT NULL,
			summary TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS tasks (
			id TEXT PRIMARY KEY,
			meeting_id TEXT NOT NULL DEFAULT '',
			title TEXT NOT NULL,
			assignee TEXT NOT NULL DEFAULT '',
			due_date DATE,
			status TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		)`,
	},
	DriverSQLite: {
		`CREATE TABLE IF NOT EXISTS fee_schedules (
			id TEXT PRIMARY KEY,
			entity_type TEXT NOT NULL,
			entity_id TEXT NOT NULL,
			name TEXT NOT NULL DEFAULT '',
			fee_type TEXT NOT NULL,
			frequency TEXT NOT NULL,
			billing_method TEXT NOT NULL,
			minimum_fee TEXT,
			maximum_fee TEXT,
			effective_date DATE NOT NULL,
			created_by TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL,
			UNIQUE (entity_type, entity_id)
		)`,
		`CREATE TABLE IF NOT EXISTS fee_tiers (
			schedule_id TEXT NOT NULL,
			position INTEGER NOT NULL,
			min_value TEXT NOT NULL,
			max_value TEXT,
			rate TEXT NOT NULL,
			PRIMARY KEY (schedule_id, position)
		)`,
		`CREATE TABLE IF NOT EXISTS balances (
			id TEXT PRIMARY KEY,
			entity_type TEXT NOT NULL,
			entity_id TEXT NOT NULL CHECK (entity_id <> ''),
			as_of DATE NOT NULL,
			amount TEXT NOT NULL,
			source TEXT NOT NULL,
			account_mask TEXT NOT NULL DEFAULT '',
			account_cipher TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_balances_entity ON balances (entity_type, entity_id, as_of)`,
		`CREATE TABLE IF NOT EXISTS invoices (
			id TEXT PRIMARY KEY,
			schedule_id TEXT NOT NULL,
			entity_type TEXT NOT NULL,
			entity_id TEXT NOT NULL,
			period_start DATE NOT NULL,
			period_end DATE NOT NULL,
			billable_amount TEXT NOT NULL,
			annual_fee TEXT NOT NULL,
			amount TEXT NOT NULL,
			effective_rate TEXT NOT NULL,
			billing_method TEXT NOT NULL,
			hmac TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL,
			UNIQUE (schedule_id, period_start)
		)`,
		`CREATE TABLE IF NOT EXISTS email_templates (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			subject TEXT NOT NULL,
			body TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS meetings (
			id TEXT PRIMARY KEY,
			household_id TEXT NOT NULL,
			title TEXT NOT NULL,
			notes TEXT NOT NULL,
			scheduled_at TIMESTAMP NOT NULL,
			external_attendees TEXT NOT NULL,
			decisions_made TEXT NOT NULL,
			action_items TEXT NOT NULL,
			summary TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS tasks (
			id TEXT PRIMARY KEY,
			meeting_id TEXT NOT NULL DEFAULT '',
			title TEXT NOT NULL,
			assignee TEXT NOT NULL DEFAULT '',
			due_date DATE,
			status TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL
		)`,
	},
}
