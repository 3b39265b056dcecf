package store

// Amounts are stored as decimal strings so they round-trip exactly.
// months is NULL when a run never pays off.
const schemaSQL = `
CREATE TABLE IF NOT EXISTS runs (
    run_id               TEXT PRIMARY KEY,
    input_hash           TEXT NOT NULL,
    created_at           TEXT NOT NULL,
    source               TEXT NOT NULL,
    strategy             TEXT NOT NULL,
    requested_strategy   TEXT,
    fell_back            INTEGER NOT NULL DEFAULT 0,
    monthly_budget       TEXT NOT NULL,
    months               INTEGER,
    total_interest       TEXT NOT NULL,
    total_paid           TEXT NOT NULL,
    payoff_date          TEXT
);

CREATE TABLE IF NOT EXISTS run_debts (
    run_id               TEXT NOT NULL REFERENCES runs(run_id) ON DELETE CASCADE,
    debt_id              TEXT NOT NULL,
    months               INTEGER,
    total_interest       TEXT NOT NULL,
    total_paid           TEXT NOT NULL,
    payoff_date          TEXT,
    outcome              TEXT NOT NULL,
    PRIMARY KEY (run_id, debt_id)
);

CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at);
CREATE INDEX IF NOT EXISTS idx_runs_hash ON runs(input_hash);
`
