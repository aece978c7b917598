package store

// Schema creates all tables, indexes and triggers if they don't exist.
// Amounts are integers in minor currency units, dates are YYYY-MM-DD text.
const Schema = `
CREATE TABLE IF NOT EXISTS acc_charts (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    label TEXT NOT NULL,
    country TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS acc_accounts (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    id_chart INTEGER NOT NULL REFERENCES acc_charts(id) ON DELETE CASCADE,
    code TEXT NOT NULL,
    label TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    type INTEGER NOT NULL DEFAULT 0,
    type_parent INTEGER NOT NULL DEFAULT 0,
    UNIQUE(id_chart, code)
);

CREATE INDEX IF NOT EXISTS idx_acc_accounts_type
    ON acc_accounts(id_chart, type);

CREATE TABLE IF NOT EXISTS acc_years (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    id_chart INTEGER NOT NULL REFERENCES acc_charts(id),
    label TEXT NOT NULL,
    start_date TEXT NOT NULL,
    end_date TEXT NOT NULL,
    closed INTEGER NOT NULL DEFAULT 0,
    closing_date TEXT NULL,
    CHECK (start_date <= end_date)
);

CREATE TABLE IF NOT EXISTS acc_payment_methods (
    code TEXT PRIMARY KEY,
    label TEXT NOT NULL
);

INSERT OR IGNORE INTO acc_payment_methods (code, label) VALUES
    ('ES', 'Cash'),
    ('CB', 'Card'),
    ('CH', 'Check'),
    ('VI', 'Bank transfer'),
    ('PR', 'Direct debit');

CREATE TABLE IF NOT EXISTS acc_categories (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    label TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS acc_transactions (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    type TEXT NOT NULL DEFAULT 'advanced',
    date TEXT NOT NULL,
    label TEXT NOT NULL,
    reference TEXT NOT NULL DEFAULT '',
    payment_method TEXT NULL REFERENCES acc_payment_methods(code),
    payment_number TEXT NOT NULL DEFAULT '',
    notes TEXT NOT NULL DEFAULT '',
    id_year INTEGER NULL REFERENCES acc_years(id),
    id_category INTEGER NULL REFERENCES acc_categories(id) ON DELETE SET NULL,
    id_creator INTEGER NULL
);

CREATE INDEX IF NOT EXISTS idx_acc_transactions_year
    ON acc_transactions(id_year, date);

CREATE TABLE IF NOT EXISTS acc_transactions_lines (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    id_transaction INTEGER NOT NULL REFERENCES acc_transactions(id) ON DELETE CASCADE,
    id_account INTEGER NOT NULL REFERENCES acc_accounts(id) ON DELETE RESTRICT,
    credit INTEGER NOT NULL DEFAULT 0 CHECK (credit >= 0),
    debit INTEGER NOT NULL DEFAULT 0 CHECK (debit >= 0),
    reference TEXT NOT NULL DEFAULT '',
    label TEXT NOT NULL DEFAULT '',
    reconciled INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_acc_lines_transaction
    ON acc_transactions_lines(id_transaction);

CREATE INDEX IF NOT EXISTS idx_acc_lines_account
    ON acc_transactions_lines(id_account);

-- Balances carried forward by closing year id_year.
CREATE TABLE IF NOT EXISTS acc_opening_balances (
    id_year INTEGER NOT NULL REFERENCES acc_years(id),
    id_account INTEGER NOT NULL REFERENCES acc_accounts(id),
    balance INTEGER NOT NULL,
    PRIMARY KEY (id_year, id_account)
);

-- A closed year is write-protected.
CREATE TRIGGER IF NOT EXISTS acc_transactions_closed_update
BEFORE UPDATE ON acc_transactions
WHEN (SELECT closed FROM acc_years WHERE id = OLD.id_year) = 1
BEGIN
    SELECT RAISE(ABORT, 'fiscal year is closed');
END;

CREATE TRIGGER IF NOT EXISTS acc_transactions_closed_delete
BEFORE DELETE ON acc_transactions
WHEN (SELECT closed FROM acc_years WHERE id = OLD.id_year) = 1
BEGIN
    SELECT RAISE(ABORT, 'fiscal year is closed');
END;

CREATE TRIGGER IF NOT EXISTS acc_lines_closed_insert
BEFORE INSERT ON acc_transactions_lines
WHEN (SELECT y.closed FROM acc_transactions t JOIN acc_years y ON y.id = t.id_year WHERE t.id = NEW.id_transaction) = 1
BEGIN
    SELECT RAISE(ABORT, 'fiscal year is closed');
END;

CREATE TRIGGER IF NOT EXISTS acc_lines_closed_update
BEFORE UPDATE ON acc_transactions_lines
WHEN (SELECT y.closed FROM acc_transactions t JOIN acc_years y ON y.id = t.id_year WHERE t.id = OLD.id_transaction) = 1
BEGIN
    SELECT RAISE(ABORT, 'fiscal year is closed');
END;

CREATE TRIGGER IF NOT EXISTS acc_lines_closed_delete
BEFORE DELETE ON acc_transactions_lines
WHEN (SELECT y.closed FROM acc_transactions t JOIN acc_years y ON y.id = t.id_year WHERE t.id = OLD.id_transaction) = 1
BEGIN
    SELECT RAISE(ABORT, 'fiscal year is closed');
END;
`
