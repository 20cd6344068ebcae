package journal

const Schema = `
CREATE TABLE IF NOT EXISTS orders (
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	date TEXT NOT NULL,
	action TEXT NOT NULL,
	ticker TEXT NOT NULL,
	qty INTEGER NOT NULL,
	price REAL NOT NULL,
	fee_total REAL NOT NULL,
	cash_delta_date TEXT NOT NULL,
	settlement_date TEXT NOT NULL,
	rule_id_or_reason TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS equity (
	date TEXT PRIMARY KEY,
	equity REAL NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_orders_date ON orders(date);
CREATE INDEX IF NOT EXISTS idx_orders_ticker ON orders(ticker);
`
