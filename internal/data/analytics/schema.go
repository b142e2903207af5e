package analytics

const predictionEventsTable = `
CREATE TABLE IF NOT EXISTS prediction_events (
	timestamp    DateTime64(3, 'UTC'),
	id           UUID,
	kind         LowCardinality(String),
	group_id     UInt8,
	safe_hours   Float64,
	risk_score   Float64,
	risk_level   LowCardinality(String),
	confidence   Float64,
	models_used  UInt8,
	client_id    String
) ENGINE = MergeTree()
PARTITION BY toYYYYMM(timestamp)
ORDER BY (kind, group_id, timestamp)
TTL toDateTime(timestamp) + INTERVAL 1 YEAR
`

// AllTables returns the DDL statements applied at startup.
func AllTables() []string {
	return []string{predictionEventsTable}
}
