package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"github.com/eduymaz/aller-mind/internal/domain/history"
	"github.com/eduymaz/aller-mind/internal/platform/logger"
)

type Options struct {
	Addr     string
	Database string
	Username string
	Password string
}

// Sink appends prediction events to a column store for offline analysis.
type Sink interface {
	Record(ctx context.Context, rec *history.PredictionRecord) error
	LevelCounts(ctx context.Context, since time.Time) (map[string]uint64, error)
	Close() error
}

type clickHouseSink struct {
	conn driver.Conn
	log  *logger.Logger
}

func NewClickHouseSink(ctx context.Context, log *logger.Logger, opts Options) (Sink, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{opts.Addr},
		Auth: clickhouse.Auth{
			Database: opts.Database,
			Username: opts.Username,
			Password: opts.Password,
		},
		Settings: clickhouse.Settings{
			"max_execution_time": 60,
		},
		DialTimeout: 5 * time.Second,
		Compression: &clickhouse.Compression{
			Method: clickhouse.CompressionLZ4,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ClickHouse: %w", err)
	}
	if err := conn.Ping(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping ClickHouse: %w", err)
	}

	s := &clickHouseSink{conn: conn, log: log.With("service", "ClickHouseSink", "addr", opts.Addr)}
	if err := s.initSchema(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	s.log.Info("connected to ClickHouse")
	return s, nil
}

func (s *clickHouseSink) initSchema(ctx context.Context) error {
	for _, ddl := range AllTables() {
		if err := s.conn.Exec(ctx, ddl); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}
	return nil
}

func (s *clickHouseSink) Record(ctx context.Context, rec *history.PredictionRecord) error {
	if rec == nil {
		return nil
	}
	query := `
		INSERT INTO prediction_events (timestamp, id, kind, group_id, safe_hours, risk_score, risk_level, confidence, models_used, client_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	err := s.conn.Exec(ctx, query,
		rec.CreatedAt,
		rec.ID,
		rec.Kind,
		uint8(rec.GroupID),
		rec.SafeHours,
		rec.RiskScore,
		rec.RiskLevel,
		rec.Confidence,
		uint8(rec.ModelsUsed),
		rec.ClientID,
	)
	if err != nil {
		return fmt.Errorf("failed to insert prediction event: %w", err)
	}
	return nil
}

// LevelCounts counts events per risk level since the given time.
func (s *clickHouseSink) LevelCounts(ctx context.Context, since time.Time) (map[string]uint64, error) {
	rows, err := s.conn.Query(ctx, `
		SELECT risk_level, count() AS n
		FROM prediction_events
		WHERE timestamp >= ?
		GROUP BY risk_level
	`, since.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to query level counts: %w", err)
	}
	defer rows.Close()

	out := map[string]uint64{}
	for rows.Next() {
		var (
			level string
			n     uint64
		)
		if err := rows.Scan(&level, &n); err != nil {
			return nil, err
		}
		out[level] = n
	}
	return out, rows.Err()
}

func (s *clickHouseSink) Close() error {
	if s.conn == nil {
		return nil
	}
	if err := s.conn.Close(); err != nil {
		return fmt.Errorf("failed to close ClickHouse connection: %w", err)
	}
	return nil
}
