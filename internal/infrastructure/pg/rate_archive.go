package pg

import (
	"context"

	"fxconvert/internal/application"
	"fxconvert/internal/domain"
	"fxconvert/internal/infrastructure/logx"

	"go.uber.org/zap"
)

var _ application.RateArchive = (*RateArchive)(nil)

type RateArchive struct{ db *DB }

func NewRateArchive(db *DB) *RateArchive { return &RateArchive{db: db} }

func (r *RateArchive) Append(ctx context.Context, s domain.RateSnapshot) error {
	const ins = `
        INSERT INTO rate_snapshots(base, target, rate, observed_at, origin)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (base, target, observed_at, origin) DO NOTHING`
	log := logx.WithFields(ctx).With(
		zap.String("repo", "rate_archive"),
		zap.String("operation", "Append"),
		zap.String("pair", s.Pair.String()),
	)
	tag, err := r.db.Pool.Exec(ctx, ins, s.Pair.Source, s.Pair.Target, s.Rate, s.ObservedAt, s.Origin)
	if err != nil {
		log.Error("sql.exec_failed", zap.Error(err))
		return err
	}
	log.Debug("sql.exec_success", zap.Int64("rows_affected", tag.RowsAffected()))
	return nil
}

// Recent returns up to limit snapshots for pair, newest first.
func (r *RateArchive) Recent(ctx context.Context, pair domain.Pair, limit int) ([]domain.RateSnapshot, error) {
	const q = `
        SELECT id, base, target, rate, observed_at, origin
        FROM rate_snapshots
        WHERE base=$1 AND target=$2
        ORDER BY observed_at DESC, id DESC
        LIMIT $3`
	rows, err := r.db.Pool.Query(ctx, q, pair.Source, pair.Target, limit)
	if err != nil {
		logx.WithFields(ctx).Error("sql.query_failed", zap.String("repo", "rate_archive"), zap.Error(err))
		return nil, err
	}
	defer rows.Close()
	out := []domain.RateSnapshot{}
	for rows.Next() {
		var s domain.RateSnapshot
		if err := rows.Scan(&s.ID, &s.Pair.Source, &s.Pair.Target, &s.Rate, &s.ObservedAt, &s.Origin); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
