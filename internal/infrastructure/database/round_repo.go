package database

import (
	"context"
	"fmt"
	"time"

	"roundbot/internal/domain"
	"roundbot/internal/domain/entities"
	"roundbot/internal/ports/output"
)

var _ output.RoundRepository = (*RoundRepository)(nil)

type RoundRepository struct {
	q *Queries
}

func NewRoundRepository(q *Queries) *RoundRepository {
	return &RoundRepository{q: q}
}

func (r *RoundRepository) Create(ctx context.Context, round *entities.Round) error {
	startedAt := round.StartedAt
	if startedAt.IsZero() {
		startedAt = time.Now()
	}
	row, err := scanRound(r.q.db.QueryRow(ctx,
		`INSERT INTO round (event_id, number, name, started_at, list_shown_at, ended_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING `+roundColumns,
		int64(round.EventID), int32(round.Number), round.Name,
		timeToTimestamptz(startedAt), timeToTimestamptz(round.ListShownAt), timeToTimestamptz(round.EndedAt),
	))
	if err != nil {
		return fmt.Errorf("create round: %w", err)
	}
	round.ID = uint(row.ID)
	round.StartedAt = pgtypeTimestamptzToTime(row.StartedAt)
	return nil
}

func (r *RoundRepository) FindOpen(ctx context.Context, eventID uint) (*entities.Round, error) {
	row, err := scanRound(r.q.db.QueryRow(ctx,
		`SELECT `+roundColumns+` FROM round
		 WHERE event_id = $1 AND ended_at IS NULL
		 ORDER BY number DESC LIMIT 1`, int64(eventID)))
	if isNoRows(err) {
		return nil, domain.ErrRoundNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get open round: %w", err)
	}
	round := roundToDomain(row)
	return &round, nil
}

func (r *RoundRepository) FindByNumber(ctx context.Context, eventID uint, number int) (*entities.Round, error) {
	row, err := scanRound(r.q.db.QueryRow(ctx,
		`SELECT `+roundColumns+` FROM round WHERE event_id = $1 AND number = $2`,
		int64(eventID), int32(number)))
	if isNoRows(err) {
		return nil, domain.ErrRoundNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get round by number: %w", err)
	}
	round := roundToDomain(row)
	return &round, nil
}

func (r *RoundRepository) MarkListShown(ctx context.Context, id uint, at time.Time) error {
	return r.mark(ctx, `UPDATE round SET list_shown_at = $2 WHERE id = $1`, id, at)
}

func (r *RoundRepository) MarkEnded(ctx context.Context, id uint, at time.Time) error {
	return r.mark(ctx, `UPDATE round SET ended_at = $2 WHERE id = $1`, id, at)
}

func (r *RoundRepository) mark(ctx context.Context, sql string, id uint, at time.Time) error {
	tag, err := r.q.db.Exec(ctx, sql, int64(id), timeToTimestamptz(at))
	if err != nil {
		return fmt.Errorf("update round: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrRoundNotFound
	}
	return nil
}
