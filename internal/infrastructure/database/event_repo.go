package database

import (
	"context"
	"fmt"

	"roundbot/internal/domain"
	"roundbot/internal/domain/entities"
	"roundbot/internal/ports/output"
)

var _ output.EventRepository = (*EventRepository)(nil)

type EventRepository struct {
	q *Queries
}

func NewEventRepository(q *Queries) *EventRepository {
	return &EventRepository{q: q}
}

func (r *EventRepository) Create(ctx context.Context, event *entities.Event) error {
	row, err := scanEvent(r.q.db.QueryRow(ctx,
		`INSERT INTO event (started, ended, total_rounds, current_round, round_started_at)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+eventColumns,
		event.Started, event.Ended, int32(event.TotalRounds), int32(event.CurrentRound),
		timeToTimestamptz(event.RoundStartedAt),
	))
	if err != nil {
		return fmt.Errorf("create event: %w", err)
	}
	event.ID = uint(row.ID)
	event.CreatedAt = pgtypeTimestamptzToTime(row.CreatedAt)
	return nil
}

func (r *EventRepository) FindByID(ctx context.Context, id uint) (*entities.Event, error) {
	row, err := scanEvent(r.q.db.QueryRow(ctx,
		`SELECT `+eventColumns+` FROM event WHERE id = $1`, int64(id)))
	if isNoRows(err) {
		return nil, domain.ErrEventNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get event by id: %w", err)
	}
	e := eventToDomain(row)
	return &e, nil
}

func (r *EventRepository) FindActive(ctx context.Context) (*entities.Event, error) {
	row, err := scanEvent(r.q.db.QueryRow(ctx,
		`SELECT `+eventColumns+` FROM event
		 WHERE started AND NOT ended
		 ORDER BY id DESC LIMIT 1`))
	if isNoRows(err) {
		return nil, domain.ErrNoActiveEvent
	}
	if err != nil {
		return nil, fmt.Errorf("get active event: %w", err)
	}
	e := eventToDomain(row)
	return &e, nil
}

func (r *EventRepository) FindLatest(ctx context.Context) (*entities.Event, error) {
	row, err := scanEvent(r.q.db.QueryRow(ctx,
		`SELECT `+eventColumns+` FROM event ORDER BY id DESC LIMIT 1`))
	if isNoRows(err) {
		return nil, domain.ErrEventNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get latest event: %w", err)
	}
	e := eventToDomain(row)
	return &e, nil
}

func (r *EventRepository) EndActive(ctx context.Context) (int64, error) {
	tag, err := r.q.db.Exec(ctx, `UPDATE event SET ended = TRUE WHERE started AND NOT ended`)
	if err != nil {
		return 0, fmt.Errorf("end active events: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *EventRepository) Update(ctx context.Context, event *entities.Event) error {
	tag, err := r.q.db.Exec(ctx,
		`UPDATE event
		 SET started = $2, ended = $3, total_rounds = $4, current_round = $5, round_started_at = $6
		 WHERE id = $1`,
		int64(event.ID), event.Started, event.Ended, int32(event.TotalRounds), int32(event.CurrentRound),
		timeToTimestamptz(event.RoundStartedAt),
	)
	if err != nil {
		return fmt.Errorf("update event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrEventNotFound
	}
	return nil
}
