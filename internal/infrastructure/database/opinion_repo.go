package database

import (
	"context"
	"fmt"

	"roundbot/internal/domain/entities"
	"roundbot/internal/ports/output"
)

var _ output.OpinionRepository = (*OpinionRepository)(nil)

type OpinionRepository struct {
	q *Queries
}

func NewOpinionRepository(q *Queries) *OpinionRepository {
	return &OpinionRepository{q: q}
}

func (r *OpinionRepository) Create(ctx context.Context, opinion *entities.Opinion) error {
	row, err := scanOpinion(r.q.db.QueryRow(ctx,
		`INSERT INTO opinion (event_id, round_number, author_id, target_id, text)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+opinionColumns,
		int64(opinion.EventID), int32(opinion.RoundNumber),
		int64(opinion.AuthorID), int64(opinion.TargetID), opinion.Text,
	))
	if err != nil {
		return fmt.Errorf("create opinion: %w", err)
	}
	opinion.ID = uint(row.ID)
	opinion.CreatedAt = pgtypeTimestamptzToTime(row.CreatedAt)
	return nil
}

func (r *OpinionRepository) FindByTarget(ctx context.Context, eventID, targetID uint) ([]entities.Opinion, error) {
	rows, err := queryAll(ctx, r.q.db, scanOpinion,
		`SELECT `+opinionColumns+` FROM opinion
		 WHERE event_id = $1 AND target_id = $2
		 ORDER BY round_number, id`, int64(eventID), int64(targetID))
	if err != nil {
		return nil, fmt.Errorf("get opinions by target: %w", err)
	}
	return mapSlice(rows, opinionToDomain), nil
}

func (r *OpinionRepository) FindByAuthorAndRound(ctx context.Context, eventID uint, roundNumber int, authorID uint) ([]entities.Opinion, error) {
	rows, err := queryAll(ctx, r.q.db, scanOpinion,
		`SELECT `+opinionColumns+` FROM opinion
		 WHERE event_id = $1 AND round_number = $2 AND author_id = $3
		 ORDER BY id`, int64(eventID), int32(roundNumber), int64(authorID))
	if err != nil {
		return nil, fmt.Errorf("get opinions by author: %w", err)
	}
	return mapSlice(rows, opinionToDomain), nil
}
