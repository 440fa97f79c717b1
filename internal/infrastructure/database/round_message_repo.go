package database

import (
	"context"
	"fmt"

	"roundbot/internal/domain"
	"roundbot/internal/domain/entities"
	"roundbot/internal/ports/output"
)

var _ output.RoundMessageRepository = (*RoundMessageRepository)(nil)

type RoundMessageRepository struct {
	q *Queries
}

func NewRoundMessageRepository(q *Queries) *RoundMessageRepository {
	return &RoundMessageRepository{q: q}
}

func (r *RoundMessageRepository) Create(ctx context.Context, msg *entities.RoundMessage) error {
	row, err := scanRoundMessage(r.q.db.QueryRow(ctx,
		`INSERT INTO round_message (event_id, round_number, participant_id, chat_id, message_id)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+roundMessageColumns,
		int64(msg.EventID), int32(msg.RoundNumber), int64(msg.ParticipantID), msg.ChatID, msg.MessageID,
	))
	if isUniqueViolation(err, "round_message_surface_key") {
		return domain.ErrDuplicateRoundMessage
	}
	if err != nil {
		return fmt.Errorf("create round message: %w", err)
	}
	msg.ID = uint(row.ID)
	return nil
}

func (r *RoundMessageRepository) Find(ctx context.Context, eventID uint, roundNumber int, participantID uint) (*entities.RoundMessage, error) {
	row, err := scanRoundMessage(r.q.db.QueryRow(ctx,
		`SELECT `+roundMessageColumns+` FROM round_message
		 WHERE event_id = $1 AND round_number = $2 AND participant_id = $3`,
		int64(eventID), int32(roundNumber), int64(participantID)))
	if isNoRows(err) {
		return nil, domain.ErrRoundMessageNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get round message: %w", err)
	}
	m := roundMessageToDomain(row)
	return &m, nil
}

func (r *RoundMessageRepository) FindByRound(ctx context.Context, eventID uint, roundNumber int) ([]entities.RoundMessage, error) {
	rows, err := queryAll(ctx, r.q.db, scanRoundMessage,
		`SELECT `+roundMessageColumns+` FROM round_message
		 WHERE event_id = $1 AND round_number = $2
		 ORDER BY id`, int64(eventID), int32(roundNumber))
	if err != nil {
		return nil, fmt.Errorf("get round messages: %w", err)
	}
	return mapSlice(rows, roundMessageToDomain), nil
}
