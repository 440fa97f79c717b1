package database

import (
	"context"
	"fmt"
	"strings"

	"roundbot/internal/domain"
	"roundbot/internal/domain/entities"
	"roundbot/internal/ports/output"
)

var _ output.ParticipantRepository = (*ParticipantRepository)(nil)

// ParticipantRepository implements output.ParticipantRepository using pgx.
type ParticipantRepository struct {
	q *Queries
}

// NewParticipantRepository creates a ParticipantRepository.
func NewParticipantRepository(q *Queries) *ParticipantRepository {
	return &ParticipantRepository{q: q}
}

func (r *ParticipantRepository) Create(ctx context.Context, participant *entities.Participant) error {
	row, err := scanParticipant(r.q.db.QueryRow(ctx,
		`INSERT INTO participant (event_id, user_id, display_name, instagram, telegram, vk)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING `+participantColumns,
		int64(participant.EventID), participant.UserID, participant.DisplayName,
		participant.Instagram, participant.Telegram, participant.VK,
	))
	if isUniqueViolation(err, "participant_event_user_key") {
		return domain.ErrDuplicateRegistration
	}
	if err != nil {
		return fmt.Errorf("create participant: %w", err)
	}
	participant.ID = uint(row.ID)
	participant.CreatedAt = pgtypeTimestamptzToTime(row.CreatedAt)
	return nil
}

func (r *ParticipantRepository) FindByID(ctx context.Context, id uint) (*entities.Participant, error) {
	row, err := scanParticipant(r.q.db.QueryRow(ctx,
		`SELECT `+participantColumns+` FROM participant WHERE id = $1`, int64(id)))
	if isNoRows(err) {
		return nil, domain.ErrParticipantNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get participant by id: %w", err)
	}
	p := participantToDomain(row)
	return &p, nil
}

func (r *ParticipantRepository) FindByEventIDAndUserID(ctx context.Context, eventID uint, userID string) (*entities.Participant, error) {
	row, err := scanParticipant(r.q.db.QueryRow(ctx,
		`SELECT `+participantColumns+` FROM participant WHERE event_id = $1 AND user_id = $2`,
		int64(eventID), userID))
	if isNoRows(err) {
		return nil, domain.ErrParticipantNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get participant by event id and user id: %w", err)
	}
	p := participantToDomain(row)
	return &p, nil
}

func (r *ParticipantRepository) FindByEventID(ctx context.Context, eventID uint) ([]entities.Participant, error) {
	rows, err := queryAll(ctx, r.q.db, scanParticipant,
		`SELECT `+participantColumns+` FROM participant
		 WHERE event_id = $1
		 ORDER BY display_name, id`, int64(eventID))
	if err != nil {
		return nil, fmt.Errorf("get participants by event id: %w", err)
	}
	return mapSlice(rows, participantToDomain), nil
}

func (r *ParticipantRepository) Search(ctx context.Context, eventID uint, query string) ([]entities.Participant, error) {
	if strings.TrimSpace(query) == "" {
		return r.FindByEventID(ctx, eventID)
	}
	rows, err := queryAll(ctx, r.q.db, scanParticipant,
		`SELECT `+participantColumns+` FROM participant
		 WHERE event_id = $1 AND strpos(lower(display_name), lower($2)) > 0
		 ORDER BY display_name, id`, int64(eventID), query)
	if err != nil {
		return nil, fmt.Errorf("search participants: %w", err)
	}
	return mapSlice(rows, participantToDomain), nil
}
