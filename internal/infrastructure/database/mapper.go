package database

import (
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"roundbot/internal/domain/entities"
)

const uniqueViolation = "23505"

// pgtypeTimestamptzToTime returns t.Time when Valid, else zero time.
func pgtypeTimestamptzToTime(t pgtype.Timestamptz) time.Time {
	if !t.Valid {
		return time.Time{}
	}
	return t.Time
}

// timeToTimestamptz maps the zero time to NULL.
func timeToTimestamptz(t time.Time) pgtype.Timestamptz {
	if t.IsZero() {
		return pgtype.Timestamptz{}
	}
	return pgtype.Timestamptz{Time: t, Valid: true}
}

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// isUniqueViolation reports a unique constraint failure, optionally on a
// specific constraint.
func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}

func eventToDomain(e eventRow) entities.Event {
	return entities.Event{
		ID:             uint(e.ID),
		Started:        e.Started,
		Ended:          e.Ended,
		TotalRounds:    int(e.TotalRounds),
		CurrentRound:   int(e.CurrentRound),
		RoundStartedAt: pgtypeTimestamptzToTime(e.RoundStartedAt),
		CreatedAt:      pgtypeTimestamptzToTime(e.CreatedAt),
	}
}

func roundToDomain(r roundRow) entities.Round {
	return entities.Round{
		ID:          uint(r.ID),
		EventID:     uint(r.EventID),
		Number:      int(r.Number),
		Name:        r.Name,
		StartedAt:   pgtypeTimestamptzToTime(r.StartedAt),
		ListShownAt: pgtypeTimestamptzToTime(r.ListShownAt),
		EndedAt:     pgtypeTimestamptzToTime(r.EndedAt),
	}
}

func participantToDomain(p participantRow) entities.Participant {
	return entities.Participant{
		ID:          uint(p.ID),
		EventID:     uint(p.EventID),
		UserID:      p.UserID,
		DisplayName: p.DisplayName,
		Instagram:   p.Instagram,
		Telegram:    p.Telegram,
		VK:          p.VK,
		CreatedAt:   pgtypeTimestamptzToTime(p.CreatedAt),
	}
}

func opinionToDomain(o opinionRow) entities.Opinion {
	return entities.Opinion{
		ID:          uint(o.ID),
		EventID:     uint(o.EventID),
		RoundNumber: int(o.RoundNumber),
		AuthorID:    uint(o.AuthorID),
		TargetID:    uint(o.TargetID),
		Text:        o.Text,
		CreatedAt:   pgtypeTimestamptzToTime(o.CreatedAt),
	}
}

func roundMessageToDomain(m roundMessageRow) entities.RoundMessage {
	return entities.RoundMessage{
		ID:            uint(m.ID),
		EventID:       uint(m.EventID),
		RoundNumber:   int(m.RoundNumber),
		ParticipantID: uint(m.ParticipantID),
		ChatID:        m.ChatID,
		MessageID:     m.MessageID,
	}
}

func mapSlice[R, E any](rows []R, fn func(R) E) []E {
	out := make([]E, len(rows))
	for i := range rows {
		out[i] = fn(rows[i])
	}
	return out
}
