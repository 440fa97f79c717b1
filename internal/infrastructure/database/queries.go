package database

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
)

// DBTX is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Queries runs the statements of every repository against one DBTX.
type Queries struct {
	db DBTX
}

func NewQueries(db DBTX) *Queries {
	return &Queries{db: db}
}

type eventRow struct {
	ID             int64
	Started        bool
	Ended          bool
	TotalRounds    int32
	CurrentRound   int32
	RoundStartedAt pgtype.Timestamptz
	CreatedAt      pgtype.Timestamptz
}

type roundRow struct {
	ID          int64
	EventID     int64
	Number      int32
	Name        string
	StartedAt   pgtype.Timestamptz
	ListShownAt pgtype.Timestamptz
	EndedAt     pgtype.Timestamptz
}

type participantRow struct {
	ID          int64
	EventID     int64
	UserID      string
	DisplayName string
	Instagram   string
	Telegram    string
	VK          string
	CreatedAt   pgtype.Timestamptz
}

type opinionRow struct {
	ID          int64
	EventID     int64
	RoundNumber int32
	AuthorID    int64
	TargetID    int64
	Text        string
	CreatedAt   pgtype.Timestamptz
}

type roundMessageRow struct {
	ID            int64
	EventID       int64
	RoundNumber   int32
	ParticipantID int64
	ChatID        string
	MessageID     string
}

const eventColumns = `id, started, ended, total_rounds, current_round, round_started_at, created_at`

func scanEvent(row pgx.Row) (eventRow, error) {
	var r eventRow
	err := row.Scan(&r.ID, &r.Started, &r.Ended, &r.TotalRounds, &r.CurrentRound, &r.RoundStartedAt, &r.CreatedAt)
	return r, err
}

const roundColumns = `id, event_id, number, name, started_at, list_shown_at, ended_at`

func scanRound(row pgx.Row) (roundRow, error) {
	var r roundRow
	err := row.Scan(&r.ID, &r.EventID, &r.Number, &r.Name, &r.StartedAt, &r.ListShownAt, &r.EndedAt)
	return r, err
}

const participantColumns = `id, event_id, user_id, display_name, instagram, telegram, vk, created_at`

func scanParticipant(row pgx.Row) (participantRow, error) {
	var r participantRow
	err := row.Scan(&r.ID, &r.EventID, &r.UserID, &r.DisplayName, &r.Instagram, &r.Telegram, &r.VK, &r.CreatedAt)
	return r, err
}

const opinionColumns = `id, event_id, round_number, author_id, target_id, text, created_at`

func scanOpinion(row pgx.Row) (opinionRow, error) {
	var r opinionRow
	err := row.Scan(&r.ID, &r.EventID, &r.RoundNumber, &r.AuthorID, &r.TargetID, &r.Text, &r.CreatedAt)
	return r, err
}

const roundMessageColumns = `id, event_id, round_number, participant_id, chat_id, message_id`

func scanRoundMessage(row pgx.Row) (roundMessageRow, error) {
	var r roundMessageRow
	err := row.Scan(&r.ID, &r.EventID, &r.RoundNumber, &r.ParticipantID, &r.ChatID, &r.MessageID)
	return r, err
}

// queryAll runs sql and scans every row with scan.
func queryAll[T any](ctx context.Context, db DBTX, scan func(pgx.Row) (T, error), sql string, args ...any) ([]T, error) {
	rows, err := db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]T, 0)
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}
