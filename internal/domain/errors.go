package domain

import "errors"

// Domain errors.
var (
	ErrInvalidArgument       = errors.New("invalid argument")
	ErrNoActiveEvent         = errors.New("no active event")
	ErrAlreadyStarted        = errors.New("first round already started")
	ErrNotStarted            = errors.New("first round not started yet")
	ErrAllRoundsDone         = errors.New("all rounds are done")
	ErrAlreadyCollecting     = errors.New("round is already collecting opinions")
	ErrNoParticipants        = errors.New("nobody received the round announcement")
	ErrRoundClosed           = errors.New("round is closed")
	ErrNoWritingSession      = errors.New("no writing session for this target")
	ErrEmptyOpinion          = errors.New("opinion is empty")
	ErrDuplicateRegistration = errors.New("participant already registered")
	ErrDeliveryFailure       = errors.New("delivery failed")

	ErrNotCollecting         = errors.New("round is not collecting opinions yet")
	ErrNoOpenRound           = errors.New("no open round")
	ErrEventNotEnded         = errors.New("event has not ended")
	ErrEventNotFound         = errors.New("event not found")
	ErrRoundNotFound         = errors.New("round not found")
	ErrParticipantNotFound   = errors.New("participant not found")
	ErrRoundMessageNotFound  = errors.New("round message not found")
	ErrDuplicateRoundMessage = errors.New("round message already exists")
	ErrRegistrationClosed    = errors.New("registration is closed")
	ErrBotUser               = errors.New("bots cannot register")
	ErrInvalidRegistration   = errors.New("invalid registration form")
	ErrNotAdmin              = errors.New("only an operator can do this")
	ErrAlreadyDone           = errors.New("participant already finished the round")
)

var codes = []struct {
	err  error
	code string
}{
	{ErrInvalidArgument, "invalid_argument"},
	{ErrNoActiveEvent, "no_active_event"},
	{ErrAlreadyStarted, "already_started"},
	{ErrNotStarted, "not_started"},
	{ErrAllRoundsDone, "all_rounds_done"},
	{ErrAlreadyCollecting, "already_collecting"},
	{ErrNoParticipants, "no_participants"},
	{ErrRoundClosed, "round_closed"},
	{ErrNoWritingSession, "no_writing_session"},
	{ErrEmptyOpinion, "empty_opinion"},
	{ErrDuplicateRegistration, "duplicate_registration"},
	{ErrDeliveryFailure, "delivery_failure"},
	{ErrNotCollecting, "not_collecting"},
	{ErrNoOpenRound, "no_open_round"},
	{ErrEventNotEnded, "event_not_ended"},
	{ErrEventNotFound, "event_not_found"},
	{ErrRoundNotFound, "round_not_found"},
	{ErrParticipantNotFound, "participant_not_found"},
	{ErrRoundMessageNotFound, "round_message_not_found"},
	{ErrDuplicateRoundMessage, "duplicate_round_message"},
	{ErrRegistrationClosed, "registration_closed"},
	{ErrBotUser, "bot_user"},
	{ErrInvalidRegistration, "invalid_registration"},
	{ErrNotAdmin, "not_admin"},
	{ErrAlreadyDone, "already_done"},
}

// Code returns the stable code of the first domain error found in err's chain,
// or "" when err carries none.
func Code(err error) string {
	if err == nil {
		return ""
	}
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return ""
}

// Codes lists every stable error code.
func Codes() []string {
	out := make([]string, len(codes))
	for i, c := range codes {
		out[i] = c.code
	}
	return out
}
