package apperror

import "errors"

var (
	ErrOutOfTurn     = errors.New("it's not your turn")
	ErrInvalidPhase  = errors.New("action is not legal in the current phase")
	ErrIllegalAction = errors.New("action was rejected by the game rules")
	ErrWrongRoom     = errors.New("action addressed to another room")

	ErrRoomNotFound = errors.New("room not found")
	ErrRoomFull     = errors.New("room already has two players")
)
