package game

import "errors"

var (
	ErrOutOfBounds   = errors.New("coordinates are outside the board")
	ErrInvalidPath   = errors.New("path is not a legal move")
	ErrCellOccupied  = errors.New("cell is already occupied")
	ErrInvalidState  = errors.New("game state precondition violated")
	ErrNotYourTurn   = errors.New("it is not this player's turn")
	ErrNotYourCone   = errors.New("cone belongs to another player")
	ErrRoomFull      = errors.New("room is full")
	ErrGameStarted   = errors.New("game has already started")
	ErrGameNotActive = errors.New("game is not in progress")
	ErrColorTaken    = errors.New("color is owned by another player")
	ErrNotInLobby    = errors.New("room is not in the lobby phase")
	ErrNotCreator    = errors.New("only the room creator may do this")
	ErrNotReady      = errors.New("not all players are ready")
	ErrUserNotFound  = errors.New("user is not in the room")
	ErrPlayerReady   = errors.New("player has already readied up")
	ErrQueueClosed   = errors.New("player event queue is closed")
)
