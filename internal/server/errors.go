package server

import (
	"errors"
	"net/http"
	"os"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/xtding233/tile-merge/internal/board"
	"github.com/xtding233/tile-merge/internal/game"
	"github.com/xtding233/tile-merge/internal/session"
)

// ErrBadRequest marks malformed transport input (missing or unparsable params).
var ErrBadRequest = errors.New("bad request")

// httpStatus maps domain errors onto HTTP status codes.
func httpStatus(err error) int {
	switch {
	case errors.Is(err, board.ErrOutOfBounds),
		errors.Is(err, ErrBadRequest),
		errors.Is(err, game.ErrInvalidProfile),
		errors.Is(err, session.ErrInvalidConfig):
		return http.StatusBadRequest
	case errors.Is(err, session.ErrCellOccupied):
		return http.StatusConflict
	case errors.Is(err, ErrUnknownSession), errors.Is(err, os.ErrNotExist):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// grpcError converts domain errors into gRPC status errors.
func grpcError(err error) error {
	if err == nil {
		return nil
	}
	var c codes.Code
	switch {
	case errors.Is(err, board.ErrOutOfBounds):
		c = codes.OutOfRange
	case errors.Is(err, session.ErrCellOccupied):
		c = codes.FailedPrecondition
	case errors.Is(err, ErrUnknownSession), errors.Is(err, os.ErrNotExist):
		c = codes.NotFound
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, game.ErrInvalidProfile),
		errors.Is(err, session.ErrInvalidConfig):
		c = codes.InvalidArgument
	default:
		c = codes.Internal
	}
	return status.Error(c, err.Error())
}
