package apiclient

import (
	"strings"

	pkgerrors "github.com/angelmondragon/foodbank-client/pkg/errors"
	"github.com/angelmondragon/foodbank-client/pkg/types"
)

// ServerMessage returns the message the server put in env, if any.
func ServerMessage(env *types.Envelope) string {
	if env == nil {
		return ""
	}
	return strings.TrimSpace(env.Message)
}

// Failure rewrites a transport error for display. Remote failures keep the server's
// own message when it sent one and otherwise take fallback; network failures always
// take fallback. Codes and HTTP status are preserved. Local errors pass through.
func Failure(env *types.Envelope, err error, fallback string) error {
	if err == nil {
		return nil
	}
	typed := pkgerrors.As(err)
	if typed == nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, fallback)
	}
	switch typed.Code() {
	case pkgerrors.CodeRemote:
		msg := ServerMessage(env)
		if msg == "" {
			msg = fallback
		}
		return pkgerrors.Wrap(pkgerrors.CodeRemote, err, msg).WithStatus(typed.Status())
	case pkgerrors.CodeNetwork:
		return pkgerrors.Wrap(pkgerrors.CodeNetwork, err, fallback)
	case pkgerrors.CodeInternal:
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, fallback)
	}
	return err
}
