package wizard

import (
	"errors"
	"fmt"

	"github.com/demarklabs/demark/internal/session"
)

// ErrNoSession means no session could be resolved from flags or the store.
var ErrNoSession = errors.New("no session: supply a document or a session id")

// Context is the resolved identity a step run operates on.
type Context struct {
	SessionID  string
	DocumentID string
	Step       Step
}

// ResolveContext resolves the working session with a fixed precedence:
// an explicit session id wins, then an explicit document id (which starts a
// fresh session), then the most recently updated session in the store.
func ResolveContext(store *session.Store, explicitSession, explicitDocument string) (Context, error) {
	if explicitSession != "" {
		sess, err := store.Session(explicitSession)
		if err != nil {
			return Context{}, fmt.Errorf("resolve session %s: %w", explicitSession, err)
		}
		step, err := Parse(sess.CurrentStep)
		if err != nil {
			step = StepDocument
		}
		return Context{SessionID: sess.ID, DocumentID: sess.DocumentID, Step: step}, nil
	}
	if explicitDocument != "" {
		if _, err := store.Document(explicitDocument); err != nil {
			return Context{}, err
		}
		sess, err := store.CreateSession(explicitDocument)
		if err != nil {
			return Context{}, err
		}
		return Context{SessionID: sess.ID, DocumentID: sess.DocumentID, Step: StepDocument}, nil
	}
	sess, ok, err := store.LatestSession()
	if err != nil {
		return Context{}, err
	}
	if !ok {
		return Context{}, ErrNoSession
	}
	step, err := Parse(sess.CurrentStep)
	if err != nil {
		step = StepDocument
	}
	return Context{SessionID: sess.ID, DocumentID: sess.DocumentID, Step: step}, nil
}
