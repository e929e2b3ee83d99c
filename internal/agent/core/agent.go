package core

import (
	"context"

	"github.com/edvm/autoblogger/internal/workflow"
)

// Agent is one stage of the generation pipeline. Execute mutates the shared
// run state in place and returns details for the orchestrator's audit log.
// The orchestrator owns log entries and timing; agents never append to the
// state's log themselves.
type Agent interface {
	Name() string
	Execute(ctx context.Context, state *workflow.State) (map[string]interface{}, error)
}
