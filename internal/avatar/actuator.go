package avatar

import (
	"context"
	"os"
	"sync/atomic"

	"github.com/baalimago/avatarweb/internal/model"
	"github.com/baalimago/go_away_boilerplate/pkg/ancli"
	"github.com/baalimago/go_away_boilerplate/pkg/debug"
	"github.com/baalimago/go_away_boilerplate/pkg/misc"
)

// LogActuator reports every attempted event. Motion events are too frequent to
// print unless DEBUG is set.
type LogActuator struct {
	attempted atomic.Int64
}

func (l *LogActuator) Attempt(ctx context.Context, ev model.InputEvent) error {
	if err := ev.Validate(); err != nil {
		return err
	}
	l.attempted.Add(1)
	if ev.Kind == model.MotionKind && !misc.Truthy(os.Getenv("DEBUG")) {
		return nil
	}
	ancli.Noticef("attempt: %v", debug.IndentedJsonFmt(ev))
	return nil
}

// Attempted is the amount of valid events attempted so far.
func (l *LogActuator) Attempted() int64 {
	return l.attempted.Load()
}
