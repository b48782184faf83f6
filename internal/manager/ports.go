package manager

import (
	"context"

	"github.com/pod-control/pcm/internal/pod"
)

// Repository persists a pod's current record and the result of its most
// recent exchange. Defined here, in the consuming package, so storage
// implementations (internal/repository) depend on internal/manager rather
// than the reverse.
type Repository interface {
	Save(ctx context.Context, podRecord *pod.Record, result *pod.Result) error
}

// IDGenerator produces stable identifiers for conversations and exchange
// results. Satisfied in production by a uuid.NewString wrapper; tests may
// supply a deterministic sequence.
type IDGenerator interface {
	NewID() string
}
