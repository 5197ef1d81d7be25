// Package publish forwards per-cycle reading sets to external consumers.
// Publishers are best-effort: a failed publish is logged by the caller and
// never blocks the next read cycle.
package publish

import (
	"context"

	"github.com/gasguard/gasmon/pkg/gas"
)

// Publisher forwards one ReadingSet to an external consumer.
type Publisher interface {
	Publish(ctx context.Context, set gas.ReadingSet) error
	Close() error
}

// Ensure implementations satisfy Publisher.
var (
	_ Publisher = (*Influx)(nil)
	_ Publisher = (*Prometheus)(nil)
)
