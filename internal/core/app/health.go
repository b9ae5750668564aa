package app

import (
	"context"
	"fmt"

	"docxref/internal/shared/observability"
)

// Health reports the state served on /health.
func (a *App) Health(ctx context.Context) observability.HealthStatus {
	status := observability.HealthStatus{
		Status:  "up",
		Details: make(map[string]string),
	}

	if last := a.Last(); last != nil {
		status.Details["last_run"] = last.Run.ID
		status.Details["registry"] = fmt.Sprintf("ok (%d elements, %d unresolved)", last.Run.Elements, last.Run.Unresolved)
	} else {
		status.Details["registry"] = "no run yet"
	}

	if a.store != nil {
		if _, err := a.store.Runs(ctx, 1); err != nil {
			status.Status = "degraded"
			status.Details["store"] = err.Error()
		} else {
			status.Details["store"] = "ok"
		}
	} else if a.Config.Store.Enabled {
		status.Status = "degraded"
		status.Details["store"] = "missing but enabled in config"
	}

	return status
}
