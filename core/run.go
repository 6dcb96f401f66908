package core

import (
	"context"

	"github.com/mfeldman/modelfeed/schema"
)

// StreamResult summarizes one completed model stream.
type StreamResult struct {
	ModelID string             `json:"model_id"`
	Stats   schema.MetricStats `json:"stats"`
}

// RunModel resolves the model's stats, announces the model to the
// notifier, then streams its data to the sink.
func (o *Orchestrator) RunModel(ctx context.Context, model schema.Model) (StreamResult, error) {
	stats, err := o.ResolveStats(ctx, model)
	if err != nil {
		return StreamResult{}, err
	}
	o.notifier.ModelStarted(model.ID, stats)
	id, err := o.StreamData(ctx, model)
	if err != nil {
		return StreamResult{}, err
	}
	return StreamResult{ModelID: id, Stats: stats}, nil
}

// RunModels streams each model in order, stopping at the first failure.
func (o *Orchestrator) RunModels(ctx context.Context, models []schema.Model) ([]StreamResult, error) {
	results := make([]StreamResult, 0, len(models))
	for _, model := range models {
		result, err := o.RunModel(ctx, model)
		if err != nil {
			return results, err
		}
		results = append(results, result)
	}
	return results, nil
}
