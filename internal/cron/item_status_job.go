package cron

import (
	"context"
	"fmt"

	"github.com/angelmondragon/minimart-backend/pkg/logger"
)

type itemStatusReconciler interface {
	ReconcileStatuses(ctx context.Context) (soldOut, restocked int64, err error)
}

// NewItemStatusJob realigns item status with stock for rows edited outside
// the checkout path.
func NewItemStatusJob(logg *logger.Logger, items itemStatusReconciler) (Job, error) {
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if items == nil {
		return nil, fmt.Errorf("item repository required")
	}
	return &itemStatusJob{logg: logg, items: items}, nil
}

type itemStatusJob struct {
	logg  *logger.Logger
	items itemStatusReconciler
}

func (j *itemStatusJob) Name() string { return "item-status-reconcile" }

func (j *itemStatusJob) Run(ctx context.Context) error {
	soldOut, restocked, err := j.items.ReconcileStatuses(ctx)
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"marked_sold_out": soldOut,
		"marked_for_sale": restocked,
	})
	if err != nil {
		return fmt.Errorf("reconcile item statuses: %w", err)
	}
	j.logg.Info(logCtx, "item status reconcile complete")
	return nil
}
