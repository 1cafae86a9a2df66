package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/reusemart/reusemart-mobile/internal/domain/market"
	"github.com/reusemart/reusemart-mobile/internal/port/outbound"
)

// DeliveryService tracks a courier's tasks and guards status changes.
//
// Completing a task is not idempotent on the backend, so the service refuses
// to complete a task it knows is terminal or already being completed. Those
// refusals return market.ErrActionDisabled without a request.
type DeliveryService struct {
	api    outbound.CourierAPI
	logger *slog.Logger

	mu       sync.Mutex
	status   map[int]string
	inFlight map[int]bool
}

// NewDeliveryService creates a DeliveryService.
func NewDeliveryService(api outbound.CourierAPI, logger *slog.Logger) *DeliveryService {
	if logger == nil {
		logger = slog.Default()
	}
	return &DeliveryService{
		api:      api,
		logger:   logger,
		status:   make(map[int]string),
		inFlight: make(map[int]bool),
	}
}

// Tasks fetches the courier's open tasks and remembers their status.
func (s *DeliveryService) Tasks(ctx context.Context, courierID int) ([]market.DeliveryTask, error) {
	tasks, err := s.api.Tasks(ctx, courierID)
	if err != nil {
		return nil, err
	}
	s.remember(tasks)
	return tasks, nil
}

// History fetches the courier's finished tasks.
func (s *DeliveryService) History(ctx context.Context, courierID int) ([]market.DeliveryTask, error) {
	tasks, err := s.api.TaskHistory(ctx, courierID)
	if err != nil {
		return nil, err
	}
	s.remember(tasks)
	return tasks, nil
}

func (s *DeliveryService) remember(tasks []market.DeliveryTask) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range tasks {
		s.status[t.ID] = t.Status
	}
}

// CanComplete reports whether the complete action is offered for taskID.
func (s *DeliveryService) CanComplete(taskID int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.canComplete(taskID)
}

func (s *DeliveryService) canComplete(taskID int) bool {
	if s.inFlight[taskID] {
		return false
	}
	return s.status[taskID] != market.StatusCompleted
}

// Complete marks taskID as delivered after confirm approves. A failed call
// leaves the task completable so the user can retry.
func (s *DeliveryService) Complete(ctx context.Context, taskID int, confirm Confirmer) error {
	s.mu.Lock()
	if !s.canComplete(taskID) {
		s.mu.Unlock()
		return &market.Error{
			Kind:    market.ErrActionDisabled,
			Area:    "kurir",
			Message: fmt.Sprintf("task %d is already completed", taskID),
		}
	}
	s.inFlight[taskID] = true
	s.mu.Unlock()

	finish := func(status string) {
		s.mu.Lock()
		delete(s.inFlight, taskID)
		if status != "" {
			s.status[taskID] = status
		}
		s.mu.Unlock()
	}

	if !confirmed(confirm, fmt.Sprintf("Mark delivery %d as completed?", taskID)) {
		finish("")
		return market.ErrNotConfirmed
	}

	if err := s.api.CompleteTask(ctx, taskID); err != nil {
		finish("")
		s.logger.Warn("complete task failed", "task_id", taskID, "error", err)
		return err
	}
	finish(market.StatusCompleted)
	s.logger.Info("task completed", "task_id", taskID)
	return nil
}
