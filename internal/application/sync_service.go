package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"keycrm-sync-layer/internal/domain"
	"keycrm-sync-layer/internal/infrastructure/keycrm"
	"keycrm-sync-layer/internal/ports"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ErrMissingAPIKey is reported when a sync attempt starts without a
// configured KeyCRM API key. No HTTP call is made in that case.
var ErrMissingAPIKey = errors.New("KeyCRM API key is not set")

const syncSuccessNote = "Order synced with KeyCRM successfully"

// Skip reasons recorded when an attempt ends without a delivery.
const (
	SkipOrderMissing   = "order_missing"
	SkipAlreadySynced  = "already_synced"
	SkipExcludedStatus = "excluded_status"
	SkipPolicy         = "policy"
)

// defaultExcludedStatuses are the order statuses never delivered to KeyCRM
// unless a policy override says otherwise.
var defaultExcludedStatuses = []string{
	domain.StatusCancelled,
	domain.StatusFailed,
	domain.StatusRefunded,
}

// ResultPublisher receives the outcome of every completed sync attempt.
type ResultPublisher interface {
	Publish(result *domain.SyncResult)
}

// SyncRecorder counts attempt outcomes for monitoring.
type SyncRecorder interface {
	RecordAttempt()
	RecordSuccess()
	RecordFailure(reason string)
	RecordSkip(reason string)
}

// DefaultSyncPolicy keeps the built-in eligibility decision unchanged.
type DefaultSyncPolicy struct{}

func (DefaultSyncPolicy) ExcludedStatuses(defaults []string) []string { return defaults }

func (DefaultSyncPolicy) ShouldProcess(_ *domain.Order, eligible bool) bool { return eligible }

// SyncService orchestrates one-way order delivery to KeyCRM: eligibility
// gate, payload build, HTTP delivery, and outcome recording on the order.
// Failures never propagate to the caller; the durable record of an attempt
// is the order's note and synced flag.
type SyncService struct {
	orders   ports.OrderRepository
	settings ports.SettingsRepository
	crm      ports.CRMClient
	policy   ports.SyncPolicy
	events   ResultPublisher
	recorder SyncRecorder
	logger   zerolog.Logger
}

// NewSyncService creates a sync orchestrator. events and recorder may be nil
// when no subscriber or metrics sink is wired.
func NewSyncService(
	orders ports.OrderRepository,
	settings ports.SettingsRepository,
	crm ports.CRMClient,
	policy ports.SyncPolicy,
	events ResultPublisher,
	recorder SyncRecorder,
	logger zerolog.Logger,
) *SyncService {
	if policy == nil {
		policy = DefaultSyncPolicy{}
	}
	return &SyncService{
		orders:   orders,
		settings: settings,
		crm:      crm,
		policy:   policy,
		events:   events,
		recorder: recorder,
		logger:   logger,
	}
}

// ShouldProcess reports whether an order is eligible for delivery. An order
// already carrying the synced flag is never eligible, regardless of any
// policy override; beyond that, orders in an excluded status are rejected
// and the policy hook gets the final word.
func (s *SyncService) ShouldProcess(order *domain.Order) bool {
	eligible, _ := s.shouldProcess(order)
	return eligible
}

func (s *SyncService) shouldProcess(order *domain.Order) (bool, string) {
	if order.IsSynced() {
		return false, SkipAlreadySynced
	}

	excluded := s.policy.ExcludedStatuses(append([]string(nil), defaultExcludedStatuses...))
	eligible := true
	for _, status := range excluded {
		if order.Status == status {
			eligible = false
			break
		}
	}

	if !s.policy.ShouldProcess(order, eligible) {
		if eligible {
			return false, SkipPolicy
		}
		return false, SkipExcludedStatus
	}
	return true, ""
}

// ProcessOrder runs one full sync attempt for the order: load, eligibility,
// payload build, delivery, outcome recording. A missing order and an
// ineligible order are silent no-ops.
func (s *SyncService) ProcessOrder(ctx context.Context, orderID int64) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		s.logger.Warn().Err(err).Int64("orderId", orderID).Msg("Failed to load order, skipping sync")
		s.recordSkip(SkipOrderMissing)
		return
	}
	if order == nil {
		s.logger.Debug().Int64("orderId", orderID).Msg("Order not found, nothing to sync")
		s.recordSkip(SkipOrderMissing)
		return
	}

	s.process(ctx, order)
}

// MaybeProcessOrder is the status transition trigger. It short-circuits on
// an already-synced order before running the full eligibility gate.
func (s *SyncService) MaybeProcessOrder(ctx context.Context, orderID int64, oldStatus, newStatus string) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		s.logger.Warn().Err(err).Int64("orderId", orderID).Msg("Failed to load order, skipping sync")
		s.recordSkip(SkipOrderMissing)
		return
	}
	if order == nil {
		s.recordSkip(SkipOrderMissing)
		return
	}
	if order.IsSynced() {
		s.recordSkip(SkipAlreadySynced)
		return
	}

	s.logger.Debug().
		Int64("orderId", orderID).
		Str("oldStatus", oldStatus).
		Str("newStatus", newStatus).
		Msg("Re-evaluating sync after status change")

	s.process(ctx, order)
}

func (s *SyncService) process(ctx context.Context, order *domain.Order) {
	if eligible, reason := s.shouldProcess(order); !eligible {
		s.logger.Debug().
			Int64("orderId", order.ID).
			Str("status", order.Status).
			Str("reason", reason).
			Msg("Order not eligible for sync")
		s.recordSkip(reason)
		return
	}

	s.recordAttempt()

	settings, err := s.settings.Load(ctx)
	if err != nil {
		s.recordFailure(ctx, order, fmt.Errorf("failed to load sync settings: %w", err), "config")
		return
	}
	if settings.APIKey == "" {
		s.recordFailure(ctx, order, ErrMissingAPIKey, "config")
		return
	}

	payload, err := s.buildPayload(order, settings)
	if err != nil {
		s.recordFailure(ctx, order, err, "delivery")
		return
	}

	if err := s.crm.CreateOrder(ctx, settings.APIKey, settings.DebugMode, payload); err != nil {
		s.recordFailure(ctx, order, err, "delivery")
		return
	}

	order.AddNote(syncSuccessNote)
	order.MarkSynced()
	if err := s.orders.Save(ctx, order); err != nil {
		s.logger.Error().Err(err).Int64("orderId", order.ID).Msg("Failed to persist synced order")
	}

	s.logger.Info().Int64("orderId", order.ID).Msg("Order synced with KeyCRM")
	if s.recorder != nil {
		s.recorder.RecordSuccess()
	}
	s.publish(order.ID, true, syncSuccessNote)
}

// buildPayload wraps the payload mapping in a failure boundary: a panic
// inside the builder becomes a delivery failure instead of taking down the
// triggering request.
func (s *SyncService) buildPayload(order *domain.Order, settings *domain.SyncSettings) (payload *keycrm.OrderPayload, err error) {
	defer func() {
		if r := recover(); r != nil {
			payload = nil
			err = fmt.Errorf("panic while building order payload: %v", r)
		}
	}()
	return keycrm.BuildOrderPayload(order, settings)
}

func (s *SyncService) recordFailure(ctx context.Context, order *domain.Order, cause error, reason string) {
	note := fmt.Sprintf("Failed to sync with KeyCRM: %s", cause.Error())
	order.AddNote(note)
	if err := s.orders.Save(ctx, order); err != nil {
		s.logger.Error().Err(err).Int64("orderId", order.ID).Msg("Failed to persist sync failure note")
	}

	s.logger.Warn().Err(cause).Int64("orderId", order.ID).Msg("Order sync failed")
	if s.recorder != nil {
		s.recorder.RecordFailure(reason)
	}
	s.publish(order.ID, false, note)
}

func (s *SyncService) recordAttempt() {
	if s.recorder != nil {
		s.recorder.RecordAttempt()
	}
}

func (s *SyncService) recordSkip(reason string) {
	if s.recorder != nil {
		s.recorder.RecordSkip(reason)
	}
}

func (s *SyncService) publish(orderID int64, success bool, message string) {
	if s.events == nil {
		return
	}
	s.events.Publish(&domain.SyncResult{
		ID:         uuid.NewString(),
		OrderID:    orderID,
		Success:    success,
		Message:    message,
		OccurredAt: time.Now(),
	})
}
