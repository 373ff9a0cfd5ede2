package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/punchlist/internal/common"
	"github.com/Veraticus/punchlist/internal/model"
)

// Validation errors.
var (
	ErrNilContext       = errors.New("context cannot be nil")
	ErrEmptyString      = errors.New("string parameter cannot be empty")
	ErrNilParameter     = errors.New("parameter cannot be nil")
	ErrEmptySlice       = errors.New("slice cannot be empty")
	ErrInvalidItem      = errors.New("invalid inspection item")
	ErrInvalidWorkOrder = errors.New("invalid work order")
	ErrInvalidLog       = errors.New("invalid processing log")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateItems checks the enumerated fields the schema constrains.
func validateItems(items []model.InspectionItem) error {
	for i := range items {
		item := &items[i]
		if strings.TrimSpace(item.Unit) == "" {
			return fmt.Errorf("%w at index %d: missing unit", ErrInvalidItem, i)
		}
		if !item.StatusClass.Valid() {
			return fmt.Errorf("%w at index %d: status class %q", ErrInvalidItem, i, item.StatusClass)
		}
		if !item.Urgency.Valid() {
			return fmt.Errorf("%w at index %d: urgency %q", ErrInvalidItem, i, item.Urgency)
		}
	}
	return nil
}

// validateWorkOrders validates a batch of work orders.
func validateWorkOrders(orders []model.WorkOrder) error {
	if orders == nil {
		return fmt.Errorf("%w: orders", ErrNilParameter)
	}
	if len(orders) == 0 {
		return fmt.Errorf("%w: orders", ErrEmptySlice)
	}

	for i := range orders {
		order := &orders[i]
		if strings.TrimSpace(order.InspectionID) == "" {
			return fmt.Errorf("%w at index %d: missing inspection ID", ErrInvalidWorkOrder, i)
		}
		if strings.TrimSpace(order.Unit) == "" || strings.TrimSpace(order.Trade) == "" {
			return fmt.Errorf("%w at index %d: missing unit or trade", ErrInvalidWorkOrder, i)
		}
		if !order.Urgency.Valid() {
			return fmt.Errorf("%w at index %d: urgency %q", ErrInvalidWorkOrder, i, order.Urgency)
		}
		if order.Status != "" && !order.Status.Valid() {
			return fmt.Errorf("%w at index %d: %q", common.ErrInvalidStatus, i, order.Status)
		}
	}
	return nil
}

// validateProcessingLog validates a processing log entry.
func validateProcessingLog(entry *model.ProcessingLog) error {
	if entry == nil {
		return fmt.Errorf("%w: processing log", ErrNilParameter)
	}
	if strings.TrimSpace(entry.OriginalFilename) == "" {
		return fmt.Errorf("%w: missing filename", ErrInvalidLog)
	}
	if strings.TrimSpace(entry.FileChecksum) == "" {
		return fmt.Errorf("%w: missing checksum", ErrInvalidLog)
	}
	switch entry.Status {
	case model.ProcessingRunning, model.ProcessingCompleted, model.ProcessingFailed:
	default:
		return fmt.Errorf("%w: %q", common.ErrInvalidStatus, entry.Status)
	}
	return nil
}
