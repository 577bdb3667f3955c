package domain

import "strings"

// Status is the canonical, provider-agnostic payment lifecycle state.
type Status string

const (
	StatusCreated           Status = "CREATED"
	StatusPending           Status = "PENDING"
	StatusAuthorized        Status = "AUTHORIZED"
	StatusCaptured          Status = "CAPTURED"
	StatusDeclined          Status = "DECLINED"
	StatusCancelled         Status = "CANCELLED"
	StatusRefunded          Status = "REFUNDED"
	StatusPartiallyRefunded Status = "PARTIALLY_REFUNDED"
	StatusCompleted         Status = "COMPLETED"
)

// IsCanonical reports whether s is one of the fixed enum values. Provider
// status mapping degrades unknown native statuses to their raw uppercased
// string, which remains a valid Status but is not canonical.
func (s Status) IsCanonical() bool {
	switch s {
	case StatusCreated, StatusPending, StatusAuthorized, StatusCaptured,
		StatusDeclined, StatusCancelled, StatusRefunded,
		StatusPartiallyRefunded, StatusCompleted:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether no further transition is accepted out of s.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusDeclined, StatusCancelled, StatusRefunded:
		return true
	default:
		return false
	}
}

// CanTransitionTo validates whether an order can move from its current status
// to target. Webhooks are not ordered by the transport, so backward
// transitions are rejected here rather than assumed away.
//
// Valid transitions are:
//   - Created → Pending, Authorized, Declined
//   - Pending → Authorized, Declined, Cancelled
//   - Authorized → Captured, Cancelled, Completed
//   - Captured → Refunded, PartiallyRefunded, Cancelled, Completed
//   - Completed → Refunded, PartiallyRefunded
//   - PartiallyRefunded → Refunded, PartiallyRefunded
//
// Terminal states (Declined, Cancelled, Refunded) allow nothing further.
func (s Status) CanTransitionTo(target Status) error {
	switch s {
	case StatusDeclined, StatusCancelled, StatusRefunded:
		return NewInvalidTransitionError(s, target)

	case StatusCreated:
		if target == StatusPending || target == StatusAuthorized || target == StatusDeclined {
			return nil
		}

	case StatusPending:
		if target == StatusAuthorized || target == StatusDeclined || target == StatusCancelled {
			return nil
		}

	case StatusAuthorized:
		if target == StatusCaptured || target == StatusCancelled || target == StatusCompleted {
			return nil
		}

	case StatusCaptured:
		if target == StatusRefunded || target == StatusPartiallyRefunded ||
			target == StatusCancelled || target == StatusCompleted {
			return nil
		}

	case StatusCompleted:
		if target == StatusRefunded || target == StatusPartiallyRefunded {
			return nil
		}

	case StatusPartiallyRefunded:
		if target == StatusRefunded || target == StatusPartiallyRefunded {
			return nil
		}
	}
	return NewInvalidTransitionError(s, target)
}

// MapStatus translates a provider-native status string onto the canonical enum
// using the adapter's mapping table. Statuses absent from the table degrade to
// the raw uppercased string so new provider states never break ingestion.
func MapStatus(table map[string]Status, native string) Status {
	if mapped, ok := table[strings.ToLower(native)]; ok {
		return mapped
	}
	return Status(strings.ToUpper(native))
}
