package health

import "time"

// NewHealthy creates a new healthy status
func NewHealthy(component, message string) Status {
	return Status{
		Component: component,
		Healthy:   true,
		Status:    StatusHealthy,
		Message:   message,
		Timestamp: time.Now(),
	}
}

// NewUnhealthy creates a new unhealthy status
func NewUnhealthy(component, message string) Status {
	return Status{
		Component: component,
		Healthy:   false,
		Status:    StatusUnhealthy,
		Message:   message,
		Timestamp: time.Now(),
	}
}

// NewDegraded creates a new degraded status
func NewDegraded(component, message string) Status {
	return Status{
		Component: component,
		Healthy:   false,
		Status:    StatusDegraded,
		Message:   message,
		Timestamp: time.Now(),
	}
}

// Aggregate creates a status by aggregating sub-statuses:
//   - all healthy (or none) is healthy
//   - any unhealthy is unhealthy
//   - otherwise any degraded is degraded
func Aggregate(component string, subStatuses []Status) Status {
	if len(subStatuses) == 0 {
		return NewHealthy(component, "No units registered")
	}

	var status Status
	switch worst(subStatuses) {
	case StatusUnhealthy:
		status = NewUnhealthy(component, "One or more units are unhealthy")
	case StatusDegraded:
		status = NewDegraded(component, "One or more units are degraded")
	default:
		status = NewHealthy(component, "All units are healthy")
	}

	status.SubStatuses = make([]Status, len(subStatuses))
	copy(status.SubStatuses, subStatuses)
	return status
}

func worst(statuses []Status) string {
	level := StatusHealthy
	for _, s := range statuses {
		switch {
		case s.IsUnhealthy():
			return StatusUnhealthy
		case s.IsDegraded():
			level = StatusDegraded
		}
	}
	return level
}

// combine folds the statuses of nested units into the status of their
// owner. A healthy owner with failing nested units becomes degraded; an
// owner's own failure is kept.
func combine(own Status, nested []Status) Status {
	if len(nested) == 0 {
		return own
	}
	own.SubStatuses = nested
	if own.IsHealthy() && worst(nested) != StatusHealthy {
		own.Status = StatusDegraded
		own.Healthy = false
		own.Message = "One or more nested units are not healthy"
	}
	return own
}
