package ticketing

import (
	"errors"
	"fmt"
)

var (
	// ErrTicketNotFound is returned when the guild has no ticket with the requested ID.
	ErrTicketNotFound = errors.New("ticket not found")

	// ErrTicketClosed is returned for any action on a closed ticket.
	ErrTicketClosed = errors.New("ticket already closed")

	// ErrPermissionDenied is returned when the actor may not perform the action.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrCreationInProgress is returned when the user already has a ticket being created in the guild.
	ErrCreationInProgress = errors.New("ticket creation already in progress")

	// ErrChannelCreationFailed is returned when a ticket was saved but its channel could not be created.
	ErrChannelCreationFailed = errors.New("error creating ticket channel")

	// ErrTicketingDisabled is returned when the guild has turned the ticket system off.
	ErrTicketingDisabled = errors.New("ticketing disabled")
)

// AlreadyClaimedError is returned when claiming a ticket someone has claimed.
type AlreadyClaimedError struct {
	// By is the ID of the user holding the claim.
	By string
}

func (e *AlreadyClaimedError) Error() string {
	return fmt.Sprintf("ticket already claimed by %s", e.By)
}

// QuotaExceededError is returned when a user holds as many active tickets as allowed.
type QuotaExceededError struct {
	Count int
	Max   int
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("user has %d active tickets, maximum is %d", e.Count, e.Max)
}
