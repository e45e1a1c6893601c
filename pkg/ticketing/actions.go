package ticketing

import (
	"fmt"
	"strings"

	"github.com/Jacobbrewer1/satla/pkg/entities"
)

// Namespace is the routing namespace of every ticket button and modal.
const Namespace = "ticket"

// ActionKind is what a ticket button or modal asks for.
type ActionKind string

const (
	ActionCreate       ActionKind = "create"
	ActionClaim        ActionKind = "claim"
	ActionClose        ActionKind = "close"
	ActionConfirmClose ActionKind = "confirm_close"
	ActionCancelClose  ActionKind = "cancel_close"
	ActionSubmit       ActionKind = "submit"
)

// takesTicketID reports whether the custom ID of the action carries a ticket ID.
func (k ActionKind) takesTicketID() bool {
	switch k {
	case ActionClaim, ActionClose, ActionConfirmClose:
		return true
	}
	return false
}

// Action is a parsed ticket custom ID.
type Action struct {
	Kind     ActionKind
	TicketID string
}

// CustomID formats the action as a component custom ID.
func (a Action) CustomID() string {
	if a.Kind.takesTicketID() {
		return Namespace + ":" + string(a.Kind) + ":" + a.TicketID
	}
	return Namespace + ":" + string(a.Kind)
}

// ParseAction parses a ticket custom ID, e.g. ticket:claim:TICKET-0001.
func ParseAction(customID string) (Action, error) {
	parts := strings.SplitN(customID, ":", 3)
	if len(parts) < 2 || parts[0] != Namespace {
		return Action{}, fmt.Errorf("not a ticket custom id: %q", customID)
	}

	kind := ActionKind(parts[1])
	switch kind {
	case ActionCreate, ActionCancelClose, ActionSubmit:
		if len(parts) != 2 {
			return Action{}, fmt.Errorf("unexpected ticket id in %q", customID)
		}
		return Action{Kind: kind}, nil
	case ActionClaim, ActionClose, ActionConfirmClose:
		if len(parts) != 3 || parts[2] == "" {
			return Action{}, fmt.Errorf("missing ticket id in %q", customID)
		}
		id := entities.NormalizeTicketID(parts[2])
		if !strings.HasPrefix(id, entities.TicketIDPrefix) {
			return Action{}, fmt.Errorf("invalid ticket id in %q", customID)
		}
		return Action{Kind: kind, TicketID: id}, nil
	default:
		return Action{}, fmt.Errorf("unknown ticket action %q", parts[1])
	}
}

// CreateID is the custom ID of the panel button.
func CreateID() string { return Action{Kind: ActionCreate}.CustomID() }

// SubmitID is the custom ID of the ticket modal.
func SubmitID() string { return Action{Kind: ActionSubmit}.CustomID() }

// ClaimID is the custom ID of the claim button of a ticket.
func ClaimID(ticketID string) string { return Action{Kind: ActionClaim, TicketID: ticketID}.CustomID() }

// CloseID is the custom ID of the close button of a ticket.
func CloseID(ticketID string) string { return Action{Kind: ActionClose, TicketID: ticketID}.CustomID() }

// ConfirmCloseID is the custom ID of the confirm button of the close prompt.
func ConfirmCloseID(ticketID string) string {
	return Action{Kind: ActionConfirmClose, TicketID: ticketID}.CustomID()
}

// CancelCloseID is the custom ID of the cancel button of the close prompt.
func CancelCloseID() string { return Action{Kind: ActionCancelClose}.CustomID() }
