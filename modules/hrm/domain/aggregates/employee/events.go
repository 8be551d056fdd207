package employee

// CreatedEvent is published after an employee row has been persisted and
// provisioned in the identity provider.
type CreatedEvent struct {
	Data   CreateDTO
	Result Employee
	// RemoteID is the identity provider's id for the mirrored account.
	RemoteID string
}

func NewCreatedEvent(data CreateDTO, result Employee, remoteID string) *CreatedEvent {
	return &CreatedEvent{Data: data, Result: result, RemoteID: remoteID}
}
