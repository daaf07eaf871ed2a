package domain

// Delivery selects the transport guarantee for an outbound command.
type Delivery string

const (
	// DeliveryReliable requests retried, acknowledged delivery from the
	// transport layer. Used for durable operations (save/load).
	DeliveryReliable Delivery = "reliable"

	// DeliveryBestEffort is fire-and-forget. Used for transient UI actions.
	DeliveryBestEffort Delivery = "best_effort"
)

// Command is an outbound request to the remote authority.
type Command struct {
	// Kind is the wire "type" discriminator, e.g. SAVE_REQ.
	Kind string

	// Topic routes the command on transports that support topics.
	// Empty means the session's default channel.
	Topic string

	// Class selects reliable vs best-effort delivery.
	Class Delivery

	// Args is the payload, serialized into the wire "data" field.
	Args any
}

// Reliable is a convenience constructor for acknowledged commands.
func Reliable(kind string, args any) Command {
	return Command{Kind: kind, Class: DeliveryReliable, Args: args}
}

// BestEffort is a convenience constructor for fire-and-forget commands.
func BestEffort(kind string, args any) Command {
	return Command{Kind: kind, Class: DeliveryBestEffort, Args: args}
}
