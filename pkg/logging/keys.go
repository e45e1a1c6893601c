package logging

const (
	// KeyApp is the key for the application name.
	KeyApp = "app"

	// KeyError is the key for errors.
	KeyError = "err"

	// KeyDal is the key for the data access layer name.
	KeyDal = "dal"

	// KeyGuildID is the key for a guild ID.
	KeyGuildID = "guild_id"

	// KeyUserID is the key for a user ID.
	KeyUserID = "user_id"

	// KeyTicketID is the key for a ticket ID.
	KeyTicketID = "ticket_id"

	// KeyChannelID is the key for a channel ID.
	KeyChannelID = "channel_id"

	// KeyRequestID is the key for the ID given to each dispatched interaction.
	KeyRequestID = "request_id"

	// KeyInteraction is the key for the interaction discriminator (command name or custom ID).
	KeyInteraction = "interaction"
)
