package domain

// Client-facing messages.
const (
	MsgUserNotFound        = "User not found."
	MsgSelfSubscribe       = "You can't subscribe to yourself"
	MsgAlreadySubscribed   = "You're already subscribed to this author"
	MsgNotSubscribed       = "You're not subscribed to this author"
	MsgEmailTaken          = "A user with that email already exists."
	MsgUsernameTaken       = "A user with that username already exists."
	MsgUsernameReserved    = "This username is reserved."
	MsgSentinelUndeletable = "The deleted-author placeholder cannot be removed."
	MsgInvalidCredentials  = "Unable to log in with provided credentials."
	MsgAccountInactive     = "User account is disabled."
	MsgNotAllowed          = "You do not have permission to perform this action."
)
