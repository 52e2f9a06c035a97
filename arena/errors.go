package arena

type Error string

func (e Error) Error() string {
	return string(e)
}

const (
	ErrNotConnected  = Error("wallet session is not connected")
	ErrBusy          = Error("same action is already in flight")
	ErrZeroAmount    = Error("amount is missing or zero")
	ErrMissingTarget = Error("target id or address is missing")
	ErrNotApproved   = Error("token allowance was not approved")
	ErrWrongChain    = Error("connected to an unsupported network")
)
