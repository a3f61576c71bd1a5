package adminauth

type Outcome string

const (
	OutcomeValid       Outcome = "valid"
	OutcomeMissing     Outcome = "missing"
	OutcomeNotFound    Outcome = "not_found"
	OutcomeAlreadyUsed Outcome = "already_used"
	OutcomeExpired     Outcome = "expired"
)

const (
	MsgTokenValid       = "Token is valid"
	MsgTokenRequired    = "Token required"
	MsgTokenNotFound    = "Token not found or expired"
	MsgTokenAlreadyUsed = "Token already used"
	MsgTokenExpired     = "Token expired"
)

func (o Outcome) Valid() bool {
	return o == OutcomeValid
}

func (o Outcome) Message() string {
	switch o {
	case OutcomeValid:
		return MsgTokenValid
	case OutcomeMissing:
		return MsgTokenRequired
	case OutcomeAlreadyUsed:
		return MsgTokenAlreadyUsed
	case OutcomeExpired:
		return MsgTokenExpired
	default:
		return MsgTokenNotFound
	}
}
