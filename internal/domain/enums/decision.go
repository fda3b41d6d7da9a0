package enums

// Decision is a terminal moderator action on a queued listing. Ban targets the
// author and leaves the listing status untouched.
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
	DecisionBan     Decision = "ban"
)

func (d Decision) Valid() bool {
	switch d {
	case DecisionApprove, DecisionReject, DecisionBan:
		return true
	}
	return false
}
