package entities

// DenyReason is the machine-readable reason an authorization was refused
type DenyReason string

const (
	DenyMissing     DenyReason = "missing"
	DenyNotFound    DenyReason = "not_found"
	DenyLocked      DenyReason = "locked"
	DenyDisabled    DenyReason = "disabled"
	DenyRatelimited DenyReason = "ratelimited"
)

// Message returns the text shown to external validators.
func (r DenyReason) Message() string {
	switch r {
	case DenyLocked:
		return "The API Key you input is associated with a moderated account on our database"
	case DenyDisabled:
		return "The API Key you input is no longer valid"
	case DenyRatelimited:
		return "The API Key you input is ratelimited"
	default:
		return "The API Key you input no longer exists"
	}
}

// Decision is the outcome of an authorization check.
// User and Key are set only when Allowed.
type Decision struct {
	Allowed bool
	Reason  DenyReason
	User    *User
	Key     *ApiKey
}

func Allow(user *User, key *ApiKey) *Decision {
	return &Decision{Allowed: true, User: user, Key: key}
}

func Deny(reason DenyReason) *Decision {
	return &Decision{Reason: reason}
}

// ValidationUser is the owner summary exposed by key validation
type ValidationUser struct {
	ExternalID string `json:"external_id"`
	Name       string `json:"name"`
}

// ValidationResult is the boundary shape of a key validation
type ValidationResult struct {
	Valid   bool            `json:"valid"`
	Message string          `json:"message,omitempty"`
	Reason  DenyReason      `json:"reason,omitempty"`
	User    *ValidationUser `json:"user,omitempty"`
}

// SetRankInput is the body of the privileged rank-setting request
type SetRankInput struct {
	GroupID        int64  `json:"groupId" binding:"required"`
	TargetUsername string `json:"targetUsername" binding:"required"`
	RankID         int64  `json:"rankId" binding:"required"`
}

// SetRankResult is reported by the external platform executor
type SetRankResult struct {
	TargetUserID int64  `json:"targetUserId"`
	Username     string `json:"username"`
	RankID       int64  `json:"rankId"`
}

// ValidationResult renders the decision for external validators.
func (d *Decision) ValidationResult() *ValidationResult {
	if !d.Allowed {
		return &ValidationResult{Valid: false, Message: d.Reason.Message(), Reason: d.Reason}
	}
	return &ValidationResult{
		Valid: true,
		User:  &ValidationUser{ExternalID: d.User.ExternalID, Name: d.User.Name},
	}
}
