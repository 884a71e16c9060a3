package identity

// User is one account record with its entity memberships. Empty membership
// fields mean the account is not attached at that tier.
type User struct {
	AccountID string `json:"accountId" db:"account_id"`
	OrgID     string `json:"orgId" db:"org_id"`
	LocID     string `json:"locId" db:"loc_id"`
	GroupID   string `json:"groupId" db:"group_id"`
	FacTypeID string `json:"facTypeId" db:"fac_type_id"`
}
