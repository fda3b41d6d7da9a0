package enums

type AuditAction string

const (
	AuditActionApprove AuditAction = "approve_listing"
	AuditActionReject  AuditAction = "reject_listing"
	AuditActionBan     AuditAction = "ban_author"
)
