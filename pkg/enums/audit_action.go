package enums

// AuditAction names the kind of change an audit log row records.
type AuditAction string

const (
	AuditActionOrderCreated  AuditAction = "Order Created"
	AuditActionStatusChanged AuditAction = "Status Changed"
	AuditActionNoteUpdated   AuditAction = "Note Updated"
	AuditActionOrderDeleted  AuditAction = "Order Deleted"
)

func (a AuditAction) String() string {
	return string(a)
}

// Audit from/to placeholders for rows that do not describe a status move.
const (
	AuditStatusNotApplicable = "N/A"
	AuditStatusDeleted       = "Deleted"
)
