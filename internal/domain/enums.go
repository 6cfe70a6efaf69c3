package domain

// InvitationStatus is the lifecycle state of an invitation at the ledger.
type InvitationStatus string

const (
	InvitationStatusActive  InvitationStatus = "ACTIVE"
	InvitationStatusUsed    InvitationStatus = "USED"
	InvitationStatusRevoked InvitationStatus = "REVOKED"
)

func (s InvitationStatus) String() string { return string(s) }

func (s InvitationStatus) IsValid() bool {
	switch s {
	case InvitationStatusActive, InvitationStatusUsed, InvitationStatusRevoked:
		return true
	}
	return false
}

// ScanDecision is the admission outcome recorded for a scan.
type ScanDecision string

const (
	ScanDecisionAdmit  ScanDecision = "ADMIT"
	ScanDecisionReject ScanDecision = "REJECT"
)

func (d ScanDecision) String() string { return string(d) }

func (d ScanDecision) IsValid() bool {
	switch d {
	case ScanDecisionAdmit, ScanDecisionReject:
		return true
	}
	return false
}

// ScanMode is the network state at the moment a scan was recorded.
// It is immutable on the record: a scan captured online stays ONLINE even
// if its mirror later fails and it drains through the offline backlog.
type ScanMode string

const (
	ScanModeOnline  ScanMode = "ONLINE"
	ScanModeOffline ScanMode = "OFFLINE"
)

func (m ScanMode) String() string { return string(m) }

func (m ScanMode) IsValid() bool {
	switch m {
	case ScanModeOnline, ScanModeOffline:
		return true
	}
	return false
}

// OperatorRole identifies which accounts may run the usher terminal.
type OperatorRole string

const (
	OperatorRoleUsher OperatorRole = "USHER"
	OperatorRoleAdmin OperatorRole = "ADMIN"
)

func (r OperatorRole) String() string { return string(r) }

func (r OperatorRole) IsValid() bool {
	switch r {
	case OperatorRoleUsher, OperatorRoleAdmin:
		return true
	}
	return false
}
