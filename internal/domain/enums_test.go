package domain

import "testing"

func TestInvitationStatus_IsValid(t *testing.T) {
	valid := []InvitationStatus{InvitationStatusActive, InvitationStatusUsed, InvitationStatusRevoked}
	for _, s := range valid {
		if !s.IsValid() {
			t.Errorf("%s should be valid", s)
		}
	}
	if InvitationStatus("PENDING").IsValid() {
		t.Error("PENDING should not be valid")
	}
	if InvitationStatus("").IsValid() {
		t.Error("empty status should not be valid")
	}
}

func TestScanDecision_IsValid(t *testing.T) {
	if !ScanDecisionAdmit.IsValid() || !ScanDecisionReject.IsValid() {
		t.Error("ADMIT and REJECT should be valid")
	}
	if ScanDecision("MAYBE").IsValid() {
		t.Error("MAYBE should not be valid")
	}
}

func TestScanMode_IsValid(t *testing.T) {
	if !ScanModeOnline.IsValid() || !ScanModeOffline.IsValid() {
		t.Error("ONLINE and OFFLINE should be valid")
	}
	if ScanMode("online").IsValid() {
		t.Error("lowercase mode should not be valid")
	}
}

func TestOperatorRole_IsValid(t *testing.T) {
	if !OperatorRoleUsher.IsValid() || !OperatorRoleAdmin.IsValid() {
		t.Error("USHER and ADMIN should be valid")
	}
	if OperatorRole("GUEST").IsValid() {
		t.Error("GUEST should not be valid")
	}
}
