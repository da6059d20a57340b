package enums

import "testing"

func TestParseUserRole(t *testing.T) {
	role, err := ParseUserRole(" Recipient ")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if role != UserRoleRecipient {
		t.Fatalf("expected recipient, got %q", role)
	}
	if _, err := ParseUserRole("owner"); err == nil {
		t.Fatalf("expected error for unknown role")
	}
}

func TestSelfService(t *testing.T) {
	if !UserRoleDonor.SelfService() {
		t.Fatalf("donors sign themselves up")
	}
	if UserRoleAdmin.SelfService() {
		t.Fatalf("admins are provisioned, not self-registered")
	}
	if UserRole("ghost").SelfService() {
		t.Fatalf("unknown roles are never self service")
	}
}
