package models

import "testing"

func TestPasswordHashing(t *testing.T) {
	u := &User{Password: "hunter2secret"}

	if err := u.HashPassword(); err != nil {
		t.Fatalf("hash password: %v", err)
	}
	if u.Password == "hunter2secret" {
		t.Fatal("password stored in plaintext")
	}

	if !u.ComparePassword("hunter2secret") {
		t.Error("correct password rejected")
	}
	if u.ComparePassword("wrong-password") {
		t.Error("wrong password accepted")
	}
}

func TestRoleHelpers(t *testing.T) {
	if RoleCitizen.IsAdmin() {
		t.Error("citizen should not be admin")
	}
	if !RoleAdmin1.IsAdmin() || !RoleAdmin2.IsAdmin() {
		t.Error("admin tiers should be admin")
	}

	for _, role := range []string{"citizen", "admin1", "admin2"} {
		if !ValidRole(role) {
			t.Errorf("role %q should be valid", role)
		}
	}
	if ValidRole("superuser") {
		t.Error("unknown role accepted")
	}
}

func TestEnumValidators(t *testing.T) {
	if !ValidCategory("Safety") || ValidCategory("Potholes") {
		t.Error("category validation broken")
	}
	if !ValidStatus("awaiting_confirmation") || ValidStatus("closed") {
		t.Error("status validation broken")
	}
	if !ValidPriority("urgent") || ValidPriority("critical") {
		t.Error("priority validation broken")
	}
}
