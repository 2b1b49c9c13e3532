package model

import (
	"testing"
)

func TestUserHasRole(t *testing.T) {
	tests := []struct {
		name string
		role string
		ask  string
		want bool
	}{
		{
			name: "admin asked for admin",
			role: RoleAdmin,
			ask:  RoleAdmin,
			want: true,
		},
		{
			name: "editor asked for editor",
			role: RoleEditor,
			ask:  RoleEditor,
			want: true,
		},
		{
			name: "admin asked for editor",
			role: RoleAdmin,
			ask:  RoleEditor,
			want: false,
		},
		{
			name: "empty role",
			role: "",
			ask:  RoleAdmin,
			want: false,
		},
		{
			name: "case sensitive",
			role: "Admin",
			ask:  RoleAdmin,
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := &User{Role: tt.role}
			if got := u.HasRole(tt.ask); got != tt.want {
				t.Errorf("HasRole(%q) = %v, want %v", tt.ask, got, tt.want)
			}
		})
	}
}

func TestUserHasAnyRole(t *testing.T) {
	u := &User{Role: RoleEditor}
	if !u.HasAnyRole(RoleAdmin, RoleEditor) {
		t.Error("HasAnyRole(admin, editor) = false for editor, want true")
	}
	if u.HasAnyRole(RoleAdmin) {
		t.Error("HasAnyRole(admin) = true for editor, want false")
	}
}

func TestUserHasPermission(t *testing.T) {
	tests := []struct {
		name        string
		role        string
		permissions []string
		perm        string
		want        bool
	}{
		{
			name:        "granted permission",
			role:        RoleEditor,
			permissions: []string{PermissionManageContent},
			perm:        PermissionManageContent,
			want:        true,
		},
		{
			name:        "missing permission",
			role:        RoleEditor,
			permissions: []string{PermissionManageContent},
			perm:        PermissionManageMedia,
			want:        false,
		},
		{
			name:        "admin role does not imply permissions",
			role:        RoleAdmin,
			permissions: nil,
			perm:        PermissionManageUsers,
			want:        false,
		},
		{
			name:        "empty permission list",
			role:        RoleEditor,
			permissions: []string{},
			perm:        PermissionManageContent,
			want:        false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := &User{Role: tt.role, Permissions: PermissionsToJSON(tt.permissions)}
			if got := u.HasPermission(tt.perm); got != tt.want {
				t.Errorf("HasPermission(%q) = %v, want %v", tt.perm, got, tt.want)
			}
		})
	}
}

func TestValidatePermissions(t *testing.T) {
	if bad := ValidatePermissions(AllPermissions()); bad != "" {
		t.Errorf("ValidatePermissions(all) = %q, want empty", bad)
	}
	if bad := ValidatePermissions([]string{PermissionManageContent, "superuser"}); bad != "superuser" {
		t.Errorf("ValidatePermissions = %q, want superuser", bad)
	}
}

func TestPermissionsToJSONRoundTrip(t *testing.T) {
	perms := []string{PermissionManageContent, PermissionViewAnalytics}
	u := &User{Permissions: PermissionsToJSON(perms)}
	got := u.GetPermissions()
	if len(got) != 2 || got[0] != PermissionManageContent || got[1] != PermissionViewAnalytics {
		t.Errorf("GetPermissions() = %v, want %v", got, perms)
	}

	empty := &User{Permissions: PermissionsToJSON(nil)}
	if len(empty.GetPermissions()) != 0 {
		t.Errorf("GetPermissions() on empty = %v, want none", empty.GetPermissions())
	}
}
