package permission

// Role is a member's role within a space. Exactly one per (space, member).
type Role string

const (
	RoleOwner     Role = "owner"
	RoleAdmin     Role = "admin"
	RoleEditor    Role = "editor"
	RoleCommenter Role = "commenter"
	RoleViewer    Role = "viewer"
)

var AllRoles = []Role{RoleOwner, RoleAdmin, RoleEditor, RoleCommenter, RoleViewer}

func (r Role) Valid() bool {
	switch r {
	case RoleOwner, RoleAdmin, RoleEditor, RoleCommenter, RoleViewer:
		return true
	}
	return false
}

// ManageAction is what an actor wants to do to another member.
type ManageAction string

const (
	ActionRemove     ManageAction = "remove"
	ActionChangeRole ManageAction = "changeRole"
)

// CanManageMember reports whether actor may remove or change the role of a
// member currently holding target. Owners manage everyone but other owners;
// admins manage only editors, commenters and viewers; nobody else manages
// anyone. Client-side gating only — the backend enforces the same rules
// authoritatively.
func CanManageMember(actor, target Role, action ManageAction) bool {
	if action != ActionRemove && action != ActionChangeRole {
		return false
	}
	switch actor {
	case RoleOwner:
		return target != RoleOwner
	case RoleAdmin:
		switch target {
		case RoleEditor, RoleCommenter, RoleViewer:
			return true
		}
		return false
	}
	return false
}

// AssignableRoles is the set of roles actor may hand out when inviting or
// re-roling a member. Empty for everyone below admin.
func AssignableRoles(actor Role) []Role {
	switch actor {
	case RoleOwner:
		return []Role{RoleAdmin, RoleEditor, RoleCommenter, RoleViewer}
	case RoleAdmin:
		return []Role{RoleEditor, RoleCommenter, RoleViewer}
	}
	return []Role{}
}
