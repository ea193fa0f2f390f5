package permission

// Permission is one gate in the static role/permission matrix.
type Permission string

const (
	// Space lifecycle
	PermEditSpace          Permission = "edit_space"
	PermDeleteSpace        Permission = "delete_space"
	PermChangeSpacePrivacy Permission = "change_space_privacy"

	// Member management
	PermInviteMembers Permission = "invite_members"
	PermRemoveMembers Permission = "remove_members"
	PermChangeRoles   Permission = "change_roles"

	// Content
	PermCreateContent    Permission = "create_content"
	PermEditAnyContent   Permission = "edit_any_content"
	PermDeleteAnyContent Permission = "delete_any_content"
	PermEditOwnContent   Permission = "edit_own_content"
	PermDeleteOwnContent Permission = "delete_own_content"

	// Files
	PermUploadFiles    Permission = "upload_files"
	PermDeleteAnyFiles Permission = "delete_any_files"
	PermDeleteOwnFiles Permission = "delete_own_files"

	// Messaging
	PermSendMessages Permission = "send_messages"
	PermComment      Permission = "comment"

	// Viewing
	PermViewContent Permission = "view_content"
)

var AllPermissions = []Permission{
	PermEditSpace, PermDeleteSpace, PermChangeSpacePrivacy,
	PermInviteMembers, PermRemoveMembers, PermChangeRoles,
	PermCreateContent, PermEditAnyContent, PermDeleteAnyContent,
	PermEditOwnContent, PermDeleteOwnContent,
	PermUploadFiles, PermDeleteAnyFiles, PermDeleteOwnFiles,
	PermSendMessages, PermComment,
	PermViewContent,
}

// matrix is total: every role maps every permission. Owner and admin differ
// only in delete_space and change_space_privacy. Editors touch only their
// own content and files. Commenters message and comment. Viewers read.
var matrix = map[Role]map[Permission]bool{
	RoleOwner: {
		PermEditSpace: true, PermDeleteSpace: true, PermChangeSpacePrivacy: true,
		PermInviteMembers: true, PermRemoveMembers: true, PermChangeRoles: true,
		PermCreateContent: true, PermEditAnyContent: true, PermDeleteAnyContent: true,
		PermEditOwnContent: true, PermDeleteOwnContent: true,
		PermUploadFiles: true, PermDeleteAnyFiles: true, PermDeleteOwnFiles: true,
		PermSendMessages: true, PermComment: true,
		PermViewContent: true,
	},
	RoleAdmin: {
		PermEditSpace: true, PermDeleteSpace: false, PermChangeSpacePrivacy: false,
		PermInviteMembers: true, PermRemoveMembers: true, PermChangeRoles: true,
		PermCreateContent: true, PermEditAnyContent: true, PermDeleteAnyContent: true,
		PermEditOwnContent: true, PermDeleteOwnContent: true,
		PermUploadFiles: true, PermDeleteAnyFiles: true, PermDeleteOwnFiles: true,
		PermSendMessages: true, PermComment: true,
		PermViewContent: true,
	},
	RoleEditor: {
		PermEditSpace: false, PermDeleteSpace: false, PermChangeSpacePrivacy: false,
		PermInviteMembers: true, PermRemoveMembers: false, PermChangeRoles: false,
		PermCreateContent: true, PermEditAnyContent: false, PermDeleteAnyContent: false,
		PermEditOwnContent: true, PermDeleteOwnContent: true,
		PermUploadFiles: true, PermDeleteAnyFiles: false, PermDeleteOwnFiles: true,
		PermSendMessages: true, PermComment: true,
		PermViewContent: true,
	},
	RoleCommenter: {
		PermEditSpace: false, PermDeleteSpace: false, PermChangeSpacePrivacy: false,
		PermInviteMembers: false, PermRemoveMembers: false, PermChangeRoles: false,
		PermCreateContent: false, PermEditAnyContent: false, PermDeleteAnyContent: false,
		PermEditOwnContent: false, PermDeleteOwnContent: false,
		PermUploadFiles: false, PermDeleteAnyFiles: false, PermDeleteOwnFiles: false,
		PermSendMessages: true, PermComment: true,
		PermViewContent: true,
	},
	RoleViewer: {
		PermEditSpace: false, PermDeleteSpace: false, PermChangeSpacePrivacy: false,
		PermInviteMembers: false, PermRemoveMembers: false, PermChangeRoles: false,
		PermCreateContent: false, PermEditAnyContent: false, PermDeleteAnyContent: false,
		PermEditOwnContent: false, PermDeleteOwnContent: false,
		PermUploadFiles: false, PermDeleteAnyFiles: false, PermDeleteOwnFiles: false,
		PermSendMessages: false, PermComment: false,
		PermViewContent: true,
	},
}

// Has looks up the matrix. Unknown roles and permissions are false.
func Has(role Role, perm Permission) bool {
	perms, ok := matrix[role]
	if !ok {
		return false
	}
	return perms[perm]
}
