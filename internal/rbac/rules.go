package rbac

// Simple default policy. Expand as needed.
var RolePermissions = map[string][]string{
	"student": {
		"catalog:view",
		"quiz:generate",
		"quiz:submit",
		"quiz:history-own",
		"progress:update-own",
		"stats:view-own",
	},
	"admin": {
		"*", // everything
	},
}
