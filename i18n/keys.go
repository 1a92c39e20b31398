package i18n

// Message keys for user-facing dispatcher output.
const (
	KeyCommandNotFound  = "dispatch.error.command_not_found"
	KeyPermissionDenied = "dispatch.error.permission_denied"
	KeyCommandUsage     = "dispatch.command.usage"
	KeyInternalError    = "dispatch.error.internal"
)
