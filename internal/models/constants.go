package models

// Extraction defaults.
const (
	DefaultCurrency           = "LKR"
	UnknownSource             = "Unknown"
	DescriptionFallbackLength = 100
)

// DateTimeLayout is the canonical datetime format of drafts and persisted transactions
// (YYYY-MM-DD HH:mm:ss). It sorts lexicographically in chronological order.
const DateTimeLayout = "2006-01-02 15:04:05"

// The uncategorized sentinel. The store seeds it with this id.
const (
	UncategorizedCategoryID   int64 = 1
	UncategorizedCategoryName       = "Uncategorized"
)

// File permissions
const (
	PermissionPreviewFile = 0600
	PermissionDirectory   = 0750
)
