package logging

// Field names shared across components so log output stays greppable.
const (
	FieldFile          = "file_path"
	FieldPattern       = "pattern"
	FieldPreviewID     = "preview_id"
	FieldRow           = "row"
	FieldTransactionID = "transaction_id"
	FieldCategory      = "category"
	FieldCategoryID    = "category_id"
	FieldDescription   = "description"
	FieldSource        = "source"
	FieldOperation     = "operation"
	FieldState         = "state"
	FieldError         = "error"
	FieldCount         = "count"
	FieldTotal         = "total"
	FieldMatched       = "matched"
	FieldDriver        = "driver"
	FieldDelimiter     = "delimiter"
)
