package logging

// Standardized field names for structured logging.
// Every package logs with these keys so store, migration and backup output
// can be filtered the same way.
const (
	FieldKey           = "key"
	FieldTransactionID = "transaction_id"
	FieldDirection     = "direction"
	FieldTrader        = "trader"
	FieldMigration     = "migration"
	FieldBackend       = "backend"
	FieldCount         = "count"
	FieldBytes         = "bytes"
	FieldOutputFile    = "output_file"
	FieldInputFile     = "input_file"
	FieldRunID         = "run_id"
)
