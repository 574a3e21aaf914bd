package artifact

import "github.com/zeebo/errs"

// Error classes surfaced by the service and the archiver. Callers match them
// with Class.Has.
var (
	// NotFound marks a referenced package, user or artifact that does not exist.
	NotFound = errs.Class("not found")
	// InvalidInput marks a rejected argument.
	InvalidInput = errs.Class("invalid input")
	// StorageFailure marks a failure of the database or of an archive sink.
	StorageFailure = errs.Class("storage failure")
)
