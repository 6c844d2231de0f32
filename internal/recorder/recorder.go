package recorder

import "SignalSentinel/internal/model"

// Recorder persists run history for later analysis. It is an audit trail only;
// signal state lives in the state store.
type Recorder interface {
	RecordRun(report *model.RunReport) error
	RecordReset(source string) error
	Close() error
}
