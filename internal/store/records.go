package store

// Outcome values recorded for an invocation.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// InvocationRecord is one logged executor call.
type InvocationRecord struct {
	ID        string `json:"id"`
	Seq       int64  `json:"seq"`
	Backend   string `json:"backend"`
	Operation string `json:"operation"`
	Type      string `json:"type"`
	Member    string `json:"member"`

	// Args is the canonical JSON summary of the call arguments.
	Args string `json:"args"`

	Outcome      string `json:"outcome"`
	ErrorCode    string `json:"error_code,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`

	// Result is the canonical JSON summary of the returned value.
	Result string `json:"result,omitempty"`
}

// InvocationFilter narrows an invocation query. Zero fields match all.
type InvocationFilter struct {
	Type      string
	Member    string
	Backend   string
	Operation string
	Outcome   string

	// AfterSeq returns only records with seq greater than this value.
	AfterSeq int64

	// Limit caps the number of records; 0 means no limit.
	Limit int
}

// LibraryInfo describes a stored library snapshot without its content.
type LibraryInfo struct {
	URI         string `json:"uri"`
	ContentHash string `json:"content_hash"`
	UpdatedSeq  int64  `json:"updated_seq"`
}
