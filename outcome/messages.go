package outcome

import "sync"

// Side tables attaching auxiliary human-readable text to error codes and to
// specific issue ids, keyed by string, process-wide. The container never
// consults these; they exist for callers that want to annotate well-known
// failure codes (or individual issues surfaced to users) after the fact.

var (
	textMu    sync.RWMutex
	codeText  = make(map[string]string)
	issueText = make(map[string]string)
)

// SetCodeText registers auxiliary text for an error code. Later calls for
// the same code overwrite earlier ones.
func SetCodeText(code, text string) {
	textMu.Lock()
	defer textMu.Unlock()
	codeText[code] = text
}

// CodeText returns the auxiliary text registered for code.
func CodeText(code string) (string, bool) {
	textMu.RLock()
	defer textMu.RUnlock()
	text, ok := codeText[code]
	return text, ok
}

// SetIssueText registers auxiliary text for a specific issue id.
// Issue.Message appends it when rendering.
func SetIssueText(id, text string) {
	textMu.Lock()
	defer textMu.Unlock()
	issueText[id] = text
}

// IssueText returns the auxiliary text registered for an issue id.
func IssueText(id string) (string, bool) {
	textMu.RLock()
	defer textMu.RUnlock()
	text, ok := issueText[id]
	return text, ok
}
