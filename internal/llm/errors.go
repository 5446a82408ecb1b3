package llm

import "errors"

// ErrCompletionFailed is the single error kind Complete returns. The
// underlying transport or API cause is logged but deliberately not
// propagated; callers show a fallback message and move on.
var ErrCompletionFailed = errors.New("completion failed")
