package agentexec

import "errors"

// Failure taxonomy for the execution protocol. Marshalling failures
// (unknown tool, missing parameter, encoding, ambiguous decision) abort
// the run without retry: they indicate a malformed provider response or
// a catalogue mismatch, not a transient condition. Tool failures are
// likewise never retried by the loop; a caller wanting retries starts a
// fresh run with a fresh run id.
var (
	// ErrUnknownTool: the provider named a tool absent from the catalogue.
	ErrUnknownTool = errors.New("unknown tool")

	// ErrMissingParameter: a declared input slot had no matching argument.
	ErrMissingParameter = errors.New("missing parameter")

	// ErrParameterEncoding: an argument's text form does not encode
	// under the declared parameter type.
	ErrParameterEncoding = errors.New("parameter encoding failed")

	// ErrAmbiguousDecision: the provider's output could not be
	// classified as either a final answer or a tool invocation.
	ErrAmbiguousDecision = errors.New("ambiguous decision")

	// ErrToolInvocationFailed: the invoked tool signalled failure.
	ErrToolInvocationFailed = errors.New("tool invocation failed")

	// ErrAsynchronousToolUnsupported: a tool deferred its result inside
	// a run that guarantees single-pass synchronous completion.
	ErrAsynchronousToolUnsupported = errors.New("asynchronous tool unsupported")

	// ErrIterationBudgetExhausted: the run hit MaxIterations without a
	// final answer. This is the expected outcome of a stuck agent, not
	// a bug; it is reported distinctly so operators can tune the budget.
	ErrIterationBudgetExhausted = errors.New("iteration budget exhausted")

	// ErrIterationTimedOut: a single iteration exceeded the host's
	// wall-clock budget.
	ErrIterationTimedOut = errors.New("iteration timed out")

	// ErrNotSupported: a probed handle does not implement the tool
	// contract. Distinct from an invocation that failed.
	ErrNotSupported = errors.New("tool contract not supported")

	// ErrUnexpectedDelivery: a result arrived for a run id that was
	// never registered, or that already completed.
	ErrUnexpectedDelivery = errors.New("unexpected result delivery")

	// ErrOriginMismatch: a result arrived from a different capability
	// than the one invoked for that run id.
	ErrOriginMismatch = errors.New("result delivery origin mismatch")
)

var failureReasons = []struct {
	err    error
	reason string
}{
	{ErrUnknownTool, "unknown_tool"},
	{ErrMissingParameter, "missing_parameter"},
	{ErrParameterEncoding, "parameter_encoding_error"},
	{ErrAmbiguousDecision, "ambiguous_decision"},
	{ErrAsynchronousToolUnsupported, "asynchronous_tool_unsupported"},
	{ErrIterationBudgetExhausted, "iteration_budget_exhausted"},
	{ErrIterationTimedOut, "iteration_timed_out"},
	{ErrToolInvocationFailed, "tool_invocation_failed"},
}

// FailureReason maps an error from a run onto its stable audit token.
// Unclassified errors report as "internal_error".
func FailureReason(err error) string {
	for _, fr := range failureReasons {
		if errors.Is(err, fr.err) {
			return fr.reason
		}
	}
	return "internal_error"
}
