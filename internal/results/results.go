// Package results defines the operation result envelope returned by
// application services. A service either succeeds with a payload destined
// for a success topic, or fails with a payload destined for a failure topic;
// infrastructure handlers publish whichever side is set.
package results

type OperationResult struct {
	Success any
	Failure any
	Error   error
}

func SuccessResult(payload any) OperationResult {
	return OperationResult{Success: payload}
}

func FailureResult(payload any, err error) OperationResult {
	return OperationResult{Failure: payload, Error: err}
}

func (r OperationResult) IsSuccess() bool {
	return r.Success != nil && r.Error == nil
}

func (r OperationResult) IsFailure() bool {
	return r.Failure != nil || r.Error != nil
}
