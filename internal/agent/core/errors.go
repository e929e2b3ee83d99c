package core

import "fmt"

// ResearchError indicates the research stage could not gather or synthesize
// source material. Research failures are survivable: the pipeline logs them
// and continues to writing with whatever partial brief exists.
type ResearchError struct {
	Reason string
	Err    error
}

func (e *ResearchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("research failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("research failed: %s", e.Reason)
}

func (e *ResearchError) Unwrap() error { return e.Err }

// WritingError indicates the writing stage produced no usable draft. Writing
// failures are fatal: without a draft there is nothing downstream to work on.
type WritingError struct {
	Reason string
	Err    error
}

func (e *WritingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("writing failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("writing failed: %s", e.Reason)
}

func (e *WritingError) Unwrap() error { return e.Err }

// EditingError indicates the refinement pass could not improve the draft.
// Editing failures are absorbed: the editor promotes the unedited draft to
// final content before returning the error, so the run still completes.
type EditingError struct {
	Reason string
	Err    error
}

func (e *EditingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("editing failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("editing failed: %s", e.Reason)
}

func (e *EditingError) Unwrap() error { return e.Err }

// ConfigurationError indicates a pipeline component could not be constructed
// from configuration. These surface at startup, never mid-run.
type ConfigurationError struct {
	Component string
	Err       error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error in %s: %v", e.Component, e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }
