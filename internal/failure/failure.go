// Package failure defines the error kinds that abort an orgdump run.
//
// Every fallible step wraps its cause in an *Error carrying the Kind and a short
// description of the step, so the entry point can print exactly which step
// failed. Nothing is retried; the first Error ends the run.
package failure

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/go-github/v81/github"
)

type Kind string

const (
	MissingConfig          Kind = "missing config"
	DirectoryCreateFailure Kind = "directory create failure"
	PageFetchFailure       Kind = "page fetch failure"
	SerializationFailure   Kind = "serialization failure"
	FileWriteFailure       Kind = "file write failure"
)

type Error struct {
	Kind Kind
	// Step describes what was being attempted, e.g. "fetch issues for acme/core".
	Step string
	Err  error
}

func New(kind Kind, step string, err error) *Error {
	return &Error{Kind: kind, Step: step, Err: err}
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Step
	}
	return fmt.Sprintf("%s: %v", e.Step, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error by Kind only, so errors.Is(err, failure.Of(PageFetchFailure))
// works regardless of step or cause.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Step == "" && t.Err == nil && t.Kind == e.Kind
}

// Of returns a bare sentinel for kind, for use with errors.Is.
func Of(kind Kind) error {
	return &Error{Kind: kind}
}

// KindOf returns the Kind of the first *Error in err's chain.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}

// Describe renders err for the terminal. Unless verbose, request URLs are
// scrubbed and GitHub API errors are reduced to status and message; the
// context wrapped around them (which page of which listing) is kept.
func Describe(err error, verbose bool) string {
	if err == nil {
		return "unknown error"
	}
	if verbose {
		return err.Error()
	}

	var fe *Error
	if !errors.As(err, &fe) {
		return err.Error()
	}
	if fe.Err == nil {
		return fe.Step
	}
	return fmt.Sprintf("%s: %s", fe.Step, describeCause(fe.Err))
}

func describeCause(err error) string {
	s := strings.TrimSpace(err.Error())

	var er *github.ErrorResponse
	if errors.As(err, &er) {
		if inner := er.Error(); strings.HasSuffix(s, inner) {
			return strings.TrimSuffix(s, inner) + describeErrorResponse(er)
		}
		return describeErrorResponse(er)
	}
	return scrubRequest(s)
}

func describeErrorResponse(er *github.ErrorResponse) string {
	msg := strings.TrimSpace(er.Message)
	if msg == "" {
		msg = "GitHub API request failed"
	}
	if er.Response != nil {
		status := fmt.Sprintf("%d %s", er.Response.StatusCode, http.StatusText(er.Response.StatusCode))
		return fmt.Sprintf("GitHub API request failed (%s): %s", status, msg)
	}
	return fmt.Sprintf("GitHub API request failed: %s", msg)
}

// scrubRequest drops the first "<METHOD> <url>: " segment of a wrapped error
// string, keeping whatever context precedes it.
func scrubRequest(s string) string {
	for i := 0; ; {
		if scrubbed := scrubRequestFromErrorString(s[i:]); scrubbed != "" {
			return s[:i] + scrubbed
		}
		j := strings.Index(s[i:], ": ")
		if j < 0 {
			return s
		}
		i += j + 2
	}
}

func scrubRequestFromErrorString(s string) string {
	// Typical go-github error format:
	//   GET https://api.github.com/...: 404 Not Found []
	// Drop the leading "GET https://...: " part.
	methods := []string{"GET ", "POST ", "PUT ", "PATCH ", "DELETE "}
	for _, m := range methods {
		if !strings.HasPrefix(s, m) {
			continue
		}
		rest := strings.TrimPrefix(s, m)
		if j := strings.Index(rest, ": "); j >= 0 {
			return strings.TrimSpace(rest[j+2:])
		}
		return ""
	}
	return ""
}
