package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	collectionapp "github.com/osvaldoandrade/contentschema/internal/app/collection"
	indexapp "github.com/osvaldoandrade/contentschema/internal/app/index"
	loadapp "github.com/osvaldoandrade/contentschema/internal/app/load"
	"github.com/osvaldoandrade/contentschema/internal/app/paths"
)

type ErrorKind string

const (
	KindInternal   ErrorKind = "internal"
	KindValidation ErrorKind = "validation"
	KindNotFound   ErrorKind = "not_found"
)

const (
	ExitInternal = 1
	ExitInvalid  = 2
	ExitNotFound = 3
)

type ExitError struct {
	Code    int
	Kind    ErrorKind
	Message string
	Err     error
}

func (e ExitError) Error() string {
	return errorMessage(e)
}

func (e ExitError) Unwrap() error {
	return e.Err
}

func NormalizeError(err error) ExitError {
	if err == nil {
		return ExitError{Code: 0}
	}
	var exitErr ExitError
	if errors.As(err, &exitErr) {
		if exitErr.Code == 0 {
			exitErr.Code = ExitInternal
		}
		return exitErr
	}

	switch {
	case errors.Is(err, loadapp.ErrContentDirNotFound):
		return ExitError{Code: ExitNotFound, Kind: KindNotFound, Err: err}
	case errors.Is(err, collectionapp.ErrValidation),
		errors.Is(err, collectionapp.ErrUnknownCollection),
		errors.Is(err, collectionapp.ErrCollectionRequired),
		errors.Is(err, loadapp.ErrInvalidConcurrency),
		errors.Is(err, paths.ErrContentDirRequired),
		errors.Is(err, paths.ErrIndexPathRequired),
		errors.Is(err, indexapp.ErrCollectionRequired),
		errors.Is(err, indexapp.ErrEntryIDRequired),
		errors.Is(err, indexapp.ErrEntryRequired):
		return ExitError{Code: ExitInvalid, Kind: KindValidation, Err: err}
	default:
		return ExitError{Code: ExitInternal, Kind: KindInternal, Err: err}
	}
}

func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	return NormalizeError(err).Code
}

func writeCLIError(w io.Writer, exitErr ExitError, asJSON bool) error {
	if exitErr.Code == 0 {
		return nil
	}
	message := errorMessage(exitErr)
	if asJSON {
		payload := struct {
			Code    int    `json:"code"`
			Kind    string `json:"kind"`
			Message string `json:"message"`
		}{
			Code:    exitErr.Code,
			Kind:    string(exitErr.Kind),
			Message: message,
		}
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(payload)
	}

	ui := newRenderer(w, false)
	prefix := "Error"
	if exitErr.Kind != "" {
		prefix = fmt.Sprintf("Error (%s)", exitErr.Kind)
	}
	prefix = ui.err(prefix)
	_, err := fmt.Fprintf(w, "%s: %s\n", prefix, message)
	return err
}

func errorMessage(exitErr ExitError) string {
	if exitErr.Message != "" {
		return exitErr.Message
	}
	if exitErr.Err != nil {
		return exitErr.Err.Error()
	}
	return "unknown error"
}
