package source

import (
	"fmt"

	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

// Error codes shared by loading, validation and the CLI.
const (
	ErrCodeGeneric    = "E001" // Generic/unknown error
	ErrCodeScanError  = "E002" // Directory scan error
	ErrCodeNoFiles    = "E003" // No library files found
	ErrCodeLoadFailed = "E004" // File read or decode failed
	ErrCodeNotFound   = "E005" // Path not found

	ErrCodeMissingURI      = "E201" // Library without uri
	ErrCodeDuplicateURI    = "E202" // Same library defined twice
	ErrCodeDuplicateName   = "E203" // Same declaration name twice in a library
	ErrCodeInvalidDecl     = "E204" // Declaration cannot be built
	ErrCodeUnknownLocalRef = "E205" // Reference to an undeclared local type
	ErrCodeSupertypeCycle  = "E206" // Declaration that is its own supertype
)

// LoadError is a coded error raised while loading or validating libraries.
type LoadError struct {
	Code    string
	Message string
	File    string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	if e.File != "" {
		return fmt.Sprintf("%s: %s: %s", e.File, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// cueLoadError converts a CUE error, keeping the first position.
func cueLoadError(err error, file string) *LoadError {
	errs := cueerrors.Errors(err)
	if len(errs) > 0 {
		if pos := cueerrors.Positions(errs[0]); len(pos) > 0 {
			return &LoadError{Code: ErrCodeLoadFailed, Message: errs[0].Error(), File: file, Pos: pos[0]}
		}
	}
	return &LoadError{Code: ErrCodeLoadFailed, Message: err.Error(), File: file}
}
