// SPDX-License-Identifier: MPL-2.0

package validate

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/runcfg/runcfg/pkg/cueutil"
	"github.com/runcfg/runcfg/pkg/record"
)

const schemaDefinition = "#RunConfig"

var (
	//go:embed record_schema.cue
	recordSchema string

	// ErrMissingKeys is the sentinel error wrapped by MissingKeyError and MissingKeysError.
	ErrMissingKeys = errors.New("missing required keys")

	// ErrSchema is returned when a record does not match the record schema.
	ErrSchema = errors.New("record does not match schema")
)

type (
	// Validator checks a record. requiredKeys lists top-level keys that must
	// be present; implementations may check more than that.
	Validator interface {
		Validate(rec *record.Record, requiredKeys []string) error
	}

	// KeysValidator requires every key in requiredKeys to be present.
	KeysValidator struct{}

	// SchemaValidator checks present fields against the record schema.
	// requiredKeys is ignored.
	SchemaValidator struct {
		// Filename names the record in error messages.
		Filename string
	}

	// Chain runs validators in order and returns the first error.
	Chain []Validator

	// MissingKeyError reports a single required key that is absent.
	MissingKeyError struct {
		Key string
	}

	// MissingKeysError aggregates every absent required key of one record.
	MissingKeysError struct {
		Keys []string
		errs *multierror.Error
	}
)

// Default returns the validator used when loading records. It checks
// required keys only, so any record Save accepts loads back unchanged.
func Default() Validator {
	return KeysValidator{}
}

// Strict checks required keys first, then the record schema.
func Strict(filename string) Validator {
	return Chain{KeysValidator{}, SchemaValidator{Filename: filename}}
}

// Validate implements Validator.
func (KeysValidator) Validate(rec *record.Record, requiredKeys []string) error {
	var (
		errs    *multierror.Error
		missing []string
	)
	for _, key := range requiredKeys {
		if rec != nil && rec.Has(key) {
			continue
		}
		missing = append(missing, key)
		errs = multierror.Append(errs, &MissingKeyError{Key: key})
	}
	if errs == nil {
		return nil
	}
	return &MissingKeysError{Keys: missing, errs: errs}
}

// Validate implements Validator.
func (v SchemaValidator) Validate(rec *record.Record, _ []string) error {
	if rec == nil {
		return fmt.Errorf("%w: nil record", ErrSchema)
	}
	data, err := rec.MarshalJSON()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSchema, err)
	}
	name := v.Filename
	if name == "" {
		name = "record"
	}
	// Records have no size limit.
	_, err = cueutil.Unify(recordSchema, data, schemaDefinition,
		cueutil.WithFilename(name),
		cueutil.WithMaxFileSize(0),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSchema, err)
	}
	return nil
}

// Validate implements Validator.
func (c Chain) Validate(rec *record.Record, requiredKeys []string) error {
	for _, v := range c {
		if err := v.Validate(rec, requiredKeys); err != nil {
			return err
		}
	}
	return nil
}

// Error implements the error interface.
func (e *MissingKeyError) Error() string {
	return fmt.Sprintf("missing required key %q", e.Key)
}

// Unwrap returns ErrMissingKeys for errors.Is() compatibility.
func (e *MissingKeyError) Unwrap() error { return ErrMissingKeys }

// Error implements the error interface.
func (e *MissingKeysError) Error() string {
	return fmt.Sprintf("%s: %s", ErrMissingKeys, strings.Join(e.Keys, ", "))
}

// Unwrap returns the individual *MissingKeyError values.
func (e *MissingKeysError) Unwrap() []error {
	if e.errs == nil {
		return []error{ErrMissingKeys}
	}
	return e.errs.WrappedErrors()
}
