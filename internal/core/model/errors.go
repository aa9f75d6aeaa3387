package model

import "fmt"

// ValidationError reports input rejected before any remote or storage call.
type ValidationError struct {
	Field   string
	Message string
}

func (err *ValidationError) Error() string {
	return err.Message
}

// AuthError reports an identity-provider rejection. Message is shown to the user as is.
type AuthError struct {
	Op      string
	Message string
	Err     error
}

func (err *AuthError) Error() string {
	if err.Message != "" {
		return err.Message
	}
	if err.Err != nil {
		return err.Err.Error()
	}
	return err.Op + " failed"
}

func (err *AuthError) Unwrap() error {
	return err.Err
}

// StorageError reports a local storage read or write failure.
type StorageError struct {
	Op  string
	Key string
	Err error
}

func (err *StorageError) Error() string {
	return fmt.Sprintf("storage %s %q: %v", err.Op, err.Key, err.Err)
}

func (err *StorageError) Unwrap() error {
	return err.Err
}
