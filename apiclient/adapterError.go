package apiclient

import (
	"errors"

	"github.com/agencyhub/marketing_backend/models"
)

// Wrap turns a provider failure into a *models.AdapterError; nil stays nil.
func Wrap(source string, op string, err error) error {
	if err == nil {
		return nil
	}
	var ae *models.AdapterError
	if errors.As(err, &ae) {
		return err
	}
	return models.NewAdapterError(source, op, err, Retryable(err))
}

// JoinSyncErrors folds the per-connection failures of one sync pass into a single AdapterError.
func JoinSyncErrors(source string, errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	retryable := false
	for _, err := range errs {
		var ae *models.AdapterError
		if errors.As(err, &ae) && ae.Retryable {
			retryable = true
		} else if Retryable(err) {
			retryable = true
		}
	}
	return models.NewAdapterError(source, "sync", errors.Join(errs...), retryable)
}
