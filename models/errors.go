package models

import (
	"context"
	"errors"
	"fmt"

	"github.com/agencyhub/marketing_backend/utils"
	mysqlDriver "github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

// NotFoundError is returned when an agency or a referenced connection is absent.
type NotFoundError struct {
	Resource string
	Id       any
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %v not found", e.Resource, e.Id)
}

type AlreadyExistsError struct {
	Resource string
	Key      string
}

func (e *AlreadyExistsError) Error() string {
	return fmt.Sprintf("%s %q already exists", e.Resource, e.Key)
}

// AdapterError wraps a failure of one external source.
type AdapterError struct {
	Source    string
	Op        string
	Err       error
	Retryable bool
}

func (e *AdapterError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Source, e.Op, e.Err)
}

func (e *AdapterError) Unwrap() error {
	return e.Err
}

func NewAdapterError(source string, op string, err error, retryable bool) *AdapterError {
	return &AdapterError{Source: source, Op: op, Err: err, Retryable: retryable}
}

func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

func IsAlreadyExists(err error) bool {
	var ae *AlreadyExistsError
	return errors.As(err, &ae)
}

func isDuplicateKeyErr(err error) bool {
	var mysqlErr *mysqlDriver.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == 1062
	}
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

// notFoundOr maps gorm.ErrRecordNotFound to NotFoundError and passes other errors through.
func notFoundOr(err error, resource string, id any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &NotFoundError{Resource: resource, Id: id}
	}
	return err
}

// fetchOwned loads one row of the agency, reporting a miss as NotFoundError.
func fetchOwned[T any](ctx context.Context, agencyId int, id int, resource string, associations ...string) (*T, error) {
	result, err := utils.FetchModel[T](ctx, agencyId, id, associations...)
	if errors.Is(err, utils.ErrorRecordNotFound) {
		return nil, &NotFoundError{Resource: resource, Id: id}
	}
	return result, err
}

// InputError is a caller mistake such as a missing field or an unsupported provider.
type InputError struct {
	Message string
}

func (e *InputError) Error() string {
	return e.Message
}

func invalidInput(msg string) error {
	return &InputError{Message: msg}
}

func IsInputError(err error) bool {
	var ie *InputError
	return errors.As(err, &ie)
}
