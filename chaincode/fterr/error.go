package fterr

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	CodeAlreadyInitialized         = "AlreadyInitialized"
	CodeNotInitialized             = "NotInitialized"
	CodeInvalidMetadata            = "InvalidMetadata"
	CodeInsufficientStorageDeposit = "InsufficientStorageDeposit"
	CodeNotRegistered              = "NotRegistered"
	CodeReceiverNotRegistered      = "ReceiverNotRegistered"
	CodeNonZeroBalance             = "NonZeroBalance"
	CodeInsufficientBalance        = "InsufficientBalance"
	CodeMustBePositive             = "MustBePositive"
	CodeSelfTransfer               = "SelfTransfer"
	CodeUnauthorized               = "Unauthorized"
	CodeInvalidAccountId           = "InvalidAccountId"
	CodeInvalidAmount              = "InvalidAmount"
	CodeBalanceOverflow            = "BalanceOverflow"
	CodeStorageWithdrawExceeded    = "StorageWithdrawExceeded"
	CodeTransferNotFound           = "TransferNotFound"
	CodeAlreadyMinter              = "AlreadyMinter"
	CodeMinterNotFound             = "MinterNotFound"
	CodeBridgeNotConfigured        = "BridgeNotConfigured"
	CodeExternalBalanceExceeded    = "ExternalBalanceExceeded"
	CodeInternal                   = "Internal"
)

// FTError is the error returned by every contract entry point. Two FTErrors
// match under errors.Is when their codes are equal, so the package level
// sentinels can be compared against errors carrying extra detail.
type FTError struct {
	StatusCode  int
	Code        string
	Message     string
	internalErr error
}

func (e *FTError) Error() string {
	return fmt.Sprintf("%s: %s, status code:%d", e.Code, e.Message, e.StatusCode)
}

func (e *FTError) FullError() string {
	return fmt.Sprintf("%s: %s, status code:%d, internal err: %v", e.Code, e.Message, e.StatusCode, e.internalErr)
}

func (e *FTError) Unwrap() error {
	return e.internalErr
}

func (e *FTError) Is(target error) bool {
	t, ok := target.(*FTError)
	return ok && t.Code == e.Code
}

// Withf returns a copy of e with the formatted detail appended to its message.
func (e *FTError) Withf(format string, args ...interface{}) *FTError {
	return &FTError{
		StatusCode:  e.StatusCode,
		Code:        e.Code,
		Message:     e.Message + ": " + fmt.Sprintf(format, args...),
		internalErr: e.internalErr,
	}
}

func New(code string, message string, statusCode int) *FTError {
	return &FTError{
		StatusCode: statusCode,
		Code:       code,
		Message:    message,
	}
}

func NewInternalError(err error, message string, statusCode int) *FTError {
	return &FTError{
		StatusCode:  statusCode,
		Code:        CodeInternal,
		Message:     message,
		internalErr: err,
	}
}

// CodeOf returns the code of the first FTError in err's chain, or "" if none.
func CodeOf(err error) string {
	var fe *FTError
	if errors.As(err, &fe) {
		return fe.Code
	}
	return ""
}

var (
	ErrAlreadyInitialized         = New(CodeAlreadyInitialized, "contract is already initialized", http.StatusConflict)
	ErrNotInitialized             = New(CodeNotInitialized, "contract is not initialized, call New or NewDefaultMeta first", http.StatusPreconditionFailed)
	ErrInvalidMetadata            = New(CodeInvalidMetadata, "invalid fungible token metadata", http.StatusBadRequest)
	ErrInsufficientStorageDeposit = New(CodeInsufficientStorageDeposit, "attached deposit does not cover the storage cost", http.StatusPaymentRequired)
	ErrNotRegistered              = New(CodeNotRegistered, "account is not registered", http.StatusNotFound)
	ErrReceiverNotRegistered      = New(CodeReceiverNotRegistered, "receiver account is not registered", http.StatusNotFound)
	ErrNonZeroBalance             = New(CodeNonZeroBalance, "cannot unregister an account with a positive balance without force", http.StatusBadRequest)
	ErrInsufficientBalance        = New(CodeInsufficientBalance, "insufficient balance", http.StatusBadRequest)
	ErrMustBePositive             = New(CodeMustBePositive, "amount must be positive", http.StatusBadRequest)
	ErrSelfTransfer               = New(CodeSelfTransfer, "sender and receiver should be different", http.StatusBadRequest)
	ErrUnauthorized               = New(CodeUnauthorized, "caller is not allowed to perform this action", http.StatusUnauthorized)
	ErrInvalidAccountId           = New(CodeInvalidAccountId, "invalid account id", http.StatusBadRequest)
	ErrInvalidAmount              = New(CodeInvalidAmount, "invalid amount, expected a base-10 unsigned 128-bit integer", http.StatusBadRequest)
	ErrBalanceOverflow            = New(CodeBalanceOverflow, "balance overflow", http.StatusBadRequest)
	ErrStorageWithdrawExceeded    = New(CodeStorageWithdrawExceeded, "the amount is greater than the available storage balance", http.StatusBadRequest)
	ErrTransferNotFound           = New(CodeTransferNotFound, "pending transfer not found", http.StatusNotFound)
	ErrAlreadyMinter              = New(CodeAlreadyMinter, "account is already a minter", http.StatusBadRequest)
	ErrMinterNotFound             = New(CodeMinterNotFound, "account is not a minter", http.StatusNotFound)
	ErrBridgeNotConfigured        = New(CodeBridgeNotConfigured, "external balance validation is not configured", http.StatusNotImplemented)
	ErrExternalBalanceExceeded    = New(CodeExternalBalanceExceeded, "amount exceeds the validated external balance", http.StatusBadRequest)
)

func ErrFailedToGetState(err error, key string) *FTError {
	return NewInternalError(err, fmt.Sprintf("failed to get state for key %q", key), http.StatusInternalServerError)
}

func ErrFailedToPutState(err error, key string) *FTError {
	return NewInternalError(err, fmt.Sprintf("failed to put state for key %q", key), http.StatusInternalServerError)
}

func ErrFailedToDelState(err error, key string) *FTError {
	return NewInternalError(err, fmt.Sprintf("failed to delete state for key %q", key), http.StatusInternalServerError)
}

func ErrCorruptedState(err error, key string) *FTError {
	return NewInternalError(err, fmt.Sprintf("corrupted state under key %q", key), http.StatusInternalServerError)
}
