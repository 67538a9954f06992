package domain

import "fmt"

// AppError is the base domain error type.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	Cause   error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error { return e.Cause }

// Standard domain error constructors.

func ErrNotFound(entity, id string) *AppError {
	return &AppError{Code: "NOT_FOUND", Message: fmt.Sprintf("%s %s not found", entity, id), Status: 404}
}

func ErrConflict(msg string) *AppError {
	return &AppError{Code: "CONFLICT", Message: msg, Status: 409}
}

func ErrValidation(msg string) *AppError {
	return &AppError{Code: "VALIDATION_ERROR", Message: msg, Status: 400}
}

func ErrUnauthorized(msg string) *AppError {
	return &AppError{Code: "UNAUTHORIZED", Message: msg, Status: 401}
}

func ErrForbidden(msg string) *AppError {
	return &AppError{Code: "FORBIDDEN", Message: msg, Status: 403}
}

func ErrInsufficientFunds() *AppError {
	return &AppError{Code: "INSUFFICIENT_FUNDS", Message: "insufficient wallet balance", Status: 400}
}

// ErrSlotUnavailable is returned when the conditional slot claim finds the
// slot already booked, whether at precondition time or at commit time.
func ErrSlotUnavailable(slotNumber int) *AppError {
	return &AppError{Code: "SLOT_UNAVAILABLE", Message: fmt.Sprintf("slot %d is already booked", slotNumber), Status: 409}
}

// ErrAlreadyRegistered is returned when the user already owns a slot in the
// tournament, detected either by pre-check or by the participant unique index.
func ErrAlreadyRegistered() *AppError {
	return &AppError{Code: "ALREADY_REGISTERED", Message: "user already registered in this tournament", Status: 409}
}

func ErrTournamentNotJoinable(status TournamentStatus) *AppError {
	return &AppError{Code: "TOURNAMENT_NOT_JOINABLE", Message: fmt.Sprintf("tournament with status %q is not open for booking", status), Status: 400}
}

func ErrInternal(msg string, cause error) *AppError {
	return &AppError{Code: "INTERNAL_ERROR", Message: msg, Status: 500, Cause: cause}
}
