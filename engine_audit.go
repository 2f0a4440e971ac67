package goCred

import (
	"context"
	"errors"
)

const (
	auditEventRegister             = "register"
	auditEventAuthenticate         = "authenticate"
	auditEventLockout              = "lockout"
	auditEventRehash               = "password_rehash"
	auditEventChangePassword       = "password_change"
	auditEventPasswordResetRequest = "password_reset_request"
	auditEventPasswordResetConfirm = "password_reset_confirm"
	auditEventUnlock               = "unlock"
)

// AuditErrorCode is the stable value of AuditEvent.Error. Raw error strings
// never reach a sink.
type AuditErrorCode string

const (
	auditErrAccountLocked  AuditErrorCode = "account_locked"
	auditErrPasswordPolicy AuditErrorCode = "password_policy"
	auditErrCorruptHash    AuditErrorCode = "corrupt_hash"
	auditErrTokenExpired   AuditErrorCode = "token_expired"
	auditErrTokenMismatch  AuditErrorCode = "token_mismatch"
	auditErrInvalidToken   AuditErrorCode = "invalid_token"
	auditErrRateLimited    AuditErrorCode = "rate_limited"
	auditErrNotFound       AuditErrorCode = "not_found"
	auditErrDuplicate      AuditErrorCode = "duplicate"
	auditErrConflict       AuditErrorCode = "conflict"
	auditErrDisabled       AuditErrorCode = "disabled"
	auditErrUnavailable    AuditErrorCode = "backend_unavailable"
	auditErrInternal       AuditErrorCode = "internal_error"
)

func (e *Engine) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	recordID string,
	err error,
	metadataBuilder func() map[string]string,
) {
	if e == nil || e.audit == nil {
		return
	}

	var metadata map[string]string
	if metadataBuilder != nil {
		metadata = metadataBuilder()
	}

	event := AuditEvent{
		Timestamp: e.now().UTC(),
		EventType: eventType,
		RecordID:  recordID,
		IP:        clientIPFromContext(ctx),
		Success:   success,
		Metadata:  metadata,
	}
	if code := auditErrorCode(err); code != "" {
		event.Error = string(code)
	}

	e.audit.Emit(ctx, event)
}

func auditErrorCode(err error) AuditErrorCode {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, ErrAccountLocked):
		return auditErrAccountLocked
	case errors.Is(err, ErrWeakSecret):
		return auditErrPasswordPolicy
	case errors.Is(err, ErrCorruptHash):
		return auditErrCorruptHash
	case errors.Is(err, ErrTokenExpired):
		return auditErrTokenExpired
	case errors.Is(err, ErrTokenMismatch):
		return auditErrTokenMismatch
	case errors.Is(err, ErrPasswordResetInvalid),
		errors.Is(err, ErrInvalidRecordID):
		return auditErrInvalidToken
	case errors.Is(err, ErrAuthRateLimited),
		errors.Is(err, ErrRegistrationRateLimited),
		errors.Is(err, ErrPasswordResetRateLimited):
		return auditErrRateLimited
	case errors.Is(err, ErrNotFound):
		return auditErrNotFound
	case errors.Is(err, ErrAlreadyExists):
		return auditErrDuplicate
	case errors.Is(err, ErrConflict):
		return auditErrConflict
	case errors.Is(err, ErrPasswordResetDisabled):
		return auditErrDisabled
	case errors.Is(err, ErrStoreUnavailable),
		errors.Is(err, ErrAuthUnavailable),
		errors.Is(err, ErrRegistrationUnavailable),
		errors.Is(err, ErrPasswordResetUnavailable),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return auditErrUnavailable
	default:
		return auditErrInternal
	}
}

