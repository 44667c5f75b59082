// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package domain

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetErrorType(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorType
	}{
		{"validation", NewValidationError("bad"), ErrorTypeValidation},
		{"wrapped not found", fmt.Errorf("ctx: %w", NewRemoteNotFoundError("gone", 3001)), ErrorTypeNotFound},
		{"credential", NewCredentialError("missing client id"), ErrorTypeCredential},
		{"scope", NewInsufficientScopeError([]string{"meeting:read:admin"}), ErrorTypeInsufficientScope},
		{"quota", NewQuotaExhaustedError("limit", 429, time.Now()), ErrorTypeQuotaExhausted},
		{"plain error", errors.New("boom"), ErrorTypeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetErrorType(tt.err))
		})
	}
}

func TestDomainError_ErrorAndUnwrap(t *testing.T) {
	cause := errors.New("connection reset by peer")
	err := NewConnectionError("zoom request failed", cause)

	assert.Equal(t, "zoom request failed: connection reset by peer", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "plain", NewRemoteError("plain", 500, 0).Error())
}

func TestIsMeetingGone(t *testing.T) {
	assert.True(t, IsMeetingGone(NewRemoteNotFoundError("Meeting does not exist", ProviderCodeMeetingNotFound)))
	assert.True(t, IsMeetingGone(NewRemoteNotFoundError("User does not exist", ProviderCodeUserNotFound)))
	assert.True(t, IsMeetingGone(NewBadRequestError("Invalid user", ProviderCodeInvalidUser)))
	assert.False(t, IsMeetingGone(NewRemoteNotFoundError("Registrant not found", 3043)))
	assert.False(t, IsMeetingGone(nil))
}

func TestIsFatal(t *testing.T) {
	assert.True(t, IsFatal(NewCredentialError("x")))
	assert.True(t, IsFatal(NewInsufficientScopeError(nil)))
	assert.True(t, IsFatal(NewQuotaExhaustedError("x", 0, time.Time{})))
	assert.False(t, IsFatal(NewConnectionError("x")))
	assert.False(t, IsFatal(nil))
}

func TestErrorTypeString(t *testing.T) {
	assert.Equal(t, "quota_exhausted", ErrorTypeQuotaExhausted.String())
	assert.Equal(t, "error_type(99)", ErrorType(99).String())
}
