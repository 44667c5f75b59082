// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package idmapper

import (
	"context"
	"fmt"
	"strings"

	"github.com/linuxfoundation/lfx-v2-meeting-sync/internal/domain"
	"github.com/linuxfoundation/lfx-v2-meeting-sync/internal/domain/models"
)

// Identifier fields a caller can be known to Zoom by.
const (
	FieldEmail    = "email"
	FieldUsername = "username"
	FieldIDNumber = "idnumber"
)

// FieldMapper resolves a caller to one configured profile field.
type FieldMapper struct {
	field string
}

var _ domain.IdentityService = (*FieldMapper)(nil)

// NewFieldMapper returns a mapper for field. An empty field means email.
func NewFieldMapper(field string) (*FieldMapper, error) {
	field = strings.ToLower(strings.TrimSpace(field))
	switch field {
	case "":
		field = FieldEmail
	case FieldEmail, FieldUsername, FieldIDNumber:
	default:
		return nil, domain.NewValidationError(fmt.Sprintf("unsupported identifier field %q", field))
	}
	return &FieldMapper{field: field}, nil
}

// Field returns the configured identifier field.
func (m *FieldMapper) Field() string {
	return m.field
}

// ExternalIdentifier returns the caller's value of the configured field.
func (m *FieldMapper) ExternalIdentifier(ctx context.Context, caller models.Caller) (string, error) {
	var value string
	switch m.field {
	case FieldUsername:
		value = caller.Username
	case FieldIDNumber:
		value = caller.IDNumber
	default:
		value = caller.Email
	}

	value = strings.TrimSpace(value)
	if value == "" {
		return "", domain.NewValidationError(fmt.Sprintf("caller %s has no %s", caller.UserID, m.field))
	}
	return value, nil
}
