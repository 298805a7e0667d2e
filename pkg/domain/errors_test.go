package domain_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/aretw0/storefront/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestValidationError_Is(t *testing.T) {
	invalid := domain.Invalid("name", "Stream name is invalid")
	assert.ErrorIs(t, invalid, domain.ErrValidation)
	assert.NotErrorIs(t, invalid, domain.ErrMissingContext)

	missing := domain.Missing("stream.id", "Stream id is invalid")
	assert.ErrorIs(t, missing, domain.ErrValidation)
	assert.ErrorIs(t, missing, domain.ErrMissingContext)

	wrapped := fmt.Errorf("submit deleteStream: %w", missing)
	assert.ErrorIs(t, wrapped, domain.ErrMissingContext)
}

func TestNoticeOf(t *testing.T) {
	t.Run("validation message wins", func(t *testing.T) {
		err := fmt.Errorf("wrapped: %w", domain.Invalid("rating", "Rating is invalid"))
		assert.Equal(t, "Rating is invalid", domain.NoticeOf(err, "fallback"))
	})

	t.Run("notice error", func(t *testing.T) {
		err := &domain.UserFacingError{Err: domain.ErrBalanceMissing, Message: "Failed to update balance"}
		assert.Equal(t, "Failed to update balance", domain.NoticeOf(err, "fallback"))
		assert.ErrorIs(t, err, domain.ErrBalanceMissing)
	})

	t.Run("plain error uses fallback", func(t *testing.T) {
		assert.Equal(t, "fallback", domain.NoticeOf(errors.New("boom"), "fallback"))
		assert.Equal(t, "fallback", domain.NoticeOf(nil, "fallback"))
	})
}
