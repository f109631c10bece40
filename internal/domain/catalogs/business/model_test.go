package business

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"facturador/internal/core/apperror"
)

func TestNewBusinessDefaults(t *testing.T) {
	b := NewBusiness("0992877878001", "Comercial Andina S.A.")

	assert.Equal(t, "0992877878001", b.RUC())
	assert.Equal(t, EnvTest, b.Environment)
	assert.Equal(t, OnboardingDraft, b.OnboardingStatus)
	assert.False(t, b.IsReady())
	require.NoError(t, b.Validate(context.Background()))
}

func TestBusinessValidate(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		mutate  func(*Business)
		wantErr bool
	}{
		{"valid", func(b *Business) {}, false},
		{"ruc too short", func(b *Business) { b.Code = "099287787" }, true},
		{"ruc with letters", func(b *Business) { b.Code = "09928X7878001" }, true},
		{"legal name too short", func(b *Business) { b.Name = "AB" }, true},
		{"unknown environment", func(b *Business) { b.Environment = "STAGING" }, true},
		{"prod environment", func(b *Business) { b.Environment = EnvProd }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBusiness("0992877878001", "Comercial Andina S.A.")
			tt.mutate(b)

			err := b.Validate(ctx)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			appErr, ok := apperror.AsAppError(err)
			require.True(t, ok)
			assert.Equal(t, apperror.CodeValidation, appErr.Code)
		})
	}
}
