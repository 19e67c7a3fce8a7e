package compliance

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/de-tools/sec-atlas/pkg/models/domain"
	"github.com/de-tools/sec-atlas/pkg/models/store"
)

func TestFixRLS(t *testing.T) {
	ctx := context.Background()

	t.Run("requires table and connection string", func(t *testing.T) {
		svc := newTestService(nil, nil, nil, false)

		_, err := svc.FixRLS(ctx, validCreds, "")
		var invalid *domain.InvalidInputError
		require.ErrorAs(t, err, &invalid)

		creds := validCreds
		creds.DBURL = ""
		_, err = svc.FixRLS(ctx, creds, "orders")
		require.ErrorAs(t, err, &invalid)
	})

	t.Run("existing policies skip the placeholder", func(t *testing.T) {
		pgStore := new(mockPGStore)
		pgStore.On("EnableRLS", ctx, "orders").Return(false, nil)
		pgStore.On("Close").Return(nil)
		svc := newTestService(nil, nil, openerFor(pgStore, nil), false)

		fix, err := svc.FixRLS(ctx, validCreds, "orders")

		require.NoError(t, err)
		assert.Equal(t, "orders", fix.Table)
		assert.Contains(t, fix.Message, "existing policies were kept")
		pgStore.AssertExpectations(t)
	})

	t.Run("empty table gets the placeholder policy", func(t *testing.T) {
		pgStore := new(mockPGStore)
		pgStore.On("EnableRLS", ctx, "orders").Return(true, nil)
		pgStore.On("Close").Return(nil)
		svc := newTestService(nil, nil, openerFor(pgStore, nil), false)

		fix, err := svc.FixRLS(ctx, validCreds, "orders")

		require.NoError(t, err)
		assert.Contains(t, fix.Message, "placeholder policy")
	})

	t.Run("records an audit event", func(t *testing.T) {
		pgStore := new(mockPGStore)
		pgStore.On("EnableRLS", ctx, "orders").Return(false, nil)
		pgStore.On("Close").Return(nil)
		recorder := &captureRecorder{}
		svc := NewService(Dependencies{
			OpenStore: openerFor(pgStore, nil),
			Audit:     recorder,
		})

		_, err := svc.FixRLS(ctx, validCreds, "orders")

		require.NoError(t, err)
		assert.Equal(t, []string{"rls_fix"}, recorder.events)
	})

	t.Run("opens the store with the supplied connection string", func(t *testing.T) {
		pgStore := new(mockPGStore)
		pgStore.On("EnableRLS", ctx, "orders").Return(false, nil)
		pgStore.On("Close").Return(nil)
		var dsnSeen string
		svc := newTestService(nil, nil, openerFor(pgStore, &dsnSeen), false)

		_, err := svc.FixRLS(ctx, validCreds, "orders")

		require.NoError(t, err)
		assert.Equal(t, validCreds.DBURL, dsnSeen)
	})
}

func TestFixMFA(t *testing.T) {
	ctx := context.Background()

	t.Run("requires userId", func(t *testing.T) {
		svc := newTestService(nil, nil, nil, false)

		_, err := svc.FixMFA(ctx, validCreds, "")

		var invalid *domain.InvalidInputError
		require.ErrorAs(t, err, &invalid)
	})

	t.Run("unknown user fails the precondition", func(t *testing.T) {
		auth := new(mockAuthAPI)
		auth.On("ListUsers", ctx, validCreds).Return([]store.AuthUser{
			{ID: "user-1", Email: "one@example.com"},
		}, nil)
		svc := newTestService(auth, nil, nil, false)

		_, err := svc.FixMFA(ctx, validCreds, "user-2")

		var precondition *domain.PreconditionError
		require.ErrorAs(t, err, &precondition)
		assert.Contains(t, precondition.Message, "not found")
		auth.AssertNotCalled(t, "SendRecovery")
	})

	t.Run("user without email fails the precondition", func(t *testing.T) {
		auth := new(mockAuthAPI)
		auth.On("ListUsers", ctx, validCreds).Return([]store.AuthUser{
			{ID: "user-1", Phone: "+15550100"},
		}, nil)
		svc := newTestService(auth, nil, nil, false)

		_, err := svc.FixMFA(ctx, validCreds, "user-1")

		var precondition *domain.PreconditionError
		require.ErrorAs(t, err, &precondition)
		assert.Contains(t, precondition.Message, "without an email")
		auth.AssertNotCalled(t, "SendRecovery")
	})

	t.Run("sends a recovery email with the mfa-setup redirect", func(t *testing.T) {
		auth := new(mockAuthAPI)
		auth.On("ListUsers", ctx, validCreds).Return([]store.AuthUser{
			{ID: "user-1", Email: "one@example.com"},
		}, nil)
		auth.On("SendRecovery", ctx, validCreds, "one@example.com",
			"https://abcd1234.supabase.co/?next=mfa-setup").Return(nil)
		svc := newTestService(auth, nil, nil, false)

		fix, err := svc.FixMFA(ctx, validCreds, "user-1")

		require.NoError(t, err)
		assert.Equal(t, "user-1", fix.UserID)
		assert.Equal(t, "one@example.com", fix.Email)
		assert.Contains(t, fix.Message, "FAILING")
		auth.AssertExpectations(t)
	})
}

func TestFixPITR(t *testing.T) {
	ctx := context.Background()

	t.Run("refuses to run without the management token", func(t *testing.T) {
		mgmt := new(mockMgmtAPI)
		svc := newTestService(nil, mgmt, nil, false)

		_, err := svc.FixPITR(ctx, validCreds, "abcd1234")

		var notConfigured *domain.NotConfiguredError
		require.ErrorAs(t, err, &notConfigured)
		mgmt.AssertNotCalled(t, "ListAddons")
	})

	t.Run("already enabled returns success without a mutation", func(t *testing.T) {
		mgmt := new(mockMgmtAPI)
		mgmt.On("ListAddons", ctx, "abcd1234").Return([]store.Addon{
			{Type: "pitr", Variant: "pitr_7"},
		}, nil)
		svc := newTestService(nil, mgmt, nil, true)

		fix, err := svc.FixPITR(ctx, validCreds, "abcd1234")

		require.NoError(t, err)
		assert.Contains(t, fix.Message, "already enabled")
		mgmt.AssertNotCalled(t, "EnablePITR")
	})

	t.Run("enables recovery with the default retention window", func(t *testing.T) {
		mgmt := new(mockMgmtAPI)
		mgmt.On("ListAddons", ctx, "abcd1234").Return([]store.Addon{}, nil)
		mgmt.On("EnablePITR", ctx, "abcd1234", "pitr_7").Return(nil)
		svc := newTestService(nil, mgmt, nil, true)

		fix, err := svc.FixPITR(ctx, validCreds, "abcd1234")

		require.NoError(t, err)
		assert.Equal(t, "abcd1234", fix.ProjectRef)
		assert.Contains(t, fix.Message, "7 day retention")
		mgmt.AssertExpectations(t)
	})
}
