package staff_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"

	staff "github.com/goliatone/go-staff"
	"github.com/goliatone/go-staff/auth"
	"github.com/goliatone/go-staff/store/storetest"
)

func TestRepositoryManager(t *testing.T) {
	m := staff.NewRepositoryManager(storetest.NewDB(t), "salt")
	require.NoError(t, m.Validate())
	assert.NotPanics(t, m.MustValidate)

	assert.NotNil(t, m.Employees())
	assert.NotNil(t, m.Registry())
	assert.NotNil(t, m.LeaveRequests())
	assert.NotNil(t, m.Reports())
	assert.NotNil(t, m.Purchases())
	assert.NotNil(t, m.Checklists())
	assert.NotNil(t, m.ActivityLogs())
}

func TestRepositoryManagerRunInTxRollsBack(t *testing.T) {
	m := staff.NewRepositoryManager(storetest.NewDB(t), "salt")
	ctx := context.Background()
	boom := errors.New("boom")

	id, err := auth.NewEmployeeID(101)
	require.NoError(t, err)

	err = m.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		_, err := m.Employees().CreateTx(ctx, tx, &auth.Employee{
			ID:             id,
			EmployeeNumber: 101,
			FullName:       "Tx Rollback",
			Role:           auth.RoleEmployee,
			Status:         auth.EmployeeActive,
		})
		require.NoError(t, err)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = m.Employees().GetByID(ctx, id)
	assert.ErrorIs(t, err, auth.ErrEmployeeNotFound)
}
