package auth

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/edgepos/backend/internal/domain/shared"
)

func newMockApprovalVerifier(t *testing.T) (*PINApprovalVerifier, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewPINApprovalVerifier(gormDB), mock, mockDB
}

func staffRows(accounts ...StaffAccount) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{"id", "store_id", "username", "display_name", "role", "pin_hash", "active", "created_at", "updated_at"})
	for _, a := range accounts {
		rows.AddRow(a.ID, a.StoreID, a.Username, a.DisplayName, a.Role, a.PINHash, a.Active, time.Now(), time.Now())
	}
	return rows
}

func TestRoleHasCapability(t *testing.T) {
	assert.True(t, RoleHasCapability(RoleSupervisor, "bill.void"))
	assert.True(t, RoleHasCapability(RoleSupervisor, "refund.approve"))
	assert.False(t, RoleHasCapability(RoleSupervisor, "session.force_close"))
	assert.True(t, RoleHasCapability(RoleManager, "session.force_close"))
	assert.False(t, RoleHasCapability(RoleCashier, "bill.void"))
}

func TestMaskApprovalCode(t *testing.T) {
	assert.Equal(t, "****56", MaskApprovalCode("123456"))
	assert.Equal(t, "**34", MaskApprovalCode("1234"))
	assert.Equal(t, "**", MaskApprovalCode("12"))
	assert.Equal(t, "", MaskApprovalCode(""))
}

func TestVerifyApprover_Success(t *testing.T) {
	verifier, mock, mockDB := newMockApprovalVerifier(t)
	defer mockDB.Close()

	storeID := uuid.New()
	approverID := uuid.New()

	hash, err := HashPIN("123456")
	require.NoError(t, err)

	supervisor := StaffAccount{
		ID:          approverID,
		StoreID:     storeID,
		Username:    "supervisor1",
		DisplayName: "Floor Supervisor",
		Role:        RoleSupervisor,
		PINHash:     hash,
		Active:      true,
	}

	mock.ExpectQuery(`SELECT \* FROM "staff_accounts" WHERE store_id = \$1 AND active = \$2 AND role IN \(\$3,\$4\)`).
		WithArgs(storeID, true, string(RoleSupervisor), string(RoleManager)).
		WillReturnRows(staffRows(supervisor))

	id, masked, err := verifier.VerifyApprover(context.Background(), storeID, "123456", "bill.void")

	require.NoError(t, err)
	assert.Equal(t, approverID, id)
	assert.Equal(t, "****56", masked)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVerifyApprover_WrongPIN(t *testing.T) {
	verifier, mock, mockDB := newMockApprovalVerifier(t)
	defer mockDB.Close()

	storeID := uuid.New()

	hash, err := HashPIN("123456")
	require.NoError(t, err)

	supervisor := StaffAccount{
		ID:      uuid.New(),
		StoreID: storeID,
		Role:    RoleSupervisor,
		PINHash: hash,
		Active:  true,
	}

	mock.ExpectQuery(`SELECT \* FROM "staff_accounts"`).
		WillReturnRows(staffRows(supervisor))

	_, _, err = verifier.VerifyApprover(context.Background(), storeID, "654321", "bill.void")

	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, shared.KindAuthorization, domainErr.Kind)
	assert.Equal(t, "APPROVAL_DENIED", domainErr.Code)
}

func TestVerifyApprover_CapabilityBeyondRole(t *testing.T) {
	verifier, mock, mockDB := newMockApprovalVerifier(t)
	defer mockDB.Close()

	storeID := uuid.New()

	// A supervisor PIN exists but force_close only queries managers, so the
	// supervisor row never reaches the comparison.
	mock.ExpectQuery(`SELECT \* FROM "staff_accounts" WHERE store_id = \$1 AND active = \$2 AND role IN \(\$3\)`).
		WithArgs(storeID, true, string(RoleManager)).
		WillReturnRows(staffRows())

	_, _, err := verifier.VerifyApprover(context.Background(), storeID, "123456", "session.force_close")

	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "APPROVAL_DENIED", domainErr.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVerifyApprover_EmptyCode(t *testing.T) {
	verifier, _, mockDB := newMockApprovalVerifier(t)
	defer mockDB.Close()

	_, _, err := verifier.VerifyApprover(context.Background(), uuid.New(), "", "bill.void")

	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "APPROVAL_CODE_REQUIRED", domainErr.Code)
}

func TestVerifyApprover_UnknownCapability(t *testing.T) {
	verifier, _, mockDB := newMockApprovalVerifier(t)
	defer mockDB.Close()

	_, _, err := verifier.VerifyApprover(context.Background(), uuid.New(), "123456", "stock.adjust")

	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "UNKNOWN_CAPABILITY", domainErr.Code)
}

func TestHashPIN_RoundTrip(t *testing.T) {
	hash, err := HashPIN("8842")
	require.NoError(t, err)
	assert.NotEqual(t, "8842", hash)

	hash2, err := HashPIN("8842")
	require.NoError(t, err)
	assert.NotEqual(t, hash, hash2)
}
