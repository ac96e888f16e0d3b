package auth

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/edgepos/backend/internal/domain/shared"
)

// StaffRole identifies the capability tier of a staff account.
type StaffRole string

const (
	RoleCashier    StaffRole = "cashier"
	RoleSupervisor StaffRole = "supervisor"
	RoleManager    StaffRole = "manager"
)

// RoleCapabilities maps each role to the elevated operations it may approve.
// Base transaction entry is granted through the JWT capabilities claim; this
// map only covers operations that require a second-person PIN approval.
var RoleCapabilities = map[StaffRole][]string{
	RoleCashier: {},
	RoleSupervisor: {
		"bill.void",
		"refund.approve",
		"shift.variance.approve",
	},
	RoleManager: {
		"bill.void",
		"refund.approve",
		"shift.variance.approve",
		"session.force_close",
	},
}

// RoleHasCapability reports whether the role may approve the capability.
func RoleHasCapability(role StaffRole, capability string) bool {
	for _, c := range RoleCapabilities[role] {
		if c == capability {
			return true
		}
	}
	return false
}

// StaffAccount is a store employee who can sign in at a terminal and, for
// elevated roles, approve operations with a personal PIN.
type StaffAccount struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	StoreID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_staff_store_username"`
	Username    string    `gorm:"size:100;not null;uniqueIndex:uq_staff_store_username"`
	DisplayName string    `gorm:"size:200;not null"`
	Role        StaffRole `gorm:"size:50;not null"`
	PINHash     string    `gorm:"column:pin_hash;size:100;not null"`
	Active      bool      `gorm:"not null;default:true"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
}

// TableName returns the database table name
func (StaffAccount) TableName() string {
	return "staff_accounts"
}

// HashPIN produces a bcrypt hash for storage in a staff account.
func HashPIN(pin string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// PINApprovalVerifier resolves an approval PIN to the staff member who owns
// it, scoped to one store and one capability. PINs are entered without an
// accompanying identity, so candidates are narrowed by role and matched by
// hash comparison.
type PINApprovalVerifier struct {
	db *gorm.DB
}

// NewPINApprovalVerifier creates a PIN approval verifier backed by the
// staff_accounts table.
func NewPINApprovalVerifier(db *gorm.DB) *PINApprovalVerifier {
	return &PINApprovalVerifier{db: db}
}

// VerifyApprover checks the PIN against every active staff account in the
// store whose role carries the capability. It returns the matching staff ID
// and a masked rendering of the code for audit rows.
func (v *PINApprovalVerifier) VerifyApprover(ctx context.Context, storeID uuid.UUID, code string, capability string) (uuid.UUID, string, error) {
	if code == "" {
		return uuid.Nil, "", shared.NewAuthorizationError("APPROVAL_CODE_REQUIRED", "approval code is required")
	}

	roles := rolesWithCapability(capability)
	if len(roles) == 0 {
		return uuid.Nil, "", shared.NewAuthorizationError("UNKNOWN_CAPABILITY", "no role grants capability "+capability)
	}

	var candidates []StaffAccount
	err := v.db.WithContext(ctx).
		Where("store_id = ? AND active = ? AND role IN ?", storeID, true, roles).
		Find(&candidates).Error
	if err != nil {
		return uuid.Nil, "", err
	}

	for i := range candidates {
		if bcrypt.CompareHashAndPassword([]byte(candidates[i].PINHash), []byte(code)) == nil {
			return candidates[i].ID, MaskApprovalCode(code), nil
		}
	}

	return uuid.Nil, "", shared.NewAuthorizationError("APPROVAL_DENIED", "approval code not recognized for "+capability)
}

func rolesWithCapability(capability string) []StaffRole {
	var roles []StaffRole
	for _, role := range []StaffRole{RoleCashier, RoleSupervisor, RoleManager} {
		if RoleHasCapability(role, capability) {
			roles = append(roles, role)
		}
	}
	return roles
}

// MaskApprovalCode keeps only the trailing two characters of a code so audit
// rows never store the full PIN.
func MaskApprovalCode(code string) string {
	if len(code) <= 2 {
		return strings.Repeat("*", len(code))
	}
	return strings.Repeat("*", len(code)-2) + code[len(code)-2:]
}
