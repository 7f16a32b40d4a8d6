package finance

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peopledesk/backend/internal/domain/shared"
)

func TestNewVendor(t *testing.T) {
	tenantID := uuid.New()

	v, err := NewVendor(tenantID, "vend-001", "Acme Supplies")
	require.NoError(t, err)
	assert.Equal(t, "VEND-001", v.Code)
	assert.Equal(t, VendorStatusActive, v.Status)
	assert.True(t, v.IsActive())
	assert.Len(t, v.GetDomainEvents(), 1)

	tests := []struct {
		name  string
		code  string
		vname string
	}{
		{"empty code", "", "Acme"},
		{"bad code", "v 1", "Acme"},
		{"empty name", "V1", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewVendor(tenantID, tt.code, tt.vname)
			assert.Error(t, err)
		})
	}
}

func TestVendorStatusTransitions(t *testing.T) {
	v, _ := NewVendor(uuid.New(), "V1", "Acme")

	assert.Error(t, v.Activate())

	require.NoError(t, v.Block())
	assert.True(t, v.IsBlocked())
	assert.Error(t, v.Block())

	require.NoError(t, v.Activate())
	assert.True(t, v.IsActive())

	require.NoError(t, v.Deactivate())
	assert.Error(t, v.Deactivate())
}

func TestVendorPaymentTerms(t *testing.T) {
	v, _ := NewVendor(uuid.New(), "V1", "Acme")

	require.NoError(t, v.SetPaymentTerms(30))
	assert.Equal(t, 30, v.CreditDays)

	err := v.SetPaymentTerms(-1)
	require.Error(t, err)
	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "INVALID_CREDIT_DAYS", de.Code)

	assert.Error(t, v.SetPaymentTerms(400))
}

func TestVendorBankInfo(t *testing.T) {
	v, _ := NewVendor(uuid.New(), "V1", "Acme")

	require.NoError(t, v.SetBankInfo("First National", "0001112223"))
	assert.Equal(t, "First National", v.BankName)
	assert.Equal(t, "0001112223", v.BankAccount)
}

func TestVendorContactValidation(t *testing.T) {
	v, _ := NewVendor(uuid.New(), "V1", "Acme")

	require.NoError(t, v.SetContact("Pat Doe", "+1 (555) 010-0100", "pat@acme.test"))

	err := v.SetContact("", "letters", "")
	require.Error(t, err)
	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "INVALID_PHONE", de.Code)

	assert.Error(t, v.SetContact("", "", "not-an-email"))
}
