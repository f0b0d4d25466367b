package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSyncedFlagRoundTrip(t *testing.T) {
	order := &Order{ID: 1}

	assert.False(t, order.IsSynced())
	order.MarkSynced()
	assert.True(t, order.IsSynced())
	assert.Equal(t, SyncedFlagValue, order.MetaValue(MetaSyncedFlag))
}

func TestIsSyncedIgnoresOtherFlagValues(t *testing.T) {
	order := &Order{Meta: map[string]string{MetaSyncedFlag: "no"}}

	assert.False(t, order.IsSynced())
}

func TestIsPaid(t *testing.T) {
	order := &Order{}
	assert.False(t, order.IsPaid())

	paid := time.Now()
	order.DatePaid = &paid
	assert.True(t, order.IsPaid())
}

func TestFormattedBillingFullName(t *testing.T) {
	order := &Order{Billing: Address{FirstName: "Ivan", LastName: "Petrenko"}}
	assert.Equal(t, "Ivan Petrenko", order.FormattedBillingFullName())

	order = &Order{Billing: Address{FirstName: "Ivan"}}
	assert.Equal(t, "Ivan", order.FormattedBillingFullName())

	order = &Order{}
	assert.Empty(t, order.FormattedBillingFullName())
}

func TestShippingMethodTitle(t *testing.T) {
	order := &Order{}
	assert.Nil(t, order.FirstShippingLine())
	assert.Empty(t, order.ShippingMethodTitle())

	order.ShippingLines = []ShippingLine{
		{InstanceID: 7, MethodTitle: "Nova Poshta"},
		{InstanceID: 9, MethodTitle: "Courier"},
	}
	assert.Equal(t, "Nova Poshta", order.ShippingMethodTitle())
}

func TestAddNote(t *testing.T) {
	order := &Order{}
	order.AddNote("first")
	order.AddNote("second")

	assert.Len(t, order.Notes, 2)
	assert.Equal(t, "first", order.Notes[0].Text)
	assert.False(t, order.Notes[0].CreatedAt.IsZero())
}
