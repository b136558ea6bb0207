package handlers

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryUpdatesAppliesDeactivation(t *testing.T) {
	inactive := false
	empty := ""
	req := updateCategoryRequest{IsActive: &inactive, Description: &empty}

	updates := req.updates()
	require.Len(t, updates, 2)
	assert.Equal(t, false, updates["is_active"])
	assert.Equal(t, "", updates["description"])
}

func TestCategoryUpdatesSkipsAbsentFields(t *testing.T) {
	name := "Dry Cleaning"
	req := updateCategoryRequest{Name: &name}

	updates := req.updates()
	require.Len(t, updates, 1)
	assert.Equal(t, "Dry Cleaning", updates["name"])
	assert.NotContains(t, updates, "is_active")
	assert.NotContains(t, updates, "cat_id")
}

func TestCategoryUpdatesEmptyRequestIsNoop(t *testing.T) {
	assert.Empty(t, updateCategoryRequest{}.updates())
}

func TestServiceUpdatesAppliesDeactivationAndZeroRate(t *testing.T) {
	inactive := false
	rate := decimal.Zero
	req := updateServiceRequest{IsActive: &inactive, Rate1: &rate}

	updates := req.updates()
	require.Len(t, updates, 2)
	assert.Equal(t, false, updates["is_active"])
	assert.True(t, updates["rate1"].(decimal.Decimal).IsZero())
}

func TestServiceUpdatesSkipsAbsentFields(t *testing.T) {
	stype := "express"
	categoryID := uint(3)
	req := updateServiceRequest{ServiceType: &stype, CategoryID: &categoryID}

	updates := req.updates()
	require.Len(t, updates, 2)
	assert.Equal(t, "express", updates["service_type"])
	assert.Equal(t, uint(3), updates["category_id"])
	assert.NotContains(t, updates, "s_no")
	assert.NotContains(t, updates, "is_active")
}
