package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMigrateArgs(t *testing.T) {
	assert.NoError(t, migrateCmd.Args(migrateCmd, []string{"up"}))
	assert.NoError(t, migrateCmd.Args(migrateCmd, []string{"down"}))
	assert.Error(t, migrateCmd.Args(migrateCmd, []string{"sideways"}))
	assert.Error(t, migrateCmd.Args(migrateCmd, nil))
	assert.Error(t, migrateCmd.Args(migrateCmd, []string{"up", "down"}))
}
