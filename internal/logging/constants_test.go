package logging

import (
	"testing"
)

func TestConstants(t *testing.T) {
	if FieldKey == "" {
		t.Error("FieldKey constant should not be empty")
	}
	if FieldCount == "" {
		t.Error("FieldCount constant should not be empty")
	}
	if FieldMigration == "" {
		t.Error("FieldMigration constant should not be empty")
	}
	if FieldRunID == "" {
		t.Error("FieldRunID constant should not be empty")
	}
}
