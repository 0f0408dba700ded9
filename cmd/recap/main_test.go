package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckPeriodDays(t *testing.T) {
	tests := []struct {
		days    int
		wantErr bool
	}{
		{0, false},
		{1, false},
		{366, false},
		{367, true},
		{-1, true},
	}

	for _, tt := range tests {
		err := checkPeriodDays(tt.days)
		if tt.wantErr {
			assert.Error(t, err, "days=%d", tt.days)
		} else {
			assert.NoError(t, err, "days=%d", tt.days)
		}
	}
}
