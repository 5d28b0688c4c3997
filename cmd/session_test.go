package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWaitAttempts(t *testing.T) {
	tests := []struct {
		name     string
		wait     time.Duration
		expected int
	}{
		{name: "shorter_than_interval", wait: 3 * time.Second, expected: 1},
		{name: "one_nanosecond", wait: time.Nanosecond, expected: 1},
		{name: "exact_multiple", wait: 10 * time.Second, expected: 2},
		{name: "rounds_up", wait: 11 * time.Second, expected: 3},
		{name: "two_minutes", wait: 2 * time.Minute, expected: 24},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, waitAttempts(tt.wait, waitInterval))
		})
	}
}
