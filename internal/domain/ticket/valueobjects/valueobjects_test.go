package valueobjects

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTicketStatus(t *testing.T) {
	tests := []struct {
		input   string
		want    TicketStatus
		wantErr bool
	}{
		{input: "open", want: StatusOpen},
		{input: "in-progress", want: StatusInProgress},
		{input: "in progress", want: StatusInProgress},
		{input: " Resolved ", want: StatusResolved},
		{input: "closed", wantErr: true},
		{input: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := NewTicketStatus(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTicketStatus_LegacyInProgress(t *testing.T) {
	legacy := TicketStatus("in progress")
	assert.True(t, legacy.IsInProgress())
	assert.True(t, legacy.IsActive())
	assert.False(t, legacy.IsValid())
}

func TestNewPriority(t *testing.T) {
	p, err := NewPriority("")
	require.NoError(t, err)
	assert.Equal(t, PriorityMedium, p)

	p, err = NewPriority("HIGH")
	require.NoError(t, err)
	assert.Equal(t, PriorityHigh, p)

	_, err = NewPriority("urgent")
	assert.Error(t, err)
}
