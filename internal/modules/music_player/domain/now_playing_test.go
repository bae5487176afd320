package domain

import (
	"testing"

	"github.com/disgoorg/snowflake/v2"
	"github.com/stretchr/testify/assert"
)

func TestDecideNowPlayingAction(t *testing.T) {
	existing := NewNowPlayingMessage(snowflake.ID(1), snowflake.ID(2))

	tests := []struct {
		name     string
		existing *NowPlayingMessage
		newer    bool
		want     NowPlayingAction
	}{
		{name: "no message sends", existing: nil, newer: false, want: NowPlayingSend},
		{name: "no message ignores newer flag", existing: nil, newer: true, want: NowPlayingSend},
		{name: "newest message is edited", existing: &existing, newer: false, want: NowPlayingEdit},
		{name: "buried message is replaced", existing: &existing, newer: true, want: NowPlayingReplace},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DecideNowPlayingAction(tt.existing, tt.newer))
		})
	}
}
