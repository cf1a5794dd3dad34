package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsTuzemoonActive(t *testing.T) {
	now := time.Now()
	future := now.Add(time.Hour)
	past := now.Add(-time.Hour)

	tests := []struct {
		name string
		meme Meme
		want bool
	}{
		{name: "featured with future window", meme: Meme{IsFeatured: true, TuzemoonUntil: &future}, want: true},
		{name: "featured with expired window", meme: Meme{IsFeatured: true, TuzemoonUntil: &past}, want: false},
		{name: "featured without window", meme: Meme{IsFeatured: true}, want: false},
		{name: "not featured", meme: Meme{TuzemoonUntil: &future}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.meme.IsTuzemoonActive(now))
		})
	}
}
