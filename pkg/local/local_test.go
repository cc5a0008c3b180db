package local

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTextSetFallsBackToDefault(t *testing.T) {
	set := NewSet("Hello, %s", NewTrans(Rus, "Привет, %s"))

	assert.Equal(t, "Hello, Ada", set.Format(Eng, "Ada"))
	assert.Equal(t, "Привет, Ada", set.Format(Rus, "Ada"))
	assert.Equal(t, "Hello, %s", set.Text(Eng))
	assert.Equal(t, "Hello, Ada", set.DefaultFormat("Ada"))
}

func TestParseLanguage(t *testing.T) {
	tests := []struct {
		header string
		want   Language
	}{
		{"", Eng},
		{"ru-RU,ru;q=0.9,en;q=0.8", Rus},
		{"en-US,en;q=0.9", Eng},
		{"de-DE,ru;q=0.5", Eng},
		{" , RU", Rus},
	}
	for _, tt := range tests {
		t.Run(
			tt.header, func(t *testing.T) {
				assert.Equal(t, tt.want, ParseLanguage(tt.header))
			},
		)
	}
}
