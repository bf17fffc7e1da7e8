package topic

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTopicSegments(t *testing.T) {
	assert.Equal(t, []string{"search", "request"}, Topic("search.request").Segments())
	assert.Equal(t, []string{"single"}, Topic("single").Segments())
	assert.Nil(t, Topic("").Segments())
}

func TestTopicBase(t *testing.T) {
	assert.Equal(t, "error", Topic("message.error").Base())
	assert.Equal(t, "single", Topic("single").Base())
}

func TestTopicIsValid(t *testing.T) {
	tests := []struct {
		topic Topic
		valid bool
	}{
		{"search.request", true},
		{"single", true},
		{"message.*", true},
		{"", false},
		{".leading", false},
		{"trailing.", false},
		{"double..dot", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.topic), func(t *testing.T) {
			assert.Equal(t, tt.valid, tt.topic.IsValid())
		})
	}
}

func TestTopicMatches(t *testing.T) {
	tests := []struct {
		topic   Topic
		pattern Topic
		want    bool
	}{
		{"search.request", "search.request", true},
		{"search.request", "search.*", true},
		{"search.request", "*.request", true},
		{"search.request", "search", false},
		{"search.request", "search.request.extra", false},
		{"message.error", "**", true},
		{"message.error", "message.**", true},
		{"message", "message.**", true},
		{"a.b.c.d", "a.**.d", true},
		{"a.b.c.d", "a.*.d", false},
		{"config.changed", "message.*", false},
		{"message.warning", "**.warning", true},
		{"search.request", "**.request.**", true},
		{"search.request", "search.**.**", true},
		{"", "**", true},
	}

	for _, tt := range tests {
		t.Run(string(tt.topic)+"~"+string(tt.pattern), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.topic.Matches(tt.pattern))
		})
	}
}

func TestJoinAndWildcard(t *testing.T) {
	assert.Equal(t, Topic("message.error"), Join("message", "error"))
	assert.True(t, Topic("message.*").IsWildcard())
	assert.False(t, Topic("message.error").IsWildcard())
}
