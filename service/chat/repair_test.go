package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func assistantItem(ids ...string) sequenceItem {
	return sequenceItem{role: "assistant", callIDs: ids}
}

func toolItem(id string) sequenceItem {
	return sequenceItem{role: "tool", toolCallID: id}
}

func TestIncompleteToolSequences(t *testing.T) {
	user := sequenceItem{role: "user"}
	answer := sequenceItem{role: "assistant"}

	tests := []struct {
		name        string
		items       []sequenceItem
		dropOrphans bool
		want        []int
	}{
		{
			name:  "empty",
			items: nil,
		},
		{
			name:  "complete sequence",
			items: []sequenceItem{user, assistantItem("a", "b"), toolItem("b"), toolItem("a"), answer},
		},
		{
			name:  "partial results",
			items: []sequenceItem{user, answer, user, assistantItem("a", "b"), toolItem("a")},
			want:  []int{3, 4},
		},
		{
			name:  "no results at all",
			items: []sequenceItem{user, assistantItem("call_1")},
			want:  []int{1},
		},
		{
			name:  "results interrupted by user turn",
			items: []sequenceItem{user, assistantItem("a", "b"), toolItem("a"), user, toolItem("b")},
			want:  []int{1, 2},
		},
		{
			name:  "orphan tool kept by store",
			items: []sequenceItem{toolItem("x"), user, answer},
		},
		{
			name:        "orphan tool dropped by formatter",
			items:       []sequenceItem{toolItem("x"), user, answer},
			dropOrphans: true,
			want:        []int{0},
		},
		{
			name:        "stray result inside complete block",
			items:       []sequenceItem{user, assistantItem("a"), toolItem("a"), toolItem("zzz"), answer},
			dropOrphans: true,
			want:        []int{3},
		},
		{
			name:  "several broken blocks",
			items: []sequenceItem{assistantItem("a"), user, assistantItem("b"), toolItem("b"), assistantItem("c", "d"), toolItem("d")},
			want:  []int{0, 4, 5},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, incompleteToolSequences(tt.items, tt.dropOrphans))
		})
	}
}
