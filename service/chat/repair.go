package chat

import "aintranet-backend/model"

// sequenceItem 修复算法只关心角色与调用 ID
type sequenceItem struct {
	role string
	// assistant 请求的调用 ID
	callIDs []string
	// tool 消息回应的调用 ID
	toolCallID string
}

func (it sequenceItem) requestsTools() bool {
	return it.role == model.RoleAssistant && len(it.callIDs) > 0
}

// incompleteToolSequences 返回需要移除的下标，按升序排列
//
// assistant 请求的每个调用 ID 都必须由紧随其后的连续 tool 消息覆盖，
// 否则该 assistant 消息与其后的部分 tool 消息一并移除。
// dropOrphans 为 true 时，不属于任何完整调用序列的 tool 消息也会被移除。
func incompleteToolSequences(items []sequenceItem, dropOrphans bool) []int {
	var drop []int

	i := 0
	for i < len(items) {
		item := items[i]

		if !item.requestsTools() {
			if dropOrphans && item.role == model.RoleTool {
				drop = append(drop, i)
			}
			i++
			continue
		}

		expected := make(map[string]struct{}, len(item.callIDs))
		for _, id := range item.callIDs {
			expected[id] = struct{}{}
		}

		found := make(map[string]struct{}, len(expected))
		var strays []int
		j := i + 1
		for j < len(items) && items[j].role == model.RoleTool {
			if _, ok := expected[items[j].toolCallID]; ok {
				found[items[j].toolCallID] = struct{}{}
			} else {
				strays = append(strays, j)
			}
			j++
		}

		if len(found) != len(expected) {
			for k := i; k < j; k++ {
				drop = append(drop, k)
			}
		} else if dropOrphans {
			drop = append(drop, strays...)
		}
		i = j
	}

	return drop
}

func callIDs(calls []model.ToolCall) []string {
	ids := make([]string, 0, len(calls))
	for _, call := range calls {
		ids = append(ids, call.ID)
	}
	return ids
}
