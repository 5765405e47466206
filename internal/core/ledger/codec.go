package ledger

import (
	"encoding/json"
	"fmt"

	"github.com/weisyn/socialmaker/pkg/types"
)

func decodeLog(raw []byte) (*types.LogEntry, error) {
	var entry types.LogEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, fmt.Errorf("解码事件日志失败: %w", err)
	}
	return &entry, nil
}
