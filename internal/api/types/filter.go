package types

import (
	"net/url"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/weisyn/socialmaker/internal/core/social/content"
	"github.com/weisyn/socialmaker/pkg/types"
)

// ParseLogFilter 从查询参数解析日志过滤条件
// contract、name、topic 可重复；topic 接受地址、CID 或 32 字节十六进制
func ParseLogFilter(q url.Values) (types.LogFilter, error) {
	var filter types.LogFilter
	for _, s := range q["contract"] {
		if !common.IsHexAddress(s) {
			return filter, BadRequest(CodeInvalidAddress, "invalid contract address: "+s)
		}
		filter.Contracts = append(filter.Contracts, common.HexToAddress(s))
	}
	filter.Names = append(filter.Names, q["name"]...)
	for _, s := range q["topic"] {
		topic, err := ParseTopic(s)
		if err != nil {
			return filter, err
		}
		filter.Topics = append(filter.Topics, topic)
	}

	var err error
	if filter.FromSeq, err = parseUint(q, "from_seq"); err != nil {
		return filter, err
	}
	if filter.ToSeq, err = parseUint(q, "to_seq"); err != nil {
		return filter, err
	}
	limit, err := parseUint(q, "limit")
	if err != nil {
		return filter, err
	}
	filter.Limit = int(limit)
	return filter, nil
}

// ParseTopic 地址按索引主题左补零，否则按内容指针解析
func ParseTopic(s string) (common.Hash, error) {
	if common.IsHexAddress(s) {
		return types.AddressTopic(common.HexToAddress(s)), nil
	}
	h, err := content.Parse(s)
	if err != nil {
		return common.Hash{}, BadRequest(CodeInvalidCID, "invalid topic: "+s)
	}
	return h, nil
}

func parseUint(q url.Values, name string) (uint64, error) {
	raw := q.Get(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, BadRequest(CodeCommonValidationError, "invalid "+name+": "+raw)
	}
	return v, nil
}
