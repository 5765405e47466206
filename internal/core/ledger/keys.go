package ledger

import (
	"encoding/binary"

	"github.com/ethereum/go-ethereum/common"
)

// 键空间
//
//	s/<contract 20B>/<field>[/<part>...]  合约状态
//	log/<seq 8B BE>                       事件日志（JSON）
//	meta/seq                              最后一条日志序号
//	meta/nonce/<address 20B>              地址部署计数
var (
	prefixState = []byte("s/")
	prefixLog   = []byte("log/")
	keyLastSeq  = []byte("meta/seq")
	prefixNonce = []byte("meta/nonce/")
)

// StateKey 构造合约状态键
func StateKey(contract common.Address, field string, parts ...[]byte) []byte {
	size := len(prefixState) + common.AddressLength + 1 + len(field)
	for _, p := range parts {
		size += 1 + len(p)
	}

	key := make([]byte, 0, size)
	key = append(key, prefixState...)
	key = append(key, contract.Bytes()...)
	key = append(key, '/')
	key = append(key, field...)
	for _, p := range parts {
		key = append(key, '/')
		key = append(key, p...)
	}
	return key
}

func logKey(seq uint64) []byte {
	key := make([]byte, len(prefixLog)+8)
	copy(key, prefixLog)
	binary.BigEndian.PutUint64(key[len(prefixLog):], seq)
	return key
}

func nonceKey(addr common.Address) []byte {
	key := make([]byte, 0, len(prefixNonce)+common.AddressLength)
	key = append(key, prefixNonce...)
	return append(key, addr.Bytes()...)
}

func encodeUint64(v uint64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, v)
	return buf
}

func decodeUint64(b []byte) uint64 {
	if len(b) != 8 {
		return 0
	}
	return binary.BigEndian.Uint64(b)
}
