package ledger

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/weisyn/socialmaker/pkg/interfaces/infrastructure/storage"
	"github.com/weisyn/socialmaker/pkg/types"
)

// ErrReadOnlyCall 只读调用中尝试写状态或发出事件
var ErrReadOnlyCall = errors.New("只读调用不允许修改状态")

// presentMarker 双态关系 PRESENT 的存储值，ABSENT 即键不存在
var presentMarker = []byte{1}

// Tx 一次合约调用的执行上下文
// 所有写入与事件在 Execute 返回前要么一起提交，要么一起丢弃
type Tx struct {
	btx      storage.BadgerTransaction
	writable bool
	now      time.Time

	lastSeq uint64
	logs    []*types.LogEntry
}

func newTx(btx storage.BadgerTransaction, writable bool, now time.Time) (*Tx, error) {
	raw, err := btx.Get(keyLastSeq)
	if err != nil {
		return nil, fmt.Errorf("读取日志序号失败: %w", err)
	}
	return &Tx{
		btx:      btx,
		writable: writable,
		now:      now,
		lastSeq:  decodeUint64(raw),
	}, nil
}

// Now 调用时间，同一次调用内保持不变
func (t *Tx) Now() time.Time {
	return t.now
}

// Get 读取原始值，不存在返回 nil
func (t *Tx) Get(key []byte) ([]byte, error) {
	return t.btx.Get(key)
}

// Set 写入原始值
func (t *Tx) Set(key, value []byte) error {
	if !t.writable {
		return ErrReadOnlyCall
	}
	return t.btx.Set(key, value)
}

// Delete 删除键
func (t *Tx) Delete(key []byte) error {
	if !t.writable {
		return ErrReadOnlyCall
	}
	return t.btx.Delete(key)
}

// Has 键是否存在
func (t *Tx) Has(key []byte) (bool, error) {
	return t.btx.Exists(key)
}

// SetPresent 设置双态关系，present 为 false 时删除键
func (t *Tx) SetPresent(key []byte, present bool) error {
	if present {
		return t.Set(key, presentMarker)
	}
	return t.Delete(key)
}

// GetHash 读取 32 字节值，不存在返回零哈希
func (t *Tx) GetHash(key []byte) (common.Hash, error) {
	raw, err := t.Get(key)
	if err != nil {
		return common.Hash{}, err
	}
	return common.BytesToHash(raw), nil
}

// SetHash 写入 32 字节值，零哈希等同删除
func (t *Tx) SetHash(key []byte, value common.Hash) error {
	if value == (common.Hash{}) {
		return t.Delete(key)
	}
	return t.Set(key, value.Bytes())
}

// GetAddress 读取地址，不存在返回零地址
func (t *Tx) GetAddress(key []byte) (common.Address, error) {
	raw, err := t.Get(key)
	if err != nil {
		return common.Address{}, err
	}
	return common.BytesToAddress(raw), nil
}

// SetAddress 写入地址
func (t *Tx) SetAddress(key []byte, addr common.Address) error {
	return t.Set(key, addr.Bytes())
}

// GetJSON 读取 JSON 值，第二个返回值表示是否存在
func (t *Tx) GetJSON(key []byte, out interface{}) (bool, error) {
	raw, err := t.Get(key)
	if err != nil || raw == nil {
		return false, err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false, fmt.Errorf("解码状态失败: %w", err)
	}
	return true, nil
}

// SetJSON 写入 JSON 值
func (t *Tx) SetJSON(key []byte, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("编码状态失败: %w", err)
	}
	return t.Set(key, raw)
}

// NextNonce 返回地址当前的部署计数并加一
func (t *Tx) NextNonce(addr common.Address) (uint64, error) {
	raw, err := t.Get(nonceKey(addr))
	if err != nil {
		return 0, err
	}
	nonce := decodeUint64(raw)
	if err := t.Set(nonceKey(addr), encodeUint64(nonce+1)); err != nil {
		return 0, err
	}
	return nonce, nil
}

// Emit 追加一条事件日志，序号在同一次调用内连续分配
func (t *Tx) Emit(contract common.Address, name string, topics []common.Hash, data map[string]string) error {
	if !t.writable {
		return ErrReadOnlyCall
	}

	entry := &types.LogEntry{
		Seq:       t.lastSeq + 1,
		Contract:  contract,
		Name:      name,
		Topics:    topics,
		Data:      data,
		Timestamp: t.now,
	}
	raw, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("编码事件日志失败: %w", err)
	}
	if err := t.btx.Set(logKey(entry.Seq), raw); err != nil {
		return fmt.Errorf("写入事件日志失败: %w", err)
	}
	if err := t.btx.Set(keyLastSeq, encodeUint64(entry.Seq)); err != nil {
		return fmt.Errorf("更新日志序号失败: %w", err)
	}

	t.lastSeq = entry.Seq
	t.logs = append(t.logs, entry)
	return nil
}
