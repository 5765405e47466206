package badger

import (
	"bytes"
	"errors"
	"fmt"
	"sync/atomic"

	badgerdb "github.com/dgraph-io/badger/v3"
	"github.com/weisyn/socialmaker/pkg/interfaces/infrastructure/storage"
)

var _ storage.BadgerTransaction = (*Transaction)(nil)

// ErrReadOnly 只读事务中执行写操作
var ErrReadOnly = errors.New("只读事务不允许写入")

// TransactionState 事务状态
type TransactionState int32

const (
	// TxActive 活动
	TxActive TransactionState = iota
	// TxCommitted 已提交
	TxCommitted
	// TxDiscarded 已丢弃
	TxDiscarded
)

// Transaction 实现 BadgerTransaction 接口
type Transaction struct {
	txn      *badgerdb.Txn
	writable bool
	state    int32
}

func newTransaction(txn *badgerdb.Txn, writable bool) *Transaction {
	return &Transaction{txn: txn, writable: writable}
}

func (t *Transaction) getState() TransactionState {
	return TransactionState(atomic.LoadInt32(&t.state))
}

func (t *Transaction) checkActive() error {
	if t.getState() != TxActive {
		return fmt.Errorf("事务已关闭")
	}
	return nil
}

func (t *Transaction) checkWritable() error {
	if err := t.checkActive(); err != nil {
		return err
	}
	if !t.writable {
		return ErrReadOnly
	}
	return nil
}

// Get 获取值，键不存在返回 nil, nil
func (t *Transaction) Get(key []byte) ([]byte, error) {
	if err := t.checkActive(); err != nil {
		return nil, err
	}
	item, err := t.txn.Get(key)
	if err != nil {
		if errors.Is(err, badgerdb.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}
	val, err := item.ValueCopy(nil)
	if err != nil {
		return nil, fmt.Errorf("复制键值失败: %w", err)
	}
	return val, nil
}

// Set 写入键值对
func (t *Transaction) Set(key, value []byte) error {
	if err := t.checkWritable(); err != nil {
		return err
	}
	if err := t.txn.Set(key, value); err != nil {
		return fmt.Errorf("设置键值失败: %w", err)
	}
	return nil
}

// Delete 删除键
func (t *Transaction) Delete(key []byte) error {
	if err := t.checkWritable(); err != nil {
		return err
	}
	if err := t.txn.Delete(key); err != nil {
		return fmt.Errorf("删除键失败: %w", err)
	}
	return nil
}

// Exists 判断键是否存在
func (t *Transaction) Exists(key []byte) (bool, error) {
	if err := t.checkActive(); err != nil {
		return false, err
	}
	_, err := t.txn.Get(key)
	if err != nil {
		if errors.Is(err, badgerdb.ErrKeyNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Iterate 按键升序遍历前缀
func (t *Transaction) Iterate(prefix, seek []byte, fn func(key, value []byte) error) error {
	if err := t.checkActive(); err != nil {
		return err
	}

	opts := badgerdb.DefaultIteratorOptions
	opts.Prefix = prefix
	it := t.txn.NewIterator(opts)
	defer it.Close()

	start := prefix
	if len(seek) > 0 && bytes.Compare(seek, prefix) > 0 {
		start = seek
	}
	for it.Seek(start); it.ValidForPrefix(prefix); it.Next() {
		item := it.Item()
		key := item.KeyCopy(nil)
		value, err := item.ValueCopy(nil)
		if err != nil {
			return fmt.Errorf("读取键值失败: %w", err)
		}
		if err := fn(key, value); err != nil {
			if errors.Is(err, storage.ErrStopIteration) {
				return nil
			}
			return err
		}
	}
	return nil
}

func (t *Transaction) commit() error {
	if !atomic.CompareAndSwapInt32(&t.state, int32(TxActive), int32(TxCommitted)) {
		return fmt.Errorf("事务已关闭")
	}
	return t.txn.Commit()
}

// discard 提交后调用也安全
func (t *Transaction) discard() {
	atomic.CompareAndSwapInt32(&t.state, int32(TxActive), int32(TxDiscarded))
	t.txn.Discard()
}
