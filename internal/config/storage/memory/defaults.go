package memory

import "time"

// 文档缓存（bigcache）默认配置
const (
	// defaultLifeWindow 文档按 CID 寻址不可变，条目可以长时间保留
	defaultLifeWindow = 24 * time.Hour

	defaultCleanWindow = 10 * time.Minute

	defaultShards = 64

	defaultMaxEntriesInWindow = 10000

	// defaultMaxEntrySize 单个文档预估大小（字节）
	defaultMaxEntrySize = 2048

	// defaultHardMaxCacheSize 上限 MB，0 表示不限制
	defaultHardMaxCacheSize = 128

	// minHardMaxCacheSize 小内存机器上的下限 MB
	minHardMaxCacheSize = 16
)
