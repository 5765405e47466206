package badger

// BadgerDB 默认配置
const (
	// defaultDataRoot 数据根目录，badger 数据位于 {data_root}/badger
	defaultDataRoot = "./data"

	// defaultInMemory 默认持久化到磁盘
	defaultInMemory = false

	// defaultSyncWrites 每次提交都 fsync，账本写入量小，优先保证一致性
	defaultSyncWrites = true

	// defaultMemTableSize 64MB
	defaultMemTableSize = 64 << 20

	// defaultValueLogFileSize 256MB
	defaultValueLogFileSize = 256 << 20

	// defaultCacheSize block/index 缓存 32MB
	defaultCacheSize = 32 << 20

	// inMemoryMemTableSize 内存模式使用更小的内存表
	inMemoryMemTableSize = 8 << 20
)
