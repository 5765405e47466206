package event

// 事件总线默认配置
const (
	defaultEnabled = true

	// defaultBufferSize 每个 websocket 订阅的推送缓冲区
	defaultBufferSize = 256
)
