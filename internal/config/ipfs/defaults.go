package ipfs

import "time"

// IPFS 固定服务默认配置
const (
	defaultPinningURL = "https://api.pinata.cloud"
	defaultGatewayURL = "https://gateway.pinata.cloud/ipfs"
	defaultTimeout    = 10 * time.Second
	defaultMaxRetries = 3

	// defaultRetryBackoff 首次重试等待，之后指数增长
	defaultRetryBackoff = 200 * time.Millisecond
)
