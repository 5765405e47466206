package ledger

// defaultRegistryAddress 注册表合约地址，子合约地址由它加 nonce 派生
const defaultRegistryAddress = "0x50C1a15050C1a15050C1a15050C1a15050C1a150"
