// Package signature 实现 HTTP 请求的 EIP-191 个人签名与签名者恢复
//
// 规范消息为 "METHOD\nPATH\nTIMESTAMP\nKECCAK(BODY)"，
// 签名摘要为 accounts.TextHash(消息)，与钱包 personal_sign 一致。
package signature

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// 请求头
const (
	HeaderAddress   = "X-Social-Address"
	HeaderTimestamp = "X-Social-Timestamp"
	HeaderSignature = "X-Social-Signature"
)

// SignatureLength r+s+v
const SignatureLength = crypto.SignatureLength

// 错误定义
var (
	ErrInvalidSignature       = errors.New("无效的签名")
	ErrInvalidSignatureLength = errors.New("无效的签名长度")
	ErrInvalidRecoveryID      = errors.New("无效的恢复ID")
	ErrSignerMismatch         = errors.New("签名者与声明地址不一致")
)

// CanonicalMessage 构造待签名的规范消息
func CanonicalMessage(method, path string, timestamp int64, body []byte) []byte {
	var b strings.Builder
	b.WriteString(strings.ToUpper(method))
	b.WriteByte('\n')
	b.WriteString(path)
	b.WriteByte('\n')
	b.WriteString(strconv.FormatInt(timestamp, 10))
	b.WriteByte('\n')
	b.WriteString(crypto.Keccak256Hash(body).Hex())
	return []byte(b.String())
}

// Digest 规范消息的 EIP-191 摘要
func Digest(method, path string, timestamp int64, body []byte) []byte {
	return accounts.TextHash(CanonicalMessage(method, path, timestamp, body))
}

// SignRequest 对请求签名，返回 0x 前缀的 65 字节十六进制签名（v 为 27/28）
func SignRequest(key *ecdsa.PrivateKey, method, path string, timestamp int64, body []byte) (string, error) {
	sig, err := crypto.Sign(Digest(method, path, timestamp, body), key)
	if err != nil {
		return "", fmt.Errorf("请求签名失败: %w", err)
	}
	sig[crypto.RecoveryIDOffset] += 27
	return hexutil.Encode(sig), nil
}

// RecoverSigner 从签名中恢复签名者地址，v 接受 0/1 与 27/28
func RecoverSigner(method, path string, timestamp int64, body []byte, sigHex string) (common.Address, error) {
	sig, err := hexutil.Decode(sigHex)
	if err != nil {
		return common.Address{}, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	if len(sig) != SignatureLength {
		return common.Address{}, fmt.Errorf("%w: %d", ErrInvalidSignatureLength, len(sig))
	}

	v := sig[crypto.RecoveryIDOffset]
	if v >= 27 {
		v -= 27
	}
	if v > 1 {
		return common.Address{}, ErrInvalidRecoveryID
	}
	sig[crypto.RecoveryIDOffset] = v

	pub, err := crypto.SigToPub(Digest(method, path, timestamp, body), sig)
	if err != nil {
		return common.Address{}, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	return crypto.PubkeyToAddress(*pub), nil
}

// VerifyRequest 校验签名者是否为声明的地址
func VerifyRequest(claimed common.Address, method, path string, timestamp int64, body []byte, sigHex string) error {
	signer, err := RecoverSigner(method, path, timestamp, body, sigHex)
	if err != nil {
		return err
	}
	if signer != claimed {
		return fmt.Errorf("%w: 声明 %s, 实际 %s", ErrSignerMismatch, claimed.Hex(), signer.Hex())
	}
	return nil
}
