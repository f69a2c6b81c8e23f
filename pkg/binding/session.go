package binding

import (
	"encoding/hex"
	"errors"
	"fmt"
	"sync"

	"signer-core/pkg/crypto_util"
	"signer-core/pkg/errno"
	"signer-core/pkg/keystore"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
)

// ErrUnbound 当前没有已绑定的设备会话
var ErrUnbound = errno.ErrUnboundCredential

var ErrInvalidBindingSignature = errors.New("binding: signature verification failed")

// Session 持有设备绑定密钥 (DeviceCredential)。
// 同一时刻只有一个有效密钥；签名时独占加锁，算完签名立刻释放，不跨 APDU 交互持有。
type Session struct {
	mu  sync.Mutex
	key *btcec.PrivateKey
}

// NewSession 创建一个未绑定的会话
func NewSession() *Session {
	return &Session{}
}

// Bind 安装绑定密钥 (绑定流程本身在外部完成)
func (s *Session) Bind(privKey []byte) error {
	if len(privKey) != btcec.PrivKeyBytesLen {
		return fmt.Errorf("binding: private key must be %d bytes, got %d", btcec.PrivKeyBytesLen, len(privKey))
	}
	key, _ := btcec.PrivKeyFromBytes(privKey)
	if key.Key.IsZero() {
		return errors.New("binding: private key is zero")
	}
	s.BindKey(key)
	return nil
}

// BindKey 同 Bind，直接传入私钥对象
func (s *Session) BindKey(key *btcec.PrivateKey) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.key = key
}

// Unbind 设备解绑或断开时调用
func (s *Session) Unbind() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.key = nil
}

func (s *Session) IsBound() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.key != nil
}

// PublicKey 返回绑定公钥，未绑定时返回 ErrUnbound
func (s *Session) PublicKey() (*btcec.PublicKey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.key == nil {
		return nil, ErrUnbound
	}
	return s.key.PubKey(), nil
}

// Sign 对 SHA256(data) 做 secp256k1 签名，返回 DER 编码
func (s *Session) Sign(data []byte) ([]byte, error) {
	hash := crypto_util.SHA256(data)

	s.mu.Lock()
	if s.key == nil {
		s.mu.Unlock()
		return nil, ErrUnbound
	}
	sig := ecdsa.Sign(s.key, hash[:])
	s.mu.Unlock()

	return sig.Serialize(), nil
}

// Verify 校验绑定签名，安全芯片 (模拟器) 侧使用
func Verify(pub *btcec.PublicKey, data, sigDER []byte) error {
	sig, err := ecdsa.ParseDERSignature(sigDER)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidBindingSignature, err)
	}
	hash := crypto_util.SHA256(data)
	if !sig.Verify(hash[:], pub) {
		return ErrInvalidBindingSignature
	}
	return nil
}

// GenerateKey 生成一个新的绑定密钥
func GenerateKey() (*btcec.PrivateKey, error) {
	return btcec.NewPrivateKey()
}

// SaveKey 把绑定密钥加密写入 keystore 文件
func SaveKey(key *btcec.PrivateKey, path, password string, light bool) error {
	encrypt := keystore.EncryptKey
	if light {
		encrypt = keystore.EncryptKeyLight
	}
	keyJSON, err := encrypt(key.Serialize(), password)
	if err != nil {
		return err
	}
	keyJSON.PublicKey = hex.EncodeToString(key.PubKey().SerializeCompressed())
	return keyJSON.SaveToFile(path)
}

// LoadSession 从 keystore 文件解密绑定密钥，返回已绑定的会话
func LoadSession(path, password string) (*Session, error) {
	keyJSON, err := keystore.LoadFromFile(path)
	if err != nil {
		return nil, err
	}
	raw, err := keystore.DecryptKey(keyJSON, password)
	if err != nil {
		return nil, err
	}

	s := NewSession()
	if err := s.Bind(raw); err != nil {
		return nil, err
	}
	return s, nil
}
