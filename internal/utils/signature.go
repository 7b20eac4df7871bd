package utils

import (
	"crypto/ecdsa"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// SessionMessage is the personal-sign message binding a wallet to a transaction session.
func SessionMessage(sessionID string, action string) string {
	return fmt.Sprintf("I confirm the %s transaction of IDO session %s", action, sessionID)
}

// RecoverAddress recovers the signer of a personal-sign signature over message.
func RecoverAddress(signature, message string) (common.Address, error) {
	if !strings.HasPrefix(signature, "0x") {
		return common.Address{}, fmt.Errorf("signature must start with 0x")
	}
	if len(strings.TrimPrefix(signature, "0x")) != 130 { // 65 bytes * 2 hex chars = 130
		return common.Address{}, fmt.Errorf("signature must be 65 bytes (130 hex characters)")
	}

	sigData, err := hexutil.Decode(signature)
	if err != nil {
		return common.Address{}, fmt.Errorf("failed to decode signature: %w", err)
	}

	messageHash := accounts.TextHash([]byte(message))

	// go-ethereum expects v to be 0 or 1, wallets return 27 or 28
	if sigData[64] >= 27 {
		sigData[64] -= 27
	}

	publicKey, err := crypto.SigToPub(messageHash, sigData)
	if err != nil {
		return common.Address{}, fmt.Errorf("failed to recover public key: %w", err)
	}

	return crypto.PubkeyToAddress(*publicKey), nil
}

// VerifyPersonalSignature verifies that a signature was created for the given message by the given address.
func VerifyPersonalSignature(message string, signature string, signerAddress string) (bool, error) {
	if message == "" {
		return false, fmt.Errorf("message cannot be empty")
	}
	if signature == "" {
		return false, fmt.Errorf("signature cannot be empty")
	}
	if !common.IsHexAddress(signerAddress) {
		return false, fmt.Errorf("invalid signer address format: %s", signerAddress)
	}

	recovered, err := RecoverAddress(signature, message)
	if err != nil {
		return false, fmt.Errorf("failed to recover address from signature: %w", err)
	}

	return recovered == common.HexToAddress(signerAddress), nil
}

func personalSign(message string, privateKey *ecdsa.PrivateKey) (string, error) {
	if privateKey == nil {
		return "", fmt.Errorf("private key cannot be nil")
	}
	if message == "" {
		return "", fmt.Errorf("message cannot be empty")
	}

	signature, err := crypto.Sign(accounts.TextHash([]byte(message)), privateKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign message: %w", err)
	}

	return "0x" + hex.EncodeToString(signature), nil
}

// PersonalSignFromHex signs a message using a private key provided as a hex string.
func PersonalSignFromHex(message string, privateKeyHex string) (string, error) {
	if privateKeyHex == "" {
		return "", fmt.Errorf("private key hex cannot be empty")
	}

	privateKey, err := crypto.HexToECDSA(strings.TrimPrefix(privateKeyHex, "0x"))
	if err != nil {
		return "", fmt.Errorf("failed to parse private key: %w", err)
	}

	return personalSign(message, privateKey)
}
