// Package erc7201 derives namespaced storage slot identifiers as defined
// by ERC-7201: a pseudo-random 256-bit slot is computed from a
// human-readable namespace id, offset by one, and its low byte zeroed so
// the slot stays aligned for structs.
package erc7201

import (
	"encoding/hex"
	"math/big"
	"strings"

	"golang.org/x/crypto/sha3"
)

var two256 = new(big.Int).Lsh(big.NewInt(1), 256)

// ExpectedID returns the canonical namespace id for a contract:
// "<prefix>.<contractName>", or just the contract name when the prefix is
// empty.
func ExpectedID(prefix, contractName string) string {
	if prefix == "" {
		return contractName
	}
	return prefix + "." + contractName
}

// SlotHash implements the ERC-7201 slot formula
//
//	keccak256(abi.encode(uint256(keccak256(id)) - 1)) & ~bytes32(uint256(0xff))
//
// and returns it as "0x" followed by 64 lowercase hex digits.
func SlotHash(namespaceID string) string {
	inner := keccak256([]byte(namespaceID))

	n := new(big.Int).SetBytes(inner)
	n.Sub(n, big.NewInt(1))
	n.Mod(n, two256) // wraps the (theoretical) zero-hash underflow

	// abi.encode(uint256) is the 32-byte big-endian representation.
	encoded := make([]byte, 32)
	n.FillBytes(encoded)

	outer := keccak256(encoded)
	outer[31] = 0

	return "0x" + hex.EncodeToString(outer)
}

// FormulaComment renders the canonical derivation formula the way it is
// conventionally transcribed in a comment above the slot constant.
func FormulaComment(namespaceID string) string {
	return `keccak256(abi.encode(uint256(keccak256("` + namespaceID + `")) - 1)) & ~bytes32(uint256(0xff))`
}

// AnnotationText renders the canonical struct annotation for a namespace id.
func AnnotationText(namespaceID string) string {
	return "@custom:storage-location erc7201:" + namespaceID
}

// NormalizeHex lowercases a hex literal for comparison, keeping the 0x prefix.
func NormalizeHex(s string) string {
	return strings.ToLower(s)
}

func keccak256(data []byte) []byte {
	h := sha3.NewLegacyKeccak256()
	h.Write(data)
	return h.Sum(nil)
}
