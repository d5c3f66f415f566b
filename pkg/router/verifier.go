package router

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"math"
	"strconv"
	"time"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
)

// Verifier authorizes an instruction on behalf of its requester.
type Verifier interface {
	Verify(instruction Instruction) error
}

// SigningHash is sha256 of the normalized instruction with its signature removed.
func SigningHash(instruction Instruction) ([32]byte, error) {
	normalized, err := NormalizeInstruction(instruction)
	if err != nil {
		return [32]byte{}, err
	}
	normalized.Signature = ""

	canonical, err := json.Marshal(normalized)
	if err != nil {
		return [32]byte{}, err
	}
	return sha256.Sum256(canonical), nil
}

// SignInstruction returns instruction with a BIP-340 signature by privateKey.
// The requester must be the key's x-only public key.
func SignInstruction(privateKey *btcec.PrivateKey, instruction Instruction) (Instruction, error) {
	digest, err := SigningHash(instruction)
	if err != nil {
		return Instruction{}, err
	}
	signature, err := schnorr.Sign(privateKey, digest[:])
	if err != nil {
		return Instruction{}, err
	}

	signed, err := NormalizeInstruction(instruction)
	if err != nil {
		return Instruction{}, err
	}
	signed.Signature = hex.EncodeToString(signature.Serialize())
	return signed, nil
}

// DefaultSignatureLifetime caps "exp" when SchnorrVerifier.MaxLifetime is zero.
const DefaultSignatureLifetime = 15 * time.Minute

// SchnorrVerifier checks BIP-340 signatures made by the requester. Signed
// airdrops must carry "exp"; claims may omit it since the claim marker already
// stops a second claim. Within its lifetime a signed airdrop can be replayed.
type SchnorrVerifier struct {
	// Now defaults to time.Now.
	Now func() time.Time

	// MaxLifetime bounds how far ahead of Now "exp" may be.
	MaxLifetime time.Duration
}

func (verifier SchnorrVerifier) Verify(instruction Instruction) error {
	normalized, err := NormalizeInstruction(instruction)
	if err != nil {
		return err
	}
	if normalized.Requester == "" {
		return NewInvalidSignatureError("requester is required")
	}
	if normalized.Signature == "" {
		return NewInvalidSignatureError("sig is required")
	}

	decoded, err := decode(normalized)
	if err != nil {
		return NewInvalidSignatureError(err.Error())
	}
	publicKey, err := schnorr.ParsePubKey(decoded.requester[:])
	if err != nil {
		return NewInvalidSignatureError("requester is not a secp256k1 x-only key")
	}
	signatureBytes, err := hex.DecodeString(normalized.Signature)
	if err != nil {
		return NewInvalidSignatureError("sig must be hex")
	}
	signature, err := schnorr.ParseSignature(signatureBytes)
	if err != nil {
		return NewInvalidSignatureError(err.Error())
	}

	digest, err := SigningHash(normalized)
	if err != nil {
		return err
	}
	if !signature.Verify(digest[:], publicKey) {
		return NewInvalidSignatureError("signature does not match requester")
	}
	return verifier.checkExpiry(normalized)
}

func (verifier SchnorrVerifier) checkExpiry(instruction Instruction) error {
	if instruction.Expires == "" {
		if instruction.Operation == OperationAirdrop {
			return NewInvalidSignatureError("exp is required for signed airdrops")
		}
		return nil
	}

	seconds, err := strconv.ParseUint(instruction.Expires, 10, 64)
	if err != nil || seconds > math.MaxInt64 {
		return NewInvalidSignatureError("exp is not a unix time")
	}
	expires := time.Unix(int64(seconds), 0)

	now := time.Now()
	if verifier.Now != nil {
		now = verifier.Now()
	}
	lifetime := verifier.MaxLifetime
	if lifetime <= 0 {
		lifetime = DefaultSignatureLifetime
	}

	if !now.Before(expires) {
		return NewInvalidSignatureError("instruction expired")
	}
	if expires.After(now.Add(lifetime)) {
		return NewInvalidSignatureError("exp is too far in the future")
	}
	return nil
}
