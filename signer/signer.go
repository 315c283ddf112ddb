// Copyright (C) 2025, Nuru AI. All rights reserved.
// See the file LICENSE for licensing terms.

// Package signer presents the threshold-signing façade: deterministic
// per-principal address derivation and transaction signing. In production
// this is a committee of nodes running a threshold-Schnorr protocol under a
// shared key name — github.com/luxfi/threshold/pkg/party identifies
// committee members in that deployment. A live, N-of-N distributed keygen
// is not reproducible by construction, which conflicts with this package's
// bit-exact, deterministic derivation contract, so the reference
// implementation here holds one root scalar (as if the committee had
// already completed its one-time DKG and combined it) and derives children
// from it with real curve arithmetic. See DESIGN.md for the full rationale.
package signer

import (
	"crypto/ed25519"
	"crypto/sha512"
	"errors"

	"filippo.io/edwards25519"
	"github.com/luxfi/threshold/pkg/party"

	"github.com/nuru-ai/ckalgo-bridge/principal"
)

// NodeID identifies one committee member in the deployed threshold-signing
// subsystem. The bridge core never talks to nodes directly — it only
// records which committee produced a given root key, for operational
// bookkeeping.
type NodeID = party.ID

// Derivation path constants fixed for this deployment.
var (
	pathChain    = []byte("algorand")
	pathDeployed = []byte("sippar")
)

// Failure modes surfaced by the signer without retry (the caller retries).
var (
	ErrSignerUnavailable = errors.New("signer_unavailable")
	ErrRejected          = errors.New("rejected")
	ErrCyclesExhausted   = errors.New("cycles_exhausted")
	ErrEmptyCommittee    = errors.New("committee must have at least one member")
)

// DerivedKey is the result of deriving a per-principal address.
type DerivedKey struct {
	Address   string
	PublicKey []byte // 32 bytes
}

// SignedPayload is the result of a signing request.
type SignedPayload struct {
	Signature []byte // 64 bytes, RFC 8032 Ed25519
	TxIDHint  string
}

// Signer is the façade the bridge consumes. Implementations must be
// deterministic for DeriveAddress: the same principal always yields the
// same address for the life of the deployment's root key.
type Signer interface {
	DeriveAddress(p principal.Principal) (DerivedKey, error)
	Sign(p principal.Principal, payload []byte) (SignedPayload, error)

	// DeriveLegacyAddress and SignLegacy use the migration derivation path
	// (raw principal bytes rather than the 4-byte hash) for historical
	// addresses. They must remain supported indefinitely.
	DeriveLegacyAddress(p principal.Principal) (DerivedKey, error)
	SignLegacy(p principal.Principal, payload []byte) (SignedPayload, error)
}

// ThresholdSigner is the reference implementation of Signer. It models a
// committee that has already run DKG once for a named root key and holds
// the combined scalar for deterministic, reproducible child derivation.
type ThresholdSigner struct {
	keyName   string
	root      edwards25519.Scalar
	rootPub   edwards25519.Point
	committee []NodeID
}

// New constructs a ThresholdSigner from a 32-byte root seed (as if recovered
// from the committee's one-time combined secret) and the committee that
// holds shares of it. A resharing among the same committee, or a rotation
// to a new one, does not change the combined key or any derived address —
// the committee list is recorded for operational bookkeeping (who to page
// when the signer is unavailable, who must participate in the next
// resharing), not mixed into derivation. New rejects an empty committee: a
// root key with no custodian is not a deployable configuration.
func New(keyName string, rootSeed [32]byte, committee []NodeID) (*ThresholdSigner, error) {
	if len(committee) == 0 {
		return nil, ErrEmptyCommittee
	}

	wide := sha512.Sum512(rootSeed[:])
	var scalar edwards25519.Scalar
	if _, err := scalar.SetUniformBytes(wide[:]); err != nil {
		return nil, err
	}
	var pub edwards25519.Point
	pub.ScalarBaseMult(&scalar)

	return &ThresholdSigner{
		keyName:   keyName,
		root:      scalar,
		rootPub:   pub,
		committee: committee,
	}, nil
}

// Committee returns the current committee membership, for status and
// observability surfaces (e.g. reporting who must be reachable for the next
// resharing). Callers must not mutate the returned slice.
func (s *ThresholdSigner) Committee() []NodeID {
	return s.committee
}

// deriveTweak computes the scalar tweak for a derivation path, domain
// separated by keyName so distinct deployments never collide.
func (s *ThresholdSigner) deriveTweak(path [][]byte) edwards25519.Scalar {
	h := sha512.New()
	h.Write([]byte(s.keyName))
	for _, component := range path {
		// length-prefix each component so ["ab","c"] != ["a","bc"]
		h.Write([]byte{byte(len(component))})
		h.Write(component)
	}
	sum := h.Sum(nil)
	var tweak edwards25519.Scalar
	tweak.SetUniformBytes(sum)
	return tweak
}

func (s *ThresholdSigner) derive(path [][]byte) (DerivedKey, edwards25519.Scalar) {
	tweak := s.deriveTweak(path)

	var childScalar edwards25519.Scalar
	childScalar.Add(&s.root, &tweak)

	var childPub edwards25519.Point
	childPub.ScalarBaseMult(&childScalar)

	address, err := EncodeAddress(childPub.Bytes())
	if err != nil {
		// Only possible if childPub.Bytes() is not 32 bytes, which never
		// happens for a compressed Edwards point.
		panic(err)
	}

	return DerivedKey{Address: address, PublicKey: childPub.Bytes()}, childScalar
}

// hashDerivationKey derives the 4-byte derivation key: SHA-256(P.bytes)[0:4].
func hashDerivationKey(p principal.Principal) []byte {
	sum := sha256Sum(p)
	return sum[:4]
}

func (s *ThresholdSigner) DeriveAddress(p principal.Principal) (DerivedKey, error) {
	key, _ := s.derive([][]byte{hashDerivationKey(p), pathChain, pathDeployed})
	return key, nil
}

func (s *ThresholdSigner) DeriveLegacyAddress(p principal.Principal) (DerivedKey, error) {
	key, _ := s.derive([][]byte{[]byte(p), pathChain, pathDeployed})
	return key, nil
}

// sign produces an RFC 8032-valid Ed25519 signature for childScalar over
// payload, verifiable with crypto/ed25519.Verify against the corresponding
// derived public key. The nonce is generated deterministically from a
// domain-separated hash of the root scalar and the derivation path, playing
// the role of RFC 8032's private "prefix" half.
func (s *ThresholdSigner) sign(path [][]byte, payload []byte) (SignedPayload, error) {
	key, childScalar := s.derive(path)

	nonceSeed := sha512.New()
	nonceSeed.Write(s.root.Bytes())
	for _, c := range path {
		nonceSeed.Write([]byte{byte(len(c))})
		nonceSeed.Write(c)
	}
	nonceSeed.Write([]byte("nonce"))
	nonceSeed.Write(payload)
	r := sha512.Sum512(nonceSeed.Sum(nil))
	var rScalar edwards25519.Scalar
	if _, err := rScalar.SetUniformBytes(r[:]); err != nil {
		return SignedPayload{}, err
	}

	var R edwards25519.Point
	R.ScalarBaseMult(&rScalar)

	challengeHash := sha512.New()
	challengeHash.Write(R.Bytes())
	challengeHash.Write(key.PublicKey)
	challengeHash.Write(payload)
	cSum := challengeHash.Sum(nil)
	var c edwards25519.Scalar
	if _, err := c.SetUniformBytes(cSum); err != nil {
		return SignedPayload{}, err
	}

	var sScalar edwards25519.Scalar
	sScalar.MultiplyAdd(&c, &childScalar, &rScalar)

	signature := make([]byte, 0, 64)
	signature = append(signature, R.Bytes()...)
	signature = append(signature, sScalar.Bytes()...)

	if !ed25519.Verify(ed25519.PublicKey(key.PublicKey), payload, signature) {
		// Should be unreachable given the math above; fail loudly rather
		// than hand back a signature that would never verify on FA.
		return SignedPayload{}, errors.New("derived signature failed self-verification")
	}

	return SignedPayload{Signature: signature, TxIDHint: txIDHint(payload, signature)}, nil
}

func (s *ThresholdSigner) Sign(p principal.Principal, payload []byte) (SignedPayload, error) {
	return s.sign([][]byte{hashDerivationKey(p), pathChain, pathDeployed}, payload)
}

func (s *ThresholdSigner) SignLegacy(p principal.Principal, payload []byte) (SignedPayload, error) {
	return s.sign([][]byte{[]byte(p), pathChain, pathDeployed}, payload)
}
