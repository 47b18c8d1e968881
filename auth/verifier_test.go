// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package auth_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ava-labs/fxregistry/auth"
	"github.com/ava-labs/fxregistry/auth/authtest"
	"github.com/ava-labs/fxregistry/codec"
	"github.com/ava-labs/fxregistry/consts"
	"github.com/ava-labs/fxregistry/crypto"
	"github.com/ava-labs/fxregistry/crypto/ed25519"
)

func sign(msg []byte, keys ...*authtest.Key) []*auth.ED25519 {
	auths := make([]*auth.ED25519, len(keys))
	for i, k := range keys {
		auths[i] = k.Factory.Sign(msg)
	}
	return auths
}

func TestVerifier(t *testing.T) {
	msg := []byte("digest")
	keys := authtest.NewKeys(6)

	tests := []struct {
		name        string
		auths       func() []*auth.ED25519
		expectedErr error
		actor       codec.Address
		signers     int
	}{
		{
			name:        "no signers",
			auths:       func() []*auth.ED25519 { return nil },
			expectedErr: auth.ErrNoSigners,
		},
		{
			name:    "single signer",
			auths:   func() []*auth.ED25519 { return sign(msg, keys[0]) },
			actor:   keys[0].Address,
			signers: 1,
		},
		{
			name:    "batch verified",
			auths:   func() []*auth.ED25519 { return sign(msg, keys[1], keys[2], keys[3], keys[4], keys[5]) },
			actor:   keys[1].Address,
			signers: 5,
		},
		{
			name:        "duplicate signer",
			auths:       func() []*auth.ED25519 { return sign(msg, keys[0], keys[0]) },
			expectedErr: auth.ErrDuplicateSigner,
		},
		{
			name: "wrong message",
			auths: func() []*auth.ED25519 {
				return []*auth.ED25519{keys[0].Factory.Sign([]byte("other"))}
			},
			expectedErr: crypto.ErrInvalidSignature,
		},
		{
			name: "invalid signature in batch",
			auths: func() []*auth.ED25519 {
				auths := sign(msg, keys[0], keys[1], keys[2])
				return append(auths, &auth.ED25519{Signer: keys[3].Private.PublicKey(), Signature: ed25519.EmptySignature})
			},
			expectedErr: crypto.ErrInvalidSignature,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require := require.New(t)

			signers, err := auth.NewVerifier().Verify(context.Background(), msg, tt.auths())
			require.ErrorIs(err, tt.expectedErr)
			if tt.expectedErr != nil {
				return
			}
			require.Equal(tt.actor, signers.Actor())
			require.Equal(tt.signers, signers.Len())
		})
	}
}

func TestED25519Marshal(t *testing.T) {
	require := require.New(t)

	key := authtest.NewKey()
	a := key.Factory.Sign([]byte("digest"))

	p := codec.NewWriter(a.Size(), consts.NetworkSizeLimit)
	a.Marshal(p)
	require.NoError(p.Err())
	require.Len(p.Bytes(), auth.ED25519Size)

	decoded, err := auth.UnmarshalED25519(codec.NewReader(p.Bytes(), consts.NetworkSizeLimit))
	require.NoError(err)
	require.Equal(a.Signer, decoded.Signer)
	require.Equal(a.Signature, decoded.Signature)
	require.Equal(key.Address, decoded.Actor())
	require.NoError(decoded.Verify(context.Background(), []byte("digest")))
}

func TestSignersContains(t *testing.T) {
	require := require.New(t)

	keys := authtest.NewKeys(3)
	signers := auth.NewSigners(keys[0].Address, keys[1].Address)
	require.Equal(keys[0].Address, signers.Actor())
	require.True(signers.Contains(keys[0].Address))
	require.True(signers.Contains(keys[1].Address))
	require.False(signers.Contains(keys[2].Address))
	require.Equal(2, signers.Len())
}
