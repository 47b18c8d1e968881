// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package emap

import (
	"testing"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/stretchr/testify/require"
)

func TestEMapAddDuplicate(t *testing.T) {
	require := require.New(t)
	e := NewEMap()

	id := ids.GenerateTestID()
	require.True(e.Add(id, 1_000))
	require.False(e.Add(id, 5_000))
	require.True(e.Contains(id))
	require.Equal(1, e.Len())
}

func TestEMapSetMin(t *testing.T) {
	require := require.New(t)
	e := NewEMap()

	early := ids.GenerateTestID()
	sameBucket := ids.GenerateTestID()
	late := ids.GenerateTestID()
	require.True(e.Add(late, 9_000))
	require.True(e.Add(early, 1_200))
	require.True(e.Add(sameBucket, 1_999))

	// Buckets have second precision, so 1_500 evicts nothing.
	require.Empty(e.SetMin(1_500))

	evicted := e.SetMin(2_000)
	require.ElementsMatch([]ids.ID{early, sameBucket}, evicted)
	require.False(e.Contains(early))
	require.True(e.Contains(late))

	// Evicted ids may be added again.
	require.True(e.Add(early, 10_000))

	require.ElementsMatch([]ids.ID{late, early}, e.SetMin(11_000))
	require.Zero(e.Len())
}

func TestEMapEvictsInExpiryOrder(t *testing.T) {
	require := require.New(t)
	e := NewEMap()

	byExpiry := map[int64]ids.ID{}
	for _, expiry := range []int64{7_000, 3_000, 9_000, 1_000, 5_000} {
		id := ids.GenerateTestID()
		byExpiry[expiry] = id
		require.True(e.Add(id, expiry))
	}
	for _, expiry := range []int64{1_000, 3_000, 5_000, 7_000, 9_000} {
		require.Equal([]ids.ID{byExpiry[expiry]}, e.SetMin(expiry+1_000))
	}
	require.Zero(e.Len())
}
