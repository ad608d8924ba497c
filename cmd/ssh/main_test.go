package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomz197/starhero/internal/store"
)

func TestPilotStore_KeysPerUser(t *testing.T) {
	shared := store.NewMemory()
	require.NoError(t, store.SaveJSON(pilotStore(shared, "alice"), store.KeyHighScore, 300))

	raw, err := shared.Get("alice." + store.KeyHighScore)
	require.NoError(t, err)
	assert.Equal(t, "300", string(raw))

	_, err = pilotStore(shared, "bob").Get(store.KeyHighScore)
	assert.ErrorIs(t, err, store.ErrNotFound)
}
