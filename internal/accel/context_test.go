// SPDX-License-Identifier: MIT
package accel

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatchCoversGridExactlyOnce(t *testing.T) {
	ctx, err := NewContextWithWorkers(4)
	require.NoError(t, err)
	defer ctx.Close()

	const n = 10_000
	hits := make([]int32, n)

	err = ctx.Dispatch(n, func(i int) {
		atomic.AddInt32(&hits[i], 1)
	})
	require.NoError(t, err)

	for i, h := range hits {
		if h != 1 {
			t.Fatalf("index %d executed %d times", i, h)
		}
	}
}

func TestDispatchIsABarrier(t *testing.T) {
	ctx, err := NewContextWithWorkers(8)
	require.NoError(t, err)
	defer ctx.Close()

	// Each dispatch reads what the previous one wrote. Any overlap
	// between dispatches would leave holes in the final values.
	const n = 4096
	a := make([]float64, n)
	b := make([]float64, n)

	require.NoError(t, ctx.Dispatch(n, func(i int) { a[i] = float64(i) }))
	for pass := 0; pass < 10; pass++ {
		src, dst := a, b
		if pass%2 == 1 {
			src, dst = b, a
		}
		require.NoError(t, ctx.Dispatch(n, func(i int) { dst[i] = src[i] + 1 }))
	}

	for i := 0; i < n; i++ {
		assert.Equal(t, float64(i)+10, a[i], "index %d", i)
	}
}

func TestDispatchSmallAndEmptyGrids(t *testing.T) {
	ctx, err := NewContextWithWorkers(2)
	require.NoError(t, err)
	defer ctx.Close()

	require.NoError(t, ctx.Dispatch(0, func(int) { t.Error("kernel ran for empty grid") }))

	ran := false
	require.NoError(t, ctx.Dispatch(1, func(i int) { ran = i == 0 }))
	assert.True(t, ran)

	assert.ErrorIs(t, ctx.Dispatch(-1, func(int) {}), ErrInvalidGrid)
}

func TestDispatchAfterClose(t *testing.T) {
	ctx, err := NewContextWithWorkers(2)
	require.NoError(t, err)

	require.NoError(t, ctx.Close())
	require.NoError(t, ctx.Close()) // idempotent

	err = ctx.Dispatch(16, func(int) {})
	assert.ErrorIs(t, err, ErrClosed)
}

func TestNewContextWithInvalidWorkers(t *testing.T) {
	_, err := NewContextWithWorkers(0)
	assert.Error(t, err)
	_, err = NewContextWithWorkers(-3)
	assert.Error(t, err)
}

func TestDeviceInfo(t *testing.T) {
	ctx, err := NewContextWithWorkers(3)
	require.NoError(t, err)
	defer ctx.Close()

	info := ctx.Device()
	assert.Equal(t, 3, info.Workers)
	assert.NotEmpty(t, info.Name)
}
