package mfvec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/mfvec/engine"
	"github.com/hupe1980/mfvec/model"
	"github.com/hupe1980/mfvec/peer"
	"github.com/hupe1980/mfvec/resource"
	"github.com/hupe1980/mfvec/testutil"
)

// plainPeer hides the optional peer extensions so fields fall back to
// read-modify-write.
type plainPeer struct {
	peer.Peer
}

// forEachPeer runs fn against a splicing engine and a plain peer.
func forEachPeer(t *testing.T, fn func(t *testing.T, opt Option)) {
	t.Run("Engine", func(t *testing.T) {
		fn(t, WithPeer(engine.New()))
	})
	t.Run("ReadModifyWrite", func(t *testing.T) {
		fn(t, WithPeer(plainPeer{engine.New()}))
	})
}

func mustLen(t *testing.T, f interface{ Len() (int, error) }) int {
	t.Helper()
	n, err := f.Len()
	require.NoError(t, err)
	return n
}

func mustTuples(t *testing.T, f Source) []model.Vec3 {
	t.Helper()
	tuples, err := f.Tuples()
	require.NoError(t, err)
	return tuples
}

func TestFromFlat_ReturnsPrefix(t *testing.T) {
	forEachPeer(t, func(t *testing.T, opt Option) {
		rng := testutil.NewRNG(4711)

		for size := 0; size <= 8; size++ {
			for extra := 0; extra <= 4; extra++ {
				flat := rng.Flat(size)
				flat = append(flat, make([]float32, extra)...)

				f, err := FromFlat(flat, size, opt)
				require.NoError(t, err)

				got, err := f.Flat()
				require.NoError(t, err)
				assert.Equal(t, flat[:3*size], got, "size=%d extra=%d", size, extra)
				assert.Equal(t, size, mustLen(t, f))
				require.NoError(t, f.Close())
			}
		}
	})
}

func TestFromFlat_InvalidArgument(t *testing.T) {
	_, err := FromFlat(make([]float32, 5), 2, WithPeer(engine.New()))
	require.ErrorIs(t, err, ErrInvalidArgument)

	var argErr *ArgumentError
	require.ErrorAs(t, err, &argErr)
	assert.Equal(t, 2, argErr.Size)
	assert.Equal(t, 5, argErr.Length)

	_, err = FromFlat(nil, -1, WithPeer(engine.New()))
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestFromPacked_DropsPartialTuple(t *testing.T) {
	forEachPeer(t, func(t *testing.T, opt Option) {
		f, err := FromPacked([]float32{1, 2, 3, 4, 5, 6, 7}, opt)
		require.NoError(t, err)
		defer f.Close()

		assert.Equal(t, 2, mustLen(t, f))
		flat, err := f.Flat()
		require.NoError(t, err)
		assert.Equal(t, []float32{1, 2, 3, 4, 5, 6}, flat)
	})
}

func TestScenario_AppendInsert(t *testing.T) {
	forEachPeer(t, func(t *testing.T, opt Option) {
		f, err := New(opt)
		require.NoError(t, err)
		defer f.Close()

		require.NoError(t, f.Append(model.V(1, 2, 3)))
		require.NoError(t, f.Append(model.V(4, 5, 6)))
		require.NoError(t, f.InsertAt(1, model.V(7, 8, 9)))

		assert.Equal(t, []model.Vec3{model.V(1, 2, 3), model.V(7, 8, 9), model.V(4, 5, 6)}, mustTuples(t, f))
		assert.Equal(t, 3, mustLen(t, f))

		flat, err := f.Flat()
		require.NoError(t, err)
		assert.Equal(t, []float32{1, 2, 3, 7, 8, 9, 4, 5, 6}, flat)
	})
}

func TestAppend(t *testing.T) {
	forEachPeer(t, func(t *testing.T, opt Option) {
		rng := testutil.NewRNG(4711)
		f, err := FromTuples(rng.UniformTuples(5), opt)
		require.NoError(t, err)
		defer f.Close()

		for _, v := range rng.UniformTuples(20) {
			before := mustLen(t, f)
			require.NoError(t, f.Append(v))

			after := mustLen(t, f)
			assert.Equal(t, before+1, after)

			got, err := f.At(after - 1)
			require.NoError(t, err)
			assert.Equal(t, v, got)
		}
	})
}

func TestInsertAt_ShiftsSuffix(t *testing.T) {
	forEachPeer(t, func(t *testing.T, opt Option) {
		rng := testutil.NewRNG(4711)
		initial := rng.UniformTuples(6)
		x := model.V(-1, -2, -3)

		for i := 0; i <= len(initial); i++ {
			f, err := FromTuples(initial, opt)
			require.NoError(t, err)

			require.NoError(t, f.InsertAt(i, x))

			got, err := f.At(i)
			require.NoError(t, err)
			assert.Equal(t, x, got)

			tuples := mustTuples(t, f)
			assert.Equal(t, initial[:i], tuples[:i])
			assert.Equal(t, initial[i:], tuples[i+1:])
			require.NoError(t, f.Close())
		}
	})
}

func TestDeleteAt_ShiftsSuffix(t *testing.T) {
	forEachPeer(t, func(t *testing.T, opt Option) {
		rng := testutil.NewRNG(4711)
		initial := rng.UniformTuples(6)

		for i := range initial {
			f, err := FromTuples(initial, opt)
			require.NoError(t, err)

			require.NoError(t, f.DeleteAt(i))

			tuples := mustTuples(t, f)
			assert.Len(t, tuples, len(initial)-1)
			assert.Equal(t, initial[:i], tuples[:i])
			assert.Equal(t, initial[i+1:], tuples[i:])
			require.NoError(t, f.Close())
		}
	})
}

func TestSetAt(t *testing.T) {
	forEachPeer(t, func(t *testing.T, opt Option) {
		f, err := FromTuples([]model.Vec3{model.V(1, 1, 1), model.V(2, 2, 2)}, opt)
		require.NoError(t, err)
		defer f.Close()

		require.NoError(t, f.SetAt(1, model.V(5, 5, 5)))
		assert.Equal(t, []model.Vec3{model.V(1, 1, 1), model.V(5, 5, 5)}, mustTuples(t, f))
	})
}

func TestClear(t *testing.T) {
	forEachPeer(t, func(t *testing.T, opt Option) {
		for _, size := range []int{0, 1, 50} {
			f, err := FromTuples(make([]model.Vec3, size), opt)
			require.NoError(t, err)

			require.NoError(t, f.Clear())
			assert.Zero(t, mustLen(t, f))

			require.NoError(t, f.Clear())
			assert.Zero(t, mustLen(t, f))
			require.NoError(t, f.Close())
		}
	})
}

func TestSetGet_RoundTrip(t *testing.T) {
	forEachPeer(t, func(t *testing.T, opt Option) {
		rng := testutil.NewRNG(4711)
		for _, size := range []int{0, 1, 7, 100} {
			want := rng.UniformTuples(size)
			f, err := FromTuples(want, opt)
			require.NoError(t, err)

			dst := make([]model.Vec3, size)
			n, err := f.Get(dst)
			require.NoError(t, err)
			assert.Equal(t, size, n)

			require.NoError(t, f.Set(dst[:n]))
			assert.Equal(t, want, mustTuples(t, f))

			flat := make([]float32, 3*size)
			n, err = f.GetFlat(flat)
			require.NoError(t, err)
			require.NoError(t, f.SetFlat(flat, n/3))
			assert.Equal(t, want, mustTuples(t, f))

			require.NoError(t, f.Close())
		}
	})
}

func TestBoundaries(t *testing.T) {
	forEachPeer(t, func(t *testing.T, opt Option) {
		initial := []model.Vec3{model.V(1, 2, 3), model.V(4, 5, 6), model.V(7, 8, 9)}
		f, err := FromTuples(initial, opt)
		require.NoError(t, err)
		defer f.Close()

		size := len(initial)
		x := model.V(0, 0, 0)

		tests := []struct {
			name string
			op   func() error
		}{
			{"AtSize", func() error { _, err := f.At(size); return err }},
			{"AtNegative", func() error { _, err := f.At(-1); return err }},
			{"InsertPastEnd", func() error { return f.InsertAt(size+1, x) }},
			{"InsertNegative", func() error { return f.InsertAt(-1, x) }},
			{"DeleteAtSize", func() error { return f.DeleteAt(size) }},
			{"DeleteNegative", func() error { return f.DeleteAt(-1) }},
			{"SetAtSize", func() error { return f.SetAt(size, x) }},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				err := tt.op()
				require.ErrorIs(t, err, ErrIndexOutOfRange)

				var idxErr *IndexError
				require.ErrorAs(t, err, &idxErr)
				assert.Equal(t, size, idxErr.Size)

				assert.Equal(t, initial, mustTuples(t, f), "value must be unchanged")
			})
		}
	})
}

func TestEmptyField_Boundaries(t *testing.T) {
	forEachPeer(t, func(t *testing.T, opt Option) {
		f, err := New(opt)
		require.NoError(t, err)
		defer f.Close()

		_, err = f.At(0)
		assert.ErrorIs(t, err, ErrIndexOutOfRange)
		assert.ErrorIs(t, f.DeleteAt(0), ErrIndexOutOfRange)
		assert.ErrorIs(t, f.SetAt(0, model.V(1, 1, 1)), ErrIndexOutOfRange)

		require.NoError(t, f.InsertAt(0, model.V(1, 1, 1)))
		assert.Equal(t, 1, mustLen(t, f))
	})
}

func TestGet_BufferTooSmall(t *testing.T) {
	f, err := FromTuples(make([]model.Vec3, 4), WithPeer(engine.New()))
	require.NoError(t, err)
	defer f.Close()

	_, err = f.Get(make([]model.Vec3, 3))
	require.ErrorIs(t, err, ErrBufferTooSmall)

	var bufErr *BufferError
	require.ErrorAs(t, err, &bufErr)
	assert.Equal(t, 4, bufErr.Required)
	assert.Equal(t, 3, bufErr.Actual)

	_, err = f.GetFlat(make([]float32, 11))
	require.ErrorAs(t, err, &bufErr)
	assert.Equal(t, 12, bufErr.Required)

	n, err := f.GetFlat(make([]float32, 20))
	require.NoError(t, err)
	assert.Equal(t, 12, n)
}

func TestAtInto(t *testing.T) {
	f, err := FromTuples([]model.Vec3{model.V(1, 2, 3)}, WithPeer(engine.New()))
	require.NoError(t, err)
	defer f.Close()

	dst := make([]float32, 3)
	require.NoError(t, f.AtInto(0, dst))
	assert.Equal(t, []float32{1, 2, 3}, dst)

	assert.ErrorIs(t, f.AtInto(0, make([]float32, 2)), ErrBufferTooSmall)
	assert.ErrorIs(t, f.AtInto(1, dst), ErrIndexOutOfRange)
}

func TestSetFlat_InvalidLeavesValue(t *testing.T) {
	forEachPeer(t, func(t *testing.T, opt Option) {
		initial := []model.Vec3{model.V(1, 2, 3)}
		f, err := FromTuples(initial, opt)
		require.NoError(t, err)
		defer f.Close()

		assert.ErrorIs(t, f.SetFlat(make([]float32, 5), 2), ErrInvalidArgument)
		assert.ErrorIs(t, f.SetFlat(nil, -1), ErrInvalidArgument)
		assert.Equal(t, initial, mustTuples(t, f))

		require.NoError(t, f.SetPacked([]float32{9, 8, 7, 6}))
		assert.Equal(t, []model.Vec3{model.V(9, 8, 7)}, mustTuples(t, f))
	})
}

func TestCopy_IsSnapshot(t *testing.T) {
	eng := engine.New()
	src, err := FromTuples([]model.Vec3{model.V(1, 2, 3)}, WithPeer(eng))
	require.NoError(t, err)
	defer src.Close()

	cp, err := Copy(src, WithPeer(eng))
	require.NoError(t, err)
	defer cp.Close()
	assert.NotEqual(t, src.Handle(), cp.Handle())

	require.NoError(t, src.Append(model.V(4, 5, 6)))
	assert.Equal(t, 1, mustLen(t, cp))

	dst, err := New(WithPeer(eng))
	require.NoError(t, err)
	defer dst.Close()

	require.NoError(t, dst.SetFrom(src))
	require.NoError(t, src.Clear())
	assert.Equal(t, []model.Vec3{model.V(1, 2, 3), model.V(4, 5, 6)}, mustTuples(t, dst))

	_, err = Copy(nil)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestCopy_NilFieldPointers(t *testing.T) {
	sources := map[string]Source{
		"Nil":        nil,
		"Field":      (*Field)(nil),
		"ConstField": (*ConstField)(nil),
		"EmptyConst": &ConstField{},
	}

	dst, err := New(WithPeer(engine.New()))
	require.NoError(t, err)
	defer dst.Close()

	for name, src := range sources {
		t.Run(name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				_, err := Copy(src)
				assert.ErrorIs(t, err, ErrInvalidArgument)

				_, err = NewConst(src)
				assert.ErrorIs(t, err, ErrInvalidArgument)

				assert.ErrorIs(t, dst.SetFrom(src), ErrInvalidArgument)
			})
		})
	}
}

func TestEngineUpdate_ObservedByReads(t *testing.T) {
	eng := engine.New()
	f, err := FromTuples([]model.Vec3{model.V(1, 2, 3)}, WithPeer(eng))
	require.NoError(t, err)
	defer f.Close()

	require.NoError(t, eng.Update(f.Handle(), func(current []model.Vec3) []model.Vec3 {
		return append(current, model.V(4, 5, 6))
	}))

	assert.Equal(t, 2, mustLen(t, f))
	got, err := f.At(1)
	require.NoError(t, err)
	assert.Equal(t, model.V(4, 5, 6), got)
}

func TestAllocationFailure(t *testing.T) {
	rc := resource.NewController(resource.Config{MemoryLimitBytes: 4 * resource.TupleBytes})
	eng := engine.New(func(o *engine.Options) { o.Resource = rc })

	_, err := FromTuples(make([]model.Vec3, 5), WithPeer(eng))
	require.ErrorIs(t, err, ErrAllocationFailure)
	assert.Zero(t, eng.Len(), "failed construction must not leak a handle")

	initial := []model.Vec3{model.V(1, 1, 1), model.V(2, 2, 2), model.V(3, 3, 3)}
	f, err := FromTuples(initial, WithPeer(eng))
	require.NoError(t, err)
	defer f.Close()

	require.NoError(t, f.Append(model.V(4, 4, 4)))
	assert.ErrorIs(t, f.Append(model.V(5, 5, 5)), ErrAllocationFailure)
	assert.ErrorIs(t, f.Set(make([]model.Vec3, 8)), ErrAllocationFailure)
	assert.Equal(t, append(initial, model.V(4, 4, 4)), mustTuples(t, f))
}

func TestClose(t *testing.T) {
	eng := engine.New()
	f, err := New(WithPeer(eng))
	require.NoError(t, err)
	assert.Equal(t, 1, eng.Len())

	require.NoError(t, f.Close())
	require.NoError(t, f.Close())
	assert.Zero(t, eng.Len())

	_, err = f.Len()
	assert.ErrorIs(t, err, ErrReleased)
	_, err = f.Tuples()
	assert.ErrorIs(t, err, ErrReleased)
	_, err = f.At(0)
	assert.ErrorIs(t, err, ErrReleased)
	assert.ErrorIs(t, f.Append(model.V(1, 1, 1)), ErrReleased)
	assert.ErrorIs(t, f.Set(nil), ErrReleased)
	assert.ErrorIs(t, f.Clear(), ErrReleased)
	assert.ErrorIs(t, f.SetFrom(f), ErrReleased)
}

func TestDefaultPeer(t *testing.T) {
	f, err := New()
	require.NoError(t, err)
	defer f.Close()

	size, err := engine.Default().Size(f.Handle())
	require.NoError(t, err)
	assert.Zero(t, size)
}

func TestIncrementalBuild(t *testing.T) {
	forEachPeer(t, func(t *testing.T, opt Option) {
		f, err := New(opt)
		require.NoError(t, err)
		defer f.Close()

		grid := testutil.Grid(10, 1)

		// Insert in reverse at the front; the result is in order.
		for i := len(grid) - 1; i >= 0; i-- {
			require.NoError(t, f.InsertAt(0, grid[i]))
		}
		assert.Equal(t, grid, mustTuples(t, f))

		// Delete every second tuple from the back.
		for i := len(grid) - 1; i >= 0; i -= 2 {
			require.NoError(t, f.DeleteAt(i))
		}
		tuples := mustTuples(t, f)
		require.Len(t, tuples, len(grid)/2)
		for i, v := range tuples {
			assert.Equal(t, grid[2*i], v)
		}
	})
}
