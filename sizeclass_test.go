package malloc

import "testing"

import "github.com/stretchr/testify/require"

func TestSizeClassIndex(t *testing.T) {
	cases := []struct {
		size    uintptr
		idx     int
		wantOK  bool
		blkSize uintptr
	}{
		{0, 0, false, 0},
		{1, 0, true, 8},
		{7, 0, true, 8},
		{8, 0, true, 8},
		{9, 1, true, 16},
		{256, 31, true, 256},
		{257, 0, false, 0},
	}
	for _, c := range cases {
		idx, ok := sizeClassIndex(c.size)
		require.Equal(t, c.wantOK, ok, "size=%d", c.size)
		if !ok {
			continue
		}
		require.Equal(t, c.idx, idx, "size=%d", c.size)
		require.GreaterOrEqual(t, blockSizeForClass(idx), c.size)
		require.Equal(t, c.blkSize, blockSizeForClass(idx))
	}
}

func TestBlockCountForClass(t *testing.T) {
	for idx := 0; idx < NumSizeClasses; idx++ {
		n := blockCountForClass(idx)
		require.Greater(t, n, uint32(0))
		used := uintptr(n) * blockSizeForClass(idx)
		require.LessOrEqual(t, used+pageHeaderSize, uintptr(PageSize))
	}
}
