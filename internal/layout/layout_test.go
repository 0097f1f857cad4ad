package layout

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_AlignUp(t *testing.T) {
	require.Equal(t, uintptr(8), AlignUp(1, 8))
	require.Equal(t, uintptr(8), AlignUp(8, 8))
	require.Equal(t, uintptr(16), AlignUp(9, 8))
	require.Equal(t, uintptr(0), AlignUp(0, 4096))
}

func Test_AlignPage(t *testing.T) {
	require.Equal(t, uintptr(PageSize), AlignPage(1))
	require.Equal(t, uintptr(PageSize), AlignPage(PageSize))
	require.Equal(t, uintptr(2*PageSize), AlignPage(PageSize+1))
}

func Test_RegionsDoNotOverlap(t *testing.T) {
	require.Equal(t, uintptr(ProcCodeBase), uintptr(KernelHeapBase+KernelHeapSize))
	require.Greater(t, uintptr(ProcHeapBase), uintptr(ProcCodeBase))
}
