package readability

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"extract-article-reader/internal/tree"
)

func fakeGrab(lengths ...int) (func(Flags) attempt, *int) {
	calls := 0
	return func(Flags) attempt {
		n := lengths[calls]
		calls++
		return attempt{root: tree.NewElement("div"), textLength: n, dir: string(rune('a' + calls - 1))}
	}, &calls
}

func TestRunPasses(t *testing.T) {
	t.Parallel()

	all := AllFlags()
	noStrip := Flags{WeightClasses: true, CleanConditionally: true}
	onlyClean := Flags{CleanConditionally: true}

	tests := []struct {
		name      string
		lengths   []int
		wantTrace []Flags
		wantDir   string
		wantLen   int
		wantErr   error
	}{
		{
			name:      "first pass accepted",
			lengths:   []int{600},
			wantTrace: []Flags{all},
			wantDir:   "a",
			wantLen:   600,
		},
		{
			name:      "third pass accepted",
			lengths:   []int{10, 20, 500},
			wantTrace: []Flags{all, noStrip, onlyClean},
			wantDir:   "c",
			wantLen:   500,
		},
		{
			name:      "longest attempt wins",
			lengths:   []int{0, 10, 5, 0},
			wantTrace: []Flags{all, noStrip, onlyClean, {}},
			wantDir:   "b",
			wantLen:   10,
		},
		{
			name:      "earliest wins ties",
			lengths:   []int{7, 7, 3, 7},
			wantTrace: []Flags{all, noStrip, onlyClean, {}},
			wantDir:   "a",
			wantLen:   7,
		},
		{
			name:      "nothing found",
			lengths:   []int{0, 0, 0, 0},
			wantTrace: []Flags{all, noStrip, onlyClean, {}},
			wantErr:   ErrNoContent,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			grab, calls := fakeGrab(tt.lengths...)
			restores := 0
			best, trace, err := runPasses(grab, func() { restores++ }, 500, zerolog.Nop())

			assert.Equal(t, tt.wantTrace, trace)
			assert.LessOrEqual(t, *calls, 4)
			assert.Equal(t, len(tt.lengths), *calls)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantDir, best.dir)
			assert.Equal(t, tt.wantLen, best.textLength)
			if tt.wantLen < 500 {
				assert.Equal(t, 4, restores)
			}
		})
	}
}
