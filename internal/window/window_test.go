package window

import (
	"context"
	"image"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xkilldash9x/deskpilot/api/schemas"
	"github.com/xkilldash9x/deskpilot/internal/config"
)

type fakeProbe struct {
	pids      []int32
	titles    map[int32]string
	bounds    [4]int
	activated []int32
	findErr   error
}

func (f *fakeProbe) FindPids(string) ([]int32, error) { return f.pids, f.findErr }
func (f *fakeProbe) Title(pid int32) string           { return f.titles[pid] }
func (f *fakeProbe) Bounds(int32) (int, int, int, int) {
	return f.bounds[0], f.bounds[1], f.bounds[2], f.bounds[3]
}
func (f *fakeProbe) Activate(pid int32) error {
	f.activated = append(f.activated, pid)
	return nil
}

func testCfg() config.TerminalConfig {
	return config.TerminalConfig{
		TitlePattern:  "Trader Workstation",
		AttachTimeout: 50 * time.Millisecond,
	}
}

func TestAttachMatchesTitleSubstring(t *testing.T) {
	prb := &fakeProbe{
		pids: []int32{10, 20},
		titles: map[int32]string{
			10: "Some Other App",
			20: "Trader Workstation 10.30 - Paper Account",
		},
		bounds: [4]int{100, 50, 1280, 720},
	}
	m := newManager(testCfg(), prb, zap.NewNop())

	require.NoError(t, m.Attach(context.Background()))
	assert.True(t, m.IsReady())

	r, err := m.Bounds()
	require.NoError(t, err)
	assert.Equal(t, image.Rect(100, 50, 1380, 770), r)

	require.NoError(t, m.Activate())
	assert.Equal(t, []int32{20}, prb.activated)
}

func TestAttachTimesOutAsNotConnected(t *testing.T) {
	m := newManager(testCfg(), &fakeProbe{}, zap.NewNop())

	err := m.Attach(context.Background())
	require.Error(t, err)
	assert.Equal(t, schemas.ClassNotConnected, schemas.ClassOf(err))
}

func TestAttachHonorsCancellation(t *testing.T) {
	cfg := testCfg()
	cfg.AttachTimeout = time.Hour
	m := newManager(cfg, &fakeProbe{}, zap.NewNop())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := m.Attach(ctx)
	require.Error(t, err)
	assert.Equal(t, schemas.ClassNotConnected, schemas.ClassOf(err))
}

func TestVanishedWindowFlipsToNotConnected(t *testing.T) {
	prb := &fakeProbe{
		pids:   []int32{20},
		titles: map[int32]string{20: "Trader Workstation"},
		bounds: [4]int{0, 0, 800, 600},
	}
	m := newManager(testCfg(), prb, zap.NewNop())
	require.NoError(t, m.Attach(context.Background()))

	// Simulate the terminal closing.
	delete(prb.titles, 20)

	assert.False(t, m.IsReady())
	_, err := m.Bounds()
	assert.Equal(t, schemas.ClassNotConnected, schemas.ClassOf(err))
	assert.Equal(t, schemas.ClassNotConnected, schemas.ClassOf(m.Activate()))
}

func TestPaperModeFromTitle(t *testing.T) {
	prb := &fakeProbe{
		pids:   []int32{20},
		titles: map[int32]string{20: "Trader Workstation - Paper Account"},
		bounds: [4]int{0, 0, 800, 600},
	}
	m := newManager(testCfg(), prb, zap.NewNop())
	require.NoError(t, m.Attach(context.Background()))
	assert.True(t, m.PaperMode())

	prb.titles[20] = "Trader Workstation - Live Account"
	assert.False(t, m.PaperMode())
}

func TestEnsureBeforeAttach(t *testing.T) {
	m := newManager(testCfg(), &fakeProbe{}, zap.NewNop())
	err := m.Ensure()
	require.Error(t, err)
	assert.Equal(t, schemas.ClassNotConnected, schemas.ClassOf(err))
}
