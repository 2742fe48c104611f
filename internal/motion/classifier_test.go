// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package motion_test

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/relabs-tech/motion_events/internal/imu"
	"github.com/relabs-tech/motion_events/internal/motion"
	"github.com/stretchr/testify/require"
)

// Tests run the sensor at ±4g so 2g fits in an int16.
const (
	lsbPerG   = 8192.0
	lsbPerDPS = 131.0
)

type fakeSource struct {
	raw imu.IMURaw
	err error
}

func (f *fakeSource) ReadRaw() (imu.IMURaw, error) {
	return f.raw, f.err
}

type harness struct {
	t     *testing.T
	src   *fakeSource
	clock *motion.ManualClock
	c     *motion.Classifier
}

func newHarness(t *testing.T, start uint32) *harness {
	conv, err := motion.NewConverter(1, 0)
	require.NoError(t, err)

	src := &fakeSource{}
	clock := motion.NewManualClock(start)
	c, err := motion.New(src, motion.WithClock(clock), motion.WithConverter(conv))
	require.NoError(t, err)

	return &harness{t: t, src: src, clock: clock, c: c}
}

func counts(v, scale float64) int16 {
	return int16(math.Round(v * scale))
}

// accel feeds one sample with the given acceleration (g) and no rotation.
func (h *harness) accel(x, y, z float64) {
	h.src.raw = imu.IMURaw{
		Ax: counts(x, lsbPerG),
		Ay: counts(y, lsbPerG),
		Az: counts(z, lsbPerG),
	}
	require.NoError(h.t, h.c.Update())
}

// gyro feeds one sample at rest (1g on Z) with the given angular rate (deg/s).
func (h *harness) gyro(x, y, z float64) {
	h.src.raw = imu.IMURaw{
		Az: counts(1, lsbPerG),
		Gx: counts(x, lsbPerDPS),
		Gy: counts(y, lsbPerDPS),
		Gz: counts(z, lsbPerDPS),
	}
	require.NoError(h.t, h.c.Update())
}

func (h *harness) advance(ms int) {
	h.clock.Advance(time.Duration(ms) * time.Millisecond)
}

func TestUpdateConvertsRawSample(t *testing.T) {
	h := newHarness(t, 1000)
	h.src.raw = imu.IMURaw{Ax: 8192, Ay: -4096, Az: 0, Gx: 131, Gy: -262, Gz: 0, Temp: -340}

	require.False(t, h.c.HasSample())
	require.NoError(t, h.c.Update())
	require.True(t, h.c.HasSample())

	require.InDelta(t, 1.0, h.c.AccelX(), 1e-9)
	require.InDelta(t, -0.5, h.c.AccelY(), 1e-9)
	require.InDelta(t, 0.0, h.c.AccelZ(), 1e-9)
	require.InDelta(t, 1.0, h.c.GyroX(), 1e-9)
	require.InDelta(t, -2.0, h.c.GyroY(), 1e-9)
	require.InDelta(t, 0.0, h.c.GyroZ(), 1e-9)
	require.InDelta(t, 35.53, h.c.Temperature(), 1e-9)
	require.Equal(t, uint32(1000), h.c.Sample().Timestamp)
}

func TestUpdateErrorKeepsPreviousSample(t *testing.T) {
	h := newHarness(t, 0)
	h.accel(0, 0, 1)

	errBus := errors.New("bus timeout")
	h.src.err = errBus
	h.src.raw = imu.IMURaw{Ax: 8192}

	err := h.c.Update()
	require.ErrorIs(t, err, errBus)
	require.InDelta(t, 1.0, h.c.AccelZ(), 1e-3)
	require.InDelta(t, 0.0, h.c.AccelX(), 1e-9)
}

func TestEvaluateBeforeUpdate(t *testing.T) {
	h := newHarness(t, 0)
	_, err := h.c.Evaluate()
	require.ErrorIs(t, err, motion.ErrNoSample)
}

func TestRollPitch(t *testing.T) {
	h := newHarness(t, 0)
	h.accel(0, math.Sin(30*math.Pi/180), math.Cos(30*math.Pi/180))
	require.InDelta(t, 30.0, h.c.Roll(), 0.05)
	require.InDelta(t, 0.0, h.c.Pitch(), 0.05)

	h.accel(-1, 0, 0)
	require.InDelta(t, 90.0, h.c.Pitch(), 1e-9)
}

func TestShakeCooldown(t *testing.T) {
	h := newHarness(t, 0)

	// No prior trigger: the first shake fires even at clock zero.
	h.accel(2.0, 0, 0)
	require.True(t, h.c.DetectShake())

	h.advance(500)
	h.accel(0, 2.0, 0)
	require.False(t, h.c.DetectShake(), "inside the 1000ms cooldown")

	h.advance(500)
	require.False(t, h.c.DetectShake(), "exactly at the cooldown is still closed")

	h.advance(1)
	require.True(t, h.c.DetectShake())
}

func TestShakeSeparatedBeyondCooldown(t *testing.T) {
	h := newHarness(t, 5000)

	h.accel(0, 0, 2.0)
	require.True(t, h.c.DetectShake())

	h.advance(1200)
	h.accel(0, 0, 2.0)
	require.True(t, h.c.DetectShake())
}

func TestShakeBelowThreshold(t *testing.T) {
	h := newHarness(t, 0)
	h.accel(0, 0, 1.0)
	require.False(t, h.c.DetectShake())
	h.accel(1.0, 0.5, 0.5) // ~1.22g
	require.False(t, h.c.DetectShake())
}

func TestDominantAxis(t *testing.T) {
	tests := []struct {
		name    string
		x, y, z float64
		want    motion.Axis
	}{
		{"flat", 0, 0, 1, motion.AxisZ},
		{"on its back", 0, 0, -1, motion.AxisZ},
		{"on its side", 0, -1, 0, motion.AxisY},
		{"nose down", 0.95, 0.1, 0.1, motion.AxisX},
		{"upper band edge", 1.19, 0, 0, motion.AxisX},
		{"lower band edge", 0, 0.81, 0, motion.AxisY},
		{"too light", 0, 0, 0.8, motion.AxisNone},
		{"too heavy", 0, 0, 1.2, motion.AxisNone},
		{"second axis loaded", 1.0, 0.2, 0, motion.AxisNone},
		{"oblique", 0.7, 0.7, 0, motion.AxisNone},
		{"freefall", 0, 0, 0, motion.AxisNone},
		{"violent", 1.5, 1.5, 1.5, motion.AxisNone},
	}

	for _, test := range tests {
		got := motion.DominantAxis(motion.Sample{AccelX: test.x, AccelY: test.y, AccelZ: test.z})
		require.Equal(t, test.want, got, test.name)
	}
}

func TestDominantAxisFromClassifier(t *testing.T) {
	h := newHarness(t, 0)
	h.accel(0, 1, 0)
	require.Equal(t, motion.AxisY, h.c.DominantAxis())
	require.Equal(t, "Y", h.c.DominantAxis().String())
}

func TestFreefallSustained(t *testing.T) {
	h := newHarness(t, 2000)

	h.accel(0, 0, 0.1)
	require.False(t, h.c.IsFreefalling(), "first low sample only starts the timer")

	h.advance(50)
	require.False(t, h.c.IsFreefalling())

	h.advance(50)
	require.False(t, h.c.IsFreefalling(), "100ms is not more than 100ms")

	h.advance(1)
	require.True(t, h.c.IsFreefalling())

	// Level signal: keeps reporting while the condition holds.
	for i := 0; i < 5; i++ {
		h.advance(10)
		require.True(t, h.c.IsFreefalling())
	}

	// Landing resets.
	h.accel(0, 0, 1)
	require.False(t, h.c.IsFreefalling())

	h.accel(0, 0, 0.1)
	require.False(t, h.c.IsFreefalling(), "timer restarts after a break")
	h.advance(80)
	require.False(t, h.c.IsFreefalling())
}

func TestFreefallThresholdIsStrict(t *testing.T) {
	h := newHarness(t, 0)
	require.NoError(t, h.c.SetFreefallThreshold(0.25, 0))

	h.accel(0, 0, 0.25) // exactly representable
	require.False(t, h.c.IsFreefalling())
	h.advance(10)
	require.False(t, h.c.IsFreefalling(), "magnitude equal to threshold is not falling")
}

func TestTilt(t *testing.T) {
	deg := math.Pi / 180
	h := newHarness(t, 0)

	// roll=25°, pitch=0°
	h.accel(0, math.Sin(25*deg), math.Cos(25*deg))
	require.True(t, h.c.IsTilted())

	// roll=15°, pitch=15°: neither axis alone exceeds 20°.
	h.accel(-math.Tan(15*deg), math.Sin(15*deg), math.Cos(15*deg))
	require.InDelta(t, 15.0, h.c.Roll(), 0.05)
	require.InDelta(t, 15.0, h.c.Pitch(), 0.05)
	require.False(t, h.c.IsTilted())
	require.True(t, h.c.IsTiltedBeyond(10))

	require.NoError(t, h.c.SetTiltThreshold(10))
	require.True(t, h.c.IsTilted())
}

func TestSpinSustained(t *testing.T) {
	h := newHarness(t, 0)

	h.gyro(0, 0, 150)
	require.False(t, h.c.IsSpinning())

	h.advance(500)
	require.False(t, h.c.IsSpinning())

	h.advance(1)
	require.True(t, h.c.IsSpinning())

	h.gyro(60, 60, 0) // ~85 deg/s
	require.False(t, h.c.IsSpinning())
}

func TestSpinPerCallParameters(t *testing.T) {
	h := newHarness(t, 0)
	h.gyro(0, 150, 0)

	require.False(t, h.c.IsSpinningWith(100, 50*time.Millisecond))
	h.advance(60)
	require.True(t, h.c.IsSpinningWith(100, 50*time.Millisecond))

	// The stored config still governs IsSpinning; the timer is shared.
	require.False(t, h.c.IsSpinning())
	require.Equal(t, 500*time.Millisecond, h.c.Config().SpinDuration)

	// A per-call threshold above the rate breaks the sustained condition.
	require.False(t, h.c.IsSpinningWith(200, 0))
	require.False(t, h.c.IsSpinning(), "restarted after the break")
}

func TestJerk(t *testing.T) {
	h := newHarness(t, 0)
	h.src.raw = imu.IMURaw{Az: counts(1.0, lsbPerG)}
	require.NoError(t, h.c.Begin())

	h.advance(10)
	h.accel(0, 0, 1.8)
	require.True(t, h.c.IsJerk(), "0.8g step with no prior trigger")

	h.advance(10)
	h.accel(0, 0, 1.0)
	require.False(t, h.c.IsJerk(), "same step inside the 500ms cooldown")

	h.advance(10)
	h.accel(0, 0, 1.8)
	require.False(t, h.c.IsJerk())

	h.advance(600)
	h.accel(0, 0, 1.8)
	require.False(t, h.c.IsJerk(), "baseline moved to 1.8g even without firing")

	h.accel(0, 0, 1.0)
	require.True(t, h.c.IsJerk())
}

func TestJerkWithoutBeginMeasuresFromZero(t *testing.T) {
	h := newHarness(t, 0)
	h.accel(0, 0, 1.0)
	require.True(t, h.c.IsJerk())
}

func TestJerkDurationIsStoredButUnused(t *testing.T) {
	h := newHarness(t, 0)
	h.src.raw = imu.IMURaw{Az: counts(1.0, lsbPerG)}
	require.NoError(t, h.c.Begin())

	require.NoError(t, h.c.SetJerkThreshold(0.3, 10*time.Second))
	require.Equal(t, 10*time.Second, h.c.Config().JerkDuration)

	h.accel(0, 0, 1.4)
	require.True(t, h.c.IsJerk())

	h.advance(501)
	h.accel(0, 0, 1.0)
	require.True(t, h.c.IsJerkWith(0.3, time.Hour))
}

func TestJerkCooldownSetter(t *testing.T) {
	h := newHarness(t, 0)
	h.src.raw = imu.IMURaw{Az: counts(1.0, lsbPerG)}
	require.NoError(t, h.c.Begin())
	require.NoError(t, h.c.SetJerkCooldown(100*time.Millisecond))

	h.accel(0, 0, 1.8)
	require.True(t, h.c.IsJerk())
	h.advance(101)
	h.accel(0, 0, 1.0)
	require.True(t, h.c.IsJerk())
}

func TestSetterBoundaryIsStrict(t *testing.T) {
	h := newHarness(t, 0)
	require.NoError(t, h.c.SetShakeThreshold(1.25))

	h.accel(0, 0, 1.25) // exactly representable at 8192 LSB/g
	require.False(t, h.c.DetectShake())

	h.accel(0, 0, 1.26)
	require.True(t, h.c.DetectShake())

	require.NoError(t, h.c.SetShakeCooldown(0))
	h.advance(1)
	h.accel(0, 0, 1.24)
	require.False(t, h.c.DetectShake())
}

func TestSettersRejectInvalidValues(t *testing.T) {
	h := newHarness(t, 0)
	before := h.c.Config()

	tests := []struct {
		name string
		set  func() error
	}{
		{"shake NaN", func() error { return h.c.SetShakeThreshold(math.NaN()) }},
		{"shake negative", func() error { return h.c.SetShakeThreshold(-1) }},
		{"shake cooldown negative", func() error { return h.c.SetShakeCooldown(-time.Millisecond) }},
		{"freefall inf", func() error { return h.c.SetFreefallThreshold(math.Inf(1), time.Second) }},
		{"freefall duration negative", func() error { return h.c.SetFreefallThreshold(0.2, -time.Second) }},
		{"tilt NaN", func() error { return h.c.SetTiltThreshold(math.NaN()) }},
		{"spin negative", func() error { return h.c.SetSpinningThreshold(-5, time.Second) }},
		{"spin duration too long", func() error { return h.c.SetSpinningThreshold(100, 1000*time.Hour) }},
		{"jerk duration negative", func() error { return h.c.SetJerkThreshold(0.5, -1) }},
		{"jerk cooldown negative", func() error { return h.c.SetJerkCooldown(-time.Second) }},
	}

	for _, test := range tests {
		err := test.set()
		require.ErrorIs(t, err, motion.ErrInvalidConfig, test.name)
		require.Equal(t, before, h.c.Config(), test.name)
	}
}

func TestWithConfigValidates(t *testing.T) {
	cfg := motion.DefaultConfig()
	cfg.TiltThresholdDeg = -1
	_, err := motion.New(&fakeSource{}, motion.WithConfig(cfg))
	require.ErrorIs(t, err, motion.ErrInvalidConfig)
}

func TestCooldownAcrossClockRollover(t *testing.T) {
	h := newHarness(t, math.MaxUint32-200)

	h.accel(2, 0, 0)
	require.True(t, h.c.DetectShake())

	h.clock.Set(100) // 301ms later, after the counter wrapped
	require.False(t, h.c.DetectShake())

	h.advance(700) // 1001ms since the trigger
	require.True(t, h.c.DetectShake())
}

func TestSustainedAcrossClockRollover(t *testing.T) {
	h := newHarness(t, math.MaxUint32-50)

	h.accel(0, 0, 0)
	require.False(t, h.c.IsFreefalling())

	h.advance(60)
	require.Less(t, h.clock.Millis(), uint32(100))
	require.False(t, h.c.IsFreefalling())

	h.advance(50)
	require.True(t, h.c.IsFreefalling())
}

func TestEvaluate(t *testing.T) {
	h := newHarness(t, 0)
	h.src.raw = imu.IMURaw{Az: counts(1.0, lsbPerG)}
	require.NoError(t, h.c.Begin())

	r, err := h.c.Evaluate()
	require.NoError(t, err)
	require.Equal(t, motion.AxisZ, r.Axis)
	require.InDelta(t, 1.0, r.AccelMagnitude, 1e-9)
	require.False(t, r.Active())

	h.advance(10)
	h.accel(1.6, 0, 1.0)
	r, err = h.c.Evaluate()
	require.NoError(t, err)
	require.True(t, r.Shake)
	require.True(t, r.Jerk)
	require.True(t, r.Tilted)
	require.False(t, r.Freefall)
	require.False(t, r.Spinning)
	require.Equal(t, motion.AxisNone, r.Axis)
	require.True(t, r.Active())
}
