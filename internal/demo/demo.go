// Package demo drives the full capture pipeline with a synthetic scene and
// produces a real Recording: a few subjects orbiting the origin, one
// late-spawning and early-despawning, periodic custom events, and one pause
// in the middle of the session.
package demo

import (
	"fmt"
	"math"
	"strconv"

	"github.com/fakeyudi/rewind/internal/geom"
	"github.com/fakeyudi/rewind/internal/record"
	"github.com/fakeyudi/rewind/internal/recording"
)

// Options controls the synthetic scene.
type Options struct {
	Name              string
	Subjects          int
	Duration          float64 // virtual seconds of capture
	SampleRate        float64 // samples per virtual second
	PositionThreshold float64
	RotationThreshold float64
}

// DefaultOptions returns defaults aligned with the rewind CLI behavior.
func DefaultOptions() Options {
	return Options{
		Name:       "demo",
		Subjects:   3,
		Duration:   30,
		SampleRate: 10,
	}
}

// Generate runs a complete capture session and returns the recording along
// with any warnings the recorder collected.
func Generate(opts Options) (*recording.Recording, []string, error) {
	if opts.Subjects <= 0 {
		return nil, nil, fmt.Errorf("subjects must be positive, got %d", opts.Subjects)
	}
	if opts.Duration <= 0 {
		return nil, nil, fmt.Errorf("duration must be positive, got %v", opts.Duration)
	}
	if opts.SampleRate <= 0 {
		return nil, nil, fmt.Errorf("sample rate must be positive, got %v", opts.SampleRate)
	}

	clock := &record.ManualClock{}
	rec := record.NewRecorder(clock, opts.Name)
	rec.SetMetadata("generator", "rewind demo")

	subjects := make([]*record.SubjectRecorder, opts.Subjects)
	for i := range subjects {
		s := record.NewSubjectRecorder(int32(i+1), fmt.Sprintf("orbiter-%d", i+1))
		if opts.PositionThreshold > 0 || opts.RotationThreshold > 0 {
			s.SetThresholds(opts.PositionThreshold, opts.RotationThreshold)
		}
		s.SetMetadata("radius", strconv.Itoa(2*(i+1)))
		if err := rec.Register(s); err != nil {
			return nil, nil, err
		}
		subjects[i] = s
	}

	if err := rec.Start(); err != nil {
		return nil, nil, err
	}

	// The last subject spawns a quarter of the way in and despawns at the
	// three-quarter mark; the rest live for the whole session.
	late := subjects[len(subjects)-1]
	spawnAt := opts.Duration / 4
	despawnAt := 3 * opts.Duration / 4
	for i, s := range subjects {
		if s != late || len(subjects) == 1 {
			s.CaptureLifecycle(0, recording.Spawned)
			sampleOrbit(s, i, 0)
		}
	}

	step := 1 / opts.SampleRate
	pauseStart := opts.Duration / 2
	paused := false
	lateAlive := len(subjects) == 1

	for now := step; now <= opts.Duration+step/2; now += step {
		clock.Set(now)

		// One pause of a tenth of the session in the middle. The paused
		// span is cut out of the final recording.
		if !paused && now >= pauseStart {
			if err := rec.Pause(); err != nil {
				return nil, nil, err
			}
			clock.Advance(opts.Duration / 10)
			if err := rec.Resume(); err != nil {
				return nil, nil, err
			}
			paused = true
			now = clock.Now()
		}

		if !lateAlive && now >= spawnAt && now < despawnAt {
			late.CaptureLifecycle(now, recording.Spawned)
			lateAlive = true
		}
		if lateAlive && len(subjects) > 1 && now >= despawnAt {
			late.CaptureLifecycle(now, recording.Destroyed)
			lateAlive = false
		}

		for i, s := range subjects {
			if s == late && !lateAlive && len(subjects) > 1 {
				continue
			}
			sampleOrbit(s, i, now)
		}

		// A lap marker roughly every five virtual seconds.
		if math.Mod(now, 5) < step {
			if err := rec.CaptureCustomEvent("lap", map[string]string{
				"t": strconv.FormatFloat(now, 'f', 1, 64),
			}); err != nil {
				return nil, nil, err
			}
		}
	}

	out, err := rec.Finish()
	if err != nil {
		return nil, nil, err
	}
	return out, rec.Warnings(), nil
}

// sampleOrbit captures the pose of subject i on its circular path at time
// now. Each subject gets its own radius and angular velocity.
func sampleOrbit(s *record.SubjectRecorder, i int, now float64) {
	radius := float64(2 * (i + 1))
	angular := 0.5 + 0.25*float64(i) // radians per second
	angle := angular * now

	s.CapturePosition(now, geom.Vec3{
		X: radius * math.Cos(angle),
		Y: 1,
		Z: radius * math.Sin(angle),
	})
	s.CaptureRotation(now, geom.Vec3{
		Y: math.Mod(angle*180/math.Pi, 360),
	})
}
