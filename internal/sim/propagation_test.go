package sim_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/astroprop/internal/constants"
	"github.com/san-kum/astroprop/internal/dynamo"
	"github.com/san-kum/astroprop/internal/ephemeris"
	"github.com/san-kum/astroprop/internal/integrators"
	"github.com/san-kum/astroprop/internal/physics"
	"github.com/san-kum/astroprop/internal/sim"
)

var _ = Describe("Propagation", func() {
	var (
		bodies []dynamo.Body
		x0     dynamo.SystemState
		cfg    dynamo.Config
	)

	BeforeEach(func() {
		samples := ephemeris.Samples{
			"Earth": {{}},
			"Moon":  {{Position: r3.Vec{X: 384400}, Velocity: r3.Vec{Y: math.Sqrt((3.986004418e5 + 4.9048695e3) / 384400)}}},
		}

		var err error
		bodies, x0, err = ephemeris.Initialize([]string{"Earth", "Moon"}, samples, constants.Default(nil))
		Expect(err).NotTo(HaveOccurred())

		cfg = dynamo.Config{StepSize: 600, RunTime: 86400 * 27.3}
	})

	run := func(stepper dynamo.Stepper) *dynamo.Result {
		result, err := sim.New(physics.NewGravity(), stepper, nil).Run(bodies, x0, cfg)
		Expect(err).NotTo(HaveOccurred())
		return result
	}

	Context("with the leapfrog integrator", func() {
		It("keeps the lunar orbit radius within two percent", func() {
			result := run(integrators.NewLeapfrog())

			for _, snap := range result.Trajectory.Positions {
				r := r3.Norm(r3.Sub(snap[1], snap[0]))
				Expect(r).To(BeNumerically("~", 384400, 0.02*384400))
			}
		})

		It("reports a small energy drift", func() {
			result := run(integrators.NewLeapfrog())
			Expect(result.EnergyDrift).To(BeNumerically("<", 1e-4))
		})

		It("aligns every snapshot with the body list", func() {
			result := run(integrators.NewLeapfrog())

			Expect(result.Trajectory.Bodies).To(Equal([]string{"Earth", "Moon"}))
			Expect(result.Trajectory.Len()).To(Equal(cfg.NumSteps() + 1))
			for _, snap := range result.Trajectory.Positions {
				Expect(snap).To(HaveLen(2))
			}
		})
	})

	Context("compared with forward Euler", func() {
		It("drifts less", func() {
			leapfrog := run(integrators.NewLeapfrog())
			euler := run(integrators.NewEuler())

			Expect(euler.EnergyDrift).To(BeNumerically(">", leapfrog.EnergyDrift))
		})
	})

	Context("with a run time shorter than one step", func() {
		It("returns only the initial snapshot", func() {
			cfg.RunTime = cfg.StepSize / 2
			result := run(integrators.NewLeapfrog())

			Expect(result.Trajectory.Len()).To(Equal(1))
			Expect(result.Trajectory.Positions[0]).To(Equal(x0.Positions))
		})
	})

	Context("with invalid configuration", func() {
		It("rejects a non-positive step size", func() {
			cfg.StepSize = 0
			_, err := sim.New(physics.NewGravity(), integrators.NewLeapfrog(), nil).Run(bodies, x0, cfg)
			Expect(err).To(MatchError(dynamo.ErrInvalidStepSize))
		})

		It("rejects a NaN run time", func() {
			cfg.RunTime = math.NaN()
			_, err := sim.New(physics.NewGravity(), integrators.NewLeapfrog(), nil).Run(bodies, x0, cfg)
			Expect(err).To(MatchError(dynamo.ErrInvalidRunTime))
		})
	})
})
