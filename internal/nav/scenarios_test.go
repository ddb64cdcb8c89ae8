package nav

import (
	"math"
	"time"

	"github.com/golang/geo/r2"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/pkg/errors"
	"go.uber.org/zap/zaptest/observer"

	"github.com/san-kum/navsim/internal/robot"
)

var _ = Describe("Navigator", func() {
	var (
		cfg      Config
		searcher *scriptedSearcher
		goal     robot.Pose
	)

	BeforeEach(func() {
		cfg = DefaultConfig()
		searcher = &scriptedSearcher{
			paths: [][]r2.Point{straightPath(r2.Point{}, r2.Point{X: 5}, 5)},
		}
		goal = robot.Pose{X: 5, Y: 0, Theta: math.Pi / 2}
	})

	arrived := func(h *harness) func() bool {
		return func() bool { return h.nav.Mode() == ModeIdle && !h.nav.CanComputeControl() }
	}

	Describe("a straight run with the map available", func() {
		It("tracks, parks and reports success when already facing the path", func() {
			h, _ := newHarness(cfg, searcher, robot.Pose{})
			h.nav.HandleMap(&blockedMap{})
			h.goal(goal)

			Expect(h.nav.Mode()).To(Equal(ModeTrack))
			Expect(h.nav.Plan().Duration()).To(BeNumerically("~", 25, 1e-9))
			Expect(h.pub.planned).To(HaveLen(1))
			Expect(h.pub.smoothed).To(HaveLen(1))

			steps := h.runUntil(arrived(h), 600)
			Expect(steps).To(BeNumerically("<", 600))
			Expect(h.modes).To(Equal([]Mode{ModeIdle, ModeTrack, ModePark, ModeIdle}))
			Expect(h.pub.successes).To(Equal([]bool{true}))

			Expect(robot.DistanceLinear(h.pose, goal)).To(BeNumerically("<", cfg.NearThresh))
			Expect(robot.DistanceAngular(h.pose, goal)).To(BeNumerically("<", cfg.AtThreshTheta))
		})

		It("aligns first when the robot faces away from the path", func() {
			h, _ := newHarness(cfg, searcher, robot.Pose{Theta: math.Pi / 2})
			h.nav.HandleMap(&blockedMap{})
			h.goal(goal)

			Expect(h.nav.Mode()).To(Equal(ModeAlign))

			steps := h.runUntil(arrived(h), 600)
			Expect(steps).To(BeNumerically("<", 600))
			Expect(h.modes).To(Equal([]Mode{ModeIdle, ModeAlign, ModeTrack, ModePark, ModeIdle}))
			Expect(h.pub.successes).To(Equal([]bool{true}))
		})

		It("does not move while aligning", func() {
			h, _ := newHarness(cfg, searcher, robot.Pose{Theta: math.Pi / 2})
			h.nav.HandleMap(&blockedMap{})
			h.goal(goal)

			h.runUntil(func() bool { return h.nav.Mode() != ModeAlign }, 100)
			Expect(h.pose.X).To(BeNumerically("~", 0, 1e-3))
			Expect(h.pose.Y).To(BeNumerically("~", 0, 1e-3))
		})
	})

	Describe("a map update that blocks the plan", func() {
		var h *harness

		BeforeEach(func() {
			h, _ = newHarness(cfg, searcher, robot.Pose{})
			h.nav.HandleMap(&blockedMap{})
			h.goal(goal)
			for range 50 {
				h.step()
			}
			Expect(h.nav.Mode()).To(Equal(ModeTrack))
			h.applyPublished()
		})

		It("stops and replans immediately", func() {
			first := h.nav.Plan()
			start := h.pose.Position()
			searcher.paths = append(searcher.paths, []r2.Point{
				start,
				{X: start.X + 0.5, Y: 0.5},
				{X: 2.5, Y: 0.8},
				{X: 4.5, Y: 0.5},
				{X: 5, Y: 0},
			})

			h.nav.HandleMap(&blockedMap{blocked: []r2.Point{{X: 2.5}}})

			Expect(searcher.calls).To(HaveLen(2))
			Expect(searcher.calls[1].X).To(BeNumerically("~", start.X, 1e-9))
			Expect(h.pub.Commands()).To(ContainElement(robot.Stop))
			Expect(h.nav.CanComputeControl()).To(BeTrue())
			Expect(h.nav.Plan()).NotTo(BeIdenticalTo(first))
			Expect(h.nav.Mode()).To(BeElementOf(ModeAlign, ModeTrack))
		})

		It("falls back to IDLE when no new path exists", func() {
			searcher.err = errors.New("goal enclosed")

			h.nav.HandleMap(&blockedMap{blocked: []r2.Point{{X: 2.5}}})

			Expect(searcher.calls).To(HaveLen(2))
			Expect(h.nav.Mode()).To(Equal(ModeIdle))
			Expect(h.nav.CanComputeControl()).To(BeFalse())
			Expect(h.nav.LastError()).To(MatchError(ErrNoPath))
			Expect(h.pub.successes).To(Equal([]bool{false}))
		})

		It("keeps the plan when the blocked cell is already behind", func() {
			first := h.nav.Plan()

			h.nav.HandleMap(&blockedMap{blocked: []r2.Point{{X: 0}}})

			Expect(searcher.calls).To(HaveLen(1))
			Expect(h.nav.Plan()).To(BeIdenticalTo(first))
			Expect(h.nav.Mode()).To(Equal(ModeTrack))
		})
	})

	Describe("a goal before any map", func() {
		var (
			h    *harness
			logs *observer.ObservedLogs
		)

		BeforeEach(func() {
			h, logs = newHarness(cfg, searcher, robot.Pose{})
			h.goal(goal)
		})

		It("neither plans nor commands", func() {
			Expect(searcher.calls).To(BeEmpty())
			Expect(h.pub.Commands()).To(BeEmpty())
			Expect(h.nav.CanComputeControl()).To(BeFalse())
			Expect(h.nav.LastError()).To(MatchError(ErrNoOccupancy))
			Expect(logs.FilterMessage("unable to replan: occupancy map not yet available").Len()).To(Equal(1))

			_, ok := h.nav.Tick(h.pose)
			Expect(ok).To(BeFalse())
		})

		It("plans the held goal once the map arrives", func() {
			h.nav.HandleMap(&blockedMap{})

			Expect(searcher.calls).To(HaveLen(1))
			Expect(h.nav.Mode()).To(Equal(ModeTrack))
			Expect(h.nav.CanComputeControl()).To(BeTrue())
			g, ok := h.nav.Goal()
			Expect(ok).To(BeTrue())
			Expect(g).To(Equal(goal))
		})
	})

	Describe("a search that returns too few waypoints", func() {
		BeforeEach(func() {
			searcher.paths = [][]r2.Point{straightPath(r2.Point{}, r2.Point{X: 5}, 3)}
		})

		It("reports failure and keeps the mode", func() {
			h, _ := newHarness(cfg, searcher, robot.Pose{})
			h.nav.HandleMap(&blockedMap{})
			h.goal(goal)

			Expect(h.nav.LastError()).To(MatchError(ErrNoPath))
			Expect(h.pub.successes).To(Equal([]bool{false}))
			Expect(h.nav.Mode()).To(Equal(ModeIdle))
			Expect(h.nav.CanComputeControl()).To(BeFalse())
		})

		It("stops commanding while tracking an earlier goal", func() {
			searcher.paths = [][]r2.Point{
				straightPath(r2.Point{}, r2.Point{X: 5}, 5),
				straightPath(r2.Point{}, r2.Point{X: 5}, 3),
			}
			h, _ := newHarness(cfg, searcher, robot.Pose{})
			h.nav.HandleMap(&blockedMap{})
			h.goal(goal)
			for range 10 {
				h.step()
			}
			Expect(h.nav.Mode()).To(Equal(ModeTrack))

			h.goal(robot.Pose{X: 3, Y: 3})

			Expect(h.pub.successes).To(Equal([]bool{false}))
			Expect(h.nav.Mode()).To(Equal(ModeTrack))
			Expect(h.nav.CanComputeControl()).To(BeFalse())
			_, ok := h.nav.Tick(h.pose)
			Expect(ok).To(BeFalse())
		})
	})

	Describe("tracking supervision", func() {
		var (
			h    *harness
			logs *observer.ObservedLogs
		)

		tickAt := func(pose robot.Pose) {
			h.nav.Tick(pose)
			h.clk.Add(100 * time.Millisecond)
		}

		It("replans when the plan runs out of time", func() {
			searcher.paths = [][]r2.Point{
				straightPath(r2.Point{}, r2.Point{X: 4}, 5),
				straightPath(r2.Point{X: 4}, r2.Point{X: 5}, 5),
			}
			h, logs = newHarness(cfg, searcher, robot.Pose{})
			h.nav.HandleMap(&blockedMap{})
			h.goal(goal)

			for i := 0; i < 400 && len(searcher.calls) < 2; i++ {
				tickAt(h.nav.Plan().DesiredState(h.nav.TrackingTime()))
			}

			Expect(searcher.calls).To(HaveLen(2))
			Expect(searcher.calls[1].X).To(BeNumerically("~", 4, 1e-6))
			replans := logs.FilterMessage("replanning").All()
			Expect(replans).To(HaveLen(1))
			Expect(replans[0].ContextMap()).To(HaveKeyWithValue("reason", ReasonTimeout.String()))
		})

		It("replans when the robot drifts from the reference", func() {
			h, logs = newHarness(cfg, searcher, robot.Pose{})
			h.nav.HandleMap(&blockedMap{})
			h.goal(goal)

			for i := 0; i < 100 && len(searcher.calls) < 2; i++ {
				tickAt(robot.Pose{})
			}

			Expect(searcher.calls).To(HaveLen(2))
			replans := logs.FilterMessage("replanning").All()
			Expect(replans).To(HaveLen(1))
			Expect(replans[0].ContextMap()).To(HaveKeyWithValue("reason", ReasonDrift.String()))
			Expect(h.nav.Mode()).To(Equal(ModeTrack))
		})

		It("stops without a command when the replan after drift fails", func() {
			h, _ = newHarness(cfg, searcher, robot.Pose{})
			h.nav.HandleMap(&blockedMap{})
			h.goal(goal)
			searcher.err = errors.New("goal enclosed")
			h.applyPublished()

			var ok bool
			for i := 0; i < 100 && len(searcher.calls) < 2; i++ {
				_, ok = h.nav.Tick(robot.Pose{})
				h.clk.Add(100 * time.Millisecond)
			}

			Expect(searcher.calls).To(HaveLen(2))
			Expect(ok).To(BeFalse())
			Expect(h.nav.Mode()).To(Equal(ModeIdle))
			Expect(h.nav.CanComputeControl()).To(BeFalse())
			Expect(h.pub.Commands()).To(HaveLen(2))
			Expect(h.pub.Commands()).To(HaveEach(robot.Stop))
		})
	})
})
