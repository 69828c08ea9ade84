package engine_test

import (
	"bytes"
	"errors"
	"math"
	"math/rand"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/forcegraph/internal/compute"
	"github.com/san-kum/forcegraph/internal/engine"
	"github.com/san-kum/forcegraph/internal/forces"
	"github.com/san-kum/forcegraph/internal/graph"
)

type stubBackend struct {
	phases []compute.Phase
}

func (s *stubBackend) Name() string            { return "stub" }
func (s *stubBackend) Available() bool         { return true }
func (s *stubBackend) Phases() []compute.Phase { return s.phases }
func (s *stubBackend) Cleanup()                {}

func quiet() *log.Logger {
	return log.NewWithOptions(&bytes.Buffer{}, log.Options{Level: log.FatalLevel})
}

func parallelOpts() compute.Options {
	opts := compute.DefaultOptions()
	opts.Workers = 4
	opts.MinChunk = 64
	return opts
}

func still() graph.Params {
	return graph.Params{DeltaTime: 1, Damping: 1}
}

func scatter(n int, seed int64) []graph.Node {
	rng := rand.New(rand.NewSource(seed))
	nodes := make([]graph.Node, n)
	for i := range nodes {
		nodes[i].X = rng.Float64()*1800 - 900
		nodes[i].Y = rng.Float64()*1800 - 900
		nodes[i].Mass = 1
	}
	return nodes
}

var _ = Describe("Engine", func() {
	var eng *engine.Engine

	Context("with the parallel backend", func() {
		BeforeEach(func() {
			eng = engine.New(engine.WithLogger(quiet()), engine.WithOptions(parallelOpts()))
		})

		AfterEach(func() { eng.Close() })

		It("selects the grid pipeline", func() {
			Expect(eng.Backend()).To(HavePrefix("parallel-grid"))
		})

		It("drifts a lone node by v·dt", func() {
			in := []graph.Node{{VX: 1, Mass: 1}}
			out, err := eng.TryStep(in, nil, still())
			Expect(err).NotTo(HaveOccurred())
			Expect(out[0].X).To(Equal(1.0))
			Expect(out[0].Y).To(Equal(0.0))
			Expect(out[0].VX).To(Equal(1.0))
			Expect(out[0].VY).To(Equal(0.0))
		})

		It("pushes two close nodes apart symmetrically", func() {
			p := still()
			p.RepulsionStrength = 1
			p.RepulsionRadius = 2
			out, err := eng.TryStep([]graph.Node{{Mass: 1}, {X: 1, Mass: 1}}, nil, p)
			Expect(err).NotTo(HaveOccurred())

			Expect(out[0].VX).To(BeNumerically("<", 0))
			Expect(out[1].VX).To(BeNumerically(">", 0))
			Expect(out[0].VX).To(BeNumerically("~", -out[1].VX, 1e-12))
			Expect(out[0].VY).To(Equal(0.0))
			Expect(out[1].VY).To(Equal(0.0))
			Expect(out[0].X).To(BeNumerically("~", -1, 1e-12))
			Expect(out[1].X).To(BeNumerically("~", 2, 1e-12))
		})

		It("does not modify the caller's nodes", func() {
			in := []graph.Node{{VX: 1, Mass: 1}}
			_ = eng.Step(in, nil, still())
			Expect(in[0].X).To(Equal(0.0))
		})

		It("is deterministic for identical input", func() {
			nodes := scatter(2000, 5)
			edges := make([]graph.Edge, 0, 1999)
			for i := 1; i < len(nodes); i++ {
				edges = append(edges, graph.Edge{A: i - 1, B: i})
			}
			p := graph.DefaultParams()

			a := eng.Step(nodes, edges, p)
			b := eng.Step(nodes, edges, p)
			Expect(a).To(Equal(b))
		})

		It("keeps coincident nodes finite", func() {
			p := graph.DefaultParams()
			out, err := eng.TryStep([]graph.Node{{X: 5, Y: 5}, {X: 5, Y: 5}, {X: 5, Y: 5}}, nil, p)
			Expect(err).NotTo(HaveOccurred())
			for _, n := range out {
				Expect(n.IsFinite()).To(BeTrue())
			}
		})

		It("leaves nodes outside the repulsion radius untouched", func() {
			p := still()
			p.RepulsionStrength = 1000
			p.RepulsionRadius = 10
			out, err := eng.TryStep([]graph.Node{{Mass: 1}, {X: 10.5, Mass: 1}}, nil, p)
			Expect(err).NotTo(HaveOccurred())
			Expect(out[0].VX).To(Equal(0.0))
			Expect(out[1].VX).To(Equal(0.0))
		})

		It("matches brute force on a sample of 10000 nodes", func() {
			nodes := scatter(10000, 11)
			p := graph.Params{DeltaTime: 1, Damping: 1, RepulsionStrength: 500, RepulsionRadius: 50}

			out, err := eng.TryStep(nodes, nil, p)
			Expect(err).NotTo(HaveOccurred())

			rng := rand.New(rand.NewSource(3))
			for k := 0; k < 200; k++ {
				i := rng.Intn(len(nodes))
				fx, fy := forces.RepelBruteAt(nodes, p, i)
				// dt = 1, damping = 1, unit mass: velocity equals force.
				Expect(out[i].VX).To(BeNumerically("~", fx, 1e-6))
				Expect(out[i].VY).To(BeNumerically("~", fy, 1e-6))
			}
		})

		It("is deterministic when crowded cells overflow", func() {
			opts := compute.DefaultOptions()
			opts.Workers = 16
			opts.MinChunk = 1
			opts.CellCapacity = 4
			crowded := engine.New(engine.WithLogger(quiet()), engine.WithOptions(opts))
			defer crowded.Close()
			Expect(crowded.Backend()).To(HavePrefix("parallel-grid"))

			rng := rand.New(rand.NewSource(17))
			nodes := make([]graph.Node, 2000)
			for i := range nodes {
				nodes[i].X = rng.Float64() * 20
				nodes[i].Y = rng.Float64() * 20
				nodes[i].Mass = 1
			}
			p := graph.DefaultParams()

			first, err := crowded.TryStep(nodes, nil, p)
			Expect(err).NotTo(HaveOccurred())
			Expect(first).NotTo(Equal(nodes))
			for run := 0; run < 100; run++ {
				Expect(crowded.Step(nodes, nil, p)).To(Equal(first), "run %d", run)
			}
		})

		It("runs an empty graph", func() {
			out, err := eng.TryStep(nil, nil, graph.DefaultParams())
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(BeEmpty())
		})
	})

	Context("when the input exceeds capacity", func() {
		var buf *bytes.Buffer

		BeforeEach(func() {
			buf = &bytes.Buffer{}
			logger := log.NewWithOptions(buf, log.Options{Level: log.WarnLevel})
			eng = engine.New(
				engine.WithLogger(logger),
				engine.WithBackend(compute.NewSerialBackend()),
				engine.WithLimits(4, 2),
			)
		})

		It("truncates max+1 nodes with exactly one log entry", func() {
			nodes := scatter(5, 1)
			edges := []graph.Edge{{A: 0, B: 1}, {A: 2, B: 4}, {A: 1, B: 2}}

			out, err := eng.TryStep(nodes, edges, graph.DefaultParams())
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(HaveLen(4))
			Expect(strings.Count(buf.String(), "\n")).To(Equal(1))
			Expect(buf.String()).To(ContainSubstring("truncating"))
			Expect(buf.String()).To(ContainSubstring("dropped_nodes=1"))
		})

		It("logs nothing when within capacity", func() {
			_, err := eng.TryStep(scatter(4, 1), []graph.Edge{{A: 0, B: 1}}, graph.DefaultParams())
			Expect(err).NotTo(HaveOccurred())
			Expect(buf.Len()).To(BeZero())
		})

		It("reports its limits", func() {
			Expect(eng.MaxNodes()).To(Equal(4))
			Expect(eng.MaxEdges()).To(Equal(2))
		})
	})

	Context("when the accelerated backend is disabled", func() {
		It("falls back to the serial backend with a warning", func() {
			buf := &bytes.Buffer{}
			opts := compute.DefaultOptions()
			opts.Accelerate = false
			eng = engine.New(
				engine.WithLogger(log.NewWithOptions(buf, log.Options{Level: log.WarnLevel})),
				engine.WithOptions(opts),
			)
			Expect(eng.Backend()).To(Equal("serial-brute"))
			Expect(buf.String()).To(ContainSubstring("fallback"))

			out := eng.Step([]graph.Node{{VX: 1, Mass: 1}}, nil, still())
			Expect(out[0].X).To(Equal(1.0))
		})
	})

	Context("when a phase fails", func() {
		It("abandons the step and returns the input", func() {
			fail := errors.New("lost device")
			eng = engine.New(engine.WithLogger(quiet()), engine.WithBackend(&stubBackend{phases: []compute.Phase{
				{Name: compute.PhaseRepulsion, Run: func(f *compute.Frame) error {
					f.Nodes[0].X = 99
					return fail
				}},
			}}))

			in := []graph.Node{{X: 1}}
			out, err := eng.TryStep(in, nil, still())
			Expect(err).To(MatchError(graph.ErrStepAbandoned))
			Expect(err).To(MatchError(fail))

			var se *graph.StepError
			Expect(errors.As(err, &se)).To(BeTrue())
			Expect(se.Phase).To(Equal(compute.PhaseRepulsion))
			Expect(se.Step).To(Equal(uint64(1)))
			Expect(out[0].X).To(Equal(1.0))
		})

		It("abandons a step that produced non-finite values", func() {
			eng = engine.New(engine.WithLogger(quiet()), engine.WithBackend(&stubBackend{phases: []compute.Phase{
				{Name: compute.PhaseIntegrate, Run: func(f *compute.Frame) error {
					f.Nodes[0].VX = math.Inf(1)
					return nil
				}},
			}}))

			out, err := eng.TryStep([]graph.Node{{}}, nil, still())
			Expect(err).To(MatchError(graph.ErrStepAbandoned))
			Expect(err).To(MatchError(graph.ErrUnstable))
			Expect(out[0].VX).To(Equal(0.0))
		})
	})

	Context("frame skipping", func() {
		It("skips when the consumer is not ready", func() {
			ready := false
			eng = engine.New(
				engine.WithLogger(quiet()),
				engine.WithBackend(compute.NewSerialBackend()),
				engine.WithReadiness(func() bool { return ready }),
			)

			_, err := eng.TryStep([]graph.Node{{VX: 1}}, nil, still())
			Expect(err).To(MatchError(graph.ErrFrameSkipped))
			Expect(eng.Steps()).To(BeZero())

			ready = true
			out, err := eng.TryStep([]graph.Node{{VX: 1}}, nil, still())
			Expect(err).NotTo(HaveOccurred())
			Expect(out[0].X).To(Equal(1.0))
		})

		It("skips a step requested while another is in flight", func() {
			entered := make(chan struct{})
			release := make(chan struct{})
			eng = engine.New(engine.WithLogger(quiet()), engine.WithBackend(&stubBackend{phases: []compute.Phase{
				{Name: "block", Run: func(*compute.Frame) error {
					close(entered)
					<-release
					return nil
				}},
			}}))

			var wg sync.WaitGroup
			wg.Add(1)
			go func() {
				defer GinkgoRecover()
				defer wg.Done()
				_, err := eng.TryStep(nil, nil, still())
				Expect(err).NotTo(HaveOccurred())
			}()

			<-entered
			_, err := eng.TryStep(nil, nil, still())
			Expect(err).To(MatchError(graph.ErrFrameSkipped))
			close(release)
			wg.Wait()
		})
	})

	Context("owned state", func() {
		BeforeEach(func() {
			eng = engine.New(engine.WithLogger(quiet()), engine.WithBackend(compute.NewSerialBackend()))
		})

		It("ticks the replaced graph", func() {
			eng.Replace([]graph.Node{{VX: 1, Mass: 1}, {X: 500, Mass: 1}}, []graph.Edge{{A: 0, B: 1}})
			Expect(eng.NodeCount()).To(Equal(2))
			Expect(eng.EdgeCount()).To(Equal(1))

			Expect(eng.Tick(still())).To(Succeed())
			Expect(eng.Tick(still())).To(Succeed())
			Expect(eng.Nodes()[0].X).To(Equal(2.0))
		})

		It("reports a tick whose result a Replace discarded", func() {
			replaced := false
			eng = engine.New(
				engine.WithLogger(quiet()),
				engine.WithBackend(compute.NewSerialBackend()),
				engine.WithReadiness(func() bool {
					if !replaced {
						replaced = true
						eng.Replace([]graph.Node{{X: 42, Mass: 1}}, nil)
					}
					return true
				}),
			)
			eng.Replace([]graph.Node{{VX: 1, Mass: 1}}, nil)

			err := eng.Tick(still())
			Expect(err).To(MatchError(graph.ErrFrameSkipped))
			var se *graph.StepError
			Expect(errors.As(err, &se)).To(BeTrue())
			Expect(se.Phase).To(Equal("replaced"))
			Expect(eng.Nodes()[0].X).To(Equal(42.0))

			Expect(eng.Tick(still())).To(Succeed())
			Expect(eng.Nodes()[0].X).To(Equal(42.0))
		})

		It("returns copies", func() {
			eng.Replace([]graph.Node{{X: 1}}, nil)
			eng.Nodes()[0].X = 7
			Expect(eng.Nodes()[0].X).To(Equal(1.0))
		})

		It("replaces from flat buffers", func() {
			nb := []float32{
				0, 0, 1, 1, 1, 1, 4,
				10, 0, 1, 1, 1, 1, 4,
			}
			eb := []float32{0, 0, 10, 0, 1, 1, 1, 1, 2}
			Expect(eng.ReplaceBuffers(nb, eb)).To(Succeed())
			Expect(eng.NodeCount()).To(Equal(2))
			Expect(eng.Edges()[0]).To(HaveField("B", 1))
			Expect(eng.Buffer()).To(HaveLen(2 * graph.NodeStride))
		})

		It("rejects malformed buffers", func() {
			Expect(eng.ReplaceBuffers([]float32{1, 2, 3}, nil)).To(MatchError(graph.ErrStride))
		})
	})
})
