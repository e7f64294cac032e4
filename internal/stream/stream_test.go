package stream

import (
	"context"
	"strconv"
	"sync/atomic"
	"time"

	"pingflow/internal/models"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	. "github.com/onsi/gomega/gleak"
)

// source returns a closed channel holding vs.
func source[T any](vs ...T) <-chan T {
	ch := make(chan T, len(vs))
	for _, v := range vs {
		ch <- v
	}
	close(ch)
	return ch
}

func collect[T any](ch <-chan T) []T {
	var vs []T
	for v := range ch {
		vs = append(vs, v)
	}
	return vs
}

func success(target string, rtt float64) models.ProbeResult {
	return &models.Success{ProbeInfo: models.ProbeInfo{Target: target}, Transmitted: 1, Received: 1, AvgRTT: &rtt}
}

func failure(target string) models.ProbeResult {
	return &models.Failure{ProbeInfo: models.ProbeInfo{Target: target}, Kind: models.ErrorTimeout}
}

var _ = Describe("stream combinators", func() {

	BeforeEach(func() {
		goodgos := Goroutines()
		DeferCleanup(func() {
			Eventually(Goroutines).WithTimeout(3 * time.Second).WithPolling(250 * time.Millisecond).
				ShouldNot(HaveLeaked(goodgos))
		})
	})

	Context("take", func() {

		It("forwards at most n values", func(ctx context.Context) {
			Expect(collect(Take(ctx, source(1, 2, 3, 4, 5), 3))).To(Equal([]int{1, 2, 3}))
			Expect(collect(Take(ctx, source(1, 2), 5))).To(Equal([]int{1, 2}))
			Expect(collect(Take(ctx, source(1, 2), 0))).To(BeEmpty())
		})

		It("stops pulling upstream", func() {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			var sent atomic.Int32
			upstream := make(chan int)
			go func() {
				defer close(upstream)
				for i := 0; ; i++ {
					select {
					case upstream <- i:
						sent.Add(1)
					case <-ctx.Done():
						return
					}
				}
			}()

			Expect(collect(Take(ctx, upstream, 2))).To(Equal([]int{0, 1}))
			Consistently(sent.Load).WithTimeout(200 * time.Millisecond).Should(BeEquivalentTo(2))
		})
	})

	Context("filter and map", func() {

		It("filters", func(ctx context.Context) {
			even := func(v int) bool { return v%2 == 0 }
			Expect(collect(Filter(ctx, source(1, 2, 3, 4, 5, 6), even))).To(Equal([]int{2, 4, 6}))
		})

		It("maps to another type", func(ctx context.Context) {
			Expect(collect(Map(ctx, source(1, 2, 3), strconv.Itoa))).To(Equal([]string{"1", "2", "3"}))
		})

		It("skips by outcome", func(ctx context.Context) {
			results := []models.ProbeResult{success("a", 1), failure("b"), success("c", 2), failure("d")}

			kept := collect(SkipFailures(ctx, source(results...)))
			Expect(kept).To(HaveLen(2))
			Expect(kept).To(HaveEach(HaveField("Succeeded()", BeTrue())))

			kept = collect(SkipSuccesses(ctx, source(results...)))
			Expect(kept).To(HaveLen(2))
			Expect(kept).To(HaveEach(HaveField("Succeeded()", BeFalse())))
		})
	})

	Context("windows and batches", func() {

		It("sends full sliding windows only", func(ctx context.Context) {
			Expect(collect(Window(ctx, source(1, 2, 3, 4, 5), 3))).To(Equal([][]int{
				{1, 2, 3}, {2, 3, 4}, {3, 4, 5},
			}))
			Expect(collect(Window(ctx, source(1, 2), 3))).To(BeEmpty())
		})

		It("sends independent window copies", func(ctx context.Context) {
			windows := collect(Window(ctx, source(1, 2, 3), 2))
			windows[0][0] = 42
			Expect(windows[1]).To(Equal([]int{2, 3}))
		})

		It("batches exact multiples without a remainder", func(ctx context.Context) {
			Expect(collect(Batch(ctx, source(1, 2, 3, 4, 5, 6), 2))).To(Equal([][]int{
				{1, 2}, {3, 4}, {5, 6},
			}))
		})

		It("sends the remainder as a partial batch", func(ctx context.Context) {
			Expect(collect(Batch(ctx, source(1, 2, 3, 4, 5, 6, 7), 3))).To(Equal([][]int{
				{1, 2, 3}, {4, 5, 6}, {7},
			}))
		})

		It("sends a partial batch after the timeout", func() {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			in := make(chan int)
			batches := BatchWithTimeout(ctx, in, 3, 100*time.Millisecond)

			in <- 1
			Eventually(batches).WithTimeout(2 * time.Second).Should(Receive(Equal([]int{1})))

			in <- 2
			in <- 3
			in <- 4
			Eventually(batches).WithTimeout(time.Second).Should(Receive(Equal([]int{2, 3, 4})))
			Consistently(batches).WithTimeout(250 * time.Millisecond).ShouldNot(Receive())

			close(in)
			Eventually(batches).Should(BeClosed())
		})
	})

	Context("rolling statistics", func() {

		It("waits for three successes", func(ctx context.Context) {
			in := source(success("a", 10), failure("a"), success("a", 20), success("a", 30))
			stats := collect(RollingStats(ctx, in, 10))

			Expect(stats).To(HaveLen(1))
			Expect(stats[0]).To(And(
				HaveField("Target", "a"),
				HaveField("Count", 3),
				HaveField("Average", 20.0),
				HaveField("Minimum", 10.0),
				HaveField("Maximum", 30.0),
				HaveField("StandardDeviation", 8.16),
				HaveField("Jitter", 6.67),
				HaveField("PacketLoss", 25.0)))
		})

		It("has no spread for identical times", func(ctx context.Context) {
			in := source(success("a", 5), success("a", 5), success("a", 5), success("a", 5))
			stats := collect(RollingStats(ctx, in, 3))

			Expect(stats).To(HaveLen(2))
			for _, s := range stats {
				Expect(s.StandardDeviation).To(BeZero())
				Expect(s.Jitter).To(BeZero())
				Expect(s.PacketLoss).To(BeZero())
			}
		})

		It("emits earlier for small windows and forgets old results", func(ctx context.Context) {
			in := source(failure("a"), success("a", 1), success("a", 3), success("a", 3))
			stats := collect(RollingStats(ctx, in, 2))

			Expect(stats).To(HaveLen(2))
			Expect(stats[0]).To(And(HaveField("Average", 2.0), HaveField("PacketLoss", 0.0)))
			Expect(stats[1]).To(And(HaveField("Average", 3.0), HaveField("Count", 2)))
		})

		It("reports total loss without successes", func() {
			at := time.Now()
			stats := Compute(nil, []models.ProbeResult{failure("a"), failure("a")}, at)
			Expect(stats).To(Equal(models.RollingStats{Target: "a", PacketLoss: 100, Timestamp: at}))
		})
	})

	Context("merging", func() {

		It("forwards everything", func(ctx context.Context) {
			merged := collect(Merge(ctx, source(1, 2, 3), source(4, 5), source[int]()))
			Expect(merged).To(ConsistOf(1, 2, 3, 4, 5))
		})

		It("does not wait for a slow source", func(ctx context.Context) {
			slow := make(chan int)
			merged := Merge(ctx, slow, source(1, 2))

			Eventually(merged).Should(Receive(Equal(1)))
			Eventually(merged).Should(Receive(Equal(2)))
			Consistently(merged).WithTimeout(100 * time.Millisecond).ShouldNot(BeClosed())

			slow <- 3
			Eventually(merged).Should(Receive(Equal(3)))
			close(slow)
			Eventually(merged).Should(BeClosed())
		})

		It("ends on cancellation", func() {
			ctx, cancel := context.WithCancel(context.Background())
			merged := Merge(ctx, make(chan int), make(chan int))
			cancel()
			Eventually(merged).Should(BeClosed())
		})
	})
})
