package ping

import (
	"context"
	"sync/atomic"
	"time"

	"pingflow/internal/models"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	. "github.com/onsi/gomega/gleak"
)

func drain(ch <-chan models.ProbeResult) []models.ProbeResult {
	var results []models.ProbeResult
	for r := range ch {
		results = append(results, r)
	}
	return results
}

var _ = Describe("pinger", func() {

	var spawned atomic.Int32

	BeforeEach(func() {
		spawned.Store(0)
		goodgos := Goroutines()
		DeferCleanup(func() {
			Eventually(Goroutines).WithTimeout(3 * time.Second).WithPolling(250 * time.Millisecond).
				ShouldNot(HaveLeaked(goodgos))
		})
	})

	newPinger := func(host string) *Pinger {
		return New(host, WithRunner(fakePing(&spawned)), WithPlatform(Linux))
	}

	Context("configuration", func() {

		It("chains setters on the same instance", func() {
			p := newPinger("example.com")
			Expect(p.SetCount(3).SetTimeout(5 * time.Second).SetTTL(32)).To(BeIdenticalTo(p))
			Expect(p.Config()).To(And(
				HaveField("Count", 3),
				HaveField("Timeout", 5*time.Second),
				HaveField("TTL", 32)))
		})

		It("detects IPv6 literals and lets an explicit version win", func() {
			p := newPinger("2001:db8::1")
			Expect(p.Config().IPVersion).To(Equal(IPv6))
			Expect(p.Command()).To(ContainElement("-6"))

			p.SetIPVersion(IPv4)
			Expect(p.Command()).To(ContainElement("-4"))
			Expect(p.Command()).NotTo(ContainElement("-6"))
		})

		It("keeps the host and detected version when given a config", func() {
			p := New("::1", WithConfig(Config{Host: "other", Count: 2, Timeout: time.Second}), WithPlatform(Linux))
			Expect(p.Config().Host).To(Equal("::1"))
			Expect(p.Config().IPVersion).To(Equal(IPv6))
			Expect(p.Config().Count).To(Equal(2))
		})

		It("rejects an invalid configuration without running", func(ctx context.Context) {
			_, err := newPinger("example.com").SetTimeout(0).Run(ctx)
			Expect(err).To(MatchError(ErrInvalidConfig))
			Expect(spawned.Load()).To(BeZero())
		})

		It("leaves endless pinging to streams", func(ctx context.Context) {
			_, err := newPinger("example.com").SetCount(0).Run(ctx)
			Expect(err).To(MatchError(ErrInvalidConfig))
			_, err = newPinger("example.com").SetCount(0).RunAsync(ctx)
			Expect(err).To(MatchError(ErrInvalidConfig))
			Expect(spawned.Load()).To(BeZero())
		})
	})

	Context("single runs", func() {

		It("returns a success", func(ctx context.Context) {
			res, err := newPinger("ok.example").Run(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(res).To(BeAssignableToTypeOf(&models.Success{}))
			s := res.(*models.Success)
			Expect(s.Received).To(Equal(1))
			Expect(s.AverageResponseTime()).To(Equal(0.042))
			Expect(s.Target).To(Equal("ok.example"))
		})

		It("returns probe failures as results, not errors", func(ctx context.Context) {
			res, err := newPinger("nowhere.invalid").Run(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(res).To(BeAssignableToTypeOf(&models.Failure{}))
			Expect(res.(*models.Failure).Kind).To(Equal(models.ErrorHostNotFound))
			Expect(res.PacketLoss()).To(Equal(100.0))
		})

		It("runs in the background", func(ctx context.Context) {
			a, err := newPinger("ok.example").RunAsync(ctx)
			Expect(err).NotTo(HaveOccurred())
			Eventually(a.Done()).WithTimeout(10 * time.Second).Should(BeClosed())
			res, err := a.Wait()
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Succeeded()).To(BeTrue())
		})

		It("does not spawn when already cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			a, err := newPinger("ok.example").RunAsync(ctx)
			Expect(err).To(MatchError(ErrAborted))
			Expect(a).To(BeNil())
			Expect(spawned.Load()).To(BeZero())
		})

		It("aborts a running ping on cancellation", func() {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			a, err := newPinger("slow.example").RunAsync(ctx)
			Expect(err).NotTo(HaveOccurred())
			time.AfterFunc(200*time.Millisecond, cancel)
			_, err = a.Wait()
			Expect(err).To(MatchError(ErrAborted))
		})
	})

	Context("streaming", func() {

		It("emits count results in order and ends", func(ctx context.Context) {
			p := newPinger("ok.example").SetCount(3).SetInterval(0)
			results := drain(p.Stream(ctx))
			Expect(results).To(HaveLen(3))
			Expect(results).To(HaveEach(HaveField("Succeeded()", BeTrue())))
			Expect(spawned.Load()).To(BeEquivalentTo(3))
		})

		It("probes one attempt per process", func(ctx context.Context) {
			p := newPinger("ok.example").SetCount(2).SetInterval(0)
			for r := range p.Stream(ctx) {
				Expect(r.Info().Output).To(ContainSubstring("1 packets transmitted"))
			}
		})

		It("ends without emitting when already cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			Expect(drain(newPinger("ok.example").SetCount(0).Stream(ctx))).To(BeEmpty())
			Expect(spawned.Load()).To(BeZero())
		})

		It("stops during the interval wait", func() {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			ch := newPinger("ok.example").SetCount(0).SetInterval(time.Minute).Stream(ctx)

			Eventually(ch).WithTimeout(10 * time.Second).Should(Receive())
			cancel()
			Eventually(ch).WithTimeout(2 * time.Second).Should(BeClosed())
			Expect(spawned.Load()).To(BeEquivalentTo(1))
		})

		It("stops an attempt in flight", func() {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			ch := newPinger("slow.example").SetCount(0).Stream(ctx)

			time.AfterFunc(300*time.Millisecond, cancel)
			Eventually(ch).WithTimeout(10 * time.Second).Should(BeClosed())
		})

		It("keeps going when attempts cannot run", func(ctx context.Context) {
			p := New("ok.example", WithRunner(missingBinary(&spawned)), WithPlatform(Linux)).
				SetCount(3).SetInterval(0)
			results := drain(p.Stream(ctx))
			Expect(results).To(HaveLen(3))
			for _, r := range results {
				Expect(r).To(BeAssignableToTypeOf(&models.Failure{}))
				Expect(r.(*models.Failure).Kind).To(Equal(models.ErrorUnknown))
				Expect(r.Info().Output).To(ContainSubstring("pingflow-no-such-binary"))
			}
		})

		It("ignores later setter calls", func(ctx context.Context) {
			p := newPinger("ok.example").SetCount(2).SetInterval(0)
			ch := p.Stream(ctx)
			p.SetCount(10)
			Expect(drain(ch)).To(HaveLen(2))
		})
	})

	Context("sweeping", func() {

		It("pings every host once", func(ctx context.Context) {
			hosts := []string{"a.example", "nowhere.invalid", "b.example", "c.example"}
			results := drain(Sweep(ctx, hosts, 2, WithRunner(fakePing(&spawned)), WithPlatform(Linux)))

			Expect(results).To(HaveLen(len(hosts)))
			targets := make([]string, 0, len(results))
			failed := 0
			for _, r := range results {
				targets = append(targets, r.Info().Target)
				if !r.Succeeded() {
					failed++
				}
			}
			Expect(targets).To(ConsistOf(hosts))
			Expect(failed).To(Equal(1))
		})

		It("pings once when the count is 0", func(ctx context.Context) {
			cfg := DefaultConfig("")
			cfg.Count = 0
			results := drain(Sweep(ctx, []string{"a.example"}, 1, WithRunner(fakePing(&spawned)), WithPlatform(Linux), WithConfig(cfg)))
			Expect(results).To(HaveLen(1))
			Expect(results[0].Succeeded()).To(BeTrue())
		})

		It("stops when cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			ch := Sweep(ctx, []string{"slow.example", "slow.example"}, 2, WithRunner(fakePing(&spawned)))
			time.AfterFunc(300*time.Millisecond, cancel)
			Eventually(ch).WithTimeout(10 * time.Second).Should(BeClosed())
		})
	})
})
