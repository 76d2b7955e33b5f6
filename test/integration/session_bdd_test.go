//go:build integration

package integration

import (
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/proctorhq/proctord/internal/daemon"
	"github.com/proctorhq/proctord/internal/domain"
	"github.com/proctorhq/proctord/internal/usecase"
	"github.com/proctorhq/proctord/test/fixtures"
)

// wiredSession assembles a full engine/controller pair over fakes, the same
// wiring the CLI performs minus the OS adapters.
type wiredSession struct {
	controller *usecase.Controller
	windows    *fixtures.FakeWindowProvider
	lister     *fixtures.FakeProcessLister
	tap        *fixtures.FakeShortcutTap
	destructor *fixtures.CountingDestructor
	sink       *fixtures.CollectingSink
	exits      *atomic.Int32
}

func newWiredSession(shotDir string) *wiredSession {
	logger := zap.NewNop()
	s := &wiredSession{
		windows:    fixtures.NewFakeWindowProvider(),
		lister:     fixtures.NewFakeProcessLister("loginwindow", "Finder"),
		tap:        &fixtures.FakeShortcutTap{},
		destructor: &fixtures.CountingDestructor{},
		sink:       &fixtures.CollectingSink{},
		exits:      &atomic.Int32{},
	}

	cfg := daemon.EngineConfig{
		PollInterval:        20 * time.Millisecond,
		ProcessScanInterval: 20 * time.Millisecond,
		ScreenshotDir:       shotDir,
		ScreenshotRecency:   5 * time.Second,
	}
	blacklist := daemon.NewBlacklistMonitor(s.lister, nil, logger)

	var controller *usecase.Controller
	engine := daemon.NewEngine(cfg, s.windows, blacklist, s.tap, daemon.Callbacks{
		OnViolation:      func(ev domain.ViolationEvent) { controller.HandleViolation(ev) },
		OnBlacklistedApp: func(name string) { controller.HandleBlacklistedApp(name) },
		OnError:          func(err error) {},
	}, logger)

	controller = usecase.NewController("sess-integration", engine, nil,
		[]domain.AlertSink{s.sink}, s.destructor, "/tmp/Proctor.app", logger).
		WithExitFunc(func(int) { s.exits.Add(1) })
	s.controller = controller
	return s
}

var _ = Describe("Monitoring session", func() {
	var s *wiredSession

	BeforeEach(func() {
		s = newWiredSession("")
	})

	AfterEach(func() {
		// Sessions that never terminated are shut down through the quit path.
		if s.controller.Phase() == domain.PhaseMonitoring {
			s.controller.RequestQuit()
		}
	})

	Describe("critical window detection", func() {
		Context("when a capture window appears during monitoring", func() {
			It("terminates within one poll tick and spawns the scrub helper once", func() {
				Expect(s.controller.Start()).To(Succeed())
				s.windows.SetWindows(fixtures.OBSCaptureWindow(), fixtures.CleanEditorWindow())

				Eventually(func() domain.Phase {
					return s.controller.Phase()
				}, time.Second, 5*time.Millisecond).Should(Equal(domain.PhaseTerminating))

				Expect(s.destructor.Spawns()).To(HaveLen(1))
				Expect(s.destructor.Spawns()[0]).To(Equal("/tmp/Proctor.app"))
				Expect(s.exits.Load()).To(Equal(int32(1)))

				records := s.sink.Records()
				Expect(records).NotTo(BeEmpty())
				Expect(records[0].SessionID).To(Equal("sess-integration"))

				types := make([]string, 0, len(records))
				for _, rec := range records {
					Expect(rec.WindowInfo.ProcessName).To(Equal("OBS"))
					types = append(types, rec.ViolationType)
				}
				Expect(types).To(ContainElement(
					Or(Equal("suspicious_overlay"), Equal("screen_recording"))))
			})
		})

		Context("when only an advisory window appears", func() {
			It("records the alert and keeps monitoring", func() {
				Expect(s.controller.Start()).To(Succeed())
				s.windows.SetWindows(fixtures.HighLayerWindow())

				Eventually(func() []domain.AlertRecord {
					return s.sink.Records()
				}, time.Second, 5*time.Millisecond).ShouldNot(BeEmpty())

				Expect(s.sink.Records()[0].ViolationType).To(Equal("layer_anomaly"))
				Expect(s.controller.Phase()).To(Equal(domain.PhaseMonitoring))
				Expect(s.destructor.Spawns()).To(BeEmpty())
			})
		})
	})

	Describe("screenshot shortcut detection", func() {
		It("terminates on a capture shortcut keydown", func() {
			Expect(s.controller.Start()).To(Succeed())

			s.tap.Press("cmd+shift+4 (region)")

			Expect(s.controller.Phase()).To(Equal(domain.PhaseTerminating))
			Expect(s.destructor.Spawns()).To(HaveLen(1))

			records := s.sink.Records()
			Expect(records).To(HaveLen(1))
			Expect(records[0].ViolationType).To(Equal("screenshot_detected"))
			Expect(records[0].WindowInfo.ProcessName).To(Equal("System Screenshot"))
		})
	})

	Describe("blacklisted applications", func() {
		It("terminates when a blacklisted process shows up", func() {
			Expect(s.controller.Start()).To(Succeed())
			s.lister.SetNames("loginwindow", "Finder", "TeamViewer")

			Eventually(func() domain.Phase {
				return s.controller.Phase()
			}, time.Second, 5*time.Millisecond).Should(Equal(domain.PhaseTerminating))

			Expect(s.destructor.Spawns()).To(HaveLen(1))
		})
	})

	Describe("screenshot file detection", func() {
		It("terminates when a fresh screenshot lands in the save directory", func() {
			desktop, err := fixtures.NewFakeDesktop(GinkgoT().TempDir())
			Expect(err).NotTo(HaveOccurred())

			s = newWiredSession(desktop.Dir)
			Expect(s.controller.Start()).To(Succeed())

			Expect(desktop.DropScreenshot("Screenshot 2024-01-15 at 14.30.45.png")).To(Succeed())

			Eventually(func() domain.Phase {
				return s.controller.Phase()
			}, 2*time.Second, 10*time.Millisecond).Should(Equal(domain.PhaseTerminating))

			records := s.sink.Records()
			Expect(records).To(HaveLen(1))
			Expect(records[0].ViolationType).To(Equal("screenshot_detected"))
			Expect(records[0].Details).To(ContainSubstring("Screenshot 2024-01-15 at 14.30.45.png"))
		})
	})
})
