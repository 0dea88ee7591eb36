package heist_test

import (
	"context"
	"encoding/json"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	"github.com/levelup/heist/internal/adapters/catalog"
	"github.com/levelup/heist/internal/adapters/repository"
	"github.com/levelup/heist/internal/domain/heist"
	"github.com/levelup/heist/internal/domain/model"
	"github.com/levelup/heist/pkg/logger"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		os.Exit(1)
	}
	os.Exit(m.Run())
}

// fakeClock is a settable time source.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// recordingNotifier captures emitted events for assertions.
type recordingNotifier struct {
	mu     sync.Mutex
	events []recordedEvent
}

type recordedEvent struct {
	audience  string
	eventType string
}

func (n *recordingNotifier) Notify(ctx context.Context, audience, eventType string, payload interface{}) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, recordedEvent{audience: audience, eventType: eventType})
}

func (n *recordingNotifier) typesSeen() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, 0, len(n.events))
	for _, e := range n.events {
		out = append(out, e.eventType)
	}
	return out
}

type fixture struct {
	engine   *heist.Engine
	teams    *repository.MemoryTeamStore
	powerups *repository.MemoryPowerUpStore
	heists   *repository.MemoryHeistStore
	clock    *fakeClock
	notifier *recordingNotifier
}

func newFixture(opts ...heist.Option) *fixture {
	f := &fixture{
		teams:    repository.NewMemoryTeamStore(),
		powerups: repository.NewMemoryPowerUpStore(),
		heists:   repository.NewMemoryHeistStore(),
		clock:    newFakeClock(),
		notifier: &recordingNotifier{},
	}

	ctx := context.Background()
	_ = f.teams.Create(ctx, model.Team{ID: "attacker", Name: "Cyber Wolves", Cash: 1000, HeistStatus: model.HeistNone})
	_ = f.teams.Create(ctx, model.Team{ID: "target", Name: "Digital Pirates", Cash: 500, HeistStatus: model.HeistNone})
	_ = f.teams.Create(ctx, model.Team{ID: "bystander", Name: "Neon Raiders", Cash: 300, HeistStatus: model.HeistNone})

	base := []heist.Option{
		heist.WithClock(f.clock),
		heist.WithSafePicker(func(n int) int { return 0 }),
	}
	f.engine = heist.New(f.teams, f.powerups, f.heists, catalog.NewStaticCatalog(), f.notifier, append(base, opts...)...)
	return f
}

// solveCompound walks a heist through the compound stage.
func (f *fixture) solveCompound(t *testing.T, heistID string) *model.Challenge {
	t.Helper()
	ctx := context.Background()

	answers := map[string]string{"c_1": "def", "c_2": "[]", "c_3": "append"}
	var safe *model.Challenge
	for id, ans := range answers {
		res, err := f.engine.SubmitCompound(ctx, heistID, "attacker", id, ans)
		if err != nil {
			t.Fatalf("compound submit %s: %v", id, err)
		}
		if res.StageComplete {
			safe = res.SafeChallenge
		}
	}
	if safe == nil {
		t.Fatal("compound stage did not complete")
	}
	return safe
}

func TestEngine_Initiate(t *testing.T) {
	convey.Convey("Given two idle teams", t, func() {
		f := newFixture()
		ctx := context.Background()

		convey.Convey("When the attacker initiates a heist", func() {
			res, err := f.engine.Initiate(ctx, "attacker", "target")

			convey.Convey("Then a heist starts in the compound stage", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(res.Blocked, convey.ShouldBeFalse)
				convey.So(res.HeistID, convey.ShouldNotBeEmpty)
				convey.So(res.TimeLimit, convey.ShouldEqual, 180*time.Second)

				h, err := f.heists.Get(ctx, res.HeistID)
				convey.So(err, convey.ShouldBeNil)
				convey.So(h.Stage, convey.ShouldEqual, model.StageCompound)
				convey.So(h.Status, convey.ShouldEqual, model.StatusActive)
				convey.So(h.SafeChallengeIndex, convey.ShouldEqual, model.NoSafeChallenge)
			})

			convey.Convey("Then both teams are marked as involved", func() {
				attacker, _ := f.teams.Get(ctx, "attacker")
				target, _ := f.teams.Get(ctx, "target")
				convey.So(attacker.HeistStatus, convey.ShouldEqual, model.HeistAttacking)
				convey.So(target.HeistStatus, convey.ShouldEqual, model.HeistDefending)
			})

			convey.Convey("Then the compound challenges carry no answers", func() {
				convey.So(res.CompoundChallenges, convey.ShouldHaveLength, 3)
				for _, c := range res.CompoundChallenges {
					convey.So(c.Answer, convey.ShouldBeEmpty)
				}
			})

			convey.Convey("Then alert and broadcast events go out", func() {
				convey.So(f.notifier.typesSeen(), convey.ShouldContain, heist.EventHeistAlert)
				convey.So(f.notifier.typesSeen(), convey.ShouldContain, heist.EventHeistStarted)
			})
		})

		convey.Convey("When a team targets itself", func() {
			_, err := f.engine.Initiate(ctx, "attacker", "attacker")

			convey.Convey("Then initiation is rejected", func() {
				convey.So(err, convey.ShouldWrap, heist.ErrSelfTarget)
			})
		})

		convey.Convey("When the target does not exist", func() {
			_, err := f.engine.Initiate(ctx, "attacker", "ghost")

			convey.Convey("Then initiation is rejected", func() {
				convey.So(err, convey.ShouldWrap, heist.ErrTeamNotFound)
			})
		})
	})
}

func TestEngine_Initiate_Uniqueness(t *testing.T) {
	convey.Convey("Given an active heist between attacker and target", t, func() {
		f := newFixture()
		ctx := context.Background()

		_, err := f.engine.Initiate(ctx, "attacker", "target")
		convey.So(err, convey.ShouldBeNil)

		convey.Convey("When the attacker starts a second heist", func() {
			_, err := f.engine.Initiate(ctx, "attacker", "bystander")

			convey.Convey("Then it is rejected as busy", func() {
				convey.So(err, convey.ShouldWrap, heist.ErrAttackerBusy)
			})
		})

		convey.Convey("When another team targets the same defender", func() {
			_, err := f.engine.Initiate(ctx, "bystander", "target")

			convey.Convey("Then it is rejected as busy", func() {
				convey.So(err, convey.ShouldWrap, heist.ErrTargetBusy)
			})
		})

		convey.Convey("When the heist resolves", func() {
			safe := f.solveCompound(t, f.heists.ActiveByAttacker(ctx, "attacker").ID)
			convey.So(safe, convey.ShouldNotBeNil)
			res, err := f.engine.SubmitSafe(ctx, f.heists.Active(ctx)[0].ID, "attacker", "s[::-1]")
			convey.So(err, convey.ShouldBeNil)
			convey.So(res.HeistSuccess, convey.ShouldBeTrue)

			convey.Convey("Then both teams can heist again", func() {
				_, err := f.engine.Initiate(ctx, "bystander", "target")
				convey.So(err, convey.ShouldBeNil)
			})
		})
	})
}

func TestEngine_Initiate_Shield(t *testing.T) {
	convey.Convey("Given a target holding a shield", t, func() {
		f := newFixture()
		ctx := context.Background()
		convey.So(f.powerups.Grant(ctx, "target", model.Shield), convey.ShouldBeNil)

		convey.Convey("When a heist is initiated against it", func() {
			res, err := f.engine.Initiate(ctx, "attacker", "target")

			convey.Convey("Then the attempt is blocked and no heist exists", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(res.Blocked, convey.ShouldBeTrue)
				convey.So(res.HeistID, convey.ShouldBeEmpty)
				convey.So(f.heists.ActiveCount(ctx), convey.ShouldEqual, 0)
			})

			convey.Convey("Then the shield is consumed", func() {
				convey.So(f.powerups.Has(ctx, "target", model.Shield), convey.ShouldBeFalse)
			})

			convey.Convey("Then the attacker is untouched and free to retry", func() {
				attacker, _ := f.teams.Get(ctx, "attacker")
				convey.So(attacker.Cash, convey.ShouldEqual, 1000)
				convey.So(attacker.HeistStatus, convey.ShouldEqual, model.HeistNone)

				res, err := f.engine.Initiate(ctx, "attacker", "target")
				convey.So(err, convey.ShouldBeNil)
				convey.So(res.Blocked, convey.ShouldBeFalse)
			})
		})
	})
}

func TestEngine_TimeLimitComputation(t *testing.T) {
	convey.Convey("Given time-affecting power-ups on both sides", t, func() {
		f := newFixture()
		ctx := context.Background()
		convey.So(f.powerups.Grant(ctx, "attacker", model.TimeFreeze), convey.ShouldBeNil)
		convey.So(f.powerups.Grant(ctx, "target", model.GuardianAngel), convey.ShouldBeNil)

		convey.Convey("When the heist starts", func() {
			res, err := f.engine.Initiate(ctx, "attacker", "target")

			convey.Convey("Then both modifiers apply to the time limit", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(res.TimeLimit, convey.ShouldEqual, 210*time.Second)
			})

			convey.Convey("Then both power-ups are consumed", func() {
				convey.So(f.powerups.Has(ctx, "attacker", model.TimeFreeze), convey.ShouldBeFalse)
				convey.So(f.powerups.Has(ctx, "target", model.GuardianAngel), convey.ShouldBeFalse)
			})
		})
	})

	convey.Convey("Given a short base limit and a guardian angel", t, func() {
		f := newFixture(heist.WithBaseTimeLimit(20 * time.Second))
		ctx := context.Background()
		convey.So(f.powerups.Grant(ctx, "target", model.GuardianAngel), convey.ShouldBeNil)

		convey.Convey("When the heist starts", func() {
			res, err := f.engine.Initiate(ctx, "attacker", "target")

			convey.Convey("Then the limit is clamped to the floor", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(res.TimeLimit, convey.ShouldEqual, 10*time.Second)
			})
		})
	})
}

func TestEngine_SubmitCompound(t *testing.T) {
	convey.Convey("Given an active heist in the compound stage", t, func() {
		f := newFixture()
		ctx := context.Background()
		res, err := f.engine.Initiate(ctx, "attacker", "target")
		convey.So(err, convey.ShouldBeNil)
		heistID := res.HeistID

		convey.Convey("When a wrong answer is submitted", func() {
			out, err := f.engine.SubmitCompound(ctx, heistID, "attacker", "c_1", "lambda")

			convey.Convey("Then it costs nothing and progress stays", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(out.Correct, convey.ShouldBeFalse)
				convey.So(out.Progress, convey.ShouldEqual, 0)
			})
		})

		convey.Convey("When a correct answer is submitted with odd casing", func() {
			out, err := f.engine.SubmitCompound(ctx, heistID, "attacker", "c_1", "  DEF ")

			convey.Convey("Then normalization accepts it", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(out.Correct, convey.ShouldBeTrue)
				convey.So(out.Progress, convey.ShouldEqual, 1)
			})

			convey.Convey("And re-answering the same challenge does not inflate progress", func() {
				again, err := f.engine.SubmitCompound(ctx, heistID, "attacker", "c_1", "def")
				convey.So(err, convey.ShouldBeNil)
				convey.So(again.Progress, convey.ShouldEqual, 1)
				convey.So(again.StageComplete, convey.ShouldBeFalse)
			})
		})

		convey.Convey("When the full compound set is solved", func() {
			safe := f.solveCompound(t, heistID)

			convey.Convey("Then the heist advances to the safe stage with a pinned challenge", func() {
				h, _ := f.heists.Get(ctx, heistID)
				convey.So(h.Stage, convey.ShouldEqual, model.StageSafe)
				convey.So(h.SafeChallengeIndex, convey.ShouldEqual, 0)
				convey.So(safe.ID, convey.ShouldEqual, "s_1")
				convey.So(safe.Answer, convey.ShouldBeEmpty)
			})

			convey.Convey("And compound submissions are rejected from then on", func() {
				_, err := f.engine.SubmitCompound(ctx, heistID, "attacker", "c_1", "def")
				convey.So(err, convey.ShouldWrap, heist.ErrWrongStage)
			})
		})

		convey.Convey("When someone other than the attacker submits", func() {
			_, err := f.engine.SubmitCompound(ctx, heistID, "target", "c_1", "def")

			convey.Convey("Then it is rejected", func() {
				convey.So(err, convey.ShouldWrap, heist.ErrCallerMismatch)
			})
		})

		convey.Convey("When an unknown challenge id is submitted", func() {
			_, err := f.engine.SubmitCompound(ctx, heistID, "attacker", "c_99", "def")

			convey.Convey("Then it is rejected", func() {
				convey.So(err, convey.ShouldWrap, heist.ErrChallengeNotFound)
			})
		})
	})
}

func TestEngine_SubmitSafe(t *testing.T) {
	convey.Convey("Given a heist in the safe stage", t, func() {
		f := newFixture()
		ctx := context.Background()
		res, err := f.engine.Initiate(ctx, "attacker", "target")
		convey.So(err, convey.ShouldBeNil)
		heistID := res.HeistID
		f.solveCompound(t, heistID)

		convey.Convey("When the safe is cracked on the first try", func() {
			out, err := f.engine.SubmitSafe(ctx, heistID, "attacker", "s[::-1]")

			convey.Convey("Then half the target's cash moves to the attacker", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(out.HeistSuccess, convey.ShouldBeTrue)
				convey.So(out.StolenAmount, convey.ShouldEqual, 250)

				attacker, _ := f.teams.Get(ctx, "attacker")
				target, _ := f.teams.Get(ctx, "target")
				convey.So(attacker.Cash, convey.ShouldEqual, 1250)
				convey.So(target.Cash, convey.ShouldEqual, 250)
			})

			convey.Convey("Then the winning attempt still counts", func() {
				h, _ := f.heists.Get(ctx, heistID)
				convey.So(h.SafeAttempts, convey.ShouldEqual, 1)
				convey.So(h.Status, convey.ShouldEqual, model.StatusSuccess)
			})

			convey.Convey("Then both teams return to idle", func() {
				attacker, _ := f.teams.Get(ctx, "attacker")
				target, _ := f.teams.Get(ctx, "target")
				convey.So(attacker.HeistStatus, convey.ShouldEqual, model.HeistNone)
				convey.So(target.HeistStatus, convey.ShouldEqual, model.HeistNone)
			})
		})

		convey.Convey("When two attempts fail", func() {
			for i := 0; i < 2; i++ {
				out, err := f.engine.SubmitSafe(ctx, heistID, "attacker", "wrong")
				convey.So(err, convey.ShouldBeNil)
				convey.So(out.Correct, convey.ShouldBeFalse)
				convey.So(out.AttemptsRemaining, convey.ShouldEqual, 2-i)
			}

			convey.Convey("And the third succeeds", func() {
				out, err := f.engine.SubmitSafe(ctx, heistID, "attacker", "s[::-1]")

				convey.Convey("Then the heist still succeeds with three attempts recorded", func() {
					convey.So(err, convey.ShouldBeNil)
					convey.So(out.HeistSuccess, convey.ShouldBeTrue)
					h, _ := f.heists.Get(ctx, heistID)
					convey.So(h.SafeAttempts, convey.ShouldEqual, 3)
				})
			})

			convey.Convey("And the third fails too", func() {
				out, err := f.engine.SubmitSafe(ctx, heistID, "attacker", "wrong again")

				convey.Convey("Then the heist fails and the attacker pays the penalty", func() {
					convey.So(err, convey.ShouldBeNil)
					convey.So(out.HeistFailed, convey.ShouldBeTrue)
					convey.So(out.TransferAmount, convey.ShouldEqual, 300)

					attacker, _ := f.teams.Get(ctx, "attacker")
					target, _ := f.teams.Get(ctx, "target")
					convey.So(attacker.Cash, convey.ShouldEqual, 700)
					convey.So(target.Cash, convey.ShouldEqual, 800)
				})

				convey.Convey("Then further submissions are rejected", func() {
					_, err := f.engine.SubmitSafe(ctx, heistID, "attacker", "s[::-1]")
					convey.So(err, convey.ShouldWrap, heist.ErrHeistNotActive)
				})
			})
		})

		convey.Convey("When the safe stage is skipped", func() {
			f2 := newFixture()
			res2, err := f2.engine.Initiate(ctx, "attacker", "target")
			convey.So(err, convey.ShouldBeNil)

			_, err = f2.engine.SubmitSafe(ctx, res2.HeistID, "attacker", "s[::-1]")

			convey.Convey("Then the stage guard rejects it", func() {
				convey.So(err, convey.ShouldWrap, heist.ErrWrongStage)
			})
		})
	})
}

func TestEngine_SafeChallengePinnedAcrossAttempts(t *testing.T) {
	convey.Convey("Given a picker that would choose differently on every call", t, func() {
		calls := 0
		f := newFixture(heist.WithSafePicker(func(n int) int {
			idx := calls % n
			calls++
			return idx
		}))
		ctx := context.Background()

		res, err := f.engine.Initiate(ctx, "attacker", "target")
		convey.So(err, convey.ShouldBeNil)
		f.solveCompound(t, res.HeistID)

		convey.Convey("When several safe attempts fail", func() {
			for i := 0; i < 2; i++ {
				out, err := f.engine.SubmitSafe(ctx, res.HeistID, "attacker", "wrong")
				convey.So(err, convey.ShouldBeNil)
				convey.So(out.Correct, convey.ShouldBeFalse)
			}

			convey.Convey("Then the challenge stays pinned to the stage-completion pick", func() {
				h, _ := f.heists.Get(ctx, res.HeistID)
				convey.So(h.SafeChallengeIndex, convey.ShouldEqual, 0)
				convey.So(calls, convey.ShouldEqual, 1)
			})

			convey.Convey("Then the original answer still cracks the safe", func() {
				out, err := f.engine.SubmitSafe(ctx, res.HeistID, "attacker", "s[::-1]")
				convey.So(err, convey.ShouldBeNil)
				convey.So(out.HeistSuccess, convey.ShouldBeTrue)
			})
		})
	})
}

// Exercises the snapshot saver's read pattern: one goroutine marshals the
// full heist list while another drives heists through their lifecycle. Under
// the race detector this fails if store reads alias engine-mutated records.
func TestEngine_ConcurrentStateReads(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
			}
			if _, err := json.Marshal(f.heists.All(ctx)); err != nil {
				t.Errorf("marshal heists: %v", err)
				return
			}
		}
	}()

	for i := 0; i < 25; i++ {
		res, err := f.engine.Initiate(ctx, "attacker", "target")
		if err != nil {
			t.Fatalf("initiate %d: %v", i, err)
		}
		f.solveCompound(t, res.HeistID)
		if _, err := f.engine.SubmitSafe(ctx, res.HeistID, "attacker", "wrong"); err != nil {
			t.Fatalf("safe attempt %d: %v", i, err)
		}
		if _, err := f.engine.SubmitSafe(ctx, res.HeistID, "attacker", "s[::-1]"); err != nil {
			t.Fatalf("crack safe %d: %v", i, err)
		}
	}

	close(stop)
	wg.Wait()
}

func TestEngine_Expiry(t *testing.T) {
	convey.Convey("Given an active heist with a 180s budget", t, func() {
		f := newFixture()
		ctx := context.Background()
		res, err := f.engine.Initiate(ctx, "attacker", "target")
		convey.So(err, convey.ShouldBeNil)
		heistID := res.HeistID

		convey.Convey("When a submission lands just inside the grace window", func() {
			f.clock.Advance(184*time.Second + 900*time.Millisecond)
			out, err := f.engine.SubmitCompound(ctx, heistID, "attacker", "c_1", "def")

			convey.Convey("Then it is still accepted", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(out.Correct, convey.ShouldBeTrue)
			})
		})

		convey.Convey("When a submission lands exactly at the boundary", func() {
			f.clock.Advance(185 * time.Second)
			out, err := f.engine.SubmitCompound(ctx, heistID, "attacker", "c_1", "def")

			convey.Convey("Then the boundary itself is not expired", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(out.Correct, convey.ShouldBeTrue)
			})
		})

		convey.Convey("When a submission lands past the grace window", func() {
			f.clock.Advance(185*time.Second + time.Millisecond)
			_, err := f.engine.SubmitCompound(ctx, heistID, "attacker", "c_1", "def")

			convey.Convey("Then the heist is force-failed", func() {
				convey.So(err, convey.ShouldWrap, heist.ErrExpired)

				h, _ := f.heists.Get(ctx, heistID)
				convey.So(h.Status, convey.ShouldEqual, model.StatusFailed)
			})

			convey.Convey("Then the failure penalty was applied once", func() {
				attacker, _ := f.teams.Get(ctx, "attacker")
				target, _ := f.teams.Get(ctx, "target")
				convey.So(attacker.Cash, convey.ShouldEqual, 700)
				convey.So(target.Cash, convey.ShouldEqual, 800)
			})
		})
	})
}

func TestEngine_SweepExpired(t *testing.T) {
	convey.Convey("Given an active heist", t, func() {
		f := newFixture()
		ctx := context.Background()
		res, err := f.engine.Initiate(ctx, "attacker", "target")
		convey.So(err, convey.ShouldBeNil)
		heistID := res.HeistID

		convey.Convey("When the sweeper runs inside the sweep grace", func() {
			f.clock.Advance(189 * time.Second)
			n := f.engine.SweepExpired(ctx)

			convey.Convey("Then nothing is swept", func() {
				convey.So(n, convey.ShouldEqual, 0)
				convey.So(f.heists.ActiveCount(ctx), convey.ShouldEqual, 1)
			})
		})

		convey.Convey("When the sweeper runs past the sweep grace", func() {
			f.clock.Advance(190*time.Second + time.Millisecond)
			n := f.engine.SweepExpired(ctx)

			convey.Convey("Then the heist is failed and cash transferred", func() {
				convey.So(n, convey.ShouldEqual, 1)
				h, _ := f.heists.Get(ctx, heistID)
				convey.So(h.Status, convey.ShouldEqual, model.StatusFailed)

				attacker, _ := f.teams.Get(ctx, "attacker")
				target, _ := f.teams.Get(ctx, "target")
				convey.So(attacker.Cash, convey.ShouldEqual, 700)
				convey.So(target.Cash, convey.ShouldEqual, 800)
			})

			convey.Convey("Then a second sweep is a no-op", func() {
				convey.So(f.engine.SweepExpired(ctx), convey.ShouldEqual, 0)

				attacker, _ := f.teams.Get(ctx, "attacker")
				convey.So(attacker.Cash, convey.ShouldEqual, 700)
			})
		})
	})
}

func TestEngine_FailurePenaltyFloorsAtZero(t *testing.T) {
	convey.Convey("Given an attacker with almost no cash", t, func() {
		f := newFixture()
		ctx := context.Background()
		_, _ = f.teams.ApplyCashDelta(ctx, "attacker", -999)

		res, err := f.engine.Initiate(ctx, "attacker", "target")
		convey.So(err, convey.ShouldBeNil)
		f.solveCompound(t, res.HeistID)

		convey.Convey("When the heist fails out on attempts", func() {
			for i := 0; i < 3; i++ {
				_, err := f.engine.SubmitSafe(ctx, res.HeistID, "attacker", "wrong")
				convey.So(err, convey.ShouldBeNil)
			}

			convey.Convey("Then the transfer floors and no balance goes negative", func() {
				attacker, _ := f.teams.Get(ctx, "attacker")
				target, _ := f.teams.Get(ctx, "target")
				convey.So(attacker.Cash, convey.ShouldEqual, 1)
				convey.So(target.Cash, convey.ShouldEqual, 500)
			})
		})
	})
}
