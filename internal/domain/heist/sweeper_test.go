package heist_test

import (
	"context"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	"github.com/levelup/heist/internal/domain/heist"
	"github.com/levelup/heist/internal/domain/model"
)

func TestSweeper(t *testing.T) {
	convey.Convey("Given a sweeper over an engine with an abandoned heist", t, func() {
		f := newFixture()
		ctx := context.Background()

		res, err := f.engine.Initiate(ctx, "attacker", "target")
		convey.So(err, convey.ShouldBeNil)

		// Push the heist well past its budget plus sweep grace.
		f.clock.Advance(5 * time.Minute)

		convey.Convey("When the sweeper ticks", func() {
			sweeper := heist.NewSweeper(f.engine,
				heist.WithSweepInterval(10*time.Millisecond),
			)
			sweeper.Start(ctx)

			deadline := time.After(2 * time.Second)
			for f.engine.ActiveCount(ctx) > 0 {
				select {
				case <-deadline:
					t.Fatal("sweeper never expired the heist")
				case <-time.After(5 * time.Millisecond):
				}
			}
			sweeper.Stop()

			convey.Convey("Then the abandoned heist is failed", func() {
				h, err := f.heists.Get(ctx, res.HeistID)
				convey.So(err, convey.ShouldBeNil)
				convey.So(h.Status, convey.ShouldEqual, model.StatusFailed)
			})

			convey.Convey("Then a second Stop is safe", func() {
				convey.So(sweeper.Stop, convey.ShouldNotPanic)
			})
		})
	})
}
