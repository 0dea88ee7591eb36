package app_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"github.com/levelup/heist/internal/app"
	"github.com/levelup/heist/internal/auth"
	"github.com/levelup/heist/internal/config"
	"github.com/levelup/heist/internal/domain/model"
	"github.com/levelup/heist/pkg/logger"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		os.Exit(1)
	}
	os.Exit(m.Run())
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.New()
	cfg.SnapshotPath = filepath.Join(t.TempDir(), "state.json")
	return cfg
}

func startService(t *testing.T, cfg *config.Config) *app.Service {
	t.Helper()
	svc := app.New(app.WithConfig(cfg))
	if err := svc.Start(context.Background()); err != nil {
		t.Fatalf("start service: %v", err)
	}
	t.Cleanup(svc.Stop)
	return svc
}

func TestService_SeedsTeamsOnFirstBoot(t *testing.T) {
	convey.Convey("Given a freshly started service", t, func() {
		svc := startService(t, testConfig(t))
		ctx := context.Background()

		convey.Convey("Then the seed roster is on the leaderboard", func() {
			board := svc.Leaderboard(ctx)
			convey.So(board, convey.ShouldHaveLength, 5)
		})

		convey.Convey("Then seed access codes work for login", func() {
			token, team, powerUps, err := svc.TeamLogin(ctx, "TEAM001", "client-1")
			convey.So(err, convey.ShouldBeNil)
			convey.So(token, convey.ShouldNotBeEmpty)
			convey.So(team.Online, convey.ShouldBeTrue)
			convey.So(powerUps, convey.ShouldBeEmpty)

			claims, err := svc.VerifyToken(token)
			convey.So(err, convey.ShouldBeNil)
			convey.So(claims.TeamID, convey.ShouldEqual, team.ID)
			convey.So(claims.IsAdmin(), convey.ShouldBeFalse)
		})
	})
}

func TestService_Login(t *testing.T) {
	convey.Convey("Given a running service", t, func() {
		cfg := testConfig(t)
		svc := startService(t, cfg)
		ctx := context.Background()

		convey.Convey("When a bad access code is used", func() {
			_, _, _, err := svc.TeamLogin(ctx, "NOPE", "client-1")

			convey.Convey("Then login fails", func() {
				convey.So(err, convey.ShouldWrap, auth.ErrInvalidAccessCode)
			})
		})

		convey.Convey("When one client hammers the login endpoint", func() {
			var err error
			for i := 0; i <= cfg.LoginRateLimit; i++ {
				_, _, _, err = svc.TeamLogin(ctx, "NOPE", "client-2")
			}

			convey.Convey("Then the limiter kicks in", func() {
				convey.So(err, convey.ShouldWrap, auth.ErrRateLimited)
			})

			convey.Convey("Then other clients are unaffected", func() {
				_, _, _, err := svc.TeamLogin(ctx, "TEAM001", "client-3")
				convey.So(err, convey.ShouldBeNil)
			})
		})

		convey.Convey("When the admin logs in", func() {
			token, err := svc.AdminLogin(ctx, cfg.AdminPassword, "client-4")

			convey.Convey("Then the token carries the admin role", func() {
				convey.So(err, convey.ShouldBeNil)
				claims, err := svc.VerifyToken(token)
				convey.So(err, convey.ShouldBeNil)
				convey.So(claims.IsAdmin(), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the admin password is wrong", func() {
			_, err := svc.AdminLogin(ctx, "letmein", "client-5")

			convey.Convey("Then login fails", func() {
				convey.So(err, convey.ShouldWrap, auth.ErrInvalidAdminSecret)
			})
		})
	})
}

func TestService_AdminOperations(t *testing.T) {
	convey.Convey("Given a running service", t, func() {
		svc := startService(t, testConfig(t))
		ctx := context.Background()
		teamID := svc.Leaderboard(ctx)[0].ID

		convey.Convey("When cash is granted", func() {
			newCash, err := svc.AddCash(ctx, teamID, 500)

			convey.Convey("Then the balance reflects it", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(newCash, convey.ShouldEqual, 500)
			})
		})

		convey.Convey("When a power-up is granted and removed", func() {
			convey.So(svc.GrantPowerUp(ctx, teamID, model.Shield), convey.ShouldBeNil)

			team, powerUps, _, err := svc.TeamState(ctx, teamID)
			convey.So(err, convey.ShouldBeNil)
			convey.So(team.ID, convey.ShouldEqual, teamID)
			convey.So(powerUps, convey.ShouldHaveLength, 1)

			convey.So(svc.RemovePowerUp(ctx, teamID, model.Shield), convey.ShouldBeNil)
			_, powerUps, _, _ = svc.TeamState(ctx, teamID)
			convey.So(powerUps, convey.ShouldBeEmpty)
		})

		convey.Convey("When a team is created", func() {
			team, err := svc.CreateTeam(ctx, "Quantum Foxes")

			convey.Convey("Then it gets a generated access code", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(strings.HasPrefix(team.AccessCode, "GDG-"), convey.ShouldBeTrue)
				convey.So(svc.Leaderboard(ctx), convey.ShouldHaveLength, 6)

				_, logged, _, err := svc.TeamLogin(ctx, team.AccessCode, "client-6")
				convey.So(err, convey.ShouldBeNil)
				convey.So(logged.ID, convey.ShouldEqual, team.ID)
			})
		})

		convey.Convey("When the admin state is read", func() {
			state := svc.AdminState(ctx)

			convey.Convey("Then it exposes the full event view", func() {
				convey.So(state["teams"], convey.ShouldNotBeNil)
				convey.So(state["powerUps"], convey.ShouldNotBeNil)
			})
		})
	})
}

func TestService_HeistFlow(t *testing.T) {
	convey.Convey("Given two funded teams", t, func() {
		svc := startService(t, testConfig(t))
		ctx := context.Background()

		board := svc.Leaderboard(ctx)
		attacker, target := board[0].ID, board[1].ID
		_, _ = svc.AddCash(ctx, attacker, 1000)
		_, _ = svc.AddCash(ctx, target, 400)

		convey.Convey("When a full heist plays out", func() {
			res, err := svc.InitiateHeist(ctx, attacker, target)
			convey.So(err, convey.ShouldBeNil)
			convey.So(res.Blocked, convey.ShouldBeFalse)

			for _, sub := range []struct{ id, answer string }{
				{"c_1", "def"}, {"c_2", "[]"}, {"c_3", "append"},
			} {
				out, err := svc.SubmitCompoundAnswer(ctx, res.HeistID, attacker, sub.id, sub.answer)
				convey.So(err, convey.ShouldBeNil)
				convey.So(out.Correct, convey.ShouldBeTrue)
			}

			// The pinned safe challenge is random; try every known answer,
			// only the pinned one counts.
			var success bool
			for _, answer := range []string{"s[::-1]", "True", "arr[-1]"} {
				out, err := svc.SubmitSafeAnswer(ctx, res.HeistID, attacker, answer)
				convey.So(err, convey.ShouldBeNil)
				if out.HeistSuccess {
					success = true
					break
				}
			}

			convey.Convey("Then the heist succeeds and cash moves", func() {
				convey.So(success, convey.ShouldBeTrue)

				team, _, active, err := svc.TeamState(ctx, attacker)
				convey.So(err, convey.ShouldBeNil)
				convey.So(active, convey.ShouldBeNil)
				convey.So(team.Cash, convey.ShouldEqual, 1200)
			})
		})
	})
}

func TestService_SnapshotRestart(t *testing.T) {
	convey.Convey("Given a service with accumulated state", t, func() {
		cfg := testConfig(t)
		svc := startService(t, cfg)
		ctx := context.Background()

		teamID := svc.Leaderboard(ctx)[0].ID
		_, err := svc.AddCash(ctx, teamID, 750)
		convey.So(err, convey.ShouldBeNil)
		convey.So(svc.GrantPowerUp(ctx, teamID, model.TimeFreeze), convey.ShouldBeNil)
		svc.Stop()

		convey.Convey("When a new service boots from the same snapshot", func() {
			svc2 := startService(t, cfg)

			convey.Convey("Then teams, cash and power-ups survive", func() {
				convey.So(svc2.Leaderboard(ctx), convey.ShouldHaveLength, 5)

				team, powerUps, _, err := svc2.TeamState(ctx, teamID)
				convey.So(err, convey.ShouldBeNil)
				convey.So(team.Cash, convey.ShouldEqual, 750)
				convey.So(powerUps, convey.ShouldHaveLength, 1)
				convey.So(powerUps[0].Kind, convey.ShouldEqual, model.TimeFreeze)
			})

			convey.Convey("Then access codes still work after restart", func() {
				_, _, _, err := svc2.TeamLogin(ctx, "TEAM001", "client-7")
				convey.So(err, convey.ShouldBeNil)
			})
		})
	})
}
