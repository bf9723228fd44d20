package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/smartystreets/goconvey/convey"
	"gopkg.in/yaml.v3"
)

const season = `winner,loser
Duke (3),North Carolina
Duke,Wake Forest
North Carolina,Wake Forest
Virginia,Duke
Virginia,North Carolina
`

const tail = `winner,loser,opponent
winner,loser,opponent
Wake Forest,Clemson,Clemson
,Clemson,
`

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func runRank(args ...string) (int, string, string) {
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRankText(t *testing.T) {
	convey.Convey("Given two result files", t, func() {
		dir := t.TempDir()
		games := writeFile(t, dir, "a.csv", season) + "," + writeFile(t, dir, "b.csv", tail)

		convey.Convey("When ranking with defaults", func() {
			code, out, _ := runRank("-games", games)
			lines := strings.Split(strings.TrimSpace(out), "\n")

			convey.Convey("Then every team prints with six decimals, best first", func() {
				convey.So(code, convey.ShouldEqual, exitOK)
				convey.So(len(lines), convey.ShouldEqual, 5)
				convey.So(lines[0], convey.ShouldEqual, "virginia: 1.000000")
				convey.So(lines[1], convey.ShouldStartWith, "duke: ")
				convey.So(lines[4], convey.ShouldEqual, "clemson: 0.000000")
			})
		})

		convey.Convey("When ranking the top two raw scores", func() {
			code, out, _ := runRank("-games", games, "-normalize=false", "-top", "2")
			lines := strings.Split(strings.TrimSpace(out), "\n")

			convey.Convey("Then only two unnormalized rows print", func() {
				convey.So(code, convey.ShouldEqual, exitOK)
				convey.So(len(lines), convey.ShouldEqual, 2)
				convey.So(lines[0], convey.ShouldStartWith, "virginia: 0.")
				convey.So(lines[0], convey.ShouldNotEqual, "virginia: 1.000000")
			})
		})

		convey.Convey("When comparing two teams", func() {
			code, out, _ := runRank("-games", games, "-versus", "Clemson,Virginia")

			convey.Convey("Then the stronger team wins", func() {
				convey.So(code, convey.ShouldEqual, exitOK)
				convey.So(out, convey.ShouldEqual, "clemson vs virginia: virginia\n")
			})
		})

		convey.Convey("When restricting output to a team list", func() {
			list := writeFile(t, dir, "teams.txt", "Clemson\n\nDuke\nGonzaga\n")
			code, out, _ := runRank("-games", games, "-teams", list)

			convey.Convey("Then only listed teams print in ranking order", func() {
				convey.So(code, convey.ShouldEqual, exitOK)
				lines := strings.Split(strings.TrimSpace(out), "\n")
				convey.So(len(lines), convey.ShouldEqual, 2)
				convey.So(lines[0], convey.ShouldStartWith, "duke: ")
				convey.So(lines[1], convey.ShouldStartWith, "clemson: ")
			})
		})
	})
}

func TestRankStructured(t *testing.T) {
	convey.Convey("Given a result file", t, func() {
		dir := t.TempDir()
		games := writeFile(t, dir, "a.csv", season)

		convey.Convey("When asking for JSON", func() {
			code, out, _ := runRank("-games", games, "-format", "json", "-versus", "duke,unc")
			var rep report
			err := json.Unmarshal([]byte(out), &rep)

			convey.Convey("Then the report carries rankings and the matchup", func() {
				convey.So(code, convey.ShouldEqual, exitOK)
				convey.So(err, convey.ShouldBeNil)
				convey.So(rep.Teams, convey.ShouldEqual, 4)
				convey.So(rep.Games, convey.ShouldEqual, 5)
				convey.So(rep.Policy, convey.ShouldEqual, "collapse")
				convey.So(rep.Normalized, convey.ShouldBeTrue)
				convey.So(rep.Rankings[0].Position, convey.ShouldEqual, 1)
				convey.So(rep.Rankings[0].Team, convey.ShouldEqual, "virginia")
				convey.So(rep.Versus, convey.ShouldNotBeNil)
				convey.So(rep.Versus.Winner, convey.ShouldEqual, "duke")
				convey.So(rep.Versus.ScoreB, convey.ShouldEqual, 0.0)
			})
		})

		convey.Convey("When asking for YAML with the accumulate policy", func() {
			code, out, _ := runRank("-games", games, "-format", "yaml", "-policy", "accumulate")
			var rep report
			err := yaml.Unmarshal([]byte(out), &rep)

			convey.Convey("Then the report decodes", func() {
				convey.So(code, convey.ShouldEqual, exitOK)
				convey.So(err, convey.ShouldBeNil)
				convey.So(rep.Policy, convey.ShouldEqual, "accumulate")
				convey.So(len(rep.Rankings), convey.ShouldEqual, 4)
				convey.So(rep.Versus, convey.ShouldBeNil)
			})
		})
	})
}

func TestRankErrors(t *testing.T) {
	convey.Convey("Given bad invocations", t, func() {
		dir := t.TempDir()
		games := writeFile(t, dir, "a.csv", season)

		convey.Convey("Then usage errors exit with the usage code", func() {
			code, _, stderr := runRank()
			convey.So(code, convey.ShouldEqual, exitUsage)
			convey.So(stderr, convey.ShouldContainSubstring, "-games is required")

			code, _, _ = runRank("-games", games, "-policy", "weighted")
			convey.So(code, convey.ShouldEqual, exitUsage)

			code, _, _ = runRank("-games", games, "-format", "xml")
			convey.So(code, convey.ShouldEqual, exitUsage)

			code, _, _ = runRank("-games", games, "-versus", "duke")
			convey.So(code, convey.ShouldEqual, exitUsage)

			code, _, _ = runRank("-games", games, "-top", "-1")
			convey.So(code, convey.ShouldEqual, exitUsage)
		})

		convey.Convey("Then a file without a loser column fails", func() {
			bad := writeFile(t, dir, "bad.csv", "winner,score\nduke,70\n")
			code, _, stderr := runRank("-games", bad)
			convey.So(code, convey.ShouldEqual, exitError)
			convey.So(stderr, convey.ShouldContainSubstring, "loser")
		})

		convey.Convey("Then a ranking that cannot converge fails", func() {
			code, _, stderr := runRank("-games", games, "-max-iter", "1")
			convey.So(code, convey.ShouldEqual, exitError)
			convey.So(stderr, convey.ShouldContainSubstring, "converge")
		})

		convey.Convey("Then -help exits cleanly", func() {
			code, _, _ := runRank("-help")
			convey.So(code, convey.ShouldEqual, exitOK)
		})
	})
}
