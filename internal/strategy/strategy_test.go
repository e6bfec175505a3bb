package strategy

import (
	"fmt"
	"slices"
	"testing"
)

func teamNames(n int) []string {
	teams := make([]string, n)
	for i := range teams {
		teams[i] = fmt.Sprintf("T%d", i+1)
	}
	return teams
}

type pair struct{ a, b string }

func normalize(g Game) pair {
	if g.Home > g.Away {
		return pair{g.Away, g.Home}
	}
	return pair{g.Home, g.Away}
}

func TestRotate(t *testing.T) {
	t.Run("moves last seat to position 1", func(t *testing.T) {
		got := Rotate([]int{0, 1, 2, 3})
		want := []int{0, 3, 1, 2}
		if !slices.Equal(got, want) {
			t.Errorf("Rotate = %v, want %v", got, want)
		}
	})

	t.Run("does not modify its input", func(t *testing.T) {
		in := []int{0, 1, 2, 3, 4, 5}
		Rotate(in)
		if !slices.Equal(in, []int{0, 1, 2, 3, 4, 5}) {
			t.Errorf("input changed to %v", in)
		}
	})

	t.Run("returns to the start after seats-1 rotations", func(t *testing.T) {
		start := InitialOrder(6)
		order := start
		for range len(start) - 1 {
			order = Rotate(order)
		}
		if !slices.Equal(order, start) {
			t.Errorf("after full cycle order = %v, want %v", order, start)
		}
	})

	t.Run("two seats are unchanged", func(t *testing.T) {
		if got := Rotate([]int{0, 1}); !slices.Equal(got, []int{0, 1}) {
			t.Errorf("Rotate = %v", got)
		}
	})
}

func TestInitialOrder(t *testing.T) {
	if got := InitialOrder(4); !slices.Equal(got, []int{0, 1, 2, 3}) {
		t.Errorf("even order = %v", got)
	}
	if got := InitialOrder(5); !slices.Equal(got, []int{0, 1, 2, 3, 4, bye}) {
		t.Errorf("odd order = %v", got)
	}
}

func TestSingleRoundRobinEven(t *testing.T) {
	for _, n := range []int{2, 4, 6, 8, 10} {
		t.Run(fmt.Sprintf("%d teams", n), func(t *testing.T) {
			teams := teamNames(n)
			rounds := SingleRoundRobin{}.Rounds(teams)

			if len(rounds) != n-1 {
				t.Fatalf("rounds = %d, want %d", len(rounds), n-1)
			}

			seen := make(map[pair]int)
			total := 0
			for i, r := range rounds {
				if r.Number != i+1 {
					t.Errorf("round %d numbered %d", i+1, r.Number)
				}
				if r.Bye != "" {
					t.Errorf("round %d has bye %s with even teams", r.Number, r.Bye)
				}
				playing := make(map[string]bool)
				for _, g := range r.Games {
					if g.Home == g.Away {
						t.Errorf("round %d: %s plays itself", r.Number, g.Home)
					}
					if playing[g.Home] || playing[g.Away] {
						t.Errorf("round %d: team plays twice", r.Number)
					}
					playing[g.Home] = true
					playing[g.Away] = true
					seen[normalize(g)]++
					total++
				}
			}

			if total != n*(n-1)/2 {
				t.Errorf("games = %d, want %d", total, n*(n-1)/2)
			}
			for p, c := range seen {
				if c != 1 {
					t.Errorf("%s vs %s played %d times", p.a, p.b, c)
				}
			}
			if len(seen) != n*(n-1)/2 {
				t.Errorf("distinct pairs = %d, want %d", len(seen), n*(n-1)/2)
			}
		})
	}
}

func TestSingleRoundRobinOdd(t *testing.T) {
	for _, n := range []int{3, 5, 7, 9} {
		t.Run(fmt.Sprintf("%d teams", n), func(t *testing.T) {
			teams := teamNames(n)
			rounds := SingleRoundRobin{}.Rounds(teams)

			if len(rounds) != n {
				t.Fatalf("rounds = %d, want %d", len(rounds), n)
			}

			byes := make(map[string]int)
			seen := make(map[pair]int)
			for _, r := range rounds {
				if r.Bye == "" {
					t.Errorf("round %d has no bye", r.Number)
				}
				byes[r.Bye]++
				if len(r.Games) != (n-1)/2 {
					t.Errorf("round %d has %d games, want %d", r.Number, len(r.Games), (n-1)/2)
				}
				for _, g := range r.Games {
					if g.Home == r.Bye || g.Away == r.Bye {
						t.Errorf("round %d: bye team %s also plays", r.Number, r.Bye)
					}
					seen[normalize(g)]++
				}
			}

			for _, team := range teams {
				if byes[team] != 1 {
					t.Errorf("%s has %d byes, want 1", team, byes[team])
				}
			}
			if len(seen) != n*(n-1)/2 {
				t.Errorf("distinct pairs = %d, want %d", len(seen), n*(n-1)/2)
			}
			for p, c := range seen {
				if c != 1 {
					t.Errorf("%s vs %s played %d times", p.a, p.b, c)
				}
			}
		})
	}
}

func TestHomeAwayBalance(t *testing.T) {
	teams := teamNames(8)
	rounds := SingleRoundRobin{}.Rounds(teams)

	home := make(map[string]int)
	for _, r := range rounds {
		for _, g := range r.Games {
			home[g.Home]++
		}
	}
	for _, team := range teams {
		if home[team] < 2 || home[team] > 5 {
			t.Errorf("%s is home %d of 7 games", team, home[team])
		}
	}
}

func TestDoubleRoundRobin(t *testing.T) {
	teams := teamNames(4)
	single := SingleRoundRobin{}.Rounds(teams)
	double := DoubleRoundRobin{}.Rounds(teams)

	t.Run("doubles rounds and games", func(t *testing.T) {
		if len(double) != 2*len(single) {
			t.Fatalf("rounds = %d, want %d", len(double), 2*len(single))
		}
		count := func(rs []Round) int {
			n := 0
			for _, r := range rs {
				n += len(r.Games)
			}
			return n
		}
		if count(double) != 2*count(single) {
			t.Errorf("games = %d, want %d", count(double), 2*count(single))
		}
	})

	t.Run("round numbers continue", func(t *testing.T) {
		for i, r := range double {
			if r.Number != i+1 {
				t.Errorf("round index %d numbered %d", i, r.Number)
			}
		}
	})

	t.Run("second leg mirrors first", func(t *testing.T) {
		legOne := make(map[Game]bool)
		for _, r := range double[:len(single)] {
			for _, g := range r.Games {
				legOne[g] = true
			}
		}
		for _, r := range double[len(single):] {
			for _, g := range r.Games {
				if !legOne[Game{Home: g.Away, Away: g.Home}] {
					t.Errorf("leg 2 game %s vs %s has no mirrored leg 1 game", g.Home, g.Away)
				}
			}
		}
	})
}

func TestRoundsTooFewTeams(t *testing.T) {
	if rounds := (SingleRoundRobin{}).Rounds([]string{"Solo"}); len(rounds) != 0 {
		t.Errorf("rounds = %d, want 0", len(rounds))
	}
}

func TestPartition(t *testing.T) {
	t.Run("14 teams in groups of 6", func(t *testing.T) {
		groups := Partition(teamNames(14), 6)
		sizes := make([]int, len(groups))
		for i, g := range groups {
			sizes[i] = len(g)
		}
		if !slices.Equal(sizes, []int{6, 6, 2}) {
			t.Errorf("group sizes = %v, want [6 6 2]", sizes)
		}
		if groups[1][0] != "T7" || groups[2][1] != "T14" {
			t.Errorf("groups are not contiguous: %v", groups)
		}
	})

	t.Run("fits in one group", func(t *testing.T) {
		groups := Partition(teamNames(6), 6)
		if len(groups) != 1 || len(groups[0]) != 6 {
			t.Errorf("groups = %v", groups)
		}
	})
}

func TestGet(t *testing.T) {
	if _, err := Get("single_round_robin"); err != nil {
		t.Errorf("single_round_robin: %v", err)
	}
	if _, err := Get("double_round_robin"); err != nil {
		t.Errorf("double_round_robin: %v", err)
	}
	if _, err := Get("swiss"); err == nil {
		t.Error("expected error for unknown strategy")
	}
}
